package models

import "time"

// Upload is the raw content of the file a session uploaded most recently.
type Upload struct {
	Filename   string    // Filename as sent by the browser.
	Data       []byte    // Data is the undecoded file content.
	UploadedAt time.Time // UploadedAt is when the server received the file.
}
