package models

// MapPoint is one marker of the posts map.
type MapPoint struct {
	Coordinates

	Properties map[string]string `json:"properties"` // Properties holds every column of the row by name.
	Tooltip    string            `json:"tooltip"`    // Tooltip is the rendered hover HTML.
}
