package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/UnknownOlympus/meridian/internal/charts"
	"github.com/UnknownOlympus/meridian/internal/geofilter"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/google/uuid"
)

const (
	sessionCookie   = "meridian_session"
	uploadField     = "file"
	maxPreviewRows  = 1000
	multipartMemory = 32 << 20
)

// Upload statuses reported by the uploads counter.
const (
	uploadAccepted = "accepted"
	uploadRejected = "rejected"
	uploadTooLarge = "too_large"
	uploadInvalid  = "invalid"
	uploadThrottle = "throttled"
)

const (
	noticeInfo    = "info"
	noticeSuccess = "success"
	noticeError   = "error"
)

type notice struct {
	Kind    string
	Message string
}

type pageData struct {
	Title           string
	Notices         []notice
	Filename        string
	Columns         []string
	Rows            [][]string
	TotalRows       int
	Charts          []charts.Chart
	RegionOptions   []string
	PostTypeOptions []string
	Selection       geofilter.Selection
	MapConfig       template.JS
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := pageData{Title: s.title, Selection: geofilter.AllSelection()}

	upload, err := s.repo.LatestUpload(ctx, sessionFromRequest(r))
	if err != nil {
		if !errors.Is(err, repository.ErrNoUpload) {
			s.logger.ErrorContext(ctx, "Failed to load upload", "error", err)
		}
		data.Notices = append(data.Notices, notice{Kind: noticeInfo, Message: "Upload a CSV file to get started."})
		s.writePage(w, r, http.StatusOK, data)
		return
	}

	data.Filename = upload.Filename
	data.Notices = append(data.Notices,
		notice{Kind: noticeInfo, Message: "Reading CSV from uploaded and decoded content"})

	dash, err := s.renderer.Render(ctx, *upload, selectionFromQuery(r))
	if err != nil {
		data.Notices = append(data.Notices, notice{Kind: noticeError, Message: "Error loading CSV: " + err.Error()})
		s.writePage(w, r, http.StatusOK, data)
		return
	}

	mapConfig, err := json.Marshal(dash.Map)
	if err != nil {
		data.Notices = append(data.Notices, notice{Kind: noticeError, Message: "Error loading CSV: " + err.Error()})
		s.writePage(w, r, http.StatusOK, data)
		return
	}

	rows := dash.Table.Strings()
	data.TotalRows = len(rows)
	if len(rows) > maxPreviewRows {
		rows = rows[:maxPreviewRows]
	}

	data.Notices = append(data.Notices, notice{Kind: noticeSuccess, Message: "CSV loaded successfully!"})
	data.Columns = dash.Table.Columns()
	data.Rows = rows
	data.Charts = dash.Charts
	data.RegionOptions = dash.RegionOptions
	data.PostTypeOptions = dash.PostTypeOptions
	data.Selection = dash.Selection
	data.MapConfig = template.JS(mapConfig)

	s.writePage(w, r, http.StatusOK, data)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !s.limiter.Allow() {
		s.rejectUpload(w, r, http.StatusTooManyRequests, uploadThrottle, "Too many uploads, please try again shortly.")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.rejectUpload(w, r, http.StatusRequestEntityTooLarge, uploadTooLarge,
				fmt.Sprintf("The file exceeds the upload limit of %d MB.", s.maxUpload>>20))
			return
		}
		s.rejectUpload(w, r, http.StatusBadRequest, uploadInvalid, "The upload could not be read: "+err.Error())
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		s.rejectUpload(w, r, http.StatusBadRequest, uploadInvalid, "No file was uploaded.")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		s.rejectUpload(w, r, http.StatusBadRequest, uploadRejected, "Only .csv files are accepted.")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		s.rejectUpload(w, r, http.StatusBadRequest, uploadInvalid, "The upload could not be read: "+err.Error())
		return
	}

	sessionID := sessionFromRequest(r)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if err = s.repo.SaveUpload(ctx, sessionID, models.Upload{Filename: header.Filename, Data: content}); err != nil {
		s.logger.ErrorContext(ctx, "Failed to store upload", "error", err)
		http.Error(w, "failed to store upload", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.metrics.UploadsReceived.WithLabelValues(uploadAccepted).Inc()
	s.logger.InfoContext(ctx, "Upload accepted", "file", header.Filename, "bytes", len(content))

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.logger.DebugContext(r.Context(), "Performing health checks...")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to write reply", "error", err)
	}
}

func (s *Server) rejectUpload(w http.ResponseWriter, r *http.Request, status int, label, message string) {
	s.metrics.UploadsReceived.WithLabelValues(label).Inc()
	s.logger.WarnContext(r.Context(), "Upload rejected", "status", label, "reason", message)

	s.writePage(w, r, status, pageData{
		Title:     s.title,
		Notices:   []notice{{Kind: noticeError, Message: message}},
		Selection: geofilter.AllSelection(),
	})
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to write reply", "error", err)
	}
}

// sessionFromRequest returns the session id from the cookie, or "" if it is absent or malformed.
func sessionFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	if _, err = uuid.Parse(cookie.Value); err != nil {
		return ""
	}

	return cookie.Value
}

func selectionFromQuery(r *http.Request) geofilter.Selection {
	query := r.URL.Query()
	sel := geofilter.Selection{Region: query.Get("region"), PostType: query.Get("post_type")}
	if sel.Region == "" {
		sel.Region = geofilter.All
	}
	if sel.PostType == "" {
		sel.PostType = geofilter.All
	}

	return sel
}
