package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"filesmanager/pkg/domain"
	"filesmanager/services/files/internal/app"
)

type createFileRequest struct {
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	ParentID json.RawMessage `json:"parentId"`
	IsPublic bool            `json:"isPublic"`
	Data     string          `json:"data"`
}

// parentIDFromJSON accepts parentId as a string or a number; 0 and absent mean root.
func parentIDFromJSON(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

func (s *Server) handleCreateFile(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	var req createFileRequest
	body := http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	parentID, ok := parentIDFromJSON(req.ParentID)
	in := app.NewFile{
		Name:            req.Name,
		Type:            domain.FileType(req.Type),
		ParentID:        parentID,
		IsPublic:        req.IsPublic,
		MalformedParent: !ok,
	}
	if req.Data != "" {
		data, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			in.MalformedData = true
		} else {
			in.Data = data
		}
	}
	created, err := s.app.CreateFile(r.Context(), user, in)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	f, err := s.app.GetFile(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil {
		page = 0
	}
	files, err := s.app.ListChildren(r.Context(), user, strings.TrimSpace(q.Get("parentId")), page)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if files == nil {
		files = []domain.File{}
	}
	writeJSON(w, http.StatusOK, files)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	s.setPublic(w, r, true)
}

func (s *Server) handleUnpublish(w http.ResponseWriter, r *http.Request) {
	s.setPublic(w, r, false)
}

func (s *Server) setPublic(w http.ResponseWriter, r *http.Request, value bool) {
	user, _ := userFromContext(r.Context())
	f, err := s.app.SetPublic(r.Context(), user, chi.URLParam(r, "id"), value)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleFileData(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	f, data, err := s.app.ReadContent(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType(f.Name, data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// contentType prefers the name's extension and sniffs the bytes otherwise.
func contentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return mimetype.Detect(data).String()
}
