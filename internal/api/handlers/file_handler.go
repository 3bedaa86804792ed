package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"fileshare/internal/auth"
	"fileshare/internal/models"
	"fileshare/internal/services"
)

// Uploads larger than this are rejected before hitting disk.
const maxUploadBytes = 64 << 20

// FileHandler handles the dashboard listing, uploads and downloads.
type FileHandler struct {
	users services.UserServiceProvider
	files services.FileServiceProvider
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(users services.UserServiceProvider, files services.FileServiceProvider) *FileHandler {
	return &FileHandler{users: users, files: files}
}

func (h *FileHandler) currentUser(r *http.Request) (models.User, error) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return models.User{}, errors.New("no claims in context")
	}
	return h.users.GetByUsername(claims.Username)
}

// Dashboard lists the authenticated user's files.
func (h *FileHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		log.Error().Err(err).Msg("Could not resolve user from session")
		http.Redirect(w, r, "/login?reason=session_invalid", http.StatusFound)
		return
	}

	records, err := h.files.ListForUser(user.ID)
	if err != nil {
		log.Error().Err(err).Str("username", user.Username).Msg("Failed to list files")
		http.Error(w, "Failed to list files", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []models.FileRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"username": user.Username,
		"files":    records,
	})
}

// Upload accepts a multipart form upload for the authenticated user and
// redirects back to the dashboard.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		log.Error().Err(err).Msg("Could not resolve user from session")
		http.Redirect(w, r, "/login?reason=session_invalid", http.StatusFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	record, err := h.files.SaveUpload(user.ID, header.Filename, file)
	if err != nil {
		if errors.Is(err, services.ErrBadFilename) {
			http.Redirect(w, r, "/dashboard?reason=invalid_filename", http.StatusFound)
			return
		}
		log.Error().Err(err).Str("username", user.Username).Str("filename", header.Filename).Msg("Failed to store upload")
		http.Error(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}

	log.Info().Str("username", user.Username).Str("filename", record.Filename).Msg("Stored upload")
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Download streams a stored file back to its owner. Files the caller did
// not upload are a miss even when the name exists on disk.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		log.Error().Err(err).Msg("Could not resolve user from session")
		http.Redirect(w, r, "/login?reason=session_invalid", http.StatusFound)
		return
	}

	filename := chi.URLParam(r, "filename")
	f, record, err := h.files.Open(user.ID, filename)
	if err != nil {
		if errors.Is(err, services.ErrFileNotFound) {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("username", user.Username).Str("filename", filename).Msg("Failed to open file")
		http.Error(w, "Failed to open file", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, record.Filename))
	if info, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	}
	io.Copy(w, f)
}
