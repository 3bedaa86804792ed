package services

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fileshare/internal/models"
)

// FileServiceProvider defines the interface for upload and download
// handling plus the append-only file index.
type FileServiceProvider interface {
	SaveUpload(ownerID int64, filename string, src io.Reader) (models.FileRecord, error)
	ListForUser(ownerID int64) ([]models.FileRecord, error)
	Open(ownerID int64, filename string) (*os.File, models.FileRecord, error)
	Filenames() (map[string]struct{}, error)
	UploadDir() string
}

// FileService stores uploaded bytes in a flat directory and records every
// upload in the file index. Filenames are not namespaced per user, so two
// users uploading the same name share (and overwrite) one file on disk.
type FileService struct {
	db        *sql.DB
	uploadDir string
}

// NewFileService creates a new FileService writing under uploadDir.
func NewFileService(db *sql.DB, uploadDir string) *FileService {
	return &FileService{db: db, uploadDir: uploadDir}
}

// UploadDir returns the directory uploads are written to.
func (s *FileService) UploadDir() string {
	return s.uploadDir
}

// SanitizeFilename reduces a client-supplied filename to a bare name that
// cannot escape the upload directory. Directory components and traversal
// sequences are stripped; names that reduce to nothing are rejected.
func SanitizeFilename(name string) (string, error) {
	// Windows clients send backslash separators.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." || name == ".." || name == "" {
		return "", ErrBadFilename
	}
	return name, nil
}

// SaveUpload writes the upload to disk under a sanitized name, then
// appends an index row for the owner. The write is not atomic against a
// concurrent same-name upload; last writer wins.
func (s *FileService) SaveUpload(ownerID int64, filename string, src io.Reader) (models.FileRecord, error) {
	name, err := SanitizeFilename(filename)
	if err != nil {
		return models.FileRecord{}, err
	}

	path := filepath.Join(s.uploadDir, name)
	dst, err := os.Create(path)
	if err != nil {
		return models.FileRecord{}, fmt.Errorf("failed to create upload file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return models.FileRecord{}, fmt.Errorf("failed to write upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return models.FileRecord{}, fmt.Errorf("failed to write upload: %w", err)
	}

	record := models.FileRecord{
		Filename:   name,
		UserID:     ownerID,
		UploadedAt: time.Now().UTC(),
	}

	res, err := s.db.Exec("INSERT INTO files(filename, user_id, uploaded_at) VALUES(?, ?, ?)",
		record.Filename, record.UserID, record.UploadedAt)
	if err != nil {
		// Bytes are on disk but unindexed; the sweeper reclaims orphans.
		return models.FileRecord{}, fmt.Errorf("failed to index upload: %w", err)
	}
	if record.ID, err = res.LastInsertId(); err != nil {
		return models.FileRecord{}, err
	}
	return record, nil
}

// ListForUser returns every file the user has uploaded, in upload order.
func (s *FileService) ListForUser(ownerID int64) ([]models.FileRecord, error) {
	rows, err := s.db.Query(
		"SELECT id, filename, user_id, uploaded_at FROM files WHERE user_id = ? ORDER BY id", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.FileRecord
	for rows.Next() {
		var r models.FileRecord
		if err := rows.Scan(&r.ID, &r.Filename, &r.UserID, &r.UploadedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Open resolves filename through the index scoped to ownerID and opens
// the stored bytes. A file the caller never uploaded is a miss even if
// the name exists on disk.
func (s *FileService) Open(ownerID int64, filename string) (*os.File, models.FileRecord, error) {
	name, err := SanitizeFilename(filename)
	if err != nil {
		return nil, models.FileRecord{}, ErrFileNotFound
	}

	var record models.FileRecord
	row := s.db.QueryRow(
		"SELECT id, filename, user_id, uploaded_at FROM files WHERE user_id = ? AND filename = ? ORDER BY id DESC LIMIT 1",
		ownerID, name)
	if err := row.Scan(&record.ID, &record.Filename, &record.UserID, &record.UploadedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, models.FileRecord{}, ErrFileNotFound
		}
		return nil, models.FileRecord{}, err
	}

	f, err := os.Open(filepath.Join(s.uploadDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.FileRecord{}, ErrFileNotFound
		}
		return nil, models.FileRecord{}, err
	}
	return f, record, nil
}

// Filenames returns the set of every filename the index knows about,
// across all users. Used by the orphan sweeper.
func (s *FileService) Filenames() (map[string]struct{}, error) {
	rows, err := s.db.Query("SELECT DISTINCT filename FROM files")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names[name] = struct{}{}
	}
	return names, rows.Err()
}
