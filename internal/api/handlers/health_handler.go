package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"path/filepath"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
)

// HealthHandler reports database reachability and upload-volume usage.
type HealthHandler struct {
	db        *sql.DB
	uploadDir string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sql.DB, uploadDir string) *HealthHandler {
	return &HealthHandler{db: db, uploadDir: uploadDir}
}

type componentHealth struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

type storageDetails struct {
	TotalBytes  uint64  `json:"totalBytes"`
	UsedBytes   uint64  `json:"usedBytes"`
	UsedPercent float64 `json:"usedPercent"`
}

// Health answers GET /healthz.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	components := map[string]componentHealth{}
	status := "healthy"
	code := http.StatusOK

	if err := h.db.Ping(); err != nil {
		components["database"] = componentHealth{Status: "down", Message: err.Error()}
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	} else {
		components["database"] = componentHealth{Status: "up"}
	}

	if abs, err := filepath.Abs(h.uploadDir); err == nil {
		if usage, err := disk.Usage(abs); err == nil {
			components["storage"] = componentHealth{
				Status: "up",
				Details: storageDetails{
					TotalBytes:  usage.Total,
					UsedBytes:   usage.Used,
					UsedPercent: usage.UsedPercent,
				},
			}
		} else {
			components["storage"] = componentHealth{Status: "down", Message: err.Error()}
			status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     status,
		"timestamp":  time.Now().UTC(),
		"components": components,
	})
}
