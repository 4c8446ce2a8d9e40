package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consultorio-api/internal/audit"
	"github.com/BruksfildServices01/consultorio-api/internal/export"
	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
	"github.com/BruksfildServices01/consultorio-api/internal/middleware"
)

// AdminHandler serves database snapshots and off-site backups.
type AdminHandler struct {
	db     *gorm.DB
	backup *export.Backup
	audit  *audit.Dispatcher
}

// NewAdminHandler accepts a nil backup when no bucket is configured.
func NewAdminHandler(db *gorm.DB, backup *export.Backup, audit *audit.Dispatcher) *AdminHandler {
	return &AdminHandler{db: db, backup: backup, audit: audit}
}

func (h *AdminHandler) DownloadDB(c *gin.Context) {
	dir, err := os.MkdirTemp("", "consultorio-download-*")
	if err != nil {
		httperr.Internal(c, "snapshot_failed", "No se pudo generar la copia")
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "consultorio.db")
	if err := export.Snapshot(c.Request.Context(), h.db, path); err != nil {
		if errors.Is(err, export.ErrSnapshotUnsupported) {
			httperr.BadRequest(c, "snapshot_unsupported", "La descarga solo está disponible con SQLite")
			return
		}
		httperr.Internal(c, "snapshot_failed", "No se pudo generar la copia")
		return
	}

	h.audit.Dispatch(auditEvent(middleware.MustPrincipal(c), "database_downloaded", "database", nil, nil))

	name := fmt.Sprintf("consultorio-%s.db", time.Now().Format("20060102-150405"))
	c.FileAttachment(path, name)
}

func (h *AdminHandler) Backup(c *gin.Context) {
	if h.backup == nil {
		httperr.BadRequest(c, "backup_not_configured", "No hay un destino de respaldo configurado")
		return
	}

	key, err := h.backup.Run(c.Request.Context())
	if err != nil {
		if errors.Is(err, export.ErrSnapshotUnsupported) {
			httperr.BadRequest(c, "snapshot_unsupported", "El respaldo solo está disponible con SQLite")
			return
		}
		httperr.Internal(c, "backup_failed", "No se pudo completar el respaldo")
		return
	}

	h.audit.Dispatch(auditEvent(middleware.MustPrincipal(c), "database_backup", "database", nil, gin.H{"clave": key}))
	c.JSON(http.StatusOK, gin.H{"mensaje": "Respaldo completado", "clave": key})
}
