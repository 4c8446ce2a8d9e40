package export

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/consultorio-api/internal/db"
)

var ErrSnapshotUnsupported = errors.New("snapshot requires the sqlite driver")

// Snapshot writes a consistent copy of the live SQLite database to dest,
// which must not exist yet.
func Snapshot(ctx context.Context, gdb *gorm.DB, dest string) error {
	if !db.IsSQLite(gdb) {
		return ErrSnapshotUnsupported
	}
	if err := gdb.WithContext(ctx).Exec("VACUUM INTO ?", dest).Error; err != nil {
		return fmt.Errorf("vacuum into %s: %w", dest, err)
	}
	return nil
}
