// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/consultorio-api/internal/db"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
)

// Open returns a migrated database in a temp file owned by t.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "consultorio.db")
	gdb, err := gorm.Open(sqlite.Open(db.SQLiteDSN(path, 5*time.Second)), &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

// SeedUser inserts an active user with password "secret".
func SeedUser(t testing.TB, gdb *gorm.DB, username, role string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &models.User{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         role,
		FullName:     username,
		Active:       true,
	}
	if err := gdb.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

// SeedPatient inserts a complete patient record.
func SeedPatient(t testing.TB, gdb *gorm.DB, dni string) *models.Patient {
	t.Helper()

	p := &models.Patient{
		DNI:           dni,
		FirstName:     "Ana",
		LastName:      "Pérez",
		BirthDate:     "1990-01-15",
		Insurer:       "OSDE",
		InsurerNumber: "123",
		Phone:         "1155550000",
	}
	if err := gdb.Create(p).Error; err != nil {
		t.Fatalf("seed patient %s: %v", dni, err)
	}
	return p
}

// SeedSlots inserts template times for a doctor on one weekday.
func SeedSlots(t testing.TB, gdb *gorm.DB, doctorID uint, weekday string, times ...string) {
	t.Helper()

	for _, hm := range times {
		slot := models.AgendaSlot{DoctorID: doctorID, Weekday: weekday, Time: hm}
		if err := gdb.Create(&slot).Error; err != nil {
			t.Fatalf("seed slot %s %s: %v", weekday, hm, err)
		}
	}
}
