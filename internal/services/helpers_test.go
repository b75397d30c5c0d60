package services

import (
	"testing"

	"gorm.io/gorm"

	"pilotos_api/internal/config"
	"pilotos_api/internal/storage"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.InitDB(config.Config{DBDialect: "sqlite", DBDSN: ":memory:"})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestDisk(t *testing.T) *storage.Disk {
	t.Helper()
	return storage.NewDisk(t.TempDir(), "/storage")
}

func ptr[T any](v T) *T { return &v }

func fieldsOf(t *testing.T, err error) map[string][]string {
	t.Helper()
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("error = %v (%T), want *ValidationError", err, err)
	}
	return verr.Fields
}
