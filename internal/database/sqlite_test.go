package database

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/kicadcollab/snapview/internal/identity"
)

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := OpenSQLite("", zap.NewNop()); err == nil {
		t.Fatalf("expected error for empty database path")
	}
}

func TestOpenSQLiteMigratesPreferenceSchema(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "viewer.db")

	db, err := OpenSQLite(databasePath, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	preference := identity.Preference{Key: "author.name", Value: "alice"}
	if err := db.Create(&preference).Error; err != nil {
		t.Fatalf("failed to insert preference: %v", err)
	}

	var stored identity.Preference
	if err := db.Where("pref_key = ?", "author.name").Take(&stored).Error; err != nil {
		t.Fatalf("failed to read preference back: %v", err)
	}
	if stored.Value != "alice" {
		t.Fatalf("unexpected stored value %q", stored.Value)
	}
}
