package legacy

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rolo-app/rolo/internal/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func writeDoc(t *testing.T, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Session{},
		&domain.Contact{},
		&domain.Interaction{},
		&domain.InteractionContact{},
	); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

func TestLoadDefaultsMissingArrays(t *testing.T) {
	path := writeDoc(t, `{"users": []}`)
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Sessions == nil || doc.Contacts == nil || doc.Interactions == nil {
		t.Fatal("missing arrays must default to empty")
	}
}

func TestLoadMigratesSingularContactID(t *testing.T) {
	path := writeDoc(t, `{
		"interactions": [
			{"id": 1, "userId": 1, "contactId": 7},
			{"id": 2, "userId": 1, "contactIds": [3, 4]},
			{"id": 3, "userId": 1}
		]
	}`)
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	got := doc.Interactions
	if len(got[0].ContactIDs) != 1 || got[0].ContactIDs[0] != 7 {
		t.Fatalf("expected contactId lifted into contactIds, got %v", got[0].ContactIDs)
	}
	if got[0].ContactID != nil {
		t.Fatal("singular field must be cleared after normalization")
	}
	if len(got[1].ContactIDs) != 2 {
		t.Fatalf("existing contactIds must be untouched, got %v", got[1].ContactIDs)
	}
	if got[2].ContactIDs != nil && len(got[2].ContactIDs) != 0 {
		t.Fatalf("interaction without contacts stays empty, got %v", got[2].ContactIDs)
	}
}

func TestImportSkipsInvalidRows(t *testing.T) {
	db := newTestDB(t)
	doc := &Document{
		Users: []User{
			{ID: 1, Username: "alice", PasswordHash: "h", CreatedAt: "2024-01-01T00:00:00Z"},
			{ID: 0, Username: "broken", PasswordHash: "h"},
			{ID: 2, Username: "", PasswordHash: "h"},
		},
		Contacts: []Contact{
			{ID: 1, UserID: 1, Name: "Jane Doe", CreatedAt: "2024-01-02T00:00:00Z"},
			{ID: 2, UserID: 0, Name: "Orphan"},
		},
		Interactions: []Interaction{
			{ID: 1, UserID: 1, ContactIDs: []uint{1}, Notes: "coffee", CreatedAt: "2024-01-03T00:00:00Z", UpdatedAt: "2024-01-03T00:00:00Z"},
		},
	}
	doc.normalize()

	summary, err := NewImporter(db).Import(doc)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if summary.Users != 1 || summary.Contacts != 1 || summary.Interactions != 1 || summary.Associations != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Skipped != 3 {
		t.Fatalf("expected 3 skipped rows, got %d", summary.Skipped)
	}

	var contact domain.Contact
	if err := db.First(&contact, 1).Error; err != nil {
		t.Fatalf("load imported contact: %v", err)
	}
	if contact.FirstName != "Jane" || contact.LastName != "Doe" {
		t.Fatalf("expected split name, got %q %q", contact.FirstName, contact.LastName)
	}
}

func TestImportIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	doc := &Document{
		Users:    []User{{ID: 1, Username: "alice", PasswordHash: "h"}},
		Contacts: []Contact{{ID: 1, UserID: 1, Name: "Jane Doe"}},
		Interactions: []Interaction{
			{ID: 1, UserID: 1, ContactIDs: []uint{1}},
		},
	}
	doc.normalize()

	importer := NewImporter(db)
	if _, err := importer.Import(doc); err != nil {
		t.Fatalf("first import: %v", err)
	}
	if _, err := importer.Import(doc); err != nil {
		t.Fatalf("second import must not fail on existing rows: %v", err)
	}

	var users, contacts, joins int64
	db.Model(&domain.User{}).Count(&users)
	db.Model(&domain.Contact{}).Count(&contacts)
	db.Model(&domain.InteractionContact{}).Count(&joins)
	if users != 1 || contacts != 1 || joins != 1 {
		t.Fatalf("expected no duplicates, got users=%d contacts=%d joins=%d", users, contacts, joins)
	}
}

func TestParseTimeFallsBack(t *testing.T) {
	fallback := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	if got := ParseTime("not-a-time", fallback); !got.Equal(fallback) {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := ParseTime("2024-06-01T10:30:00Z", fallback); got.Equal(fallback) {
		t.Fatal("valid timestamp must parse")
	}
}
