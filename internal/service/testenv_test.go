package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/rolo-app/rolo/internal/domain"
	"github.com/rolo-app/rolo/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db           *gorm.DB
	auth         *AuthService
	contacts     *ContactService
	interactions *InteractionService
	exports      *ExportService
}

func newTestEnv(t *testing.T) *testEnv {
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

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	contactRepo := repository.NewContactRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)

	contacts := NewContactService(contactRepo)
	interactions := NewInteractionService(interactionRepo, contactRepo, contacts)
	return &testEnv{
		db:           db,
		auth:         NewAuthService(userRepo, sessionRepo, 30*24*time.Hour),
		contacts:     contacts,
		interactions: interactions,
		exports:      NewExportService(contacts, interactions),
	}
}

func (e *testEnv) registerUser(t *testing.T, username string) *domain.User {
	t.Helper()
	user, err := e.auth.Register(username, "correct horse")
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
