package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/rolo-app/rolo/internal/domain"
)

func TestSessionLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	user := seedUser(t, db, "alice")

	session := &domain.Session{Token: "tok-1", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}
	if err := repo.Create(session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	found, err := repo.FindByToken("tok-1")
	if err != nil {
		t.Fatalf("find by token: %v", err)
	}
	if found.UserID != user.ID {
		t.Fatalf("expected user id %d, got %d", user.ID, found.UserID)
	}

	if err := repo.DeleteByToken("tok-1"); err != nil {
		t.Fatalf("delete by token: %v", err)
	}
	if _, err := repo.FindByToken("tok-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
	// deleting again is a no-op
	if err := repo.DeleteByToken("tok-1"); err != nil {
		t.Fatalf("expected idempotent delete, got %v", err)
	}
}

func TestSessionDeleteExpired(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	user := seedUser(t, db, "alice")

	live := &domain.Session{Token: "live", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}
	dead := &domain.Session{Token: "dead", UserID: user.ID, ExpiresAt: time.Now().Add(-time.Hour)}
	for _, s := range []*domain.Session{live, dead} {
		if err := repo.Create(s); err != nil {
			t.Fatalf("create session: %v", err)
		}
	}

	removed, err := repo.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 expired session removed, got %d", removed)
	}
	if _, err := repo.FindByToken("live"); err != nil {
		t.Fatalf("live session must survive the sweep: %v", err)
	}
}
