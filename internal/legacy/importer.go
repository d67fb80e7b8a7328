package legacy

import (
	"fmt"
	"time"

	"github.com/rolo-app/rolo/internal/domain"
	"github.com/rolo-app/rolo/pkg/names"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Summary struct {
	Users        int
	Sessions     int
	Contacts     int
	Interactions int
	Associations int
	Skipped      int
}

type Importer struct{ db *gorm.DB }

func NewImporter(db *gorm.DB) *Importer { return &Importer{db: db} }

// Import loads a normalized legacy document into the relational store. Rows
// missing required fields are skipped, already-imported rows are left alone,
// and the id sequences are resynchronized to the largest migrated id so new
// inserts do not collide.
func (im *Importer) Import(doc *Document) (*Summary, error) {
	summary := &Summary{}
	now := time.Now()

	err := im.db.Transaction(func(tx *gorm.DB) error {
		var maxUserID, maxContactID, maxInteractionID uint

		for _, u := range doc.Users {
			if u.ID == 0 || u.Username == "" || u.PasswordHash == "" {
				summary.Skipped++
				continue
			}
			user := domain.User{
				ID:           u.ID,
				Username:     u.Username,
				PasswordHash: u.PasswordHash,
				CreatedAt:    ParseTime(u.CreatedAt, now),
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
				return fmt.Errorf("import user %d: %w", u.ID, err)
			}
			summary.Users++
			if u.ID > maxUserID {
				maxUserID = u.ID
			}
		}

		for _, s := range doc.Sessions {
			if s.Token == "" || s.UserID == 0 || s.ExpiresAt == "" {
				summary.Skipped++
				continue
			}
			session := domain.Session{
				Token:     s.Token,
				UserID:    s.UserID,
				ExpiresAt: ParseTime(s.ExpiresAt, now),
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&session).Error; err != nil {
				return fmt.Errorf("import session: %w", err)
			}
			summary.Sessions++
		}

		for _, c := range doc.Contacts {
			if c.ID == 0 || c.UserID == 0 {
				summary.Skipped++
				continue
			}
			firstName, lastName := names.Split(c.Name)
			contact := domain.Contact{
				ID:        c.ID,
				UserID:    c.UserID,
				FirstName: firstName,
				LastName:  lastName,
				CreatedAt: ParseTime(c.CreatedAt, now),
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&contact).Error; err != nil {
				return fmt.Errorf("import contact %d: %w", c.ID, err)
			}
			summary.Contacts++
			if c.ID > maxContactID {
				maxContactID = c.ID
			}
		}

		for _, in := range doc.Interactions {
			if in.ID == 0 || in.UserID == 0 {
				summary.Skipped++
				continue
			}
			interaction := domain.Interaction{
				ID:        in.ID,
				UserID:    in.UserID,
				Rating:    in.Rating,
				Notes:     in.Notes,
				CreatedAt: ParseTime(in.CreatedAt, now),
				UpdatedAt: ParseTime(in.UpdatedAt, now),
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&interaction).Error; err != nil {
				return fmt.Errorf("import interaction %d: %w", in.ID, err)
			}
			summary.Interactions++
			if in.ID > maxInteractionID {
				maxInteractionID = in.ID
			}
			for _, contactID := range in.ContactIDs {
				if contactID == 0 {
					continue
				}
				join := domain.InteractionContact{InteractionID: in.ID, ContactID: contactID}
				if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&join).Error; err != nil {
					return fmt.Errorf("import association %d->%d: %w", in.ID, contactID, err)
				}
				summary.Associations++
			}
		}

		return im.resyncSequences(tx, maxUserID, maxContactID, maxInteractionID)
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// resyncSequences only applies to postgres; sqlite derives the next rowid
// from the table contents.
func (im *Importer) resyncSequences(tx *gorm.DB, maxUserID, maxContactID, maxInteractionID uint) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	seqs := []struct {
		name string
		max  uint
	}{
		{"users_id_seq", maxUserID},
		{"contacts_id_seq", maxContactID},
		{"interactions_id_seq", maxInteractionID},
	}
	for _, s := range seqs {
		if s.max == 0 {
			continue
		}
		if err := tx.Exec("SELECT setval(?, ?, true)", s.name, s.max).Error; err != nil {
			return fmt.Errorf("resync %s: %w", s.name, err)
		}
	}
	return nil
}
