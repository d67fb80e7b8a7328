package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rolo-app/rolo/internal/domain"
	"github.com/rolo-app/rolo/internal/observability"

	"gorm.io/gorm"
)

var ErrContactNotFound = errors.New("contact not found")

// ContactWithLastInteraction is a contact row annotated with the creation
// time of its most recent interaction, nil if it has none.
type ContactWithLastInteraction struct {
	ID                uint       `json:"id"`
	UserID            uint       `json:"user_id"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Location          string     `json:"location"`
	Notes             string     `json:"notes"`
	CreatedAt         time.Time  `json:"created_at"`
	LastInteractionAt *time.Time `json:"last_interaction_at"`
}

type ContactRepository interface {
	Create(c *domain.Contact) error
	Update(c *domain.Contact) error
	FindByIDForUser(userID, id uint) (*domain.Contact, error)
	FindByNameForUser(userID uint, firstName, lastName string) (*domain.Contact, error)
	SearchByName(userID uint, query string, limit int) ([]domain.Contact, error)
	ListByUser(userID uint) ([]domain.Contact, error)
	ListWithLastInteraction(userID uint) ([]ContactWithLastInteraction, error)
}

type GormContactRepository struct{ db *gorm.DB }

func NewContactRepository(db *gorm.DB) ContactRepository { return &GormContactRepository{db: db} }

func (r *GormContactRepository) Create(c *domain.Contact) error {
	err := r.db.Create(c).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "contact", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "contact", "create", "success")
	return nil
}

func (r *GormContactRepository) Update(c *domain.Contact) error {
	err := r.db.Save(c).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "contact", "update", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "contact", "update", "success")
	return nil
}

func (r *GormContactRepository) FindByIDForUser(userID, id uint) (*domain.Contact, error) {
	var c domain.Contact
	err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "contact", "find_by_id_for_user", "not_found")
			return nil, ErrContactNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "contact", "find_by_id_for_user", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "contact", "find_by_id_for_user", "success")
	return &c, nil
}

// FindByNameForUser is an exact case-insensitive match on both name parts,
// the lookup half of find-or-create.
func (r *GormContactRepository) FindByNameForUser(userID uint, firstName, lastName string) (*domain.Contact, error) {
	var c domain.Contact
	err := r.db.
		Where("user_id = ? AND LOWER(first_name) = LOWER(?) AND LOWER(last_name) = LOWER(?)", userID, firstName, lastName).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "contact", "find_by_name_for_user", "not_found")
			return nil, ErrContactNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "contact", "find_by_name_for_user", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "contact", "find_by_name_for_user", "success")
	return &c, nil
}

func (r *GormContactRepository) SearchByName(userID uint, query string, limit int) ([]domain.Contact, error) {
	var contacts []domain.Contact
	pattern := "%" + query + "%"
	err := r.db.
		Where("user_id = ? AND (LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?))", userID, pattern, pattern).
		Limit(limit).
		Find(&contacts).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "contact", "search_by_name", "error")
		return contacts, err
	}
	observability.RecordRepositoryOperation(context.Background(), "contact", "search_by_name", "success")
	return contacts, nil
}

func (r *GormContactRepository) ListByUser(userID uint) ([]domain.Contact, error) {
	var contacts []domain.Contact
	err := r.db.Where("user_id = ?", userID).Order("id").Find(&contacts).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "contact", "list_by_user", "error")
		return contacts, err
	}
	observability.RecordRepositoryOperation(context.Background(), "contact", "list_by_user", "success")
	return contacts, nil
}

// ListWithLastInteraction joins through the junction table once instead of
// issuing a query per contact.
func (r *GormContactRepository) ListWithLastInteraction(userID uint) ([]ContactWithLastInteraction, error) {
	var rows []ContactWithLastInteraction
	err := r.db.Model(&domain.Contact{}).
		Select("contacts.id, contacts.user_id, contacts.first_name, contacts.last_name, contacts.location, contacts.notes, contacts.created_at, MAX(interactions.created_at) AS last_interaction_at").
		Joins("LEFT JOIN interaction_contacts ON interaction_contacts.contact_id = contacts.id").
		Joins("LEFT JOIN interactions ON interactions.id = interaction_contacts.interaction_id").
		Where("contacts.user_id = ?", userID).
		Group("contacts.id").
		Order("contacts.id").
		Scan(&rows).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "contact", "list_with_last_interaction", "error")
		return rows, err
	}
	observability.RecordRepositoryOperation(context.Background(), "contact", "list_with_last_interaction", "success")
	return rows, nil
}
