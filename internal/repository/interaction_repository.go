package repository

import (
	"context"
	"errors"

	"github.com/rolo-app/rolo/internal/domain"
	"github.com/rolo-app/rolo/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInteractionNotFound = errors.New("interaction not found")

type InteractionRepository interface {
	Create(i *domain.Interaction, contactIDs []uint) error
	Update(i *domain.Interaction) error
	UpdateReplacingContacts(i *domain.Interaction, contactIDs []uint) error
	FindByIDForUser(userID, id uint) (*domain.Interaction, error)
	DeleteForUser(userID, id uint) (bool, error)
	ListByUser(userID uint) ([]domain.Interaction, error)
	ListForContact(userID, contactID uint) ([]domain.Interaction, error)
	ContactIDs(interactionID uint) ([]uint, error)
	JoinsForUser(userID uint) ([]domain.InteractionContact, error)
}

type GormInteractionRepository struct{ db *gorm.DB }

func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &GormInteractionRepository{db: db}
}

// Create inserts the interaction row and one junction row per contact inside
// a single transaction.
func (r *GormInteractionRepository) Create(i *domain.Interaction, contactIDs []uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(i).Error; err != nil {
			return err
		}
		return insertJoins(tx, i.ID, contactIDs)
	})
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "interaction", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "interaction", "create", "success")
	return nil
}

func (r *GormInteractionRepository) Update(i *domain.Interaction) error {
	err := r.db.Save(i).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "interaction", "update", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "interaction", "update", "success")
	return nil
}

// UpdateReplacingContacts saves the interaction and fully replaces its
// association set, all inside one transaction so a failure cannot leave the
// interaction half-updated.
func (r *GormInteractionRepository) UpdateReplacingContacts(i *domain.Interaction, contactIDs []uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(i).Error; err != nil {
			return err
		}
		if err := tx.Where("interaction_id = ?", i.ID).Delete(&domain.InteractionContact{}).Error; err != nil {
			return err
		}
		return insertJoins(tx, i.ID, contactIDs)
	})
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "interaction", "update_replacing_contacts", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "interaction", "update_replacing_contacts", "success")
	return nil
}

func (r *GormInteractionRepository) FindByIDForUser(userID, id uint) (*domain.Interaction, error) {
	var i domain.Interaction
	err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&i).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "interaction", "find_by_id_for_user", "not_found")
			return nil, ErrInteractionNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "interaction", "find_by_id_for_user", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "interaction", "find_by_id_for_user", "success")
	return &i, nil
}

// DeleteForUser removes the interaction and its junction rows when owned by
// the caller. Returns whether a row was removed; the junction rows are
// deleted explicitly rather than trusting the driver to honor FK cascades.
func (r *GormInteractionRepository) DeleteForUser(userID, id uint) (bool, error) {
	var removed bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND id = ?", userID, id).Delete(&domain.Interaction{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected > 0
		if !removed {
			return nil
		}
		return tx.Where("interaction_id = ?", id).Delete(&domain.InteractionContact{}).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "interaction", "delete_for_user", "error")
		return false, err
	}
	if !removed {
		observability.RecordRepositoryOperation(context.Background(), "interaction", "delete_for_user", "not_found")
		return false, nil
	}
	observability.RecordRepositoryOperation(context.Background(), "interaction", "delete_for_user", "success")
	return true, nil
}

func (r *GormInteractionRepository) ListByUser(userID uint) ([]domain.Interaction, error) {
	var interactions []domain.Interaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&interactions).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "interaction", "list_by_user", "error")
		return interactions, err
	}
	observability.RecordRepositoryOperation(context.Background(), "interaction", "list_by_user", "success")
	return interactions, nil
}

func (r *GormInteractionRepository) ListForContact(userID, contactID uint) ([]domain.Interaction, error) {
	var interactions []domain.Interaction
	err := r.db.Model(&domain.Interaction{}).
		Joins("JOIN interaction_contacts ON interaction_contacts.interaction_id = interactions.id").
		Where("interaction_contacts.contact_id = ? AND interactions.user_id = ?", contactID, userID).
		Order("interactions.created_at DESC").
		Order("interactions.id DESC").
		Find(&interactions).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "interaction", "list_for_contact", "error")
		return interactions, err
	}
	observability.RecordRepositoryOperation(context.Background(), "interaction", "list_for_contact", "success")
	return interactions, nil
}

func (r *GormInteractionRepository) ContactIDs(interactionID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&domain.InteractionContact{}).
		Where("interaction_id = ?", interactionID).
		Order("contact_id").
		Pluck("contact_id", &ids).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "interaction", "contact_ids", "error")
		return ids, err
	}
	observability.RecordRepositoryOperation(context.Background(), "interaction", "contact_ids", "success")
	return ids, nil
}

// JoinsForUser returns every junction row belonging to the user's
// interactions, used to assemble contact id sets in one query when listing.
func (r *GormInteractionRepository) JoinsForUser(userID uint) ([]domain.InteractionContact, error) {
	var joins []domain.InteractionContact
	err := r.db.Model(&domain.InteractionContact{}).
		Joins("JOIN interactions ON interactions.id = interaction_contacts.interaction_id").
		Where("interactions.user_id = ?", userID).
		Order("interaction_contacts.contact_id").
		Find(&joins).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "interaction", "joins_for_user", "error")
		return joins, err
	}
	observability.RecordRepositoryOperation(context.Background(), "interaction", "joins_for_user", "success")
	return joins, nil
}

func insertJoins(tx *gorm.DB, interactionID uint, contactIDs []uint) error {
	if len(contactIDs) == 0 {
		return nil
	}
	joins := make([]domain.InteractionContact, 0, len(contactIDs))
	seen := make(map[uint]bool, len(contactIDs))
	for _, contactID := range contactIDs {
		if seen[contactID] {
			continue
		}
		seen[contactID] = true
		joins = append(joins, domain.InteractionContact{InteractionID: interactionID, ContactID: contactID})
	}
	return tx.Omit(clause.Associations).Create(&joins).Error
}
