package service

import (
	"errors"
	"time"

	"github.com/rolo-app/rolo/internal/domain"
	"github.com/rolo-app/rolo/internal/repository"
)

// InteractionView is an interaction with its resolved association set.
type InteractionView struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"user_id"`
	ContactIDs   []uint    `json:"contact_ids"`
	ContactNames []string  `json:"contact_names"`
	Rating       *int      `json:"rating"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UpdateInteractionInput distinguishes absent fields from explicit values:
// RatingSet marks whether a rating (possibly null) was supplied, and a
// non-nil ContactNames (even empty) fully replaces the association set.
type UpdateInteractionInput struct {
	Rating          *int
	RatingSet       bool
	Notes           *string
	ContactNames    []string
	ReplaceContacts bool
}

type InteractionStats struct {
	PositiveToday     int `json:"positive_today"`
	PositiveThisWeek  int `json:"positive_this_week"`
	PositiveThisMonth int `json:"positive_this_month"`
}

type InteractionService struct {
	interactionRepo repository.InteractionRepository
	contactRepo     repository.ContactRepository
	contacts        *ContactService
	now             func() time.Time
}

func NewInteractionService(interactionRepo repository.InteractionRepository, contactRepo repository.ContactRepository, contacts *ContactService) *InteractionService {
	return &InteractionService{
		interactionRepo: interactionRepo,
		contactRepo:     contactRepo,
		contacts:        contacts,
		now:             time.Now,
	}
}

// Create logs an interaction associated with the given contacts. Contact ids
// that do not belong to the caller are reported as not found, never attached.
func (s *InteractionService) Create(userID uint, contactIDs []uint, rating *int, notes string) (*InteractionView, error) {
	for _, contactID := range contactIDs {
		if _, err := s.contactRepo.FindByIDForUser(userID, contactID); err != nil {
			if errors.Is(err, repository.ErrContactNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}

	interaction := &domain.Interaction{UserID: userID, Rating: rating, Notes: notes}
	if err := s.interactionRepo.Create(interaction, contactIDs); err != nil {
		return nil, err
	}
	return s.view(userID, interaction)
}

// Update applies the supplied fields and bumps UpdatedAt. When
// ReplaceContacts is set the association set is fully replaced: each name is
// resolved via find-or-create and the prior joins are discarded, even when
// the new list is empty.
func (s *InteractionService) Update(userID, id uint, input UpdateInteractionInput) (*InteractionView, error) {
	interaction, err := s.interactionRepo.FindByIDForUser(userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrInteractionNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if input.RatingSet {
		interaction.Rating = input.Rating
	}
	if input.Notes != nil {
		interaction.Notes = *input.Notes
	}
	interaction.UpdatedAt = s.now()

	if !input.ReplaceContacts {
		if err := s.interactionRepo.Update(interaction); err != nil {
			return nil, err
		}
		return s.view(userID, interaction)
	}

	contactIDs := make([]uint, 0, len(input.ContactNames))
	for _, name := range input.ContactNames {
		contact, err := s.contacts.FindOrCreate(userID, name)
		if err != nil {
			return nil, err
		}
		contactIDs = append(contactIDs, contact.ID)
	}
	if err := s.interactionRepo.UpdateReplacingContacts(interaction, contactIDs); err != nil {
		return nil, err
	}
	return s.view(userID, interaction)
}

func (s *InteractionService) Delete(userID, id uint) error {
	removed, err := s.interactionRepo.DeleteForUser(userID, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

func (s *InteractionService) ListAll(userID uint) ([]InteractionView, error) {
	interactions, err := s.interactionRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	return s.assembleViews(userID, interactions)
}

// ListForContact returns the contact's interactions newest first. The
// contact must belong to the caller.
func (s *InteractionService) ListForContact(userID, contactID uint) ([]InteractionView, error) {
	if _, err := s.contactRepo.FindByIDForUser(userID, contactID); err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	interactions, err := s.interactionRepo.ListForContact(userID, contactID)
	if err != nil {
		return nil, err
	}
	return s.assembleViews(userID, interactions)
}

// Stats counts positive interactions created today, this week (weeks start
// Sunday) and this calendar month. An interaction is positive when its
// rating is unset, zero, or at least 3; the unset-is-positive rule is kept
// for backward-compatible statistics.
func (s *InteractionService) Stats(userID uint) (InteractionStats, error) {
	interactions, err := s.interactionRepo.ListByUser(userID)
	if err != nil {
		return InteractionStats{}, err
	}

	now := s.now()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfWeek := startOfToday.AddDate(0, 0, -int(startOfToday.Weekday()))
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var stats InteractionStats
	for _, i := range interactions {
		if !isPositive(i.Rating) {
			continue
		}
		if !i.CreatedAt.Before(startOfToday) {
			stats.PositiveToday++
		}
		if !i.CreatedAt.Before(startOfWeek) {
			stats.PositiveThisWeek++
		}
		if !i.CreatedAt.Before(startOfMonth) {
			stats.PositiveThisMonth++
		}
	}
	return stats, nil
}

func isPositive(rating *int) bool {
	return rating == nil || *rating == 0 || *rating >= 3
}

func (s *InteractionService) view(userID uint, interaction *domain.Interaction) (*InteractionView, error) {
	contactIDs, err := s.interactionRepo.ContactIDs(interaction.ID)
	if err != nil {
		return nil, err
	}
	nameByID, err := s.contactNameIndex(userID)
	if err != nil {
		return nil, err
	}
	v := newView(*interaction, contactIDs, nameByID)
	return &v, nil
}

func (s *InteractionService) assembleViews(userID uint, interactions []domain.Interaction) ([]InteractionView, error) {
	joins, err := s.interactionRepo.JoinsForUser(userID)
	if err != nil {
		return nil, err
	}
	idsByInteraction := make(map[uint][]uint, len(interactions))
	for _, j := range joins {
		idsByInteraction[j.InteractionID] = append(idsByInteraction[j.InteractionID], j.ContactID)
	}
	nameByID, err := s.contactNameIndex(userID)
	if err != nil {
		return nil, err
	}

	views := make([]InteractionView, 0, len(interactions))
	for _, i := range interactions {
		views = append(views, newView(i, idsByInteraction[i.ID], nameByID))
	}
	return views, nil
}

func (s *InteractionService) contactNameIndex(userID uint) (map[uint]string, error) {
	contacts, err := s.contactRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	nameByID := make(map[uint]string, len(contacts))
	for _, c := range contacts {
		nameByID[c.ID] = c.Name()
	}
	return nameByID, nil
}

func newView(i domain.Interaction, contactIDs []uint, nameByID map[uint]string) InteractionView {
	if contactIDs == nil {
		contactIDs = []uint{}
	}
	contactNames := make([]string, 0, len(contactIDs))
	for _, id := range contactIDs {
		name, ok := nameByID[id]
		if !ok {
			name = "Unknown"
		}
		contactNames = append(contactNames, name)
	}
	return InteractionView{
		ID:           i.ID,
		UserID:       i.UserID,
		ContactIDs:   contactIDs,
		ContactNames: contactNames,
		Rating:       i.Rating,
		Notes:        i.Notes,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}
