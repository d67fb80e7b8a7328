package service

import (
	"errors"
	"strings"

	"github.com/rolo-app/rolo/internal/domain"
	"github.com/rolo-app/rolo/internal/repository"
	"github.com/rolo-app/rolo/pkg/names"
)

const searchResultLimit = 10

type CreateContactInput struct {
	FirstName string
	LastName  string
	Location  string
	Notes     string
}

// UpdateContactInput applies only the fields that are non-nil.
type UpdateContactInput struct {
	FirstName *string
	LastName  *string
	Location  *string
	Notes     *string
}

type ContactService struct {
	contactRepo repository.ContactRepository
}

func NewContactService(contactRepo repository.ContactRepository) *ContactService {
	return &ContactService{contactRepo: contactRepo}
}

func (s *ContactService) Create(userID uint, input CreateContactInput) (*domain.Contact, error) {
	if strings.TrimSpace(input.FirstName) == "" {
		return nil, &ValidationError{Field: "first_name", Message: "first name is required"}
	}
	contact := &domain.Contact{
		UserID:    userID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Location:  input.Location,
		Notes:     input.Notes,
	}
	if err := s.contactRepo.Create(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) Search(userID uint, query string) ([]domain.Contact, error) {
	return s.contactRepo.SearchByName(userID, query, searchResultLimit)
}

// FindOrCreate resolves a free-text name to a contact, creating one when no
// case-insensitive exact match on both name parts exists for the user.
func (s *ContactService) FindOrCreate(userID uint, fullName string) (*domain.Contact, error) {
	firstName, lastName := names.Split(fullName)
	if firstName == "" {
		return nil, &ValidationError{Field: "name", Message: "contact name is required"}
	}

	existing, err := s.contactRepo.FindByNameForUser(userID, firstName, lastName)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrContactNotFound) {
		return nil, err
	}

	contact := &domain.Contact{UserID: userID, FirstName: firstName, LastName: lastName}
	if err := s.contactRepo.Create(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) Get(userID, id uint) (*domain.Contact, error) {
	contact, err := s.contactRepo.FindByIDForUser(userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) Update(userID, id uint, input UpdateContactInput) (*domain.Contact, error) {
	contact, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if input.FirstName != nil {
		contact.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		contact.LastName = *input.LastName
	}
	if input.Location != nil {
		contact.Location = *input.Location
	}
	if input.Notes != nil {
		contact.Notes = *input.Notes
	}
	if err := s.contactRepo.Update(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) List(userID uint) ([]repository.ContactWithLastInteraction, error) {
	return s.contactRepo.ListWithLastInteraction(userID)
}
