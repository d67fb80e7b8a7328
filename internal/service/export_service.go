package service

import (
	"fmt"
	"time"

	"github.com/rolo-app/rolo/internal/domain"
	"github.com/rolo-app/rolo/pkg/names"
)

// ExportDocument is the portable dump of a user's data: identifiers are
// replaced with resolved display names so the file stands on its own.
type ExportDocument struct {
	ExportedAt   time.Time           `json:"exported_at"`
	User         ExportUser          `json:"user"`
	Contacts     []ExportContact     `json:"contacts"`
	Interactions []ExportInteraction `json:"interactions"`
}

type ExportUser struct {
	Username string `json:"username"`
}

type ExportContact struct {
	Name              string     `json:"name"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Location          string     `json:"location"`
	Notes             string     `json:"notes"`
	CreatedAt         time.Time  `json:"created_at"`
	LastInteractionAt *time.Time `json:"last_interaction_at"`
}

type ExportInteraction struct {
	ContactNames []string  `json:"contact_names"`
	Rating       *int      `json:"rating"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}

type ExportService struct {
	contacts     *ContactService
	interactions *InteractionService
	now          func() time.Time
}

func NewExportService(contacts *ContactService, interactions *InteractionService) *ExportService {
	return &ExportService{contacts: contacts, interactions: interactions, now: time.Now}
}

func (s *ExportService) Build(user *domain.User) (*ExportDocument, error) {
	contacts, err := s.contacts.List(user.ID)
	if err != nil {
		return nil, err
	}
	interactions, err := s.interactions.ListAll(user.ID)
	if err != nil {
		return nil, err
	}

	doc := &ExportDocument{
		ExportedAt:   s.now().UTC(),
		User:         ExportUser{Username: user.Username},
		Contacts:     make([]ExportContact, 0, len(contacts)),
		Interactions: make([]ExportInteraction, 0, len(interactions)),
	}
	for _, c := range contacts {
		doc.Contacts = append(doc.Contacts, ExportContact{
			Name:              names.Combine(c.FirstName, c.LastName),
			FirstName:         c.FirstName,
			LastName:          c.LastName,
			Location:          c.Location,
			Notes:             c.Notes,
			CreatedAt:         c.CreatedAt,
			LastInteractionAt: c.LastInteractionAt,
		})
	}
	for _, i := range interactions {
		doc.Interactions = append(doc.Interactions, ExportInteraction{
			ContactNames: i.ContactNames,
			Rating:       i.Rating,
			Notes:        i.Notes,
			CreatedAt:    i.CreatedAt,
		})
	}
	return doc, nil
}

// Filename matches the download name the web client expects.
func (s *ExportService) Filename() string {
	return fmt.Sprintf("rolo-export-%s.json", s.now().UTC().Format("2006-01-02"))
}
