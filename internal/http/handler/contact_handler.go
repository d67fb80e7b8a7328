package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rolo-app/rolo/internal/http/middleware"
	"github.com/rolo-app/rolo/internal/http/response"
	"github.com/rolo-app/rolo/internal/service"
)

type ContactHandler struct {
	contacts     *service.ContactService
	interactions *service.InteractionService
}

func NewContactHandler(contacts *service.ContactService, interactions *service.InteractionService) *ContactHandler {
	return &ContactHandler{contacts: contacts, interactions: interactions}
}

type createContactRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Location  string `json:"location"`
	Notes     string `json:"notes"`
}

type updateContactRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Location  *string `json:"location"`
	Notes     *string `json:"notes"`
}

type contactView struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	contacts, err := h.contacts.List(user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, contacts)
}

func (h *ContactHandler) Search(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	contacts, err := h.contacts.Search(user.ID, r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	views := make([]contactView, 0, len(contacts))
	for _, c := range contacts {
		views = append(views, contactView{
			ID:        c.ID,
			UserID:    c.UserID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Name:      c.Name(),
			Location:  c.Location,
			Notes:     c.Notes,
			CreatedAt: c.CreatedAt,
		})
	}
	response.JSON(w, r, http.StatusOK, views)
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	var req createContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	contact, err := h.contacts.Create(user.ID, service.CreateContactInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Location:  req.Location,
		Notes:     req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, contact)
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	contact, err := h.contacts.Get(user.ID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, contact)
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	contact, err := h.contacts.Update(user.ID, id, service.UpdateContactInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Location:  req.Location,
		Notes:     req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, contact)
}

func (h *ContactHandler) Interactions(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	views, err := h.interactions.ListForContact(user.ID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, views)
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return 0, false
	}
	return uint(id), true
}
