package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rolo-app/rolo/internal/http/middleware"
	"github.com/rolo-app/rolo/internal/http/response"
	"github.com/rolo-app/rolo/internal/service"
)

type InteractionHandler struct {
	interactions *service.InteractionService
	contacts     *service.ContactService
}

func NewInteractionHandler(interactions *service.InteractionService, contacts *service.ContactService) *InteractionHandler {
	return &InteractionHandler{interactions: interactions, contacts: contacts}
}

type createInteractionRequest struct {
	ContactIDs   []uint   `json:"contact_ids"`
	ContactNames []string `json:"contact_names"`
	Rating       *int     `json:"rating"`
	Notes        string   `json:"notes"`
}

// updateInteractionRequest keeps rating as raw JSON so "rating": null (clear
// the rating) can be told apart from rating being absent (leave it alone).
// The same absent-vs-empty distinction applies to contact_names.
type updateInteractionRequest struct {
	Rating       json.RawMessage `json:"rating"`
	Notes        *string         `json:"notes"`
	ContactNames *[]string       `json:"contact_names"`
}

func (h *InteractionHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	views, err := h.interactions.ListAll(user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, views)
}

// Create logs an interaction. Contacts may be referenced by id or by
// free-text name; names are resolved via find-or-create.
func (h *InteractionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	var req createInteractionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	contactIDs := req.ContactIDs
	for _, name := range req.ContactNames {
		contact, err := h.contacts.FindOrCreate(user.ID, name)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		contactIDs = append(contactIDs, contact.ID)
	}

	view, err := h.interactions.Create(user.ID, contactIDs, req.Rating, req.Notes)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, view)
}

func (h *InteractionHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateInteractionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input := service.UpdateInteractionInput{Notes: req.Notes}
	if len(req.Rating) > 0 {
		input.RatingSet = true
		if string(req.Rating) != "null" {
			var rating int
			if err := json.Unmarshal(req.Rating, &rating); err != nil {
				response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "rating must be an integer or null", nil)
				return
			}
			input.Rating = &rating
		}
	}
	if req.ContactNames != nil {
		input.ReplaceContacts = true
		input.ContactNames = *req.ContactNames
	}

	view, err := h.interactions.Update(user.ID, id, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

func (h *InteractionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.interactions.Delete(user.ID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *InteractionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	stats, err := h.interactions.Stats(user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, stats)
}
