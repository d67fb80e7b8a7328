package handler

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/rolo-app/rolo/internal/http/middleware"
	"github.com/rolo-app/rolo/internal/http/response"
	"github.com/rolo-app/rolo/internal/observability"
	"github.com/rolo-app/rolo/internal/service"
)

type AuthHandler struct {
	auth               *service.AuthService
	registrationSecret string
	sessionTTL         time.Duration
	secureCookies      bool
}

func NewAuthHandler(auth *service.AuthService, registrationSecret string, sessionTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		auth:               auth,
		registrationSecret: registrationSecret,
		sessionTTL:         sessionTTL,
		secureCookies:      secureCookies,
	}
}

type registerRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account and logs it in. The endpoint is hidden behind
// the registration secret: a wrong or missing secret looks like a missing
// route.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.registrationAllowed(r) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "not found", nil)
		return
	}

	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "passwords do not match", map[string]any{"field": "confirm_password"})
		return
	}

	user, err := h.auth.Register(req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "auth.register", "user_id", user.ID)

	session, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.setSessionCookie(w, session.Token)
	response.JSON(w, r, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "auth.login", "user_id", session.UserID)
	h.setSessionCookie(w, session.Token)
	response.JSON(w, r, http.StatusOK, map[string]any{"user_id": session.UserID, "expires_at": session.ExpiresAt})
}

// Logout deletes the session if the cookie carries one and always clears the
// cookie; logging out twice is fine.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.auth.Logout(cookie.Value); err != nil {
			writeServiceError(w, r, err)
			return
		}
		observability.Audit(r, "auth.logout")
	}
	h.clearSessionCookie(w)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing session", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

func (h *AuthHandler) registrationAllowed(r *http.Request) bool {
	if h.registrationSecret == "" {
		return true
	}
	provided := r.URL.Query().Get("secret")
	if provided == "" {
		provided = r.Header.Get("X-Registration-Secret")
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(h.registrationSecret)) == 1
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
