package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rolo-app/rolo/internal/domain"
	"github.com/rolo-app/rolo/internal/health"
	"github.com/rolo-app/rolo/internal/http/handler"
	"github.com/rolo-app/rolo/internal/repository"
	"github.com/rolo-app/rolo/internal/service"
)

const registrationSecret = "letmein"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Session{},
		&domain.Contact{},
		&domain.Interaction{},
		&domain.InteractionContact{},
	); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	contactRepo := repository.NewContactRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)

	authService := service.NewAuthService(userRepo, sessionRepo, time.Hour)
	contactService := service.NewContactService(contactRepo)
	interactionService := service.NewInteractionService(interactionRepo, contactRepo, contactService)
	exportService := service.NewExportService(contactService, interactionService)

	h := NewRouter(Dependencies{
		AuthHandler:        handler.NewAuthHandler(authService, registrationSecret, time.Hour, false),
		ContactHandler:     handler.NewContactHandler(contactService, interactionService),
		InteractionHandler: handler.NewInteractionHandler(interactionService, contactService),
		ExportHandler:      handler.NewExportHandler(exportService),
		AuthService:        authService,
		CORSOrigins:        []string{"http://localhost:5173"},
		APIRateLimitRPM:    10000,
		AuthRateLimitRPM:   10000,
		Readiness:          health.NewProbeRunner(health.NewDatabaseChecker(db)),
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url, body string) (*http.Response, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s %s: %v", method, url, err)
	}
	return resp, env
}

func register(t *testing.T, client *http.Client, base, username string) {
	t.Helper()
	url := fmt.Sprintf("%s/api/v1/auth/register?secret=%s", base, registrationSecret)
	body := fmt.Sprintf(`{"username": %q, "password": "correct horse"}`, username)
	resp, env := doJSON(t, client, http.MethodPost, url, body)
	if resp.StatusCode != http.StatusCreated || !env.Success {
		t.Fatalf("register %s: status %d", username, resp.StatusCode)
	}
}

func TestRegisterWithoutSecretLooksLikeMissingRoute(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp, env := doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/auth/register",
		`{"username": "alice", "password": "correct horse"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if env.Success {
		t.Fatal("expected error envelope")
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	for _, path := range []string{"/api/v1/me", "/api/v1/contacts/", "/api/v1/interactions/", "/api/v1/export"} {
		resp, env := doJSON(t, client, http.MethodGet, srv.URL+path, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, resp.StatusCode)
		}
		if env.Error == nil || env.Error.Code != "UNAUTHORIZED" {
			t.Fatalf("%s: expected UNAUTHORIZED, got %+v", path, env.Error)
		}
	}
}

func TestRegisterSetsSessionCookieAndMeWorks(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)
	register(t, client, srv.URL, "alice")

	resp, env := doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/me", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", resp.StatusCode)
	}
	var user struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user %q", user.Username)
	}
	if strings.Contains(string(env.Data), "password") {
		t.Fatal("password hash must never be serialized")
	}
}

func TestLogoutEndsSession(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)
	register(t, client, srv.URL, "alice")

	if resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/auth/logout", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}
	if resp, _ := doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/me", ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("me after logout: expected 401, got %d", resp.StatusCode)
	}
	// logging out again is still a 200
	if resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/auth/logout", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("second logout: expected 200, got %d", resp.StatusCode)
	}
}

func TestContactAndInteractionFlow(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)
	register(t, client, srv.URL, "alice")

	resp, env := doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/contacts/",
		`{"first_name": "Jane", "last_name": "Doe", "location": "Lisbon"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create contact: expected 201, got %d", resp.StatusCode)
	}
	var contact struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &contact); err != nil {
		t.Fatalf("decode contact: %v", err)
	}

	resp, env = doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/interactions/",
		fmt.Sprintf(`{"contact_ids": [%d], "contact_names": ["Sam Smith"], "rating": 4, "notes": "lunch"}`, contact.ID))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create interaction: expected 201, got %d", resp.StatusCode)
	}
	var interaction struct {
		ID           uint     `json:"id"`
		ContactNames []string `json:"contact_names"`
	}
	if err := json.Unmarshal(env.Data, &interaction); err != nil {
		t.Fatalf("decode interaction: %v", err)
	}
	if len(interaction.ContactNames) != 2 {
		t.Fatalf("expected both contacts attached, got %v", interaction.ContactNames)
	}

	// clearing the rating with an explicit null keeps it a positive interaction
	resp, _ = doJSON(t, client, http.MethodPatch, srv.URL+fmt.Sprintf("/api/v1/interactions/%d", interaction.ID),
		`{"rating": null}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clear rating: expected 200, got %d", resp.StatusCode)
	}

	resp, env = doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/interactions/stats", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", resp.StatusCode)
	}
	var stats struct {
		PositiveToday int `json:"positive_today"`
	}
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.PositiveToday != 1 {
		t.Fatalf("expected 1 positive today, got %d", stats.PositiveToday)
	}

	resp, env = doJSON(t, client, http.MethodGet, srv.URL+fmt.Sprintf("/api/v1/contacts/%d/interactions", contact.ID), "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("contact interactions: expected 200, got %d", resp.StatusCode)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 interaction for contact, got %d", len(list))
	}
}

func TestUsersCannotSeeEachOthersData(t *testing.T) {
	srv := newTestServer(t)
	alice := newClient(t)
	bob := newClient(t)
	register(t, alice, srv.URL, "alice")
	register(t, bob, srv.URL, "bobby")

	resp, env := doJSON(t, alice, http.MethodPost, srv.URL+"/api/v1/contacts/",
		`{"first_name": "Jane"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create contact: expected 201, got %d", resp.StatusCode)
	}
	var contact struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &contact); err != nil {
		t.Fatalf("decode contact: %v", err)
	}

	resp, env = doJSON(t, bob, http.MethodGet, srv.URL+fmt.Sprintf("/api/v1/contacts/%d", contact.ID), "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign contact, got %d", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %+v", env.Error)
	}
}

func TestExportDownload(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)
	register(t, client, srv.URL, "alice")

	if resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/contacts/", `{"first_name": "Jane"}`); resp.StatusCode != http.StatusCreated {
		t.Fatalf("create contact: expected 201, got %d", resp.StatusCode)
	}

	resp, err := client.Get(srv.URL + "/api/v1/export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", resp.StatusCode)
	}
	disposition := resp.Header.Get("Content-Disposition")
	if !strings.HasPrefix(disposition, "attachment; filename=") || !strings.Contains(disposition, "rolo-export-") {
		t.Fatalf("unexpected disposition %q", disposition)
	}
	var doc struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
		Contacts []json.RawMessage `json:"contacts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if doc.User.Username != "alice" || len(doc.Contacts) != 1 {
		t.Fatalf("unexpected export %+v", doc)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		resp, env := doJSON(t, client, http.MethodGet, srv.URL+path, "")
		if resp.StatusCode != http.StatusOK || !env.Success {
			t.Fatalf("%s: expected healthy 200, got %d", path, resp.StatusCode)
		}
	}
}
