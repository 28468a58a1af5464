package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DrashtiGohil19/bookingcrown/libs/auth"
	"github.com/DrashtiGohil19/bookingcrown/services/account-service/internal/storage"
)

const testSecret = "test-secret"

type memOwners struct {
	mu     sync.Mutex
	owners map[string]storage.Owner
}

func newMemOwners() *memOwners {
	return &memOwners{owners: map[string]storage.Owner{}}
}

func (m *memOwners) Create(_ context.Context, o storage.Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.owners {
		if strings.EqualFold(existing.Email, o.Email) {
			return storage.ErrEmailTaken
		}
	}
	m.owners[o.ID] = o
	return nil
}

func (m *memOwners) GetByEmail(_ context.Context, email string) (storage.Owner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.owners {
		if strings.EqualFold(o.Email, email) {
			return o, nil
		}
	}
	return storage.Owner{}, storage.ErrNotFound
}

func (m *memOwners) GetByID(_ context.Context, id string) (storage.Owner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.owners[id]
	if !ok {
		return storage.Owner{}, storage.ErrNotFound
	}
	return o, nil
}

func (m *memOwners) UpdateProfile(_ context.Context, o storage.Owner) (storage.Owner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.owners[o.ID]
	if !ok {
		return storage.Owner{}, storage.ErrNotFound
	}
	cur.Name, cur.Email, cur.MobileNumber = o.Name, o.Email, o.MobileNumber
	cur.BusinessType, cur.BusinessName, cur.Address = o.BusinessType, o.BusinessName, o.Address
	cur.ItemList, cur.SessionList, cur.UpdatedAt = o.ItemList, o.SessionList, o.UpdatedAt
	m.owners[o.ID] = cur
	return cur, nil
}

func (m *memOwners) UpdatePassword(_ context.Context, id, hash string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.owners[id]
	if !ok {
		return storage.ErrNotFound
	}
	cur.PasswordHash, cur.UpdatedAt = hash, at
	m.owners[id] = cur
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memOwners) {
	t.Helper()
	store := newMemOwners()
	h := NewAccountHandler(store, testSecret, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := http.NewServeMux()
	Mount(mux, auth.RequireOwner(testSecret), h)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, store
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, out
}

func registration() map[string]any {
	return map[string]any{
		"name":         "Asha",
		"email":        "asha@example.com",
		"mobilenu":     "9876543210",
		"businessType": "Box Cricket",
		"businessName": "Asha Arena",
		"address":      "Ring Road",
		"password":     "Secret1",
	}
}

func registerAndLogin(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	if status, body := call(t, srv, http.MethodPost, "/api/register", "", registration()); status != http.StatusOK {
		t.Fatalf("register: expected 200, got %d %v", status, body)
	}
	status, body := call(t, srv, http.MethodPost, "/api/login", "", map[string]any{
		"email":    "asha@example.com",
		"password": "Secret1",
	})
	if status != http.StatusOK {
		t.Fatalf("login: expected 200, got %d %v", status, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("expected token, got %v", body)
	}
	return token
}

func TestRegisterValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	missing := registration()
	delete(missing, "address")
	status, body := call(t, srv, http.MethodPost, "/api/register", "", missing)
	if status != http.StatusBadRequest || body["message"] != msgRegisterFieldsRequired {
		t.Fatalf("expected required-fields error, got %d %v", status, body)
	}

	badEmail := registration()
	badEmail["email"] = "not-an-email"
	status, body = call(t, srv, http.MethodPost, "/api/register", "", badEmail)
	if status != http.StatusBadRequest || body["message"] != msgInvalidEmail {
		t.Fatalf("expected email error, got %d %v", status, body)
	}

	weak := registration()
	weak["password"] = "secret1"
	status, body = call(t, srv, http.MethodPost, "/api/register", "", weak)
	if status != http.StatusBadRequest || body["message"] != "Password must include at least one uppercase letter" {
		t.Fatalf("expected password rule error, got %d %v", status, body)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv, _ := newTestServer(t)
	if status, _ := call(t, srv, http.MethodPost, "/api/register", "", registration()); status != http.StatusOK {
		t.Fatalf("first register: expected 200, got %d", status)
	}
	status, body := call(t, srv, http.MethodPost, "/api/register", "", registration())
	want := "User with the email asha@example.com already exists. Please provide another email"
	if status != http.StatusBadRequest || body["message"] != want {
		t.Fatalf("expected duplicate error, got %d %v", status, body)
	}
}

func TestLoginIssuesKindClaim(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerAndLogin(t, srv)

	claims, err := auth.ParseAndVerifyHS256(token, testSecret)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.Role != roleUser || claims.Kind != auth.KindHourly || claims.BusinessType != "Box Cricket" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Exp-claims.Iat != int64(time.Hour/time.Second) {
		t.Fatalf("expected one hour ttl, got %d", claims.Exp-claims.Iat)
	}

	status, body := call(t, srv, http.MethodPost, "/api/login", "", map[string]any{
		"email":    "asha@example.com",
		"password": "Wrong1",
	})
	if status != http.StatusBadRequest || body["message"] != msgInvalidCredentials {
		t.Fatalf("expected invalid credentials, got %d %v", status, body)
	}
}

func TestGetAndUpdateUser(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerAndLogin(t, srv)

	if status, _ := call(t, srv, http.MethodGet, "/api/getUserData", "", nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	status, body := call(t, srv, http.MethodGet, "/api/getUserData", token, nil)
	if status != http.StatusOK {
		t.Fatalf("getUserData: expected 200, got %d %v", status, body)
	}
	data := body["data"].(map[string]any)
	if data["businessName"] != "Asha Arena" || data["mobilenu"] != "9876543210" {
		t.Fatalf("unexpected profile %v", data)
	}

	update := registration()
	delete(update, "password")
	update["businessType"] = "Farm House"
	status, body = call(t, srv, http.MethodPut, "/api/updateUser", token, update)
	if status != http.StatusBadRequest || body["message"] != msgAllFieldsRequired {
		t.Fatalf("expected all-fields error without lists, got %d %v", status, body)
	}

	update["itemList"] = []string{"Hall A"}
	update["sessionList"] = []string{"Morning", "Evening"}
	status, body = call(t, srv, http.MethodPut, "/api/updateUser", token, update)
	if status != http.StatusOK || body["message"] != msgUserUpdated {
		t.Fatalf("updateUser: expected 200, got %d %v", status, body)
	}
	data = body["data"].(map[string]any)
	if data["businessType"] != "Farm House" || len(data["sessionList"].([]any)) != 2 {
		t.Fatalf("unexpected updated profile %v", data)
	}
}

func TestChangePassword(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerAndLogin(t, srv)

	cases := []struct {
		body map[string]any
		want string
	}{
		{map[string]any{"currentPassword": "Secret1"}, msgAllFieldsRequired},
		{map[string]any{"currentPassword": "Secret1", "newPassword": "Secret1", "confirmPassword": "Secret1"}, msgSamePassword},
		{map[string]any{"currentPassword": "Secret1", "newPassword": "Secret2", "confirmPassword": "Secret3"}, msgPasswordMismatch},
		{map[string]any{"currentPassword": "Secret1", "newPassword": "short", "confirmPassword": "short"}, "Password must be at least 6 characters long"},
		{map[string]any{"currentPassword": "Wrong1", "newPassword": "Secret2", "confirmPassword": "Secret2"}, msgWrongPassword},
	}
	for _, tc := range cases {
		status, body := call(t, srv, http.MethodPut, "/api/changePassword", token, tc.body)
		if status != http.StatusBadRequest || body["message"] != tc.want {
			t.Fatalf("expected %q, got %d %v", tc.want, status, body)
		}
	}

	status, body := call(t, srv, http.MethodPut, "/api/changePassword", token, map[string]any{
		"currentPassword": "Secret1", "newPassword": "Secret2", "confirmPassword": "Secret2",
	})
	if status != http.StatusOK || body["message"] != msgPasswordUpdated {
		t.Fatalf("changePassword: expected 200, got %d %v", status, body)
	}

	status, _ = call(t, srv, http.MethodPost, "/api/login", "", map[string]any{
		"email": "asha@example.com", "password": "Secret2",
	})
	if status != http.StatusOK {
		t.Fatalf("expected login with new password, got %d", status)
	}
}
