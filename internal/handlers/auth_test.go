package handlers_test

import (
	"net/http"
	"testing"

	"threadit/internal/models"
)

func TestRegisterReturnsToken(t *testing.T) {
	r, database := newTestServer(t)

	token := register(t, r, "alice")
	if token == "" {
		t.Fatal("expected a token")
	}

	var user models.User
	if err := database.Where("username = ?", "alice").First(&user).Error; err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if user.Password == "hunter22" {
		t.Error("password stored in plaintext")
	}
}

func TestRegisterDuplicateUsernameConflicts(t *testing.T) {
	r, _ := newTestServer(t)
	register(t, r, "alice")

	rr := doRequest(t, r, http.MethodPost, "/users/register", "", `{"username":"alice","password":"other"}`)
	assertFailure(t, rr, http.StatusConflict)
}

func TestRegisterRejectsExtraKeys(t *testing.T) {
	r, _ := newTestServer(t)
	rr := doRequest(t, r, http.MethodPost, "/users/register", "", `{"username":"alice","password":"x","admin":true}`)
	assertFailure(t, rr, http.StatusBadRequest)
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	r, _ := newTestServer(t)
	rr := doRequest(t, r, http.MethodPost, "/users/register", "", `{"username":"alice"}`)
	assertFailure(t, rr, http.StatusBadRequest)
}

func TestLoginReturnsToken(t *testing.T) {
	r, _ := newTestServer(t)
	register(t, r, "alice")

	rr := doRequest(t, r, http.MethodPost, "/users/login", "", `{"username":"alice","password":"hunter22"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if token, _ := decode(t, rr)["token"].(string); token == "" {
		t.Fatal("expected a token")
	}
}

func TestLoginDoesNotLeakWhichCheckFailed(t *testing.T) {
	r, _ := newTestServer(t)
	register(t, r, "alice")

	unknownUser := doRequest(t, r, http.MethodPost, "/users/login", "", `{"username":"nobody","password":"hunter22"}`)
	unknownPayload := assertFailure(t, unknownUser, http.StatusUnauthorized)

	wrongPassword := doRequest(t, r, http.MethodPost, "/users/login", "", `{"username":"alice","password":"wrong"}`)
	wrongPayload := assertFailure(t, wrongPassword, http.StatusUnauthorized)

	if unknownPayload["error"] != wrongPayload["error"] {
		t.Errorf("unknown-user and wrong-password errors differ: %v vs %v",
			unknownPayload["error"], wrongPayload["error"])
	}
}

func TestLoginShortCircuitsWhenAlreadyAuthenticated(t *testing.T) {
	r, _ := newTestServer(t)
	token := register(t, r, "alice")

	// No body needed when the request already carries a valid identity.
	rr := doRequest(t, r, http.MethodPost, "/users/login", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if fresh, _ := decode(t, rr)["token"].(string); fresh == "" {
		t.Fatal("expected a fresh token")
	}
}

func TestTokenRouteRequiresAuth(t *testing.T) {
	r, _ := newTestServer(t)
	rr := doRequest(t, r, http.MethodGet, "/users/token", "", "")
	assertFailure(t, rr, http.StatusUnauthorized)
}

func TestTokenRouteIgnoresInvalidBearer(t *testing.T) {
	r, _ := newTestServer(t)
	rr := doRequest(t, r, http.MethodGet, "/users/token", "definitely-not-a-token", "")
	assertFailure(t, rr, http.StatusUnauthorized)
}

func TestTokenRouteReturnsSanitizedUser(t *testing.T) {
	r, _ := newTestServer(t)
	token := register(t, r, "alice")

	rr := doRequest(t, r, http.MethodGet, "/users/token", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	payload := decode(t, rr)
	user, ok := payload["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user object, got %s", rr.Body.String())
	}
	if user["username"] != "alice" {
		t.Errorf("expected username alice, got %v", user["username"])
	}
	if _, leaked := user["password"]; leaked {
		t.Error("password hash leaked in token response")
	}
}
