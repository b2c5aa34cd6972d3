package handlers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"threadit/internal/db"
	"threadit/internal/middleware"
	"threadit/internal/router"
	"threadit/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestServer wires the full engine against a per-test in-memory SQLite
// database, so requests exercise middleware, routing, and storage together.
func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	cache, err := utils.NewCache(64)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}

	r := gin.New()
	r.Use(middleware.LoadUser(database))
	router.RegisterRoutes(r, database, cache)
	return r, database
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response %q: %v", rr.Body.String(), err)
	}
	return payload
}

// register creates a user and returns their bearer token.
func register(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":"hunter22"}`, username)
	rr := doRequest(t, r, http.MethodPost, "/users/register", "", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("register %s: expected 200, got %d body=%s", username, rr.Code, rr.Body.String())
	}
	token, _ := decode(t, rr)["token"].(string)
	if token == "" {
		t.Fatalf("register %s: no token in response", username)
	}
	return token
}

// entityID digs the numeric id out of a nested response object.
func entityID(t *testing.T, payload map[string]any, key string) uint {
	t.Helper()
	entity, ok := payload[key].(map[string]any)
	if !ok {
		t.Fatalf("response has no %q object: %v", key, payload)
	}
	id, ok := entity["id"].(float64)
	if !ok {
		t.Fatalf("%q object has no id: %v", key, entity)
	}
	return uint(id)
}

func createSubreddit(t *testing.T, r *gin.Engine, token, name string) uint {
	t.Helper()
	rr := doRequest(t, r, http.MethodPost, "/subreddits", token, fmt.Sprintf(`{"name":%q}`, name))
	if rr.Code != http.StatusOK {
		t.Fatalf("create subreddit %s: expected 200, got %d body=%s", name, rr.Code, rr.Body.String())
	}
	return entityID(t, decode(t, rr), "subreddit")
}

func createPost(t *testing.T, r *gin.Engine, token string, subredditID uint, text string) uint {
	t.Helper()
	body := fmt.Sprintf(`{"text":%q,"subredditId":%d}`, text, subredditID)
	rr := doRequest(t, r, http.MethodPost, "/posts", token, body)
	if rr.Code != http.StatusOK {
		t.Fatalf("create post: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	return entityID(t, decode(t, rr), "post")
}

func assertFailure(t *testing.T, rr *httptest.ResponseRecorder, wantCode int) map[string]any {
	t.Helper()
	if rr.Code != wantCode {
		t.Fatalf("expected status %d, got %d body=%s", wantCode, rr.Code, rr.Body.String())
	}
	payload := decode(t, rr)
	if success, _ := payload["success"].(bool); success {
		t.Fatalf("expected success:false, got %s", rr.Body.String())
	}
	if msg, _ := payload["error"].(string); msg == "" {
		t.Fatalf("expected an error message, got %s", rr.Body.String())
	}
	return payload
}
