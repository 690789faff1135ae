package http

import (
	"net/http"
	"strings"
	"testing"
)

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.request(t, http.MethodPost, "/api/register", "", jsonBody{
		"username": "alice", "password": "password123", "preferred_language": "fr",
	})
	requireStatus(t, rec, http.StatusCreated)

	resp := decodeJSON[AuthResponse](t, rec)
	if resp.Token == "" {
		t.Fatal("expected token in response")
	}

	// The token is also mirrored into a cookie for browser clients.
	cookie := rec.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, "token=") {
		t.Fatalf("expected token cookie, got %q", cookie)
	}

	// Registering the same username again conflicts.
	rec = env.request(t, http.MethodPost, "/api/register", "", jsonBody{
		"username": "alice", "password": "password456",
	})
	requireStatus(t, rec, http.StatusConflict)
}

func TestRegisterEndpoint_Validation(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name string
		body jsonBody
	}{
		{"short username", jsonBody{"username": "ab", "password": "password123"}},
		{"short password", jsonBody{"username": "alice", "password": "pw"}},
		{"missing password", jsonBody{"username": "alice"}},
		{"username with delimiter", jsonBody{"username": "ali_ce", "password": "password123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.request(t, http.MethodPost, "/api/register", "", tt.body)
			requireStatus(t, rec, http.StatusBadRequest)
		})
	}
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.registerUser(t, "alice", "en")

	rec := env.request(t, http.MethodPost, "/api/login", "", jsonBody{
		"username": "alice", "password": "password123",
	})
	requireStatus(t, rec, http.StatusOK)
	if resp := decodeJSON[AuthResponse](t, rec); resp.Token == "" {
		t.Fatal("expected token in response")
	}

	rec = env.request(t, http.MethodPost, "/api/login", "", jsonBody{
		"username": "alice", "password": "wrong",
	})
	requireStatus(t, rec, http.StatusUnauthorized)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, nil)

	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/users/alice/language"},
		{http.MethodGet, "/api/rooms/alice/messages"},
		{http.MethodPost, "/api/rooms/alice/messages"},
		{http.MethodPost, "/api/uploads"},
	}

	for _, p := range paths {
		rec := env.request(t, p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 without token, got %d", p.method, p.path, rec.Code)
		}

		rec = env.request(t, p.method, p.path, "not-a-token", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 with bad token, got %d", p.method, p.path, rec.Code)
		}
	}
}

func TestAuthMiddleware_Cookie(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.registerUser(t, "alice", "en")

	req, rec := newCookieRequest(t, token)
	env.router.ServeHTTP(rec, req)
	requireStatus(t, rec, http.StatusOK)
}

func TestListUsersEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	aliceToken := env.registerUser(t, "alice", "en")
	env.registerUser(t, "bob", "fr")
	env.registerUser(t, "carol", "de")

	rec := env.request(t, http.MethodGet, "/api/users", aliceToken, nil)
	requireStatus(t, rec, http.StatusOK)

	users := decodeJSON[[]UserResponse](t, rec)
	if len(users) != 2 {
		t.Fatalf("expected 2 users (caller excluded), got %d", len(users))
	}
	for _, u := range users {
		if u.Username == "alice" {
			t.Fatal("caller must be excluded from the user list")
		}
	}
}

func TestGetLanguageEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.registerUser(t, "alice", "en")
	env.registerUser(t, "bob", "fr")

	rec := env.request(t, http.MethodGet, "/api/users/bob/language", token, nil)
	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[LanguageResponse](t, rec)
	if resp.PreferredLanguage != "fr" {
		t.Fatalf("expected fr, got %q", resp.PreferredLanguage)
	}

	rec = env.request(t, http.MethodGet, "/api/users/ghost/language", token, nil)
	requireStatus(t, rec, http.StatusNotFound)
}

func TestCreateAndListMessages(t *testing.T) {
	env := newTestEnv(t, nil)
	aliceToken := env.registerUser(t, "alice", "en")
	bobToken := env.registerUser(t, "bob", "fr")

	rec := env.request(t, http.MethodPost, "/api/rooms/bob/messages", aliceToken, jsonBody{
		"content": "hello bob",
	})
	requireStatus(t, rec, http.StatusCreated)

	sent := decodeJSON[MessageResponse](t, rec)
	if sent.ID == 0 {
		t.Fatal("expected assigned message id")
	}
	if sent.RoomID != "alice_bob" {
		t.Fatalf("expected room alice_bob, got %q", sent.RoomID)
	}
	if sent.SenderID != "alice" || sent.RecipientID != "bob" {
		t.Fatalf("unexpected participants: %+v", sent)
	}
	if sent.Kind != "text" {
		t.Fatalf("kind must default to text, got %q", sent.Kind)
	}

	// Bob replies; both histories are the same room regardless of
	// which side names the peer.
	rec = env.request(t, http.MethodPost, "/api/rooms/alice/messages", bobToken, jsonBody{
		"content": "hi alice",
	})
	requireStatus(t, rec, http.StatusCreated)
	reply := decodeJSON[MessageResponse](t, rec)
	if reply.RoomID != "alice_bob" {
		t.Fatalf("reversed pair must map to the same room, got %q", reply.RoomID)
	}

	for _, token := range []string{aliceToken, bobToken} {
		peer := "bob"
		if token == bobToken {
			peer = "alice"
		}
		rec = env.request(t, http.MethodGet, "/api/rooms/"+peer+"/messages", token, nil)
		requireStatus(t, rec, http.StatusOK)

		history := decodeJSON[HistoryResponse](t, rec)
		if history.RoomID != "alice_bob" {
			t.Fatalf("expected room alice_bob, got %q", history.RoomID)
		}
		if len(history.Messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(history.Messages))
		}
		if history.Messages[0].ID != sent.ID || history.Messages[1].ID != reply.ID {
			t.Fatalf("history out of order: %+v", history.Messages)
		}
	}
}

func TestCreateMessage_Errors(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.registerUser(t, "alice", "en")
	env.registerUser(t, "bob", "fr")

	rec := env.request(t, http.MethodPost, "/api/rooms/ghost/messages", token, jsonBody{
		"content": "anyone there?",
	})
	requireStatus(t, rec, http.StatusNotFound)

	rec = env.request(t, http.MethodPost, "/api/rooms/alice/messages", token, jsonBody{
		"content": "note to self",
	})
	requireStatus(t, rec, http.StatusBadRequest)

	rec = env.request(t, http.MethodPost, "/api/rooms/bob/messages", token, jsonBody{
		"content": "",
	})
	requireStatus(t, rec, http.StatusBadRequest)
	resp := decodeJSON[ErrorResponse](t, rec)
	if resp.Code == "" {
		t.Fatal("expected machine-readable error code")
	}

	rec = env.request(t, http.MethodPost, "/api/rooms/bob/messages", token, jsonBody{
		"kind": "video", "content": "clip",
	})
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.request(t, http.MethodGet, "/healthz", "", nil)
	requireStatus(t, rec, http.StatusOK)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.request(t, http.MethodGet, "/metrics", "", nil)
	requireStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "linguachat_") {
		t.Fatal("expected linguachat metrics in exposition")
	}
}
