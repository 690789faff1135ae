package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/linguachat/linguachat-server/internal/auth"
	"github.com/linguachat/linguachat-server/internal/blob/disk"
	"github.com/linguachat/linguachat-server/internal/bus/memory"
	"github.com/linguachat/linguachat-server/internal/chat"
	"github.com/linguachat/linguachat-server/internal/config"
	"github.com/linguachat/linguachat-server/internal/store/sqlite"
	"github.com/linguachat/linguachat-server/internal/translate"
)

type jsonBody map[string]any

// testEnv wires a full router against an in-memory store and bus.
type testEnv struct {
	router http.Handler
	store  *sqlite.SQLiteStore
	bus    *memory.Bus
	auth   *auth.Service
}

func newTestEnv(t *testing.T, translator translate.Translator) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	b := memory.New()
	t.Cleanup(func() { b.Close() })

	logger := zerolog.Nop()
	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "linguachat",
		Audience: "linguachat-clients",
		TTL:      time.Hour,
	})
	chatService := chat.NewService(st, b, &logger)

	cfg := config.Default()
	cfg.UploadDir = t.TempDir()
	cfg.UploadsPerMinute = 100

	router := NewRouter(cfg, Deps{
		Auth:       authService,
		Chat:       chatService,
		Store:      st,
		Bus:        b,
		Blobs:      newTestBlobStorage(t, cfg.UploadDir),
		Translator: translator,
		Log:        &logger,
	})

	return &testEnv{router: router, store: st, bus: b, auth: authService}
}

func newTestBlobStorage(t *testing.T, dir string) *disk.Storage {
	t.Helper()
	blobs, err := disk.New(dir, "/uploads")
	if err != nil {
		t.Fatalf("create blob storage: %v", err)
	}
	return blobs
}

// registerUser registers a user and returns their token.
func (e *testEnv) registerUser(t *testing.T, username, language string) string {
	t.Helper()
	token, err := e.auth.Register(context.Background(), username, "password123", language)
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// newCookieRequest builds a /api/users request authenticated via the
// token cookie instead of the Authorization header.
func newCookieRequest(t *testing.T, token string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	return req, httptest.NewRecorder()
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// stubTranslator returns a fixed result or error.
type stubTranslator struct {
	result *translate.Result
	err    error
	calls  int
}

func (s *stubTranslator) Translate(_ context.Context, _ []byte, _, targetLang string) (*translate.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &translate.Result{
		Transcript:  fmt.Sprintf("translated to %s", targetLang),
		Audio:       []byte("translated-audio"),
		ContentType: "audio/wav",
	}, nil
}
