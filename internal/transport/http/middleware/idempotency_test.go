package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"wagebook/internal/domain/auth"
	"wagebook/internal/requestctx"
)

type memIdempotency struct {
	entries map[string]struct {
		hash     string
		response StoredResponse
	}
}

func (m *memIdempotency) Check(_ context.Context, userID int64, endpoint, key, hash string) (StoredResponse, bool, error) {
	entry, ok := m.entries[endpoint+"|"+key]
	if !ok {
		return StoredResponse{}, false, nil
	}
	if entry.hash != hash {
		return StoredResponse{}, false, ErrIdempotencyConflict
	}
	return entry.response, true, nil
}

func (m *memIdempotency) Save(_ context.Context, userID int64, endpoint, key, hash string, response StoredResponse) error {
	m.entries[endpoint+"|"+key] = struct {
		hash     string
		response StoredResponse
	}{hash, response}
	return nil
}

func TestRequestHashDeterministic(t *testing.T) {
	hash1 := RequestHash([]byte("payload"))
	hash2 := RequestHash([]byte("payload"))
	hash3 := RequestHash([]byte("other"))

	if hash1 != hash2 {
		t.Fatal("expected deterministic hash")
	}
	if hash1 == hash3 {
		t.Fatal("expected different hash for different payload")
	}
}

func TestIdempotentReplaysResponse(t *testing.T) {
	store := &memIdempotency{entries: map[string]struct {
		hash     string
		response StoredResponse
	}{}}
	calls := 0
	handler := Idempotent(store)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/employees/1/advances", bytes.NewBufferString(body))
		req.Header.Set(IdempotencyHeader, "key-1")
		req = req.WithContext(requestctx.WithScope(req.Context(), auth.Scope{UserID: 5}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := send(`{"amount":100}`)
	second := send(`{"amount":100}`)
	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if second.Code != http.StatusCreated || second.Header().Get("Idempotent-Replayed") != "true" || second.Body.String() != first.Body.String() {
		t.Fatalf("expected replayed response, got %d %q", second.Code, second.Body.String())
	}

	conflict := send(`{"amount":200}`)
	if conflict.Code != http.StatusConflict {
		t.Fatalf("expected 409 for reused key, got %d", conflict.Code)
	}
}

func TestIdempotentPassThroughWithoutKey(t *testing.T) {
	calls := 0
	handler := Idempotent(&memIdempotency{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
	}))
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/employees/1/advances", bytes.NewBufferString(`{}`))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Fatalf("expected both requests to reach handler, got %d", calls)
	}
}

func TestIdempotentRejectsOversizedBody(t *testing.T) {
	calls := 0
	handler := Idempotent(&memIdempotency{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
	}))

	body := bytes.Repeat([]byte("a"), maxIdempotencyBody+1)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/employees/1/advances", bytes.NewReader(body))
	req.Header.Set(IdempotencyHeader, "key-big")
	req = req.WithContext(requestctx.WithScope(req.Context(), auth.Scope{UserID: 5}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
	if calls != 0 {
		t.Fatalf("expected handler not to run, ran %d times", calls)
	}
}

func TestIdempotentAcceptsBodyAtLimit(t *testing.T) {
	var got int
	handler := Idempotent(&memIdempotency{entries: map[string]struct {
		hash     string
		response StoredResponse
	}{}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = len(b)
		w.WriteHeader(http.StatusCreated)
	}))

	body := bytes.Repeat([]byte("a"), maxIdempotencyBody)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/employees/1/advances", bytes.NewReader(body))
	req.Header.Set(IdempotencyHeader, "key-edge")
	req = req.WithContext(requestctx.WithScope(req.Context(), auth.Scope{UserID: 5}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated || got != maxIdempotencyBody {
		t.Fatalf("expected full body forwarded, got status %d and %d bytes", rec.Code, got)
	}
}
