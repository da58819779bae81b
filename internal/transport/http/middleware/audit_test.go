package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"wagebook/internal/domain/audit"
	"wagebook/internal/domain/auth"
	"wagebook/internal/requestctx"
)

type memAudit struct {
	events []audit.Event
}

func (m *memAudit) Record(ctx context.Context, evt audit.Event) error {
	m.events = append(m.events, evt)
	return nil
}

func TestAuditedRecordsSuccessfulRequests(t *testing.T) {
	recorder := &memAudit{}
	status := http.StatusOK
	r := chi.NewRouter()
	r.With(Audited(recorder, audit.ActionEmployeeDelete, "employee", "employeeID")).
		Delete("/employees/{employeeID}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

	req := httptest.NewRequest(http.MethodDelete, "/employees/42", nil)
	req.RemoteAddr = "10.0.0.9:5555"
	req = req.WithContext(requestctx.WithScope(req.Context(), auth.Scope{UserID: 3, Username: "clerk"}))
	r.ServeHTTP(httptest.NewRecorder(), req)

	if len(recorder.events) != 1 {
		t.Fatalf("expected one event, got %d", len(recorder.events))
	}
	evt := recorder.events[0]
	if evt.EntityID != "42" || evt.ActorID != 3 || evt.ActorUsername != "clerk" || evt.IP != "10.0.0.9" {
		t.Fatalf("unexpected event %+v", evt)
	}
	if evt.Action != audit.ActionEmployeeDelete || len(evt.Detail) == 0 {
		t.Fatalf("unexpected action or detail %+v", evt)
	}

	status = http.StatusForbidden
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/employees/43", nil))
	if len(recorder.events) != 1 {
		t.Fatalf("expected failed request not to be audited, got %d events", len(recorder.events))
	}
}

func TestAuditedWithoutRecorderPassesThrough(t *testing.T) {
	called := false
	h := Audited(nil, audit.ActionUserDelete, "user", "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/", nil))
	if !called {
		t.Fatal("expected handler to run")
	}
}
