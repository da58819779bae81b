package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wagebook/internal/domain/audit"
)

type AuditRecorder interface {
	Record(ctx context.Context, evt audit.Event) error
}

// Audited records a successful request in the audit trail. The entity id is
// read from the idParam URL parameter when one is given.
func Audited(recorder AuditRecorder, action, entityType, idParam string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			if rec.status < 200 || rec.status >= 300 {
				return
			}

			evt := audit.Event{
				Action:     action,
				EntityType: entityType,
				RequestID:  GetRequestID(r.Context()),
				IP:         clientIPKey(r),
			}
			if idParam != "" {
				evt.EntityID = chi.URLParam(r, idParam)
			}
			if scope, ok := GetScope(r.Context()); ok {
				evt.ActorID = scope.UserID
				evt.ActorUsername = scope.Username
			}
			evt.Detail, _ = json.Marshal(map[string]any{"method": r.Method, "path": r.URL.Path, "status": rec.status})

			if err := recorder.Record(context.WithoutCancel(r.Context()), evt); err != nil {
				slog.Warn("audit record failed", "action", action, "err", err, "requestId", evt.RequestID)
			}
		})
	}
}
