package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"wagebook/internal/domain/auth"
	"wagebook/internal/requestctx"
)

type permissionStoreFunc func(ctx context.Context, userID int64, permission string) (bool, error)

func (f permissionStoreFunc) HasPermission(ctx context.Context, userID int64, permission string) (bool, error) {
	return f(ctx, userID, permission)
}

func TestRequirePermission(t *testing.T) {
	store := permissionStoreFunc(func(_ context.Context, userID int64, permission string) (bool, error) {
		switch userID {
		case 1:
			return permission == auth.PermViewPayroll, nil
		case 2:
			return false, errors.New("db down")
		}
		return false, nil
	})
	handler := RequirePermission(auth.PermViewPayroll, store)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		scope  *auth.Scope
		status int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"granted", &auth.Scope{UserID: 1}, http.StatusNoContent},
		{"store error", &auth.Scope{UserID: 2}, http.StatusInternalServerError},
		{"denied", &auth.Scope{UserID: 3}, http.StatusForbidden},
		{"admin bypass", &auth.Scope{UserID: 2, IsAdmin: true}, http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.scope != nil {
			req = req.WithContext(requestctx.WithScope(req.Context(), *tc.scope))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, rec.Code)
		}
	}
}
