package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Actions recorded in the audit trail.
const (
	ActionBranchDelete     = "branch.delete"
	ActionEmployeeDelete   = "employee.delete"
	ActionWagesUpdate      = "employee.wages"
	ActionManualEntry      = "attendance.manual"
	ActionAdvanceCreate    = "advance.create"
	ActionWithdrawalCreate = "withdrawal.create"
	ActionUserCreate       = "user.create"
	ActionUserDelete       = "user.delete"
	ActionUserAccess       = "user.access"
)

type Event struct {
	ID            int64           `json:"id"`
	ActorID       int64           `json:"actorId"`
	ActorUsername string          `json:"actorUsername"`
	Action        string          `json:"action"`
	EntityType    string          `json:"entityType"`
	EntityID      string          `json:"entityId"`
	RequestID     string          `json:"requestId"`
	IP            string          `json:"ip"`
	Detail        json.RawMessage `json:"detail,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type Filter struct {
	Action     string
	EntityType string
	ActorID    int64
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) Record(ctx context.Context, evt Event) error {
	var detail []byte
	if len(evt.Detail) > 0 {
		detail = evt.Detail
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor_user_id, actor_username, action, entity_type, entity_id, request_id, ip, detail_json)
    VALUES (NULLIF($1::bigint, 0), $2, $3, $4, $5, $6, $7, $8)
  `, evt.ActorID, evt.ActorUsername, evt.Action, evt.EntityType, evt.EntityID, evt.RequestID, evt.IP, detail)
	return err
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// List returns events newest first. A nil limit returns every match.
func (s *Service) List(ctx context.Context, filter Filter, limit *int, offset int) ([]Event, error) {
	query, args := buildBaseQuery(`SELECT id, COALESCE(actor_user_id, 0), actor_username, action, entity_type,
      entity_id, request_id, ip, detail_json, created_at`, filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.ActorUsername, &evt.Action, &evt.EntityType,
			&evt.EntityID, &evt.RequestID, &evt.IP, &evt.Detail, &evt.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func buildBaseQuery(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_events WHERE true"
	args := []any{}
	if filter.Action != "" {
		args = append(args, filter.Action)
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		query += fmt.Sprintf(" AND entity_type = $%d", len(args))
	}
	if filter.ActorID != 0 {
		args = append(args, filter.ActorID)
		query += fmt.Sprintf(" AND actor_user_id = $%d", len(args))
	}
	return query, args
}
