package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type journeyClient struct {
	t     *testing.T
	base  string
	token string
}

func (c *journeyClient) do(method, path string, body any) (*http.Response, []byte) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func (c *journeyClient) json(method, path string, body any, wantStatus int, out any) {
	c.t.Helper()
	resp, raw := c.do(method, path, body)
	if resp.StatusCode != wantStatus {
		c.t.Fatalf("%s %s: expected %d, got %d: %s", method, path, wantStatus, resp.StatusCode, raw)
	}
	if out == nil {
		return
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		c.t.Fatalf("decode data: %v", err)
	}
}

func TestPayrollJourney(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig()
	cfg.DatabaseURL = dsn
	cfg.RunMigrations = true
	cfg.RunSeed = true
	cfg.SeedAdminUsername = "journey-admin"
	cfg.SeedAdminPassword = "journey-pass"

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer app.Close()
	srv := httptest.NewServer(app.Router)
	defer srv.Close()

	client := &journeyClient{t: t, base: srv.URL + "/api/v1"}

	var login struct {
		Token string `json:"token"`
	}
	client.json(http.MethodPost, "/auth/login", map[string]string{"username": "journey-admin", "password": "journey-pass"}, http.StatusOK, &login)
	if login.Token == "" {
		t.Fatal("expected token")
	}
	client.token = login.Token

	var branch struct {
		ID int64 `json:"id"`
	}
	name := fmt.Sprintf("journey-%d", time.Now().UnixNano())
	client.json(http.MethodPost, "/branches", map[string]string{"name": name}, http.StatusCreated, &branch)
	defer client.json(http.MethodDelete, fmt.Sprintf("/branches/%d", branch.ID), nil, http.StatusOK, nil)

	var employee struct {
		ID int64 `json:"id"`
	}
	client.json(http.MethodPost, fmt.Sprintf("/branches/%d/employees", branch.ID), map[string]any{
		"name":               "Ali",
		"dailyWage":          100,
		"hourlyWage":         10,
		"insuranceDeduction": 50,
	}, http.StatusCreated, &employee)

	attendancePath := fmt.Sprintf("/employees/%d/attendance", employee.ID)
	entry := map[string]any{"date": "2025-03-04", "arrival": "08:00", "departure": "19:00", "lateMinutes": 30}
	client.json(http.MethodPost, attendancePath, entry, http.StatusCreated, nil)
	// a second post for the same day replaces the first
	client.json(http.MethodPost, attendancePath, entry, http.StatusCreated, nil)

	var history struct {
		Records []struct {
			Hours float64 `json:"hours"`
		} `json:"records"`
	}
	client.json(http.MethodGet, attendancePath, nil, http.StatusOK, &history)
	if len(history.Records) != 1 || history.Records[0].Hours != 11 {
		t.Fatalf("expected one 11h record, got %+v", history.Records)
	}

	client.json(http.MethodPost, fmt.Sprintf("/employees/%d/advances", employee.ID), map[string]any{"amount": 300, "months": 3}, http.StatusCreated, nil)

	var sheet struct {
		Rows []struct {
			Breakdown struct {
				Net float64 `json:"net"`
			} `json:"breakdown"`
		} `json:"rows"`
	}
	client.json(http.MethodGet, fmt.Sprintf("/reports/payroll?month=3&year=2025&branch_id=%d", branch.ID), nil, http.StatusOK, &sheet)
	if len(sheet.Rows) != 1 {
		t.Fatalf("expected one payroll row, got %d", len(sheet.Rows))
	}

	resp, raw := client.do(http.MethodGet, fmt.Sprintf("/reports/payroll?month=3&year=2025&branch_id=%d&export=csv", branch.ID), nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(raw), "\nAli,") {
		t.Fatalf("unexpected csv export %d: %s", resp.StatusCode, raw)
	}

	resp, raw = client.do(http.MethodGet, fmt.Sprintf("/receipts/%d/3/2025?format=pdf", employee.ID), nil)
	if resp.StatusCode != http.StatusOK || !bytes.HasPrefix(raw, []byte("%PDF")) {
		t.Fatalf("unexpected receipt pdf %d", resp.StatusCode)
	}

	resp, _ = client.do(http.MethodGet, fmt.Sprintf("/branches/%d/receipts/3/2025?format=pdf&per_page=2", branch.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected branch receipts status %d", resp.StatusCode)
	}

	var events []struct {
		EntityID string `json:"entityId"`
	}
	client.json(http.MethodGet, "/audit/events?action=advance.create&limit=50", nil, http.StatusOK, &events)
	found := false
	for _, evt := range events {
		if evt.EntityID == fmt.Sprint(employee.ID) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected advance audit event for employee %d", employee.ID)
	}
}
