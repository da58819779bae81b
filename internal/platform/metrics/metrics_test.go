package metrics

import (
	"testing"
	"time"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 0)
	c.RecordReport("payroll.csv", 2)
	c.RecordReport("payroll.csv", 0)
	c.RecordReport("receipts.pdf", 1)

	snap := c.Snapshot()
	if snap["requestsTotal"].(uint64) != 3 || snap["errorsTotal"].(uint64) != 1 || snap["rateLimitedTotal"].(uint64) != 1 {
		t.Fatalf("unexpected request counters: %v", snap)
	}
	if snap["avgDurationMs"].(float64) != 40.0/3 {
		t.Fatalf("unexpected average: %v", snap["avgDurationMs"])
	}
	reports := snap["reportsTotal"].(map[string]uint64)
	if reports["payroll.csv"] != 2 || reports["receipts.pdf"] != 1 {
		t.Fatalf("unexpected report counters: %v", reports)
	}
	if snap["skippedEmployeesTotal"].(uint64) != 3 {
		t.Fatalf("unexpected skipped total: %v", snap["skippedEmployeesTotal"])
	}
}
