package clerk

import (
	"strings"
	"testing"
	"time"

	"github.com/zulandar/shopclerk/internal/order"
)

func stamp(t time.Time) string {
	return t.Format(order.TimestampLayout)
}

func TestBuildDailyDigest_CountsRecentOrders(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local)
	store := &memStore{orders: []order.Order{
		{ProductName: "Python Course", Timestamp: stamp(now.Add(-2 * time.Hour))},
		{ProductName: "Python Course", Timestamp: stamp(now.Add(-23 * time.Hour))},
		{ProductName: "Marketing E-Book", Timestamp: stamp(now.Add(-1 * time.Hour))},
		{ProductName: "Python Course", Timestamp: stamp(now.Add(-30 * time.Hour))}, // outside window
	}}

	text, err := BuildDailyDigest(store, now)
	if err != nil {
		t.Fatalf("build digest: %v", err)
	}
	if !strings.Contains(text, "Orders placed: 3") {
		t.Errorf("expected 3 orders in window:\n%s", text)
	}
	if !strings.Contains(text, "Python Course: 2") {
		t.Errorf("expected per-product count:\n%s", text)
	}
	if !strings.Contains(text, "Marketing E-Book: 1") {
		t.Errorf("expected per-product count:\n%s", text)
	}
	// Busiest product listed first.
	if strings.Index(text, "Python Course") > strings.Index(text, "Marketing E-Book") {
		t.Errorf("expected busiest product first:\n%s", text)
	}
}

func TestBuildDailyDigest_SuppressedWhenEmpty(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local)
	store := &memStore{orders: []order.Order{
		{ProductName: "Python Course", Timestamp: stamp(now.Add(-48 * time.Hour))},
	}}

	text, err := BuildDailyDigest(store, now)
	if err != nil {
		t.Fatalf("build digest: %v", err)
	}
	if text != "" {
		t.Errorf("expected suppressed digest, got:\n%s", text)
	}
}

func TestBuildDailyDigest_SkipsUnparseableTimestamps(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local)
	store := &memStore{orders: []order.Order{
		{ProductName: "Python Course", Timestamp: "garbage"},
		{ProductName: "Python Course", Timestamp: stamp(now.Add(-time.Hour))},
	}}

	text, err := BuildDailyDigest(store, now)
	if err != nil {
		t.Fatalf("build digest: %v", err)
	}
	if !strings.Contains(text, "Orders placed: 1") {
		t.Errorf("expected only the parseable order counted:\n%s", text)
	}
}
