package order

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDBStore(t *testing.T) *DBStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	s, err := NewDBStore(DBStoreOpts{DB: db})
	if err != nil {
		t.Fatalf("new db store: %v", err)
	}
	return s
}

func TestNewDBStore_NilDB(t *testing.T) {
	if _, err := NewDBStore(DBStoreOpts{}); err == nil {
		t.Fatal("expected error for nil db")
	}
}

func TestDBStore_EmptyLoad(t *testing.T) {
	s := newTestDBStore(t)
	orders, err := s.LoadAll()
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(orders) != 0 {
		t.Errorf("expected empty store, got %d orders", len(orders))
	}
}

func TestDBStore_RoundTrip(t *testing.T) {
	s := newTestDBStore(t)

	first, err := s.Append(Order{ProductID: 1, ProductName: "Python Course", Price: "399,000", CustomerName: "Ali", Phone: "0912"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if first.Timestamp == "" {
		t.Error("expected append to assign a timestamp")
	}

	if _, err := s.Append(Order{ProductID: 2, ProductName: "E-Book", Price: "149,000", CustomerName: "Sara", Phone: "0935"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	orders, err := s.LoadAll()
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ProductID != 1 || orders[1].ProductID != 2 {
		t.Errorf("expected insertion order, got %+v", orders)
	}
	if orders[0].CustomerName != "Ali" || orders[1].Phone != "0935" {
		t.Errorf("field mismatch after round trip: %+v", orders)
	}
}

func TestDBStore_TimestampFormat(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	fixed := time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local)
	s, err := NewDBStore(DBStoreOpts{DB: db, Now: func() time.Time { return fixed }})
	if err != nil {
		t.Fatalf("new db store: %v", err)
	}

	stored, err := s.Append(Order{ProductID: 1, ProductName: "x", Price: "1", CustomerName: "y", Phone: "z"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if stored.Timestamp != "2026-08-29 09:00:00" {
		t.Errorf("unexpected timestamp %q", stored.Timestamp)
	}
}
