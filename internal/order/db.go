package order

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Record is the gorm model for DB-backed order stores. The row insert is
// the atomic append, so no store-level locking is needed.
type Record struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	ProductID    int    `gorm:"not null"`
	ProductName  string `gorm:"size:255;not null"`
	Price        string `gorm:"size:64;not null"`
	CustomerName string `gorm:"size:255;not null"`
	Phone        string `gorm:"size:64;not null"`
	CreatedAt    time.Time
}

// TableName keeps the table name stable across backends.
func (Record) TableName() string { return "orders" }

// DBStore persists orders in a relational database via gorm (sqlite or
// mysql, selected in config). It implements the same Store contract as
// FileStore.
type DBStore struct {
	db  *gorm.DB
	now func() time.Time
}

// DBStoreOpts holds parameters for creating a DBStore.
type DBStoreOpts struct {
	DB  *gorm.DB
	Now func() time.Time // defaults to time.Now; injectable for tests
}

// NewDBStore creates a DBStore and migrates the orders table.
func NewDBStore(opts DBStoreOpts) (*DBStore, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("order: db store: db is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if err := opts.DB.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("order: migrate orders table: %w", err)
	}
	return &DBStore{db: opts.DB, now: now}, nil
}

// Append inserts a new order row. The database assigns ordering; the
// timestamp is taken at insert time.
func (s *DBStore) Append(o Order) (Order, error) {
	rec := Record{
		ProductID:    o.ProductID,
		ProductName:  o.ProductName,
		Price:        o.Price,
		CustomerName: o.CustomerName,
		Phone:        o.Phone,
		CreatedAt:    s.now(),
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return Order{}, fmt.Errorf("order: insert order: %w", err)
	}
	o.Timestamp = rec.CreatedAt.Format(TimestampLayout)
	return o, nil
}

// LoadAll returns every order row, oldest first.
func (s *DBStore) LoadAll() ([]Order, error) {
	var recs []Record
	if err := s.db.Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("order: load orders: %w", err)
	}
	orders := make([]Order, 0, len(recs))
	for _, r := range recs {
		orders = append(orders, Order{
			ProductID:    r.ProductID,
			ProductName:  r.ProductName,
			Price:        r.Price,
			CustomerName: r.CustomerName,
			Phone:        r.Phone,
			Timestamp:    r.CreatedAt.Format(TimestampLayout),
		})
	}
	return orders, nil
}
