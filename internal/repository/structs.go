package repository

import (
	"errors"
	"time"
)

var ErrObjectNotFound = errors.New("not found")

type Order struct {
	ID                 string    `db:"id"`
	Status             string    `db:"status"`
	Pipeline           string    `db:"pipeline"`
	DeliveryFee        int64     `db:"delivery_fee"`
	TotalAmount        int64     `db:"total_amount"`
	VerificationReport *string   `db:"verification_report"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

type OrderItem struct {
	ID           int64  `db:"id"`
	OrderID      string `db:"order_id"`
	ProductID    string `db:"product_id"`
	ProductName  string `db:"product_name"`
	ProductImage string `db:"product_image"`
	ListPrice    int64  `db:"list_price"`
	AgreedPrice  int64  `db:"agreed_price"`
	IsSwap       bool   `db:"is_swap"`
	Position     int    `db:"position"`
}

type TrackingStep struct {
	ID          int64      `db:"id"`
	OrderID     string     `db:"order_id"`
	Status      string     `db:"status"`
	Label       string     `db:"label"`
	Position    int        `db:"position"`
	Completed   bool       `db:"completed"`
	CompletedAt *time.Time `db:"completed_at"`
	Location    *string    `db:"location"`
}

type HistoryEntry struct {
	ID        int64     `db:"id"`
	OrderID   string    `db:"order_id"`
	OldStatus string    `db:"old_status"`
	NewStatus string    `db:"new_status"`
	ChangedAt time.Time `db:"changed_at"`
}
