package postgresql

import (
	"context"

	"github.com/gadgettrust/orderflow/internal/db"
	"github.com/gadgettrust/orderflow/internal/repository"
)

type ItemRepo struct {
	db db.DB
}

func NewItemRepo(db db.DB) *ItemRepo {
	return &ItemRepo{db: db}
}

func (r *ItemRepo) Create(ctx context.Context, item *repository.OrderItem) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO order_items (
            order_id, product_id, product_name, product_image, list_price, agreed_price, is_swap, position
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, item.OrderID, item.ProductID, item.ProductName, item.ProductImage, item.ListPrice, item.AgreedPrice, item.IsSwap, item.Position)
	return err
}

func (r *ItemRepo) GetByOrderID(ctx context.Context, orderID string) ([]*repository.OrderItem, error) {
	var items []*repository.OrderItem
	err := r.db.Select(ctx, &items, `
        SELECT * FROM order_items
        WHERE order_id = $1
        ORDER BY position ASC
    `, orderID)
	return items, err
}
