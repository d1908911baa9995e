package store

import (
	"context"
	"database/sql"
	"fmt"

	"gamestore/internal/models"

	"github.com/jmoiron/sqlx"
)

const (
	orderColumns  = "id, order_date, creation_date, paid_date, customer_id"
	detailColumns = "seq, id, product_id, product_name, sum, price, quantity, discount, order_id"
)

type OrderRepository struct {
	db DBTX
}

// Create inserts the order and its details. A customer id that has not been
// seen yet gets a stub customers row.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.CustomerID != nil {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO customers (id) VALUES ($1) ON CONFLICT (id) DO NOTHING", *order.CustomerID)
		if err != nil {
			return fmt.Errorf("failed to insert customer: %w", err)
		}
	}

	query := `
		INSERT INTO orders (id, order_date, creation_date, paid_date, customer_id)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		order.ID, order.OrderDate, order.CreationDate, order.PaidDate, order.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.OrderDetails {
		if err := r.createDetail(ctx, order.ID, &order.OrderDetails[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *OrderRepository) createDetail(ctx context.Context, orderID string, detail *models.OrderDetail) error {
	query := `
		INSERT INTO order_details (id, product_id, product_name, sum, price, quantity, discount, order_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq`

	detail.OrderID = orderID
	err := r.db.GetContext(ctx, &detail.Seq, query,
		detail.ID, detail.ProductID, detail.ProductName, detail.Sum,
		detail.Price, detail.Quantity, detail.Discount, orderID)
	if err != nil {
		return fmt.Errorf("failed to insert order detail: %w", err)
	}
	return nil
}

// GetByID returns the order with its details, or nil if absent.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.GetContext(ctx, &order,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	orders := []models.Order{order}
	if err := r.attachDetails(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ListPaid returns orders whose paid date is set.
func (r *OrderRepository) ListPaid(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, "paid_date IS NOT NULL")
}

// ListBasket returns orders that have not been paid.
func (r *OrderRepository) ListBasket(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, "paid_date IS NULL")
}

func (r *OrderRepository) list(ctx context.Context, predicate string) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.db.SelectContext(ctx, &orders,
		"SELECT "+orderColumns+" FROM orders WHERE "+predicate+" ORDER BY order_date, id")
	if err != nil {
		return nil, err
	}
	if err := r.attachDetails(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachDetails loads details for all orders in one query. Orders without
// details get an empty slice.
func (r *OrderRepository) attachDetails(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		orders[i].OrderDetails = []models.OrderDetail{}
	}

	query, args, err := sqlx.In(
		"SELECT "+detailColumns+" FROM order_details WHERE order_id IN (?) ORDER BY seq", ids)
	if err != nil {
		return err
	}

	var details []models.OrderDetail
	if err := r.db.SelectContext(ctx, &details, r.db.Rebind(query), args...); err != nil {
		return err
	}

	index := make(map[string]int, len(orders))
	for i := range orders {
		index[orders[i].ID] = i
	}
	for _, d := range details {
		if i, ok := index[d.OrderID]; ok {
			orders[i].OrderDetails = append(orders[i].OrderDetails, d)
		}
	}
	return nil
}
