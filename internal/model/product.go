package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProductStore defines persistence operations for products. Image bytes live
// in object storage; the row keeps only the object key.
type ProductStore interface {
	Create(ctx context.Context, p Product) (Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (Product, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Product struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Description string
	PriceCents  int64
	ImageKey    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
