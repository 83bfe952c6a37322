package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/humanoid-ai/humanoid-server/internal/model"
)

var _ model.ProductStore = (*ProductRepository)(nil)

type ProductRepository struct {
	db *Connection
}

func NewProductRepository(db *Connection) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	const query = `
        INSERT INTO products (id, owner_id, name, description, price_cents, image_key, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
        RETURNING id, owner_id, name, description, price_cents, image_key, created_at, updated_at
    `

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	var saved model.Product
	err := r.db.QueryRow(ctx, query, p.ID, p.OwnerID, p.Name, p.Description, p.PriceCents, p.ImageKey).Scan(
		&saved.ID, &saved.OwnerID, &saved.Name, &saved.Description, &saved.PriceCents,
		&saved.ImageKey, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to create product: %w", err)
	}
	return saved, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Product, error) {
	const query = `
        SELECT id, owner_id, name, description, price_cents, image_key, created_at, updated_at
        FROM products WHERE id = $1
    `
	var p model.Product
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.PriceCents,
		&p.ImageKey, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, model.ErrNotFound
		}
		return model.Product{}, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Product, error) {
	const query = `
        SELECT id, owner_id, name, description, price_cents, image_key, created_at, updated_at
        FROM products WHERE owner_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(
			&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.PriceCents,
			&p.ImageKey, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM products WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
