package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/humanoid-ai/humanoid-server/internal/logger"
	"github.com/humanoid-ai/humanoid-server/internal/model"
)

// Product manages the product catalog. Rows live in Postgres, image bytes in
// object storage; the row is created only after the image upload succeeds,
// and a failed insert compensates by removing the uploaded object.
type Product struct {
	products model.ProductStore
	storage  model.Storage
	logger   *logger.Logger
}

func NewProduct(products model.ProductStore, storage model.Storage, logger *logger.Logger) *Product {
	return &Product{
		products: products,
		storage:  storage,
		logger:   logger,
	}
}

// CreateProductParams describes a product to create. Image is optional.
type CreateProductParams struct {
	OwnerID     uuid.UUID
	Name        string
	Description string
	PriceCents  int64
	Image       io.Reader
}

func (s *Product) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	if params.Name == "" {
		return model.Product{}, fmt.Errorf("product name is required")
	}
	if params.PriceCents < 0 {
		return model.Product{}, fmt.Errorf("product price cannot be negative")
	}

	product := model.Product{
		ID:          uuid.New(),
		OwnerID:     params.OwnerID,
		Name:        params.Name,
		Description: params.Description,
		PriceCents:  params.PriceCents,
	}

	if params.Image != nil {
		product.ImageKey = s.generateImageKey(params.OwnerID, product.ID)
		if err := s.storage.Upload(ctx, product.ImageKey, params.Image); err != nil {
			return model.Product{}, fmt.Errorf("failed to upload image: %w", err)
		}
	}

	product, err := s.products.Create(ctx, product)
	if err != nil {
		if product.ImageKey != "" {
			if err := s.storage.Delete(ctx, product.ImageKey); err != nil {
				s.logger.Error("Failed to delete image from storage", "error", err)
			}
		}
		return model.Product{}, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *Product) GetProduct(ctx context.Context, userID, productID uuid.UUID) (model.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to get product by id: %w", err)
	}

	if product.OwnerID != userID {
		return model.Product{}, model.ErrNotFound
	}

	return product, nil
}

func (s *Product) GetProducts(ctx context.Context, userID uuid.UUID) ([]model.Product, error) {
	products, err := s.products.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get products by user id: %w", err)
	}

	return products, nil
}

// GetProductImage streams the product's image from object storage.
func (s *Product) GetProductImage(ctx context.Context, userID, productID uuid.UUID) (io.ReadCloser, error) {
	product, err := s.GetProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	if product.ImageKey == "" {
		return nil, model.ErrNotFound
	}

	reader, err := s.storage.Download(ctx, product.ImageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to download from storage: %w", err)
	}

	return reader, nil
}

func (s *Product) DeleteProduct(ctx context.Context, userID, productID uuid.UUID) error {
	product, err := s.products.GetByID(ctx, productID)
	if errors.Is(err, model.ErrNotFound) {
		return model.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if product.OwnerID != userID {
		return model.ErrNotFound
	}

	if product.ImageKey != "" {
		if err := s.storage.Delete(ctx, product.ImageKey); err != nil {
			s.logger.Error("Failed to delete image from storage", "error", err)
		}
	}

	if err := s.products.Delete(ctx, productID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

func (s *Product) generateImageKey(userID, productID uuid.UUID) string {
	return fmt.Sprintf("user-%s/product-%s/image-%s", userID.String(), productID.String(), uuid.New().String())
}
