package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/humanoid-ai/humanoid-server/internal/logger"
	servermocks "github.com/humanoid-ai/humanoid-server/internal/mocks"
	"github.com/humanoid-ai/humanoid-server/internal/model"
)

func TestProduct_CreateProduct_WithImage(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	products := &servermocks.ProductStore{}
	storage := &servermocks.Storage{}

	var uploadedKey string
	storage.On("Upload", ctx, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		uploadedKey = args.Get(1).(string)
	}).Return(nil).Once()

	products.On("Create", ctx, mock.MatchedBy(func(p model.Product) bool {
		return p.OwnerID == userID && p.Name == "widget" && p.ImageKey != ""
	})).Return(model.Product{ID: uuid.New(), OwnerID: userID, Name: "widget"}, nil).Once()

	svc := NewProduct(products, storage, logger.New(0))

	_, err := svc.CreateProduct(ctx, CreateProductParams{
		OwnerID:    userID,
		Name:       "widget",
		PriceCents: 1999,
		Image:      strings.NewReader("image-bytes"),
	})
	require.NoError(t, err)
	assert.Contains(t, uploadedKey, "user-"+userID.String())
}

func TestProduct_CreateProduct_InsertFailureCompensates(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	products := &servermocks.ProductStore{}
	storage := &servermocks.Storage{}

	storage.On("Upload", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	products.On("Create", ctx, mock.Anything).Return(model.Product{}, assert.AnError).Once()
	// The uploaded object must not be orphaned.
	storage.On("Delete", ctx, mock.Anything).Return(nil).Once()

	svc := NewProduct(products, storage, logger.New(0))

	_, err := svc.CreateProduct(ctx, CreateProductParams{
		OwnerID: userID,
		Name:    "widget",
		Image:   strings.NewReader("image-bytes"),
	})
	require.Error(t, err)
	storage.AssertCalled(t, "Delete", ctx, mock.Anything)
}

func TestProduct_CreateProduct_NoImage(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	products := &servermocks.ProductStore{}
	storage := &servermocks.Storage{}

	products.On("Create", ctx, mock.MatchedBy(func(p model.Product) bool {
		return p.ImageKey == ""
	})).Return(model.Product{ID: uuid.New(), OwnerID: userID}, nil).Once()

	svc := NewProduct(products, storage, logger.New(0))

	_, err := svc.CreateProduct(ctx, CreateProductParams{OwnerID: userID, Name: "widget"})
	require.NoError(t, err)
	storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestProduct_GetProduct_OtherOwner(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	products := &servermocks.ProductStore{}
	storage := &servermocks.Storage{}

	products.On("GetByID", ctx, productID).Return(model.Product{
		ID:      productID,
		OwnerID: uuid.New(),
	}, nil).Once()

	svc := NewProduct(products, storage, logger.New(0))

	_, err := svc.GetProduct(ctx, uuid.New(), productID)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestProduct_DeleteProduct_RemovesImage(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	products := &servermocks.ProductStore{}
	storage := &servermocks.Storage{}

	products.On("GetByID", ctx, productID).Return(model.Product{
		ID:       productID,
		OwnerID:  userID,
		ImageKey: "user-x/product-y/image-z",
	}, nil).Once()
	storage.On("Delete", ctx, "user-x/product-y/image-z").Return(nil).Once()
	products.On("Delete", ctx, productID).Return(nil).Once()

	svc := NewProduct(products, storage, logger.New(0))

	require.NoError(t, svc.DeleteProduct(ctx, userID, productID))
}
