package services

import (
	"context"
	"errors"
	"strings"

	apperrors "order-intake-service/common/errors"
	"order-intake-service/common/logger"
	"order-intake-service/models"
	"order-intake-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductService manages the catalog rows orders are priced from.
type ProductService interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type productServiceImpl struct {
	store  repository.Store
	logger *zap.Logger
}

func NewProductService(store repository.Store, logger *zap.Logger) ProductService {
	return &productServiceImpl{store: store, logger: logger}
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	fields := map[string]string{}
	name := strings.TrimSpace(req.Name)
	sku := strings.ToUpper(strings.TrimSpace(req.SKU))
	if name == "" {
		fields["name"] = "is required"
	}
	if sku == "" {
		fields["sku"] = "is required"
	}
	if req.Price.IsNegative() {
		fields["price"] = "must not be negative"
	} else if req.Price.Exponent() < -2 && !req.Price.Equal(RoundMoney(req.Price)) {
		fields["price"] = "must have at most 2 decimal places"
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation("Product request is invalid", fields)
	}

	product := &models.Product{
		Name:     name,
		SKU:      sku,
		Price:    RoundMoney(req.Price),
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	if err := s.store.Repos().Products.Create(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("A product with this SKU already exists")
		}
		return nil, asServiceError(err, "create product")
	}

	logger.For(ctx, s.logger).Info("Product created", zap.String("product_id", product.ID.String()), zap.String("sku", sku))
	return product, nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.store.Repos().Products.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Product not found")
	}
	if err != nil {
		return nil, asServiceError(err, "get product")
	}
	return product, nil
}
