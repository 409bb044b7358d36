package service

import (
	"context"

	"github.com/google/uuid"

	"ecommerce-backend/internal/apperr"
	"ecommerce-backend/internal/dto"
	"ecommerce-backend/internal/model"
	"ecommerce-backend/internal/repository"
)

// CatalogService is thin CRUD plumbing around the product/category
// store; the pipeline itself only reads products through repositories.
type CatalogService interface {
	CreateProduct(ctx context.Context, req *dto.CreateProductRequest) (*model.Product, error)
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
	ListProducts(ctx context.Context, page, limit int) ([]*model.Product, int64, error)
	CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*model.Category, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
}

type catalogServiceImpl struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) CatalogService {
	return &catalogServiceImpl{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *catalogServiceImpl) CreateProduct(ctx context.Context, req *dto.CreateProductRequest) (*model.Product, error) {
	if len(req.Name) < 3 || len(req.Name) > 50 {
		return nil, apperr.InvalidInput("product name must be between 3 and 50 characters")
	}
	if req.Price.IsNegative() || req.Price.IsZero() {
		return nil, apperr.InvalidInput("product price must be greater than zero")
	}
	if req.StockQuantity < 0 {
		return nil, apperr.InvalidInput("stock quantity cannot be negative")
	}

	if req.CategoryID != "" {
		if _, err := s.categoryRepo.FindByID(ctx, req.CategoryID); err != nil {
			return nil, err
		}
	}

	product := &model.Product{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		CategoryID:    req.CategoryID,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *catalogServiceImpl) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	return s.productRepo.FindByID(ctx, productID)
}

func (s *catalogServiceImpl) ListProducts(ctx context.Context, page, limit int) ([]*model.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return s.productRepo.List(ctx, (page-1)*limit, limit)
}

func (s *catalogServiceImpl) CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*model.Category, error) {
	if len(req.Name) < 2 || len(req.Name) > 50 {
		return nil, apperr.InvalidInput("category name must be between 2 and 50 characters")
	}

	category := &model.Category{
		ID:   uuid.NewString(),
		Name: req.Name,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *catalogServiceImpl) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return s.categoryRepo.List(ctx)
}
