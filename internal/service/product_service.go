package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/repository"
)

type ProductService interface {
	Create(ctx context.Context, product *models.Product) (int64, error)
	Get(ctx context.Context, userID, productID int64) (*models.Product, error)
	List(ctx context.Context, userID int64) ([]*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Remove(ctx context.Context, userID, productID int64) error
}

type productService struct {
	pr repository.ProductRepository
}

func NewProductService(pr repository.ProductRepository) ProductService {
	return &productService{
		pr: pr,
	}
}

func (s *productService) Create(ctx context.Context, product *models.Product) (int64, error) {
	if product.Name == "" {
		err := errors.New("product name is required")
		slog.Info(err.Error())
		return 0, err
	}
	return s.pr.Create(ctx, product)
}

func (s *productService) Get(ctx context.Context, userID, productID int64) (*models.Product, error) {
	product, err := s.pr.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.UserID != userID {
		return nil, errors.New("product not found")
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, userID int64) ([]*models.Product, error) {
	return s.pr.ListByUserID(ctx, userID)
}

func (s *productService) Update(ctx context.Context, product *models.Product) error {
	isValid, err := s.pr.CheckByUserID(ctx, product.ID, product.UserID)
	if err != nil {
		return err
	}
	if !isValid {
		err = errors.New("product not found")
		slog.Info(err.Error())
		return err
	}
	return s.pr.Update(ctx, product)
}

func (s *productService) Remove(ctx context.Context, userID, productID int64) error {
	isValid, err := s.pr.CheckByUserID(ctx, productID, userID)
	if err != nil {
		return err
	}
	if !isValid {
		err = errors.New("product not found")
		slog.Info(err.Error())
		return err
	}
	return s.pr.Remove(ctx, productID)
}
