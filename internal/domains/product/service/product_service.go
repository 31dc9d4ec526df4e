package service

import (
	"context"
	"strings"

	"catalog-importer/internal/domains/product/model"
	"catalog-importer/internal/domains/product/repository"
)

type ProductService interface {
	GetBySKU(ctx context.Context, sku string) (*model.Product, error)
	GetDetail(ctx context.Context, sku string) (*model.DetailView, error)
}

type productService struct {
	repo repository.Repository
}

func NewProductService(repo repository.Repository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) GetBySKU(ctx context.Context, sku string) (*model.Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, model.ErrEmptySKU
	}
	return s.repo.FindBySKU(ctx, sku)
}

func (s *productService) GetDetail(ctx context.Context, sku string) (*model.DetailView, error) {
	p, err := s.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	return model.BuildDetailView(p), nil
}
