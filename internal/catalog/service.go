package catalog

import (
	"context"

	"furnimart-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, category string) ([]Furniture, error)
	GetByID(ctx context.Context, id uint) (*Furniture, error)
	Update(ctx context.Context, id uint, params UpdateFurnitureParams) (*Furniture, error)
	Hide(ctx context.Context, id uint) error
	Unhide(ctx context.Context, id uint) error
	ResyncStock(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, category string) ([]Furniture, error) {
	return s.repo.List(ctx, category, true)
}

func (s *service) GetByID(ctx context.Context, id uint) (*Furniture, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id uint, params UpdateFurnitureParams) (*Furniture, error) {
	return s.repo.Update(ctx, id, params)
}

func (s *service) Hide(ctx context.Context, id uint) error {
	return s.repo.SetActive(ctx, id, false)
}

func (s *service) Unhide(ctx context.Context, id uint) error {
	return s.repo.SetActive(ctx, id, true)
}

// ResyncStock recomputes the derived total after any ledger movement.
// A failure leaves total_stock stale but never corrupts the ledger.
func (s *service) ResyncStock(ctx context.Context, id uint) error {
	err := s.repo.ResyncStock(ctx, id)
	if err != nil {
		logger.FromCtx(ctx).Error("stock resync failed",
			zap.Uint("product_id", id),
			zap.Error(err),
		)
	}
	return err
}
