package cart

import (
	"context"
	"errors"

	"furnimart-be/internal/catalog"
)

type Service interface {
	Add(ctx context.Context, params AddItemParams) (*Item, error)
	SetQuantity(ctx context.Context, userID, productID uint, quantity int) error
	Remove(ctx context.Context, userID, productID uint) error
	Clear(ctx context.Context, userID uint) error
	List(ctx context.Context, userID uint) ([]Item, error)
}

type service struct {
	repo    Repository
	catalog catalog.Repository
}

func NewService(repo Repository, cat catalog.Repository) Service {
	return &service{repo: repo, catalog: cat}
}

func (s *service) Add(ctx context.Context, params AddItemParams) (*Item, error) {
	if params.Quantity <= 0 {
		return nil, ErrBadQuantity
	}

	// Reject products that do not exist or were hidden from the catalog.
	f, err := s.catalog.GetByID(ctx, params.ProductID)
	if err != nil {
		return nil, err
	}
	if !f.Active {
		return nil, catalog.ErrProductNotFound
	}

	return s.repo.Upsert(ctx, params)
}

func (s *service) SetQuantity(ctx context.Context, userID, productID uint, quantity int) error {
	if quantity <= 0 {
		// Setting a line to zero removes it.
		err := s.repo.Remove(ctx, userID, productID)
		if errors.Is(err, ErrItemNotFound) {
			return nil
		}
		return err
	}
	return s.repo.SetQuantity(ctx, userID, productID, quantity)
}

func (s *service) Remove(ctx context.Context, userID, productID uint) error {
	return s.repo.Remove(ctx, userID, productID)
}

func (s *service) Clear(ctx context.Context, userID uint) error {
	return s.repo.Clear(ctx, userID)
}

func (s *service) List(ctx context.Context, userID uint) ([]Item, error) {
	return s.repo.List(ctx, userID)
}
