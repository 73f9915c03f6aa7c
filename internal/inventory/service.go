package inventory

import (
	"context"
	"errors"

	"furnimart-be/internal/catalog"
	"furnimart-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	// Allocate deducts qty for the product FIFO across batches and resyncs
	// the catalog projection. Quantity validation is the caller's job.
	Allocate(ctx context.Context, productID uint, qty int) error

	// Restore credits qty back to the ledger and resyncs the projection.
	Restore(ctx context.Context, productID uint, qty int) error

	// Import records one import event: upserts the batch, appends the
	// audit record, pushes latest prices onto the product and resyncs.
	// The product is created when it does not exist yet.
	Import(ctx context.Context, in ImportInput) (*catalog.Furniture, error)

	TotalRemaining(ctx context.Context, productID uint) (int, error)
	ListByProduct(ctx context.Context, productID uint) ([]Batch, error)
	Overview(ctx context.Context) ([]OverviewRow, error)
	ImportHistory(ctx context.Context) ([]ImportRecord, error)
}

type service struct {
	repo        Repository
	catalogRepo catalog.Repository
}

func NewService(repo Repository, catalogRepo catalog.Repository) Service {
	return &service{repo: repo, catalogRepo: catalogRepo}
}

func (s *service) Allocate(ctx context.Context, productID uint, qty int) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Allocate"),
		zap.Uint("product_id", productID),
		zap.Int("quantity", qty),
	)

	err := s.repo.AllocateFIFO(ctx, productID, qty)

	// A failed allocation can still have consumed batches, so the
	// projection is resynced on the insufficient-stock path too.
	if err == nil || errors.Is(err, ErrInsufficientStock) {
		if syncErr := s.catalogRepo.ResyncStock(ctx, productID); syncErr != nil {
			log.Error("projection resync failed after allocation", zap.Error(syncErr))
		}
	}

	if err != nil {
		log.Warn("allocation failed", zap.Error(err))
		return err
	}

	log.Info("stock allocated")
	return nil
}

func (s *service) Restore(ctx context.Context, productID uint, qty int) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Restore"),
		zap.Uint("product_id", productID),
		zap.Int("quantity", qty),
	)

	if err := s.repo.RestoreLatest(ctx, productID, qty); err != nil {
		log.Error("restore failed", zap.Error(err))
		return err
	}

	if err := s.catalogRepo.ResyncStock(ctx, productID); err != nil {
		log.Error("projection resync failed after restore", zap.Error(err))
	}

	log.Info("stock restored")
	return nil
}

func (s *service) Import(ctx context.Context, in ImportInput) (*catalog.Furniture, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Import"),
		zap.String("product_name", in.ProductName),
		zap.Int("quantity", in.Quantity),
		zap.String("supplier", in.Supplier),
	)

	product, err := s.catalogRepo.GetByName(ctx, in.ProductName)
	if errors.Is(err, catalog.ErrProductNotFound) {
		product = &catalog.Furniture{
			Name:        in.ProductName,
			Description: in.Description,
			Category:    in.Category,
			Material:    in.Material,
			Image:       in.Image,
			CostPrice:   in.CostPrice,
			SalePrice:   in.SalePrice,
		}
		if err := s.catalogRepo.Create(ctx, product); err != nil {
			log.Error("failed to create product for import", zap.Error(err))
			return nil, err
		}
	} else if err != nil {
		return nil, err
	} else {
		_, err = s.catalogRepo.Update(ctx, product.ID, catalog.UpdateFurnitureParams{
			Description: &in.Description,
			Category:    &in.Category,
			Material:    &in.Material,
			Image:       imageOrNil(in.Image),
		})
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.ImportBatch(ctx, product.ID, in); err != nil {
		log.Error("failed to record import", zap.Error(err))
		return nil, err
	}

	// Product prices always follow the latest import, last write wins.
	if err := s.catalogRepo.UpdateLatestPrices(ctx, product.ID, in.CostPrice, in.SalePrice); err != nil {
		log.Error("failed to update latest prices", zap.Error(err))
		return nil, err
	}

	if err := s.catalogRepo.ResyncStock(ctx, product.ID); err != nil {
		log.Error("projection resync failed after import", zap.Error(err))
	}

	updated, err := s.catalogRepo.GetByID(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	log.Info("import recorded", zap.Uint("product_id", product.ID))
	return updated, nil
}

func (s *service) TotalRemaining(ctx context.Context, productID uint) (int, error) {
	return s.repo.TotalRemaining(ctx, productID)
}

func (s *service) ListByProduct(ctx context.Context, productID uint) ([]Batch, error) {
	return s.repo.ListByProduct(ctx, productID)
}

func (s *service) Overview(ctx context.Context) ([]OverviewRow, error) {
	return s.repo.Overview(ctx)
}

func (s *service) ImportHistory(ctx context.Context) ([]ImportRecord, error) {
	return s.repo.ImportHistory(ctx)
}

func imageOrNil(img string) *string {
	if img == "" {
		return nil
	}
	return &img
}
