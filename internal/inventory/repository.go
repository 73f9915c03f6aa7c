package inventory

import (
	"context"
	"database/sql"

	"furnimart-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	// AllocateFIFO walks the product's batches oldest entry first and
	// deducts until qty is covered. The batch rows are locked for the
	// duration, serializing concurrent allocations per product. When the
	// batches run out the partial deduction is still committed and
	// ErrInsufficientStock is returned.
	AllocateFIFO(ctx context.Context, productID uint, qty int) error

	// RestoreLatest credits qty back onto the most recently entered batch
	// for the product, creating a restock batch when none exists.
	RestoreLatest(ctx context.Context, productID uint, qty int) error

	// ImportBatch increments the product's batch for the given supplier
	// (or creates it) and always appends one immutable import record.
	ImportBatch(ctx context.Context, productID uint, in ImportInput) error

	TotalRemaining(ctx context.Context, productID uint) (int, error)
	ListByProduct(ctx context.Context, productID uint) ([]Batch, error)
	Overview(ctx context.Context) ([]OverviewRow, error)
	ImportHistory(ctx context.Context) ([]ImportRecord, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) AllocateFIFO(ctx context.Context, productID uint, qty int) error {
	log := logger.FromCtx(ctx).With(
		zap.Uint("product_id", productID),
		zap.Int("quantity", qty),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Row locks make the read-decrement-write sequence a per-product
	// critical section: a concurrent allocation blocks here until commit.
	rows, err := tx.QueryContext(ctx, `
		SELECT id, remaining_quantity
		FROM inventory_batches
		WHERE product_id = $1 AND remaining_quantity > 0
		ORDER BY entry_date ASC, id ASC
		FOR UPDATE`, productID)
	if err != nil {
		return err
	}

	type batchRow struct {
		id        uint
		remaining int
	}
	var batches []batchRow
	for rows.Next() {
		var b batchRow
		if err := rows.Scan(&b.id, &b.remaining); err != nil {
			rows.Close()
			return err
		}
		batches = append(batches, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if len(batches) == 0 {
		return ErrNoBatches
	}

	outstanding := qty
	for _, b := range batches {
		if outstanding <= 0 {
			break
		}

		deduct := b.remaining
		if outstanding < deduct {
			deduct = outstanding
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE inventory_batches
			SET remaining_quantity = remaining_quantity - $2
			WHERE id = $1`, b.id, deduct); err != nil {
			return err
		}
		outstanding -= deduct
	}

	// Partial deductions are committed even when stock runs out; the
	// operation is still reported as failed to the caller.
	if err := tx.Commit(); err != nil {
		return err
	}

	if outstanding > 0 {
		log.Warn("allocation exhausted all batches",
			zap.Int("outstanding", outstanding),
		)
		return ErrInsufficientStock
	}

	return nil
}

func (r *repository) RestoreLatest(ctx context.Context, productID uint, qty int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE inventory_batches
		SET remaining_quantity = remaining_quantity + $2,
		    quantity = GREATEST(quantity, remaining_quantity + $2)
		WHERE id = (
			SELECT id FROM inventory_batches
			WHERE product_id = $1
			ORDER BY entry_date DESC, id DESC
			LIMIT 1
		)`, productID, qty)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// No batch to credit: record the returned units as a restock batch so
	// the ledger stays the source of truth.
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO inventory_batches
			(product_id, quantity, remaining_quantity, cost_price, sale_price, supplier, entry_date)
		SELECT id, $2, $2, cost_price, sale_price, 'restock', NOW()
		FROM furniture WHERE id = $1`, productID, qty)
	return err
}

func (r *repository) ImportBatch(ctx context.Context, productID uint, in ImportInput) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE inventory_batches
		SET quantity = quantity + $3,
		    remaining_quantity = remaining_quantity + $3,
		    cost_price = $4,
		    sale_price = $5,
		    entry_date = NOW()
		WHERE product_id = $1 AND supplier = $2`,
		productID, in.Supplier, in.Quantity, in.CostPrice, in.SalePrice)
	if err != nil {
		return err
	}

	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO inventory_batches
				(product_id, quantity, remaining_quantity, cost_price, sale_price, supplier, entry_date)
			VALUES ($1, $2, $2, $3, $4, $5, NOW())`,
			productID, in.Quantity, in.CostPrice, in.SalePrice, in.Supplier); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO import_records
			(id, product_id, quantity, cost_price, sale_price, supplier, entry_date)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		uuid.New(), productID, in.Quantity, in.CostPrice, in.SalePrice, in.Supplier); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) TotalRemaining(ctx context.Context, productID uint) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(remaining_quantity), 0)
		FROM inventory_batches
		WHERE product_id = $1`, productID).Scan(&total)
	return total, err
}

func (r *repository) ListByProduct(ctx context.Context, productID uint) ([]Batch, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, quantity, remaining_quantity, cost_price, sale_price, supplier, entry_date
		FROM inventory_batches
		WHERE product_id = $1
		ORDER BY entry_date DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.ProductID, &b.Quantity, &b.RemainingQuantity,
			&b.CostPrice, &b.SalePrice, &b.Supplier, &b.EntryDate); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, ErrNoBatches
	}
	return out, rows.Err()
}

func (r *repository) Overview(ctx context.Context) ([]OverviewRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT b.product_id, f.name, f.description, f.image, f.category, f.material,
		       SUM(b.remaining_quantity) AS total_quantity,
		       (ARRAY_AGG(b.cost_price ORDER BY b.entry_date DESC))[1],
		       (ARRAY_AGG(b.sale_price ORDER BY b.entry_date DESC))[1],
		       (ARRAY_AGG(b.supplier ORDER BY b.entry_date DESC))[1],
		       MAX(b.entry_date)
		FROM inventory_batches b
		JOIN furniture f ON f.id = b.product_id
		GROUP BY b.product_id, f.name, f.description, f.image, f.category, f.material
		ORDER BY MAX(b.entry_date) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OverviewRow
	for rows.Next() {
		var o OverviewRow
		if err := rows.Scan(&o.ProductID, &o.Name, &o.Description, &o.Image, &o.Category,
			&o.Material, &o.TotalQuantity, &o.LatestCostPrice, &o.LatestSalePrice,
			&o.LatestSupplier, &o.LatestEntryDate); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *repository) ImportHistory(ctx context.Context) ([]ImportRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ir.id, ir.product_id, f.name, ir.quantity, ir.cost_price, ir.sale_price, ir.supplier, ir.entry_date
		FROM import_records ir
		JOIN furniture f ON f.id = ir.product_id
		ORDER BY ir.entry_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ImportRecord
	for rows.Next() {
		var rec ImportRecord
		if err := rows.Scan(&rec.ID, &rec.ProductID, &rec.ProductName, &rec.Quantity,
			&rec.CostPrice, &rec.SalePrice, &rec.Supplier, &rec.EntryDate); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
