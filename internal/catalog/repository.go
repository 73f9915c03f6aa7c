package catalog

import (
	"context"
	"database/sql"
	"errors"

	"furnimart-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, category string, activeOnly bool) ([]Furniture, error)
	GetByID(ctx context.Context, id uint) (*Furniture, error)
	GetByName(ctx context.Context, name string) (*Furniture, error)
	Create(ctx context.Context, f *Furniture) error
	Update(ctx context.Context, id uint, params UpdateFurnitureParams) (*Furniture, error)
	SetActive(ctx context.Context, id uint, active bool) error
	UpdateLatestPrices(ctx context.Context, id uint, costPrice, salePrice int64) error
	ResyncStock(ctx context.Context, id uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const furnitureColumns = `id, name, description, category, material, image,
	active, in_stock, total_stock, cost_price, sale_price, created_at, updated_at`

func scanFurniture(row interface{ Scan(...interface{}) error }) (*Furniture, error) {
	var f Furniture
	err := row.Scan(
		&f.ID, &f.Name, &f.Description, &f.Category, &f.Material, &f.Image,
		&f.Active, &f.InStock, &f.TotalStock, &f.CostPrice, &f.SalePrice,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repository) List(ctx context.Context, category string, activeOnly bool) ([]Furniture, error) {
	query := `SELECT ` + furnitureColumns + ` FROM furniture WHERE 1=1`
	args := []interface{}{}

	if activeOnly {
		query += ` AND active = TRUE`
	}
	if category != "" {
		args = append(args, category)
		query += ` AND category = $1`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Furniture
	for rows.Next() {
		f, err := scanFurniture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Furniture, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+furnitureColumns+` FROM furniture WHERE id = $1`, id)

	f, err := scanFurniture(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return f, err
}

func (r *repository) GetByName(ctx context.Context, name string) (*Furniture, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+furnitureColumns+` FROM furniture WHERE name = $1`, name)

	f, err := scanFurniture(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return f, err
}

func (r *repository) Create(ctx context.Context, f *Furniture) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO furniture (name, description, category, material, image,
			active, in_stock, total_stock, cost_price, sale_price)
		VALUES ($1, $2, $3, $4, $5, TRUE, TRUE, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		f.Name, f.Description, f.Category, f.Material, f.Image,
		f.TotalStock, f.CostPrice, f.SalePrice,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
}

func (r *repository) Update(ctx context.Context, id uint, params UpdateFurnitureParams) (*Furniture, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE furniture SET
			name        = COALESCE($2, name),
			description = COALESCE($3, description),
			category    = COALESCE($4, category),
			material    = COALESCE($5, material),
			image       = COALESCE($6, image),
			updated_at  = NOW()
		WHERE id = $1
		RETURNING `+furnitureColumns,
		id, params.Name, params.Description, params.Category, params.Material, params.Image)

	f, err := scanFurniture(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return f, err
}

func (r *repository) SetActive(ctx context.Context, id uint, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE furniture SET active = $2, updated_at = NOW() WHERE id = $1`,
		id, active)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) UpdateLatestPrices(ctx context.Context, id uint, costPrice, salePrice int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE furniture SET cost_price = $2, sale_price = $3, updated_at = NOW() WHERE id = $1`,
		id, costPrice, salePrice)
	return err
}

// ResyncStock recomputes total_stock from the ledger in a single statement
// so the projection never sees a torn read of the batches.
func (r *repository) ResyncStock(ctx context.Context, id uint) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE furniture SET
			total_stock = sub.total,
			in_stock    = sub.total > 0,
			updated_at  = NOW()
		FROM (
			SELECT COALESCE(SUM(remaining_quantity), 0) AS total
			FROM inventory_batches
			WHERE product_id = $1
		) sub
		WHERE furniture.id = $1`, id)

	if err != nil {
		logger.L().Error("failed to resync furniture stock",
			zap.Uint("product_id", id),
			zap.Error(err),
		)
	}
	return err
}
