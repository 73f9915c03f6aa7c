package finance

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	// Summary values the active catalog: projected revenue from current
	// stock at sale price against the acquisition cost of the batches
	// backing it.
	Summary(ctx context.Context) (*Summary, error)

	// Range aggregates order lines placed inside [start, end], valued at
	// the snapshotted line price against the product's latest cost price,
	// grouped per day.
	Range(ctx context.Context, start, end time.Time) (*RangeReport, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Summary(ctx context.Context) (*Summary, error) {
	var s Summary
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(f.sale_price * f.total_stock), 0) AS revenue,
			COALESCE((
				SELECT SUM(b.cost_price * b.quantity)
				FROM inventory_batches b
				JOIN furniture fa ON b.product_id = fa.id
				WHERE fa.active = TRUE
			), 0) AS cogs
		FROM furniture f
		WHERE f.active = TRUE`,
	).Scan(&s.Revenue, &s.COGS)
	if err != nil {
		return nil, err
	}
	s.GrossProfit = s.Revenue - s.COGS
	return &s, nil
}

func (r *repository) Range(ctx context.Context, start, end time.Time) (*RangeReport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			TO_CHAR(o.created_at, 'YYYY-MM-DD') AS day,
			COALESCE(SUM(i.price * i.quantity), 0) AS revenue,
			COALESCE(SUM(f.cost_price * i.quantity), 0) AS cogs
		FROM orders o
		JOIN order_items i ON i.order_id = o.id
		JOIN furniture f ON f.id = i.product_id
		WHERE o.created_at >= $1 AND o.created_at <= $2
		GROUP BY day
		ORDER BY day`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	report := &RangeReport{DailyStats: make([]DailyStat, 0)}
	for rows.Next() {
		var d DailyStat
		if err := rows.Scan(&d.Date, &d.Revenue, &d.COGS); err != nil {
			return nil, err
		}
		d.GrossProfit = d.Revenue - d.COGS

		report.TotalRevenue += d.Revenue
		report.TotalCOGS += d.COGS
		report.DailyStats = append(report.DailyStats, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	report.GrossProfit = report.TotalRevenue - report.TotalCOGS
	return report, nil
}
