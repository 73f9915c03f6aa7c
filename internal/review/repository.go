package review

import (
	"context"
	"database/sql"
	"errors"

	"furnimart-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, rv *Review) error
	GetByID(ctx context.Context, id uint) (*Review, error)
	ExistsForUserAndProduct(ctx context.Context, userID, productID uint) (bool, error)
	ListByProduct(ctx context.Context, productID uint) ([]Review, error)
	ListProductIDsByUser(ctx context.Context, userID uint) ([]uint, error)
	ListPending(ctx context.Context) ([]Review, error)
	Delete(ctx context.Context, id uint) error

	// PromoteToTestimonial flags the review and snapshots it into the
	// testimonials table in one transaction.
	PromoteToTestimonial(ctx context.Context, reviewID uint) (*Testimonial, error)
	// RevertTestimonial removes the testimonial and clears the flag on
	// the source review.
	RevertTestimonial(ctx context.Context, testimonialID uint) (*Review, error)
	ListTestimonials(ctx context.Context) ([]Testimonial, error)

	ListBannedWords(ctx context.Context) ([]BannedWord, error)
	AddBannedWord(ctx context.Context, word string, addedBy uint) (*BannedWord, error)
	DeleteBannedWord(ctx context.Context, id uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rv *Review) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO reviews (product_id, user_id, rating, comment, images)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		rv.ProductID, rv.UserID, rv.Rating, rv.Comment, pq.Array([]string(rv.Images)),
	).Scan(&rv.ID, &rv.CreatedAt)
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Review, error) {
	var rv Review
	err := r.db.QueryRowContext(ctx, `
		SELECT id, product_id, user_id, rating, comment, images, is_testimonial, created_at
		FROM reviews WHERE id = $1`, id,
	).Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Comment,
		&rv.Images, &rv.IsTestimonial, &rv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *repository) ExistsForUserAndProduct(ctx context.Context, userID, productID uint) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM reviews WHERE user_id = $1 AND product_id = $2)`,
		userID, productID).Scan(&exists)
	return exists, err
}

func (r *repository) scanReviews(rows *sql.Rows, withNames bool) ([]Review, error) {
	defer rows.Close()

	out := make([]Review, 0)
	for rows.Next() {
		var rv Review
		dest := []interface{}{&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating,
			&rv.Comment, &rv.Images, &rv.IsTestimonial, &rv.CreatedAt}
		if withNames {
			dest = append(dest, &rv.UserName, &rv.ProductName)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *repository) ListByProduct(ctx context.Context, productID uint) ([]Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.product_id, r.user_id, r.rating, r.comment, r.images,
		       r.is_testimonial, r.created_at, u.name, f.name
		FROM reviews r
		JOIN users u ON r.user_id = u.id
		JOIN furniture f ON r.product_id = f.id
		WHERE r.product_id = $1
		ORDER BY r.created_at DESC`, productID)
	if err != nil {
		return nil, err
	}
	return r.scanReviews(rows, true)
}

func (r *repository) ListProductIDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id FROM reviews WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uint, 0)
	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repository) ListPending(ctx context.Context) ([]Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.product_id, r.user_id, r.rating, r.comment, r.images,
		       r.is_testimonial, r.created_at, u.name, f.name
		FROM reviews r
		JOIN users u ON r.user_id = u.id
		JOIN furniture f ON r.product_id = f.id
		WHERE r.is_testimonial = FALSE
		ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, err
	}
	return r.scanReviews(rows, true)
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *repository) PromoteToTestimonial(ctx context.Context, reviewID uint) (*Testimonial, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "PromoteToTestimonial"),
		zap.Uint("review_id", reviewID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE reviews SET is_testimonial = TRUE WHERE id = $1`, reviewID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrReviewNotFound
	}

	var ts Testimonial
	err = tx.QueryRowContext(ctx, `
		INSERT INTO testimonials (review_id, user_id, product_id, rating, comment, images)
		SELECT id, user_id, product_id, rating, comment, images
		FROM reviews WHERE id = $1
		RETURNING id, review_id, user_id, product_id, rating, comment, images, created_at`,
		reviewID,
	).Scan(&ts.ID, &ts.ReviewID, &ts.UserID, &ts.ProductID, &ts.Rating,
		&ts.Comment, &ts.Images, &ts.CreatedAt)
	if err != nil {
		log.Error("failed to snapshot testimonial", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info("review promoted to testimonial", zap.Uint("testimonial_id", ts.ID))
	return &ts, nil
}

func (r *repository) RevertTestimonial(ctx context.Context, testimonialID uint) (*Review, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var reviewID uint
	err = tx.QueryRowContext(ctx,
		`DELETE FROM testimonials WHERE id = $1 RETURNING review_id`,
		testimonialID).Scan(&reviewID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTestimonialNotFound
	}
	if err != nil {
		return nil, err
	}

	var rv Review
	err = tx.QueryRowContext(ctx, `
		UPDATE reviews SET is_testimonial = FALSE
		WHERE id = $1
		RETURNING id, product_id, user_id, rating, comment, images, is_testimonial, created_at`,
		reviewID,
	).Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Comment,
		&rv.Images, &rv.IsTestimonial, &rv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *repository) ListTestimonials(ctx context.Context) ([]Testimonial, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.review_id, t.user_id, t.product_id, t.rating, t.comment,
		       t.images, t.created_at, u.name
		FROM testimonials t
		JOIN users u ON t.user_id = u.id
		ORDER BY t.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Testimonial, 0)
	for rows.Next() {
		var ts Testimonial
		if err := rows.Scan(&ts.ID, &ts.ReviewID, &ts.UserID, &ts.ProductID,
			&ts.Rating, &ts.Comment, &ts.Images, &ts.CreatedAt, &ts.UserName); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

func (r *repository) ListBannedWords(ctx context.Context) ([]BannedWord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, word, added_by, created_at FROM banned_words ORDER BY word`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]BannedWord, 0)
	for rows.Next() {
		var bw BannedWord
		if err := rows.Scan(&bw.ID, &bw.Word, &bw.AddedBy, &bw.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, bw)
	}
	return out, rows.Err()
}

func (r *repository) AddBannedWord(ctx context.Context, word string, addedBy uint) (*BannedWord, error) {
	var bw BannedWord
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO banned_words (word, added_by)
		VALUES ($1, $2)
		ON CONFLICT (word) DO NOTHING
		RETURNING id, word, added_by, created_at`,
		word, addedBy,
	).Scan(&bw.ID, &bw.Word, &bw.AddedBy, &bw.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWordExists
	}
	if err != nil {
		return nil, err
	}
	return &bw, nil
}

func (r *repository) DeleteBannedWord(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM banned_words WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReviewNotFound
	}
	return nil
}
