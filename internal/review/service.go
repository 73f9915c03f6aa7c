package review

import (
	"context"
	"strings"
)

type Service interface {
	Create(ctx context.Context, in CreateReviewInput) (*Review, error)
	ListByProduct(ctx context.Context, productID uint) ([]Review, error)
	ListProductIDsByUser(ctx context.Context, userID uint) ([]uint, error)
	ListPending(ctx context.Context) ([]Review, error)
	Delete(ctx context.Context, id uint) error

	Promote(ctx context.Context, reviewID uint) (*Testimonial, error)
	Revert(ctx context.Context, testimonialID uint) (*Review, error)
	ListTestimonials(ctx context.Context) ([]Testimonial, error)

	ListBannedWords(ctx context.Context) ([]BannedWord, error)
	AddBannedWord(ctx context.Context, word string, addedBy uint) (*BannedWord, error)
	DeleteBannedWord(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, in CreateReviewInput) (*Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrInvalidRating
	}

	exists, err := s.repo.ExistsForUserAndProduct(ctx, in.UserID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	banned, err := s.repo.ListBannedWords(ctx)
	if err != nil {
		return nil, err
	}
	if containsBannedWord(in.Comment, banned) {
		return nil, ErrBannedWord
	}

	rv := &Review{
		ProductID: in.ProductID,
		UserID:    in.UserID,
		Rating:    in.Rating,
		Comment:   in.Comment,
		Images:    in.Images,
	}
	if err := s.repo.Create(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// containsBannedWord matches case-insensitively anywhere in the
// comment, the same substring semantics the moderation screen uses.
func containsBannedWord(comment string, banned []BannedWord) bool {
	lower := strings.ToLower(comment)
	for _, bw := range banned {
		if bw.Word == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(bw.Word)) {
			return true
		}
	}
	return false
}

func (s *service) ListByProduct(ctx context.Context, productID uint) ([]Review, error) {
	return s.repo.ListByProduct(ctx, productID)
}

func (s *service) ListProductIDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	return s.repo.ListProductIDsByUser(ctx, userID)
}

func (s *service) ListPending(ctx context.Context) ([]Review, error) {
	return s.repo.ListPending(ctx)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) Promote(ctx context.Context, reviewID uint) (*Testimonial, error) {
	return s.repo.PromoteToTestimonial(ctx, reviewID)
}

func (s *service) Revert(ctx context.Context, testimonialID uint) (*Review, error) {
	return s.repo.RevertTestimonial(ctx, testimonialID)
}

func (s *service) ListTestimonials(ctx context.Context) ([]Testimonial, error) {
	return s.repo.ListTestimonials(ctx)
}

func (s *service) ListBannedWords(ctx context.Context) ([]BannedWord, error) {
	return s.repo.ListBannedWords(ctx)
}

func (s *service) AddBannedWord(ctx context.Context, word string, addedBy uint) (*BannedWord, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil, ErrEmptyWord
	}
	return s.repo.AddBannedWord(ctx, word, addedBy)
}

func (s *service) DeleteBannedWord(ctx context.Context, id uint) error {
	return s.repo.DeleteBannedWord(ctx, id)
}
