package review

import "errors"

var (
	ErrAlreadyReviewed     = errors.New("product already reviewed by this user")
	ErrBannedWord          = errors.New("comment contains a banned word")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrReviewNotFound      = errors.New("review not found")
	ErrTestimonialNotFound = errors.New("testimonial not found")
	ErrWordExists          = errors.New("banned word already registered")
	ErrEmptyWord           = errors.New("banned word must not be empty")
)
