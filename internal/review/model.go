package review

import (
	"time"

	"github.com/lib/pq"
)

type Review struct {
	ID            uint           `json:"id"`
	ProductID     uint           `json:"productId"`
	UserID        uint           `json:"userId"`
	UserName      string         `json:"userName,omitempty"`
	ProductName   string         `json:"productName,omitempty"`
	Rating        int            `json:"rating"`
	Comment       string         `json:"comment"`
	Images        pq.StringArray `json:"images"`
	IsTestimonial bool           `json:"isTestimonial"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// Testimonial is a review promoted to the storefront. It snapshots the
// review content so later review deletion does not blank it.
type Testimonial struct {
	ID        uint           `json:"id"`
	ReviewID  uint           `json:"reviewId"`
	UserID    uint           `json:"userId"`
	UserName  string         `json:"userName,omitempty"`
	ProductID uint           `json:"productId"`
	Rating    int            `json:"rating"`
	Comment   string         `json:"comment"`
	Images    pq.StringArray `json:"images"`
	CreatedAt time.Time      `json:"createdAt"`
}

type BannedWord struct {
	ID        uint      `json:"id"`
	Word      string    `json:"word"`
	AddedBy   uint      `json:"addedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateReviewInput struct {
	ProductID uint     `json:"productId"`
	UserID    uint     `json:"-"`
	Rating    int      `json:"rating"`
	Comment   string   `json:"comment"`
	Images    []string `json:"images"`
}
