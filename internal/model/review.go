package model

import "time"

// ReviewStatus is the disposition state of a review item.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewAccepted ReviewStatus = "accepted"
	ReviewRejected ReviewStatus = "rejected"
	ReviewEdited   ReviewStatus = "edited"
	ReviewFlagged  ReviewStatus = "flagged"
)

// Terminal reports whether the status is final. Every state except pending is
// terminal; there are no automatic transitions.
func (s ReviewStatus) Terminal() bool {
	return s != ReviewPending
}

// ReviewItem wraps a consolidated record plus its generated description for
// manual disposition. Status is the only mutable part; an edit replaces Fields
// on the embedded record but keeps the original conflicts and scores for audit.
type ReviewItem struct {
	ID                    string             `json:"id"`
	SKU                   string             `json:"sku"`
	Record                ConsolidatedRecord `json:"record"`
	Description           string             `json:"description,omitempty"`
	DescriptionConfidence float64            `json:"description_confidence,omitempty"`
	Status                ReviewStatus       `json:"status"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
}
