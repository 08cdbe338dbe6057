package model

import "time"

// Category represents a classification category. Sub-categories carry the
// parent category's ID; sub-category choices are scoped to their parent.
type Category struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  string    `json:"parent_id,omitempty"`
	IsActive  bool      `json:"is_active"`
}

// Customer represents a counterparty that collections are attributed to.
type Customer struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
}
