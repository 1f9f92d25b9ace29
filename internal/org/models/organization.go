package models

import "time"

// Field limits shared by request validation and the postgres schema.
const (
	MaxNameLength     = 128
	MaxCategoryLength = 64
	MaxAddressLength  = 256
	MaxPhoneLength    = 32
)

// Organization is a queue-hosting organization registered by an operator.
// Names are unique; the store rejects duplicates.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
