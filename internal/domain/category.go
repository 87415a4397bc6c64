package domain

import "time"

// UncategorizedLabel is shown for products whose category no longer exists.
const UncategorizedLabel = "Uncategorized"

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
