package models

import "time"

// Calculation is a stored arithmetic calculation owned by a single user.
// Operands are persisted as a JSON array.
type Calculation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Operands  []float64 `json:"inputs"`
	Result    float64   `json:"result"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
