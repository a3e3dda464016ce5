package monitor

import "time"

// Status is the connectivity snapshot served on the health endpoint.
type Status struct {
	Tracker   bool      `json:"tracker"`
	Store     bool      `json:"store"`
	Redis     bool      `json:"redis"`
	LastCheck time.Time `json:"last_check"`
}
