package store

import "time"

// Item is one key/value pair of session storage.
type Item struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
