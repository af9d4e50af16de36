package models

import "time"

// Category groups activities and carries the display color timers inherit.
type Category struct {
	ID        string
	Name      string
	Color     string
	CreatedAt time.Time
}

// Activity is a reusable, named unit of work that timers and routine items
// reference.
type Activity struct {
	ID                     string
	Name                   string
	CategoryID             string
	CategoryName           string
	CategoryColor          string
	DefaultExpectedMinutes int
	UsageCount             int
	CreatedAt              time.Time
}
