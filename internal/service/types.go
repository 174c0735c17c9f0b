// Package service implements the task collection manager.
package service

import "time"

// MaxTextLength is the maximum task text length in characters.
const MaxTextLength = 100

// Task represents a single task record.
type Task struct {
	ID        string
	Text      string
	Completed bool
	CreatedAt time.Time
}

// Counts holds counts derived from a task collection.
type Counts struct {
	Total     int
	Active    int
	Completed int
}
