package service

import "context"

// Service defines the task operations commands run against.
// Commands never touch the durable store directly.
type Service interface {
	// Tasks returns a copy of the collection, newest first.
	Tasks() []Task

	// Find returns the task with the given id.
	Find(id string) (Task, bool)

	// Counts returns total, active and completed counts.
	Counts() Counts

	// Add prepends a new task. Text is trimmed; empty text is a no-op
	// and returns ok=false.
	Add(ctx context.Context, text string) (task Task, ok bool, err error)

	// Toggle flips the completed flag of the task with the given id.
	// An unknown id is a no-op and returns found=false.
	Toggle(ctx context.Context, id string) (found bool, err error)

	// Delete removes the task with the given id.
	// An unknown id is a no-op and returns found=false.
	Delete(ctx context.Context, id string) (found bool, err error)

	// ClearCompleted removes all completed tasks and returns how many
	// were removed.
	ClearCompleted(ctx context.Context) (removed int, err error)
}
