package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"todo/internal/service"
)

// MinIDPrefix is the shortest id prefix accepted as a task reference.
const MinIDPrefix = 4

// TaskRef represents a parsed task reference.
// An all-digit ref of at least MinIDPrefix characters sets both fields.
type TaskRef struct {
	Num int    // 1-based position in the collection, 0 if not a number
	ID  string // full task id or id prefix, empty for short numbers
}

var (
	// ErrTaskRefRequired indicates no task reference was provided.
	ErrTaskRefRequired = errors.New("task reference required")

	// ErrOutOfRange indicates a position past the end of the collection.
	ErrOutOfRange = errors.New("task number out of range")

	// ErrTaskNotFound indicates no task id matches the reference.
	ErrTaskNotFound = errors.New("task not found")

	// ErrAmbiguousRef indicates an id prefix matching more than one task.
	ErrAmbiguousRef = errors.New("ambiguous task reference")
)

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
//  1. No args or a blank first arg → ErrTaskRefRequired
//  2. All digits → position as shown by `todo list` (newest first);
//     with at least MinIDPrefix digits also an id prefix
//  3. Anything else of at least MinIDPrefix characters → id or id prefix
//  4. Otherwise → error: invalid task reference: <ref>
//
// Extra args are rejected.
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("unexpected argument: %s", args[1])
	}

	ref := strings.TrimSpace(args[0])
	if ref == "" {
		return TaskRef{}, ErrTaskRefRequired
	}

	digits := isAllDigits(ref)
	if !digits && len(ref) < MinIDPrefix {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", ref)
	}

	var parsed TaskRef
	if digits {
		// Overflowing numbers can still be id prefixes
		if num, err := strconv.Atoi(ref); err == nil {
			parsed.Num = num
		}
	}
	if len(ref) >= MinIDPrefix {
		parsed.ID = ref
	}
	return parsed, nil
}

// ResolveTaskRef finds the task ref points to in tasks.
// A position in range wins over an id match; an exact id match wins over
// prefix matches. An all-digit ref matching neither is out of range.
func ResolveTaskRef(tasks []service.Task, ref TaskRef) (service.Task, error) {
	if ref.Num >= 1 && ref.Num <= len(tasks) {
		return tasks[ref.Num-1], nil
	}
	if ref.ID == "" {
		return service.Task{}, fmt.Errorf("%w: %d", ErrOutOfRange, ref.Num)
	}

	task, err := resolveID(tasks, ref.ID)
	if errors.Is(err, ErrTaskNotFound) && isAllDigits(ref.ID) {
		return service.Task{}, fmt.Errorf("%w: %s", ErrOutOfRange, ref.ID)
	}
	return task, err
}

func resolveID(tasks []service.Task, id string) (service.Task, error) {
	var matches []service.Task
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
		if strings.HasPrefix(t.ID, id) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return service.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return service.Task{}, fmt.Errorf("%w: %s", ErrAmbiguousRef, id)
	}
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
