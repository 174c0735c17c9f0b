package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// TimeLayout is the stored createdAt layout: UTC, millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Stored timestamps must fall in years the string layout can round-trip.
const (
	minYear = 0
	maxYear = 9999
)

// ErrMalformed is returned by DecodeTasks for a value that is not a valid
// serialized task collection.
var ErrMalformed = errors.New("malformed task collection")

type taskRecord struct {
	ID        string          `json:"id"`
	Text      string          `json:"text"`
	Completed bool            `json:"completed"`
	CreatedAt json.RawMessage `json:"createdAt"`
}

// EncodeTasks serializes the full collection as a JSON array.
func EncodeTasks(tasks []Task) (string, error) {
	records := make([]taskRecord, len(tasks))
	for i, t := range tasks {
		ts, err := json.Marshal(t.CreatedAt.UTC().Format(TimeLayout))
		if err != nil {
			return "", fmt.Errorf("encode createdAt of %s: %w", t.ID, err)
		}
		records[i] = taskRecord{
			ID:        t.ID,
			Text:      t.Text,
			Completed: t.Completed,
			CreatedAt: ts,
		}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode tasks: %w", err)
	}
	return string(data), nil
}

// DecodeTasks parses a value written by EncodeTasks.
// createdAt may also be any RFC 3339 string or epoch milliseconds.
// Records with an empty or repeated id, blank or over-long text, or a
// createdAt outside years 0000-9999 make the whole value malformed.
func DecodeTasks(value string) ([]Task, error) {
	var records []taskRecord
	if err := json.Unmarshal([]byte(value), &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	tasks := make([]Task, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", ErrMalformed, i)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrMalformed, r.ID)
		}
		seen[r.ID] = struct{}{}

		if strings.TrimSpace(r.Text) == "" {
			return nil, fmt.Errorf("%w: record %s has no text", ErrMalformed, r.ID)
		}
		if n := utf8.RuneCountInString(r.Text); n > MaxTextLength {
			return nil, fmt.Errorf("%w: record %s text is %d characters (max %d)", ErrMalformed, r.ID, n, MaxTextLength)
		}

		createdAt, err := decodeTime(r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: record %s: %v", ErrMalformed, r.ID, err)
		}
		tasks = append(tasks, Task{
			ID:        r.ID,
			Text:      r.Text,
			Completed: r.Completed,
			CreatedAt: createdAt,
		})
	}
	return tasks, nil
}

func decodeTime(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, errors.New("createdAt is missing")
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, fmt.Errorf("createdAt: %w", err)
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("createdAt: %w", err)
		}
		return checkYear(t.UTC())
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return time.Time{}, fmt.Errorf("createdAt: %w", err)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which is already out of range
	if math.IsNaN(ms) || ms < math.MinInt64 || ms >= math.MaxInt64 {
		return time.Time{}, fmt.Errorf("createdAt: %s ms out of range", raw)
	}
	return checkYear(time.UnixMilli(int64(ms)).UTC())
}

func checkYear(t time.Time) (time.Time, error) {
	if y := t.Year(); y < minYear || y > maxYear {
		return time.Time{}, fmt.Errorf("createdAt: year %d out of range", y)
	}
	return t, nil
}
