package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Task represents a single task owned by exactly one user.
//
// A task belongs to the same user for its entire lifetime and its ID is never
// reused, even after deletion.
type Task struct {
	// ID is the unique, immutable identifier for the task.
	ID uuid.UUID `json:"id"`

	// UserID is the owning user. Never changes after creation.
	UserID uuid.UUID `json:"user_id"`

	Title       string `json:"title"`
	Description string `json:"description"`

	// Duration is the planned duration as an "HH:MM:SS" string.
	Duration string `json:"duration"`

	// Category groups tasks; empty means uncategorized.
	Category string `json:"category"`

	// Tags is an ordered list; order is preserved through storage.
	Tags []string `json:"tags"`

	Priority int `json:"priority"`

	// IsCompleted marks the task done; CompletedAt is set alongside it.
	IsCompleted bool   `json:"is_completed"`
	CompletedAt *int64 `json:"completed_at,omitempty"`

	// IsActive marks the task as currently running; ToggledAt records when
	// the active state was last turned on and is nil otherwise.
	IsActive  bool   `json:"is_active"`
	ToggledAt *int64 `json:"toggled_at,omitempty"`

	// CreatedAt and LastModifiedAt are epoch milliseconds.
	CreatedAt      int64 `json:"created_at"`
	LastModifiedAt int64 `json:"last_modified_at"`

	// DueAt is an optional deadline; ShowBeforeDue is the lead time in
	// milliseconds before DueAt at which the task becomes visible.
	DueAt         *int64 `json:"due_at,omitempty"`
	ShowBeforeDue *int64 `json:"show_before_due,omitempty"`
}

// SplitSpec describes one derived task's variable fields. Everything else is
// projected from the original task.
type SplitSpec struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
}

// SplitRequest is the task_split payload. TaskID arrives as a string and is
// parsed during validation so a malformed ID surfaces as a typed failure
// rather than a decode error.
type SplitRequest struct {
	TaskID string      `json:"task_id"`
	Splits []SplitSpec `json:"splits"`
}

// ParseDuration converts an "HH:MM:SS" duration string to milliseconds.
// Minutes and seconds must be below 60; hours are unbounded.
func ParseDuration(s string) (int64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("duration %q is not in HH:MM:SS format", s)
	}

	hours, err := strconv.ParseInt(parts[0], 10, 32)
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("duration %q has invalid hours", s)
	}
	minutes, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("duration %q has invalid minutes", s)
	}
	seconds, err := strconv.ParseInt(parts[2], 10, 32)
	if err != nil || seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("duration %q has invalid seconds", s)
	}

	return (hours*3600 + minutes*60 + seconds) * 1000, nil
}

// FormatDuration renders milliseconds as an "HH:MM:SS" string.
func FormatDuration(ms int64) string {
	total := ms / 1000
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}
