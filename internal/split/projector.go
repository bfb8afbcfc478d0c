package split

import (
	"github.com/google/uuid"

	"github.com/dinopy/tasksync/internal/models"
)

// Project builds one derived task from the original and one spec. now is
// sampled once per split operation so every derived task in the same
// operation carries the identical timestamp.
//
// Variable fields (title, description, duration) come from the spec. The
// original's category, tags, priority, due date, lead time, active flag,
// creation timestamp and owner carry over; derived tasks are not "new" for
// ordering purposes. Completion state always resets. ToggledAt is stamped
// with now only when the original was active.
func Project(original *models.Task, spec models.SplitSpec, now int64) *models.Task {
	task := &models.Task{
		ID:          uuid.New(),
		UserID:      original.UserID,
		Title:       spec.Title,
		Description: spec.Description,
		Duration:    spec.Duration,

		Category: original.Category,
		Tags:     append([]string(nil), original.Tags...),
		Priority: original.Priority,
		IsActive: original.IsActive,

		CreatedAt:      original.CreatedAt,
		LastModifiedAt: now,

		IsCompleted: false,
		CompletedAt: nil,
	}

	if original.DueAt != nil {
		due := *original.DueAt
		task.DueAt = &due
	}
	if original.ShowBeforeDue != nil {
		lead := *original.ShowBeforeDue
		task.ShowBeforeDue = &lead
	}
	if original.IsActive {
		toggled := now
		task.ToggledAt = &toggled
	}

	return task
}
