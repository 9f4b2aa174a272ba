package services

import (
	"errors"
	"fmt"

	"github.com/aditisaurus/pixxel/models"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProjectNotFound = errors.New("project not found")
	// ErrAccessDenied means the project exists but belongs to someone else. The
	// HTTP layer presents it exactly like ErrProjectNotFound so callers cannot
	// probe for the existence of other users' projects.
	ErrAccessDenied = errors.New("access denied")
)

// QuotaExceededError is returned when a plan's live-project limit is reached.
// It is a terminal rejection, not a transient failure.
type QuotaExceededError struct {
	Plan  models.Plan
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s plan limited to %d projects. Upgrade to Pro for unlimited projects.", e.Plan, e.Limit)
}
