package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrQuestionsAlreadySet is returned when attempting to overwrite a
	// non-empty dynamic question list; questions are immutable once generated.
	ErrQuestionsAlreadySet = errors.New("dynamic questions already generated")
	// ErrJobIDRequired is returned for blank job id arguments.
	ErrJobIDRequired = errors.New("job_id is required")
)
