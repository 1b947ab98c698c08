package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/draftforge/discovery-engine/internal/core"
	"github.com/draftforge/discovery-engine/internal/domain/model"
	apperrors "github.com/draftforge/discovery-engine/internal/errors"
)

// RunSyncOptions bounds a synchronous submit-and-wait round trip.
type RunSyncOptions struct {
	PollInterval time.Duration
	MaxWait      time.Duration
}

// RunSync submits a request and polls until the provider reports a terminal
// state, returning the raw result text. Used for short interactive calls such
// as follow-up question generation, where the caller blocks on the answer
// instead of tracking a handle. Transient poll errors are tolerated; the
// deadline is the backstop.
func RunSync(ctx context.Context, p core.Provider, req core.SubmitRequest, opts RunSyncOptions) (string, error) {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	maxWait := opts.MaxWait
	if maxWait <= 0 {
		maxWait = 2 * time.Minute
	}

	ctx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	result, err := p.Submit(ctx, req)
	if err != nil {
		return "", err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", apperrors.Wrap(ctx.Err(), apperrors.ErrCodeTimeout,
				fmt.Sprintf("generation %s did not finish within %s", result.JobID, maxWait))
		case <-ticker.C:
		}

		status, err := p.GetStatus(ctx, result.JobID)
		if err != nil {
			if apperrors.IsProviderTransient(err) {
				continue
			}
			return "", err
		}

		switch status.Status {
		case model.ExternalCompleted:
			return status.Result, nil
		case model.ExternalFailed:
			msg := status.Error
			if msg == "" {
				msg = "generation failed"
			}
			return "", apperrors.ProviderSubmission(msg, nil)
		default:
			// queued or processing, keep waiting
		}
	}
}
