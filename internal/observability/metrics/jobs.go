// Package metrics defines the standard metric shapes emitted by the job
// lifecycle services.
package metrics

import (
	"time"

	obserrors "github.com/draftforge/discovery-engine/internal/observability/errors"
	"github.com/draftforge/discovery-engine/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Transition constants for lifecycle tagging.
const (
	TransitionSubmitted = "submitted"
	TransitionCompleted = "completed"
	TransitionFailed    = "failed"
	TransitionCancelled = "cancelled"
	TransitionTimedOut  = "timed_out"
)

// LifecycleMetric captures one job lifecycle transition for emission.
type LifecycleMetric struct {
	Transition string
	Result     string
	// Duration is submit-to-terminal elapsed time, when known.
	Duration time.Duration
	Degraded bool
	Err      error
}

// EmitLifecycle emits the standard lifecycle transition counter and, when a
// duration is known, the generation timing.
func EmitLifecycle(sink statsd.Sink, in LifecycleMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"transition": in.Transition,
		"result":     in.Result,
	}
	if in.Degraded {
		tags["degraded"] = "true"
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("job.transition", 1, tags)
	if in.Duration > 0 {
		sink.Timing("job.generation_duration", in.Duration, CloneTags(tags))
	}
}

// EmitPoll emits one poll observation counter.
func EmitPoll(sink statsd.Sink, outcome string) {
	if sink == nil {
		return
	}
	sink.Count("job.poll", 1, map[string]string{"outcome": outcome})
}

// EmitQuestionGeneration emits the follow-up question generation counter.
func EmitQuestionGeneration(sink statsd.Sink, count int, err error) {
	if sink == nil {
		return
	}
	tags := map[string]string{"result": ResultSuccess}
	if err != nil {
		tags["result"] = ResultError
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	}
	sink.Count("job.questions_generated", int64(count), tags)
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
