// Package metrics provides helpers for emitting standardised application metrics.
package metrics

import (
	"time"

	obserrors "github.com/fieldops/fieldops-api/internal/observability/errors"
	"github.com/fieldops/fieldops-api/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Stage constants identify which identity check a metric describes.
const (
	StageVerify  = "verify"
	StageProfile = "profile"
)

// AuthCheck captures details about one identity-check outcome for metric emission.
type AuthCheck struct {
	Stage    string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitAuthCheck emits standardised identity-check metrics.
func EmitAuthCheck(sink statsd.Sink, in AuthCheck) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"stage":  in.Stage,
		"result": in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("auth.check", 1, tags)

	if in.Duration > 0 {
		sink.Timing("auth.check.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
