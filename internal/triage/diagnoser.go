// Package triage turns a photo of broken equipment into a structured
// diagnosis. The analysis itself lives behind the Diagnoser interface so
// the rest of the system never depends on a particular vision backend.
package triage

import (
	"context"
	"errors"
)

// Predefined triage errors.
var (
	// ErrEmptyImage is returned when no image data was supplied.
	ErrEmptyImage = errors.New("empty image")

	// ErrUnavailable is returned when the vision backend cannot be
	// reached.
	ErrUnavailable = errors.New("diagnosis service unavailable")
)

// Diagnosis is the structured outcome of analyzing an equipment photo.
type Diagnosis struct {
	// Summary is a one-paragraph description of the observed condition.
	Summary string

	// ProbableCauses lists likely root causes, most likely first.
	ProbableCauses []string

	// RecommendedAction is the suggested next step for the technician.
	RecommendedAction string

	// Confidence is the backend's confidence in the diagnosis, 0 to 1.
	Confidence float64
}

// Diagnoser analyzes an equipment photo.
type Diagnoser interface {
	Diagnose(ctx context.Context, image []byte) (*Diagnosis, error)
}

// StaticDiagnoser returns a fixed diagnosis for every image. Used in
// local development and tests.
type StaticDiagnoser struct {
	Result Diagnosis
}

// Diagnose returns the configured diagnosis.
func (d *StaticDiagnoser) Diagnose(_ context.Context, image []byte) (*Diagnosis, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	result := d.Result
	if result.Summary == "" {
		result.Summary = "No anomalies detected."
	}
	return &result, nil
}
