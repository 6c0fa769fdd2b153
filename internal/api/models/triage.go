package models

// DiagnoseRequest is the request body for a visual triage diagnosis.
// Image carries the equipment photo as base64.
type DiagnoseRequest struct {
	Image string `json:"image"`
}

// Diagnosis is the triage verdict for an equipment photo.
type Diagnosis struct {
	Summary           string   `json:"summary"`
	ProbableCauses    []string `json:"probableCauses,omitempty"`
	RecommendedAction string   `json:"recommendedAction,omitempty"`
	Confidence        float64  `json:"confidence"`
}
