package triage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/facilitypulse/facilitypulse/internal/provider/resilience"
)

// HTTPDiagnoserConfig holds configuration for the HTTP-backed diagnoser.
type HTTPDiagnoserConfig struct {
	// BaseURL is the vision service endpoint, without trailing slash.
	BaseURL string

	// APIKey is sent as a bearer token. Optional.
	APIKey string

	// Client is the resilient HTTP client. If nil a default client named
	// "vision" is created.
	Client *resilience.Client

	Logger zerolog.Logger
}

// HTTPDiagnoser calls an external vision service over HTTP. Calls go
// through the resilient client, so a flapping backend is retried and a
// dead one fails fast once the breaker opens.
type HTTPDiagnoser struct {
	baseURL string
	apiKey  string
	client  *resilience.Client
	logger  zerolog.Logger
}

// NewHTTPDiagnoser creates a new HTTP-backed diagnoser.
func NewHTTPDiagnoser(cfg HTTPDiagnoserConfig) *HTTPDiagnoser {
	client := cfg.Client
	if client == nil {
		client = resilience.NewClient(resilience.DefaultClientConfig("vision"))
	}
	return &HTTPDiagnoser{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  client,
		logger:  cfg.Logger,
	}
}

type diagnoseRequest struct {
	Image string `json:"image"`
}

type diagnoseResponse struct {
	Summary           string   `json:"summary"`
	ProbableCauses    []string `json:"probable_causes"`
	RecommendedAction string   `json:"recommended_action"`
	Confidence        float64  `json:"confidence"`
}

// Diagnose sends the image to the vision service and decodes the result.
func (d *HTTPDiagnoser) Diagnose(ctx context.Context, image []byte) (*Diagnosis, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	body, err := json.Marshal(diagnoseRequest{
		Image: base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/v1/diagnose", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.apiKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			d.logger.Warn().Msg("vision circuit open, diagnosis unavailable")
			return nil, ErrUnavailable
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.logger.Error().Int("status", resp.StatusCode).Msg("vision service rejected diagnosis request")
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var decoded diagnoseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &Diagnosis{
		Summary:           decoded.Summary,
		ProbableCauses:    decoded.ProbableCauses,
		RecommendedAction: decoded.RecommendedAction,
		Confidence:        decoded.Confidence,
	}, nil
}
