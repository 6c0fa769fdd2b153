package triage_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facilitypulse/facilitypulse/internal/provider/resilience"
	"github.com/facilitypulse/facilitypulse/internal/triage"
)

func fastClient(name string) *resilience.Client {
	return resilience.NewClient(resilience.ClientConfig{
		Name:            name,
		Timeout:         2 * time.Second,
		MaxRetries:      1,
		InitialInterval: 5 * time.Millisecond,
		MaxInterval:     20 * time.Millisecond,
	})
}

func TestHTTPDiagnoser_Diagnose(t *testing.T) {
	image := []byte("jpeg-bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/diagnose", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req struct {
			Image string `json:"image"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		require.NoError(t, err)
		assert.Equal(t, image, decoded)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"summary": "Compressor coil is iced over.",
			"probable_causes": ["blocked airflow", "low refrigerant"],
			"recommended_action": "Defrost the unit and check refrigerant pressure.",
			"confidence": 0.82
		}`))
	}))
	defer server.Close()

	diagnoser := triage.NewHTTPDiagnoser(triage.HTTPDiagnoserConfig{
		BaseURL: server.URL,
		APIKey:  "secret",
		Client:  fastClient("vision-ok"),
		Logger:  zerolog.Nop(),
	})

	diagnosis, err := diagnoser.Diagnose(context.Background(), image)
	require.NoError(t, err)

	assert.Equal(t, "Compressor coil is iced over.", diagnosis.Summary)
	assert.Equal(t, []string{"blocked airflow", "low refrigerant"}, diagnosis.ProbableCauses)
	assert.InDelta(t, 0.82, diagnosis.Confidence, 1e-9)
}

func TestHTTPDiagnoser_EmptyImage(t *testing.T) {
	diagnoser := triage.NewHTTPDiagnoser(triage.HTTPDiagnoserConfig{
		BaseURL: "http://vision.invalid",
		Client:  fastClient("vision-empty"),
		Logger:  zerolog.Nop(),
	})

	_, err := diagnoser.Diagnose(context.Background(), nil)
	assert.ErrorIs(t, err, triage.ErrEmptyImage)
}

func TestHTTPDiagnoser_BackendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	diagnoser := triage.NewHTTPDiagnoser(triage.HTTPDiagnoserConfig{
		BaseURL: server.URL,
		Client:  fastClient("vision-down"),
		Logger:  zerolog.Nop(),
	})

	_, err := diagnoser.Diagnose(context.Background(), []byte("jpeg-bytes"))
	assert.ErrorIs(t, err, triage.ErrUnavailable)
}

func TestStaticDiagnoser(t *testing.T) {
	diagnoser := &triage.StaticDiagnoser{}

	diagnosis, err := diagnoser.Diagnose(context.Background(), []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "No anomalies detected.", diagnosis.Summary)

	_, err = diagnoser.Diagnose(context.Background(), nil)
	assert.ErrorIs(t, err, triage.ErrEmptyImage)
}
