package jobmetrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchdesk/benchdesk/internal/observability"
)

// The worker registers job collectors onto the platform registry so
// one /metrics endpoint exposes both.
func TestMetricsRegisterOntoPlatformRegistry(t *testing.T) {
	platform := observability.NewMetrics()
	m := NewMetrics(platform.Registerer())

	m.AddAnomalies("warning", "u-1", 2)
	require.NoError(t, m.Track("audit:denial_scan").End(nil))

	srv := httptest.NewServer(platform.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, "benchdesk_denial_anomalies_total")
	assert.Contains(t, body, "benchdesk_jobs_total")
}
