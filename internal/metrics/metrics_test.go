package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPublished(t *testing.T) {
	m := New()
	m.RecordPublished("note")
	m.RecordPublished("note")
	m.RecordPublished("reply")

	assert.InDelta(t, 2, promtest.ToFloat64(m.PostsPublished.WithLabelValues("note")), 0)
	assert.InDelta(t, 1, promtest.ToFloat64(m.PostsPublished.WithLabelValues("reply")), 0)
}

func TestRecordFailure(t *testing.T) {
	m := New()
	m.RecordFailure(ReasonValidation)
	assert.InDelta(t, 1, promtest.ToFloat64(m.RequestsFailed.WithLabelValues(ReasonValidation)), 0)
	assert.InDelta(t, 0, promtest.ToFloat64(m.RequestsFailed.WithLabelValues(ReasonDecode)), 0)
}

func TestIndependentRegistries(t *testing.T) {
	// Each instance owns its registry, so creating two must not panic.
	a, b := New(), New()
	a.RecordPublished("like")
	assert.InDelta(t, 0, promtest.ToFloat64(b.PostsPublished.WithLabelValues("like")), 0)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordPublished("note")
	m.RecordFailure(ReasonInternal)
	m.ObserveRender(time.Now())
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordPublished("article")
	m.ObserveRender(time.Now())

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `raido_posts_published_total{post_type="article"} 1`)
	assert.Contains(t, string(body), "raido_render_duration_seconds_count 1")
}
