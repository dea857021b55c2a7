package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncItemRecorded("article")
	pr.IncItemRecorded("article")
	pr.IncItemExcluded(ExcludedPrivate)
	pr.IncEntryOverwritten()
	pr.IncMetadataIssue("priority")
	pr.SetEntriesEmitted("xml", 12)
	pr.ObserveBuildDuration(20 * time.Millisecond)
	pr.IncBuildOutcome(OutcomeSuccess)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.itemsRecorded.WithLabelValues("article")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.itemsExcluded.WithLabelValues("private")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.entriesOverwrote), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.metadataIssues.WithLabelValues("priority")), 0)
	assert.InDelta(t, 12, testutil.ToFloat64(pr.entriesEmitted.WithLabelValues("xml")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.buildOutcome.WithLabelValues("success")), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestPrometheusRecorder_EntriesEmittedKeepsOnlyLastFormat(t *testing.T) {
	pr := NewPrometheusRecorder(prom.NewRegistry())
	pr.SetEntriesEmitted("xml", 3)
	pr.SetEntriesEmitted("txt", 5)

	assert.Equal(t, 1, testutil.CollectAndCount(pr.entriesEmitted))
	assert.InDelta(t, 5, testutil.ToFloat64(pr.entriesEmitted.WithLabelValues("txt")), 0)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncItemRecorded("page")
		pr.IncBuildOutcome(OutcomeFailed)
	})
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncBuildOutcome(OutcomeSuccess)

	path := filepath.Join(t.TempDir(), "sitemapper.prom")
	require.NoError(t, WriteTextfile(reg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `sitemapper_build_outcomes_total{outcome="success"} 1`)
}
