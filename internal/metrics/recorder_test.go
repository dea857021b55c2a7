package metrics

import "testing"

// NoopRecorder must satisfy Recorder so it can be the default everywhere.
func TestNoopRecorderImplementsRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncItemRecorded("index")
	r.IncItemExcluded(ExcludedByPattern)
	r.SetEntriesEmitted("txt", 0)
}

var _ Recorder = (*PrometheusRecorder)(nil)
