package metrics

import "time"

// ExclusionReason labels why an announced item did not become an entry.
type ExclusionReason string

const (
	ExcludedByPattern ExclusionReason = "pattern"
	ExcludedPrivate   ExclusionReason = "private"
)

// BuildOutcome labels the final status of a sitemap build.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// Recorder defines observability hooks for sitemap builds.
type Recorder interface {
	IncItemRecorded(class string)
	IncItemExcluded(reason ExclusionReason)
	IncEntryOverwritten()
	IncMetadataIssue(field string)
	SetEntriesEmitted(format string, n int)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcome)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncItemRecorded(string)             {}
func (NoopRecorder) IncItemExcluded(ExclusionReason)    {}
func (NoopRecorder) IncEntryOverwritten()               {}
func (NoopRecorder) IncMetadataIssue(string)            {}
func (NoopRecorder) SetEntriesEmitted(string, int)      {}
func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)       {}
