package dto

// MigrationResult summarises one run of the historical-rate backfill job.
// Skipped covers both "already had rates" and "failed for that expense"; the
// two are distinguishable only by the presence of a matching entry in Errors.
type MigrationResult struct {
	TotalExpenses    int      `json:"totalExpenses"`
	MigratedExpenses int      `json:"migratedExpenses"`
	SkippedExpenses  int      `json:"skippedExpenses"`
	Errors           []string `json:"errors"`
	DurationMs       int64    `json:"durationMs"`
}

// FreshnessResult reports the outcome of an EnsureFresh call. Updated means a
// refresh actually ran to completion; TimedOut means the caller's deadline won
// the race and the refresh was abandoned. Freshness is advisory: a timed-out
// result still has Success true because the caller may proceed with whatever
// rates are currently available.
type FreshnessResult struct {
	Success  bool `json:"success"`
	Updated  bool `json:"updated"`
	TimedOut bool `json:"timedOut"`
}
