package domain

import "time"

// BatchOptions controls one batch run.
type BatchOptions struct {
	// Concurrency is the number of tickers processed at once.
	Concurrency int

	// MaxFailures stops scheduling once more than this many tickers fail. 0 disables.
	MaxFailures int

	// CountEmptyAsFailure treats an empty theme result as a failure.
	CountEmptyAsFailure bool
}

// BatchProgress is reported once per finished ticker.
type BatchProgress struct {
	Ticker    string
	Completed int
	Total     int
	Themes    int
	Err       error
}

// BatchReport summarises a batch run. Succeeded, Empty, Failed and
// Skipped always add up to Total.
type BatchReport struct {
	Total     int
	Succeeded int
	Empty     int
	Failed    int

	// Skipped counts tickers that were never started or were cancelled in
	// flight after the batch stopped.
	Skipped int

	// Failures maps ticker to error message.
	Failures map[string]string

	// Stopped is set when the failure budget was exceeded.
	Stopped bool

	Duration time.Duration
}

// CollectReport summarises one social collection pass.
type CollectReport struct {
	Tickers  int
	Fetched  int
	Inserted int

	// Failures maps ticker to error message.
	Failures map[string]string
}
