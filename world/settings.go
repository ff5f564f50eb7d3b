package world

// Settings is ambient World configuration, checked once at World
// construction and readable afterwards for diagnostics. Grounded on the
// teacher's storage/settings.go SettingsT struct, stripped of the
// Scheme-interpreter trace/backtrace fields that have no role here.
type Settings struct {
	// EnableParallel toggles whether RunWorkload/RunDefault dispatch
	// multi-member batches across goroutines or fall back to running
	// every batch sequentially on the caller's goroutine.
	EnableParallel bool
	// WorkerCount is advisory capacity for future pool-based executors;
	// the current gls.Go-based executor (scheduler/executor.go) doesn't
	// bound concurrency by it. It is only stored and returned by Settings().
	WorkerCount int
	// Backtrace includes a recovered panic's stack trace in PanicError
	// when true; when false only the panic value is kept in error text.
	Backtrace bool
}

// DefaultSettings mirrors the teacher's package-level Settings default:
// parallel dispatch on, backtraces on, worker count left at a sane
// small default rather than GOMAXPROCS (the executor fans out per-batch,
// not per-core).
func DefaultSettings() Settings {
	return Settings{EnableParallel: true, WorkerCount: 8, Backtrace: true}
}
