// Package logging assembles structured slog loggers and formatting helpers used
// across votd commands.
//
// It owns the console and JSON handlers, writes a daily JSON log file next to
// console output, and exposes context-aware helpers so workflow code tags log
// lines with the verb, stage, and deck week being processed. Values logged
// under credential-like keys are masked. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
package logging
