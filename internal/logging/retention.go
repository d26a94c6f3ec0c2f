package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CleanupOldLogs removes daily log files in dir that are older than
// retentionDays. A retentionDays value of 0 disables pruning. Today's log
// file is never removed.
func CleanupOldLogs(logger *slog.Logger, dir string, retentionDays int) {
	cleanupOldLogs(logger, dir, retentionDays, time.Now())
}

func cleanupOldLogs(logger *slog.Logger, dir string, retentionDays int, now time.Time) {
	dir = strings.TrimSpace(dir)
	if retentionDays <= 0 || dir == "" {
		return
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	current := DailyLogPath(dir, now)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if matched, err := filepath.Match(LogFilePattern, name); err != nil || !matched {
			continue
		}
		fullPath := filepath.Join(dir, name)
		if fullPath == current {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(fullPath); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				String("path", fullPath),
				Error(err),
				String(FieldErrorHint, "check file permissions and log_dir ownership"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		if logger != nil {
			logger.Debug("log pruned",
				String("path", fullPath),
				String(FieldEventType, "log_pruned"),
			)
		}
	}
}
