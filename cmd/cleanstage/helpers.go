package main

import (
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
)

func baseName(path string) string {
	return filepath.Base(filepath.Clean(path))
}

func formatSize(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.Bytes(uint64(size))
}

// formatDisplayTime renders t as local wall time plus a relative hint.
func formatDisplayTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04") + " (" + humanize.Time(t) + ")"
}

func formatDuration(start time.Time, end *time.Time) string {
	if start.IsZero() || end == nil || end.IsZero() {
		return "-"
	}
	return end.Sub(start).Round(time.Millisecond).String()
}
