package storage

import "time"

// RunRecord is one stored validation run.
type RunRecord struct {
	RunID        string
	Root         string
	CreatedAt    time.Time
	Duration     time.Duration
	Files        int
	Placeholders int
	Errors       int
	Warnings     int
}
