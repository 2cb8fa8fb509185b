package repository

import (
	"time"

	"github.com/jask/mxdesk/internal/sample"
)

// Sample is a tracked sample row.
type Sample struct {
	sample.Record
	CreatedAt time.Time
}

// QueueEntry is one pending sample in the data collection queue.
type QueueEntry struct {
	Position int64
	Sample   sample.Record
}

// Session keys.
const (
	KeySelectedProposal = "selected_proposal"
	KeyMountedSample    = "mounted_sample"
)
