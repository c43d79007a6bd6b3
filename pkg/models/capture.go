package models

// EnhancedStill is the delivered result of enhancing one still or selecting
// the best still of a burst. Data carries the encoded JPEG; the remaining
// fields describe how the result was obtained.
type EnhancedStill struct {
	Data []byte `json:"-"`

	Score             float64 `json:"sharpness_score"`
	BurstIndex        int     `json:"burst_index"`
	Attempts          int     `json:"attempts"`
	FailedShots       int     `json:"failed_shots"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	SizeBytes         int     `json:"size_bytes"`
	ProcessingTimeSec float64 `json:"processing_time_sec"`
	ArchiveURL        string  `json:"archive_url,omitempty"`
}
