package capture

import "time"

// ClientStats summarises client activity for instrumentation.
type ClientStats struct {
	Requests     uint64
	Failures     uint64
	Downloads    uint64
	BytesWritten uint64
	AvgRequest   time.Duration
	LastDownload time.Time
}
