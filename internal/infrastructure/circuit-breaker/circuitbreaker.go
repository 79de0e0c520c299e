package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// CreateCircuitBreaker wraps the gateway validate endpoint so a flapping
// gateway does not stall notification handling; while open, notifications
// fail retryably and the gateway redelivers them.
func CreateCircuitBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	var st gobreaker.Settings
	st.Name = name
	st.Timeout = 30 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= 3 && failureRatio >= 0.6
	}

	cb := gobreaker.NewCircuitBreaker[[]byte](st)

	return cb
}
