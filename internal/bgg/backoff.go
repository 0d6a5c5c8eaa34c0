package bgg

import "time"

const (
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
)

// DelayFor returns how long to wait before the attempt that follows the
// given number of failed attempts. It doubles from one second and is
// capped at thirty seconds.
func DelayFor(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	delay := initialRetryDelay
	for i := 1; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}
