// Package poll provides the bounded-timeout predicate loop that load and
// wait actions are built on.
package poll

import "time"

// DefaultInterval matches the half-second cadence of the wait actions.
const DefaultInterval = 500 * time.Millisecond

// Predicate is a single condition check. A non-nil error means the check
// could not be evaluated this round; the poller treats it as false and
// keeps going.
type Predicate func() (bool, error)

// Until evaluates pred every interval until it returns true or timeout
// elapses. The first check happens immediately. It reports whether the
// predicate became true before the deadline.
func Until(pred Predicate, interval, timeout time.Duration) bool {
	if interval <= 0 {
		interval = DefaultInterval
	}
	deadline := time.Now().Add(timeout)
	for {
		ok, err := pred()
		if err == nil && ok {
			return true
		}
		if !time.Now().Add(interval).Before(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}

// Not inverts a predicate. Evaluation errors pass through so the poller
// still treats an unevaluable check as "not met".
func Not(pred Predicate) Predicate {
	return func() (bool, error) {
		ok, err := pred()
		if err != nil {
			return false, err
		}
		return !ok, nil
	}
}
