package arukumachi

import "time"

// anchorClock places a raw clock time (hour, minute — the only thing the
// page renders) on a calendar date, given the previously anchored
// timestamp in the same chain.
//
// Rollover heuristic: a small-hours time after an evening time means the
// chain crossed midnight; failing that, any apparent regression of more
// than 60 minutes does too. This reproduces day-boundary continuity
// across arbitrarily long leg chains, but it is a heuristic: a single
// leg longer than ~18 hours, or an overnight trip departing before
// 18:00 and arriving after 05:59, will anchor on the wrong day. The
// upstream page gives nothing better to go on.
func anchorClock(prev time.Time, hour, minute int) time.Time {
	t := time.Date(prev.Year(), prev.Month(), prev.Day(), hour, minute, 0, 0, prev.Location())
	if hour <= 5 && prev.Hour() >= 18 {
		return t.AddDate(0, 0, 1)
	}
	if t.Before(prev.Add(-60 * time.Minute)) {
		return t.AddDate(0, 0, 1)
	}
	return t
}

// anchorToDate places a clock time on the query's base calendar date.
// Used for the first timestamp of a chain, before any rollover context
// exists.
func anchorToDate(base time.Time, hour, minute int) time.Time {
	return time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, base.Location())
}
