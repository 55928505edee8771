// Package deadline derives turn deadlines for a race draft from the race's
// FP1 time. Nothing here is persisted.
package deadline

import "time"

const (
	// DefaultFirstHalfLead is how long before FP1 the first half of the order
	// must have picked.
	DefaultFirstHalfLead = 36 * time.Hour
	// DefaultStandInWindow is how close to the second-half deadline a teammate
	// may pick for the turn holder.
	DefaultStandInWindow = time.Hour
)

type Deadlines struct {
	FirstHalf  time.Time `json:"first_half"`
	SecondHalf time.Time `json:"second_half"`
	// Threshold is the first index that uses SecondHalf.
	Threshold  int       `json:"threshold"`
}

// Compute splits an order of orderLen turns at ceil(orderLen/2).
func Compute(fp1 time.Time, orderLen int, firstHalfLead time.Duration) Deadlines {
	return Deadlines{
		FirstHalf:  fp1.Add(-firstHalfLead),
		SecondHalf: fp1,
		Threshold:  (orderLen + 1) / 2,
	}
}

// For returns the deadline of the turn at index.
func (d Deadlines) For(index int) time.Time {
	if index < d.Threshold {
		return d.FirstHalf
	}
	return d.SecondHalf
}

// Expired reports whether the turn at index is past its deadline at now.
func (d Deadlines) Expired(index int, now time.Time) bool {
	return now.After(d.For(index))
}

// InStandInWindow reports whether now falls within window of the second-half
// deadline, both ends inclusive.
func (d Deadlines) InStandInWindow(now time.Time, window time.Duration) bool {
	return !now.Before(d.SecondHalf.Add(-window)) && !now.After(d.SecondHalf)
}
