package schedule

import (
	"sort"
	"time"

	"github.com/igorsilvi73/SMART-REPAIR/internal/calendar"
)

// Interval is a committed half-open [Start, End) busy range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Availability tracks the occupied intervals of every worker during one
// reschedule pass. It is rebuilt from scratch each pass and never
// persisted.
type Availability struct {
	busy map[string][]Interval
}

// NewAvailability returns an empty occupancy map.
func NewAvailability() *Availability {
	return &Availability{busy: make(map[string][]Interval)}
}

// Commit records an interval for the worker, keeping the list sorted by
// start time.
func (a *Availability) Commit(worker string, iv Interval) {
	intervals := a.busy[worker]
	i := sort.Search(len(intervals), func(i int) bool {
		return !intervals[i].Start.Before(iv.Start)
	})
	intervals = append(intervals, Interval{})
	copy(intervals[i+1:], intervals[i:])
	intervals[i] = iv
	a.busy[worker] = intervals
}

// Busy returns the worker's committed intervals, sorted by start.
func (a *Availability) Busy(worker string) []Interval {
	return a.busy[worker]
}

// FindFreeSlot returns the earliest working instant at or after
// lowerBound where a task with the given work budget fits without
// overlapping any of the occupied intervals. The search walks candidate
// slots forward, restarting the overlap scan from the end of whichever
// interval collided, so the returned start combined with
// calendar.AddWork always yields an interval disjoint from every
// occupied one.
func FindFreeSlot(lowerBound time.Time, budget time.Duration, occupied []Interval) time.Time {
	start := calendar.NextWorkingInstant(lowerBound)
	end := calendar.AddWork(start, budget)
	for {
		collided := false
		for _, busy := range occupied {
			if (Interval{Start: start, End: end}).Overlaps(busy) {
				start = calendar.NextWorkingInstant(busy.End)
				end = calendar.AddWork(start, budget)
				collided = true
				break
			}
		}
		if !collided {
			return start
		}
	}
}
