// README: Common identifiers and time-window value objects used across modules.
package types

import "time"

type ID string

// Window is a closed time interval [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Valid() bool {
	return w.Start.Before(w.End)
}

// Overlaps reports whether two closed intervals intersect.
// [s1,e1] and [s2,e2] overlap iff s1 <= e2 && s2 <= e1, so windows that
// merely touch at a boundary still count as overlapping.
func (w Window) Overlaps(o Window) bool {
	return !w.Start.After(o.End) && !o.Start.After(w.End)
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}
