// Package clock holds the unix-millisecond timestamps the game state
// carries on the wire, plus deadline arithmetic against an injectable
// clockwork.Clock so deadline logic stays testable with a fake clock.
package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// UnixMs is an absolute instant in unix milliseconds. The zero value
// means "unset".
type UnixMs int64

func At(t time.Time) UnixMs {
	return UnixMs(t.UnixMilli())
}

func Now(c clockwork.Clock) UnixMs {
	return At(c.Now())
}

// FromNow returns the instant d from now.
func FromNow(c clockwork.Clock, d time.Duration) UnixMs {
	return At(c.Now().Add(d))
}

// Until returns how long from now until m. Negative if m has passed.
func Until(c clockwork.Clock, m UnixMs) time.Duration {
	return m.Time().Sub(c.Now())
}

func (m UnixMs) Time() time.Time {
	return time.UnixMilli(int64(m))
}

func (m UnixMs) IsSet() bool {
	return m != 0
}
