package app

import "time"

// Clock returns the current time. Services read time only through it.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }
