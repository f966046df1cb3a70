package machine

import "time"

// StalenessWindow bounds how far in the past a device punch may be and
// still be applied. Device clocks drift and some models replay their
// whole log buffer on reconnect; anything older than this is treated as
// already reconciled.
const StalenessWindow = 60 * time.Minute

func IsStale(recordTime, now time.Time) bool {
	return now.Sub(recordTime) > StalenessWindow
}
