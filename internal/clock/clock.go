// Package clock provides the time source used for submission timestamps,
// claim markers and expiry, replaceable in tests.
package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now returns NowFunc in UTC.
func Now() time.Time { return NowFunc().UTC() }
