package state

import "time"

// now is the timestamp for points appended without an explicit time:
// microseconds since the unix epoch.
func now() int64 {
	return time.Now().UnixMicro()
}
