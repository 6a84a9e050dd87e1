package itunesdb

import "time"

// playerEpochOffset is the number of seconds between 1904-01-01 (the epoch
// used on the device) and 1970-01-01.
const playerEpochOffset = 2082844800

// playerTime converts a device timestamp to UTC. Zero and anything at or
// before the Unix epoch mean "not set".
func playerTime(raw uint32) *time.Time {
	if raw == 0 {
		return nil
	}
	unix := int64(raw) - playerEpochOffset
	if unix <= 0 {
		return nil
	}
	t := time.Unix(unix, 0).UTC()
	return &t
}

