package discord

import (
	"strconv"
	"strings"
	"time"
)

// Epoch is the first millisecond of 2015, the platform's snowflake epoch.
const Epoch int64 = 1420070400000

// CompareIDs orders two snowflake strings numerically without parsing them:
// a shorter decimal string is smaller, equal lengths compare lexically.
// Leading zeros are ignored.
func CompareIDs(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// SnowflakeFromTime returns the smallest snowflake created at t, suitable as a
// before/after cursor for date-bounded listings.
func SnowflakeFromTime(t time.Time) string {
	ms := t.UnixMilli() - Epoch
	if ms < 0 {
		ms = 0
	}
	return strconv.FormatUint(uint64(ms)<<22, 10)
}

// TimeFromSnowflake extracts the creation time encoded in id.
func TimeFromSnowflake(id string) (time.Time, error) {
	v, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(int64(v>>22) + Epoch).UTC(), nil
}
