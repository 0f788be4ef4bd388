package detection

import (
	"strings"
	"time"
)

// Period tags prepended to log text before classification.
const (
	Nighttime = "[nighttime]"
	Daytime   = "[daytime]"
)

// nightEndHour is the first daytime hour: [00:00, 06:00) counts as night.
const nightEndHour = 6

// PeriodTag maps a log timestamp to its coarse time-of-day tag. The
// timestamp is ISO-8601; a trailing "Z" means UTC. Absent or unparseable
// timestamps fall back to Daytime, never an error (fail-open).
func PeriodTag(timestamp string) string {
	if timestamp == "" {
		return Daytime
	}

	ts := strings.TrimSpace(timestamp)

	// Tolerate timestamps without an offset or time component; a date-only
	// value parses to midnight and therefore counts as nighttime.
	layouts := []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}
	var dt time.Time
	var err error
	for _, layout := range layouts {
		dt, err = time.Parse(layout, ts)
		if err == nil {
			break
		}
	}
	if err != nil {
		return Daytime
	}

	// Hour in the timestamp's own offset, matching the log's local clock.
	if h := dt.Hour(); h >= 0 && h < nightEndHour {
		return Nighttime
	}
	return Daytime
}

// TagText prepends the period tag to the raw log text, the form the
// classifier rules and the LLM prompt both expect.
func TagText(periodTag, text string) string {
	return periodTag + " " + text
}
