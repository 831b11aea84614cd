package observer

import (
	"time"

	"github.com/victorious243/scalper/internal/config"
)

// InSessions converts dt (treated as UTC if it carries no zone) into tz
// and returns the name of the first configured session window containing
// the local time of day, supporting windows that cross midnight. Returns
// "OFF" if no window matches.
func InSessions(dt time.Time, sessions []config.SessionConfig, tz string) string {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	if dt.Location() == time.Local {
		dt = dt.UTC()
	}
	local := dt.In(loc)
	current := local.Hour()*60 + local.Minute()

	for _, s := range sessions {
		start, startOK := parseHHMM(s.Start)
		end, endOK := parseHHMM(s.End)
		if !startOK || !endOK {
			continue
		}
		if start <= end {
			if current >= start && current <= end {
				return s.Name
			}
		} else {
			if current >= start || current <= end {
				return s.Name
			}
		}
	}
	return "OFF"
}

// parseHHMM parses "15:04"-style clock strings into minutes since
// midnight.
func parseHHMM(value string) (int, bool) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
