package xmlrpc

import (
	"strings"
	"time"
)

// dateTimeFormat is used for encoding. It carries neither fractional seconds
// nor a zone offset.
const dateTimeFormat = "2006-01-02T15:04:05"

// Accepted layouts for dateTime.iso8601 values, tried in order. XML-RPC
// implementations emit various ISO 8601 flavours: basic and extended format,
// reduced to minutes or hours, with numeric offset, hour offset or Z suffix.
var dateTimeLayouts = []string{
	// basic format
	"20060102T150405-07:00",
	"20060102T150405-07",
	"20060102T150405Z",
	// extended format
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04:05-07",
	"2006-01-02T15:04:05Z",
	"20060102T15:04:05:-07:00",
	"20060102T15:04:05:-07",
	"20060102T15:04:05:Z",
	"20060102T15:04:05",
	dateTimeFormat,
	// reduced to minutes
	"20060102T1504-07:00",
	"20060102T1504-07",
	"20060102T1504Z",
	"2006-01-02T15:04-07:00",
	"2006-01-02T15:04-07",
	"2006-01-02T15:04Z",
	// reduced to hours
	"20060102T15-07:00",
	"20060102T15-07",
	"20060102T15Z",
	"2006-01-02T15-07:00",
	"2006-01-02T15-07",
	"2006-01-02T15Z",
}

// parseDateTime parses s with the first matching layout. Values without zone
// offset are interpreted in loc, a Z suffix denotes UTC. Fractional seconds
// are not accepted.
func parseDateTime(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		l := loc
		if strings.HasSuffix(layout, "Z") {
			l = time.UTC
		}
		t, err := time.ParseInLocation(layout, s, l)
		// time.Parse skips a fraction after the seconds, even if the layout
		// has none
		if err == nil && len(t.Format(layout)) == len(s) {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatDateTime(t time.Time) string {
	return t.Format(dateTimeFormat)
}
