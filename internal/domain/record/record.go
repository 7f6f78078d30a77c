// Package record defines the six-field metric record and its line codec.
//
// A record travels the system as one comma-separated line of text. The
// raw line is what gets persisted and broadcast; Decode is used for
// validation and for timestamp extraction on the query path, never to
// normalize stored data.
package record

import (
	"strings"
	"time"
)

// FieldCount is the fixed arity of a metric record.
const FieldCount = 6

// Header is the column header synthesized for windowed CSV exports.
// The live log file itself never contains it.
const Header = "date,time,original_dl,predicted_dl,temperature,pressure"

// delimiter separates record fields on the wire and on disk.
const delimiter = ","

// Record is one metric observation. Fields hold raw text verbatim;
// numeric fields are not validated at ingestion time and downstream
// consumers treat non-numeric values as unusable.
type Record struct {
	Date        string // calendar date, e.g. 2025-01-02
	Time        string // time of day, e.g. 10:00:00.123
	OriginalDL  string
	PredictedDL string
	Temperature string
	Pressure    string
}

// Decode parses one line into a Record. A line with fewer than six
// comma-separated fields is not a record. Extra fields beyond the
// sixth are folded into the last field so Encode round-trips the line.
func Decode(line string) (Record, error) {
	parts := strings.Split(line, delimiter)
	if len(parts) < FieldCount {
		return Record{}, ErrTooFewFields
	}
	return Record{
		Date:        parts[0],
		Time:        parts[1],
		OriginalDL:  parts[2],
		PredictedDL: parts[3],
		Temperature: parts[4],
		Pressure:    strings.Join(parts[FieldCount-1:], delimiter),
	}, nil
}

// Encode renders the record as one line without a trailing terminator.
func (r Record) Encode() string {
	return strings.Join([]string{r.Date, r.Time, r.OriginalDL, r.PredictedDL, r.Temperature, r.Pressure}, delimiter)
}

// timestampLayouts are tried in order when coercing date+time to an
// instant. Fractional seconds and missing seconds are both tolerated.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Timestamp coerces the record's date and time fields into a UTC
// instant. Callers on the query path fail open when it errors.
func (r Record) Timestamp() (time.Time, error) {
	return ParseTimestamp(r.Date, r.Time)
}

// ParseTimestamp combines a date and a time-of-day string into one
// comparable instant. Both components are trimmed before joining.
func ParseTimestamp(date, tod string) (time.Time, error) {
	joined := strings.TrimSpace(date) + "T" + strings.TrimSpace(tod)
	var firstErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, joined)
		if err == nil {
			return ts, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
