package profile

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampKind tags which shape a stored timestamp was found in.
type TimestampKind int

const (
	TimestampMissing TimestampKind = iota
	TimestampNative
	TimestampISOString
	TimestampEpochNumber
)

func (k TimestampKind) String() string {
	switch k {
	case TimestampNative:
		return "native"
	case TimestampISOString:
		return "iso_string"
	case TimestampEpochNumber:
		return "epoch_number"
	default:
		return "missing"
	}
}

// Timestamp is a stored date in one of the shapes profile documents have used
// over time. Only the field matching Kind is meaningful.
type Timestamp struct {
	Kind  TimestampKind
	Time  time.Time
	Text  string
	Epoch float64
}

func NativeTimestamp(t time.Time) Timestamp { return Timestamp{Kind: TimestampNative, Time: t} }

func ISOTimestamp(s string) Timestamp { return Timestamp{Kind: TimestampISOString, Text: s} }

func EpochTimestamp(n float64) Timestamp { return Timestamp{Kind: TimestampEpochNumber, Epoch: n} }

// epochMillisThreshold separates epoch seconds from epoch milliseconds. 1e11
// seconds is far in the future while 1e11 milliseconds is March 1973.
const epochMillisThreshold = 1e11

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// TimestampFromValue classifies a raw decoded value. Unknown shapes become Missing.
func TimestampFromValue(v interface{}) Timestamp {
	switch t := v.(type) {
	case nil:
		return Timestamp{}
	case time.Time:
		return NativeTimestamp(t)
	case *time.Time:
		if t == nil {
			return Timestamp{}
		}
		return NativeTimestamp(*t)
	case string:
		return ISOTimestamp(t)
	case int:
		return EpochTimestamp(float64(t))
	case int32:
		return EpochTimestamp(float64(t))
	case int64:
		return EpochTimestamp(float64(t))
	case float32:
		return EpochTimestamp(float64(t))
	case float64:
		return EpochTimestamp(t)
	case map[string]interface{}:
		// Serialized Firestore timestamps: {seconds, nanoseconds} or {_seconds, _nanoseconds}.
		for _, key := range []string{"seconds", "_seconds"} {
			if raw, ok := t[key]; ok {
				secs, ok := toFloat(raw)
				if !ok {
					return Timestamp{}
				}
				nanos, _ := toFloat(t["nanoseconds"])
				if n, ok := toFloat(t["_nanoseconds"]); ok {
					nanos = n
				}
				return NativeTimestamp(time.Unix(int64(secs), int64(nanos)).UTC())
			}
		}
		return Timestamp{}
	default:
		return Timestamp{}
	}
}

// Resolve converts the timestamp into a time. It is total: every shape that
// cannot be read yields fallback.
func (t Timestamp) Resolve(fallback time.Time) time.Time {
	switch t.Kind {
	case TimestampNative:
		if t.Time.IsZero() {
			return fallback
		}
		return t.Time
	case TimestampISOString:
		if parsed, ok := parseISO(t.Text); ok {
			return parsed
		}
		return fallback
	case TimestampEpochNumber:
		if parsed, ok := fromEpoch(t.Epoch); ok {
			return parsed
		}
		return fallback
	default:
		return fallback
	}
}

func parseISO(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(n)
	}
	return time.Time{}, false
}

func fromEpoch(n float64) (time.Time, bool) {
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return time.Time{}, false
	}
	if n >= epochMillisThreshold {
		if n > 1e15 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(n)).UTC(), true
	}
	sec, frac := math.Modf(n)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
