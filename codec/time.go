package codec

import (
	"fmt"
	"math"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// Date maps an int day count since the Unix epoch to a UTC time.Time at
// midnight.
func Date() Codec {
	return Funcs{
		To: func(v any) (any, error) {
			t, err := asTime(v)
			if err != nil {
				return nil, err
			}
			days := floorDiv(t.Unix(), secondsPerDay)
			if days < math.MinInt32 || days > math.MaxInt32 {
				return nil, fmt.Errorf("date %s out of range", t.Format(time.DateOnly))
			}
			return int32(days), nil
		},
		From: func(v any) (any, error) {
			n, err := asInt64(v)
			if err != nil {
				return nil, err
			}
			return time.Unix(n*secondsPerDay, 0).UTC(), nil
		},
	}
}

// TimeMillis maps an int millisecond time of day to time.Duration.
func TimeMillis() Codec {
	return Funcs{
		To: func(v any) (any, error) {
			d, err := asDuration(v)
			if err != nil {
				return nil, err
			}
			return int32(d.Milliseconds()), nil
		},
		From: func(v any) (any, error) {
			n, err := asInt64(v)
			if err != nil {
				return nil, err
			}
			return time.Duration(n) * time.Millisecond, nil
		},
	}
}

// TimeMicros maps a long microsecond time of day to time.Duration.
func TimeMicros() Codec {
	return Funcs{
		To: func(v any) (any, error) {
			d, err := asDuration(v)
			if err != nil {
				return nil, err
			}
			return d.Microseconds(), nil
		},
		From: func(v any) (any, error) {
			n, err := asInt64(v)
			if err != nil {
				return nil, err
			}
			return time.Duration(n) * time.Microsecond, nil
		},
	}
}

// TimestampMillis maps long milliseconds since the epoch to a UTC time.Time.
func TimestampMillis() Codec {
	return timestamp(time.Time.UnixMilli, time.UnixMilli, false)
}

// TimestampMicros maps long microseconds since the epoch to a UTC time.Time.
func TimestampMicros() Codec {
	return timestamp(time.Time.UnixMicro, time.UnixMicro, false)
}

// LocalTimestampMillis is TimestampMillis for wall-clock times: the value's
// year..nanosecond fields are stored as if they were UTC.
func LocalTimestampMillis() Codec {
	return timestamp(time.Time.UnixMilli, time.UnixMilli, true)
}

// LocalTimestampMicros is the microsecond variant of LocalTimestampMillis.
func LocalTimestampMicros() Codec {
	return timestamp(time.Time.UnixMicro, time.UnixMicro, true)
}

func timestamp(to func(time.Time) int64, from func(int64) time.Time, local bool) Codec {
	return Funcs{
		To: func(v any) (any, error) {
			t, err := asTime(v)
			if err != nil {
				return nil, err
			}
			if local {
				t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
			}
			return to(t), nil
		},
		From: func(v any) (any, error) {
			n, err := asInt64(v)
			if err != nil {
				return nil, err
			}
			return from(n).UTC(), nil
		},
	}
}

func asTime(v any) (time.Time, error) {
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("expected time.Time, got %T", v)
	}
	return t, nil
}

func asDuration(v any) (time.Duration, error) {
	d, ok := v.(time.Duration)
	if !ok {
		return 0, fmt.Errorf("expected time.Duration, got %T", v)
	}
	if d < 0 || d >= secondsPerDay*time.Second {
		return 0, fmt.Errorf("time of day %s out of range", d)
	}
	return d, nil
}
