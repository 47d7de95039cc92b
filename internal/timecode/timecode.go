// Package timecode holds frame positions tagged with the nominal rate they are
// counted at, and the resampling used whenever a position crosses an edit
// rate boundary.
package timecode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidTimecode = errors.New("invalid timecode")

// Timecode is a frame position counted at a nominal (integer) frame rate.
type Timecode struct {
	Frame int64
	Rate  int64
}

// New returns a Timecode at frame counted at rate.
func New(frame, rate int64) Timecode {
	return Timecode{Frame: frame, Rate: rate}
}

// Resample converts the position to another nominal rate:
// round(frame * rate / t.Rate), rounding halves away from zero.
// Resampling to the current rate (or from/to a zero rate) is a no-op.
func (t Timecode) Resample(rate int64) Timecode {
	if rate == t.Rate || rate <= 0 || t.Rate <= 0 {
		return Timecode{Frame: t.Frame, Rate: rate}
	}
	return Timecode{Frame: scale(t.Frame, rate, t.Rate), Rate: rate}
}

func scale(frame, num, den int64) int64 {
	n := frame * num
	q, r := n/den, n%den
	if r < 0 {
		r = -r
	}
	if 2*r >= den {
		if n < 0 {
			q--
		} else {
			q++
		}
	}
	return q
}

// Add returns t advanced by frames.
func (t Timecode) Add(frames int64) Timecode {
	return Timecode{Frame: t.Frame + frames, Rate: t.Rate}
}

// Sub returns t moved back by frames.
func (t Timecode) Sub(frames int64) Timecode {
	return Timecode{Frame: t.Frame - frames, Rate: t.Rate}
}

// String formats as HH:MM:SS:FF (non-drop).
func (t Timecode) String() string {
	rate := t.Rate
	if rate <= 0 {
		return strconv.FormatInt(t.Frame, 10)
	}
	frame := t.Frame
	sign := ""
	if frame < 0 {
		sign = "-"
		frame = -frame
	}
	ff := frame % rate
	secs := frame / rate
	return fmt.Sprintf("%s%02d:%02d:%02d:%02d", sign, secs/3600, (secs/60)%60, secs%60, ff)
}

// Parse reads a timecode string at rate. Fields are right-aligned, so "8:00"
// is eight seconds and "1:00:00:00" is one hour. ';' separators are accepted.
func Parse(s string, rate int64) (Timecode, error) {
	if rate <= 0 {
		return Timecode{}, fmt.Errorf("%w: rate %d", ErrInvalidTimecode, rate)
	}
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return Timecode{}, fmt.Errorf("%w: empty", ErrInvalidTimecode)
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == ';' })
	if len(fields) > 4 {
		return Timecode{}, fmt.Errorf("%w: %q", ErrInvalidTimecode, s)
	}
	// hours, minutes, seconds, frames multipliers
	mult := []int64{3600 * rate, 60 * rate, rate, 1}
	var frame int64
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil || v < 0 {
			return Timecode{}, fmt.Errorf("%w: %q", ErrInvalidTimecode, s)
		}
		frame += v * mult[4-len(fields)+i]
	}
	if neg {
		frame = -frame
	}
	return Timecode{Frame: frame, Rate: rate}, nil
}

// Range is a start position plus a duration in frames at the same rate.
type Range struct {
	Start    Timecode
	Duration int64
}

// End is the exclusive end of the range.
func (r Range) End() Timecode {
	return r.Start.Add(r.Duration)
}

// DurationTimecode expresses the duration as a timecode at the range's rate.
func (r Range) DurationTimecode() Timecode {
	return Timecode{Frame: r.Duration, Rate: r.Start.Rate}
}
