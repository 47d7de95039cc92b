package avb

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidEditRate = errors.New("invalid edit rate")

// EditRate is a rational frames-per-second value.
type EditRate struct {
	Num int64
	Den int64
}

// Rate returns an integer edit rate.
func Rate(fps int64) EditRate {
	return EditRate{Num: fps, Den: 1}
}

// IsZero reports whether the rate is unset.
func (r EditRate) IsZero() bool {
	return r.Num == 0 || r.Den == 0
}

// Float returns the rate as a float.
func (r EditRate) Float() float64 {
	if r.IsZero() {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Nominal is the rounded integer rate that frame counts and timecode are
// expressed in (23.976 counts at 24).
func (r EditRate) Nominal() int64 {
	return int64(math.Round(r.Float()))
}

func (r EditRate) String() string {
	if r.Den == 1 || r.Den == 0 {
		return strconv.FormatInt(r.Num, 10)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// ParseEditRate accepts "24", "24000/1001", "23.976" and plain numbers.
// Decimal NTSC rates are normalized to their x/1001 form.
func ParseEditRate(v any) (EditRate, error) {
	switch x := v.(type) {
	case int:
		return Rate(int64(x)), nil
	case int64:
		return Rate(x), nil
	case float64:
		return rateFromFloat(x)
	case string:
		s := strings.TrimSpace(x)
		if num, den, ok := strings.Cut(s, "/"); ok {
			n, err1 := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
			d, err2 := strconv.ParseInt(strings.TrimSpace(den), 10, 64)
			if err1 != nil || err2 != nil || d <= 0 || n < 0 {
				return EditRate{}, fmt.Errorf("%w: %q", ErrInvalidEditRate, x)
			}
			return EditRate{Num: n, Den: d}, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return EditRate{}, fmt.Errorf("%w: %q", ErrInvalidEditRate, x)
		}
		return rateFromFloat(f)
	case nil:
		return EditRate{}, nil
	default:
		return EditRate{}, fmt.Errorf("%w: %v (%T)", ErrInvalidEditRate, v, v)
	}
}

func rateFromFloat(f float64) (EditRate, error) {
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return EditRate{}, fmt.Errorf("%w: %v", ErrInvalidEditRate, f)
	}
	if f == math.Trunc(f) {
		return Rate(int64(f)), nil
	}
	// 23.976, 29.97, 59.94 ...
	ntsc := math.Round(f * 1.001)
	if math.Abs(ntsc/1.001-f) < 0.005 {
		return EditRate{Num: int64(ntsc) * 1000, Den: 1001}, nil
	}
	return EditRate{Num: int64(math.Round(f * 1000)), Den: 1000}, nil
}
