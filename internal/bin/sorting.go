package bin

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/agentic-research/avbmatch/internal/avb"
)

// Sorting is a bin sort column.
type Sorting int

const (
	ByDateCreated Sorting = iota + 1
	ByDateModified
	ByName
)

func (s Sorting) String() string {
	switch s {
	case ByDateCreated:
		return "created"
	case ByDateModified:
		return "modified"
	case ByName:
		return "name"
	}
	return fmt.Sprintf("Sorting(%d)", int(s))
}

func ParseSorting(s string) (Sorting, error) {
	for _, v := range []Sorting{ByDateCreated, ByDateModified, ByName} {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown sort %q (want created, modified or name)", s)
}

// Sort orders mobs in place the way the bin window does. Names use
// HumanCompare. Ties keep their bin order.
func Sort(mobs []*avb.Mob, by Sorting, descending bool) {
	slices.SortStableFunc(mobs, func(a, b *avb.Mob) int {
		var c int
		switch by {
		case ByDateCreated:
			c = a.CreationTime.Compare(b.CreationTime)
		case ByDateModified:
			c = a.LastModified.Compare(b.LastModified)
		default:
			c = HumanCompare(a.Name, b.Name)
		}
		if descending {
			return -c
		}
		return c
	})
}

// HumanCompare compares names the way Avid sorts them: runs of digits
// compare numerically, everything else case-folded, so "Reel 9" sorts
// before "Reel 10". A digit run sorts before text.
func HumanCompare(a, b string) int {
	ta, tb := humanTokens(a), humanTokens(b)
	for i := 0; i < len(ta) && i < len(tb); i++ {
		x, y := ta[i], tb[i]
		xd, yd := isDigits(x), isDigits(y)
		switch {
		case xd && yd:
			if c := compareNumeric(x, y); c != 0 {
				return c
			}
		case xd:
			return -1
		case yd:
			return 1
		default:
			if c := strings.Compare(strings.ToLower(x), strings.ToLower(y)); c != 0 {
				return c
			}
		}
	}
	return cmp.Compare(len(ta), len(tb))
}

func humanTokens(s string) []string {
	var out []string
	start := 0
	for i := 1; i < len(s); i++ {
		if isDigit(s[i]) != isDigit(s[i-1]) {
			out = append(out, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isDigits(s string) bool {
	return s != "" && isDigit(s[0])
}

func compareNumeric(x, y string) int {
	tx, ty := strings.TrimLeft(x, "0"), strings.TrimLeft(y, "0")
	if c := cmp.Compare(len(tx), len(ty)); c != 0 {
		return c
	}
	return strings.Compare(tx, ty)
}
