package util

import (
	"sort"
	"strconv"
	"strings"
)

// naturalToken is one run of a hostname: either all digits or all non-digits.
type naturalToken struct {
	text    string
	number  int64
	numeric bool
}

// naturalTokens splits s into alternating non-digit and digit runs,
// so "gpu10b" becomes ["gpu", 10, "b"].
func naturalTokens(s string) []naturalToken {
	var tokens []naturalToken
	var current strings.Builder
	currentNumeric := false

	flush := func() {
		if current.Len() == 0 {
			return
		}
		tok := naturalToken{text: current.String(), numeric: currentNumeric}
		if currentNumeric {
			// Digit runs are bounded by hostname length in practice; parse
			// failures (absurdly long runs) fall back to text comparison.
			n, err := strconv.ParseInt(tok.text, 10, 64)
			if err != nil {
				tok.numeric = false
			} else {
				tok.number = n
			}
		}
		tokens = append(tokens, tok)
		current.Reset()
	}

	for _, r := range s {
		isDigit := r >= '0' && r <= '9'
		if current.Len() > 0 && isDigit != currentNumeric {
			flush()
		}
		currentNumeric = isDigit
		current.WriteRune(r)
	}
	flush()

	return tokens
}

// NaturalLess compares two host identifiers treating embedded digit runs as
// numbers, so "h2" sorts before "h10". Text runs compare lexicographically,
// and a strict prefix sorts first.
func NaturalLess(a, b string) bool {
	ta, tb := naturalTokens(a), naturalTokens(b)

	for i := 0; i < len(ta) && i < len(tb); i++ {
		x, y := ta[i], tb[i]
		switch {
		case x.numeric && y.numeric:
			if x.number != y.number {
				return x.number < y.number
			}
		case !x.numeric && !y.numeric:
			if x.text != y.text {
				return x.text < y.text
			}
		default:
			// Mixed runs at the same position: numeric runs sort before text,
			// matching how "h1" compares against "ha".
			return x.numeric
		}
	}

	return len(ta) < len(tb)
}

// SortNatural sorts host identifiers in place using NaturalLess.
func SortNatural(hosts []string) {
	sort.Slice(hosts, func(i, j int) bool {
		return NaturalLess(hosts[i], hosts[j])
	})
}

// FormatIndexRanges compresses device indices into a compact range string,
// e.g. {0,1,2,4,6,7} renders as "0-2, 4, 6-7". Empty input renders as "none"
// so the caller can tell "zero available" apart from "no data".
func FormatIndexRanges(ids []int) string {
	if len(ids) == 0 {
		return "none"
	}

	sorted := make([]int, len(ids))
	copy(sorted, ids)
	sort.Ints(sorted)

	var ranges []string
	start := sorted[0]
	prev := sorted[0]

	emit := func(end int) {
		if start == end {
			ranges = append(ranges, strconv.Itoa(start))
		} else {
			ranges = append(ranges, strconv.Itoa(start)+"-"+strconv.Itoa(end))
		}
	}

	for _, id := range sorted[1:] {
		if id == prev || id == prev+1 {
			prev = id
			continue
		}
		emit(prev)
		start, prev = id, id
	}
	emit(prev)

	return strings.Join(ranges, ", ")
}
