// Package stats provides numeric summaries used for thresholds, match scores
// and diagnostic log lines.
package stats

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Number lists the element types the helpers accept.
type Number interface {
	int | uint | uint8 | float32 | float64
}

var (
	// ErrEmpty is returned when a statistic needs at least one value.
	ErrEmpty = errors.New("empty input")
	// ErrOutOfRange is returned for a percentile outside [0, 100].
	ErrOutOfRange = errors.New("p out of range [0,100]")
)

func toFloats[T Number](values []T) []float64 {
	v := make([]float64, len(values))
	for i, x := range values {
		v[i] = float64(x)
	}
	return v
}

// MinValue returns the smallest value.
func MinValue[T Number](values []T) (T, error) {
	if len(values) == 0 {
		var zero T
		return zero, errors.Wrap(ErrEmpty, "minValue")
	}
	return values[floats.MinIdx(toFloats(values))], nil
}

// MaxValue returns the largest value.
func MaxValue[T Number](values []T) (T, error) {
	if len(values) == 0 {
		var zero T
		return zero, errors.Wrap(ErrEmpty, "maxValue")
	}
	return values[floats.MaxIdx(toFloats(values))], nil
}

// Sum adds all values in float64. The sum of no values is 0.
func Sum[T Number](values []T) float64 {
	return floats.Sum(toFloats(values))
}

// Median is Percentile(values, 50).
func Median[T Number](values []T) (float64, error) {
	return Percentile(values, 50)
}

// Percentile returns the p-th percentile (p in [0, 100]) with linear
// interpolation between the two order statistics around p/100*(n-1).
// The input slice is not reordered.
func Percentile[T Number](values []T, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.Wrap(ErrEmpty, "percentile")
	}
	if !(p >= 0 && p <= 100) {
		return 0, errors.Wrapf(ErrOutOfRange, "percentile: p=%v", p)
	}

	n := len(values)
	if n == 1 {
		return float64(values[0]), nil
	}

	v := toFloats(values)
	if p == 0 {
		return floats.Min(v), nil
	}
	if p == 100 {
		return floats.Max(v), nil
	}

	pos := p / 100 * float64(n-1)
	i := int(math.Floor(pos))
	j := int(math.Ceil(pos))

	a := selectKth(v, i)
	if j == i {
		return a, nil
	}
	// selectKth leaves every element right of i no smaller than v[i].
	b := floats.Min(v[i+1:])

	t := pos - float64(i)
	return a + t*(b-a), nil
}

// selectKth partially orders v so that v[k] holds the k-th smallest value,
// everything left of k is <= v[k] and everything right of k is >= v[k].
// Three-way partitioning keeps runs of equal values linear.
func selectKth(v []float64, k int) float64 {
	lo, hi := 0, len(v)-1
	for lo < hi {
		p := medianOfThree(v[lo], v[lo+(hi-lo)/2], v[hi])
		lt, gt, i := lo, hi, lo
		for i <= gt {
			switch {
			case v[i] < p:
				v[lt], v[i] = v[i], v[lt]
				lt++
				i++
			case v[i] > p:
				v[i], v[gt] = v[gt], v[i]
				gt--
			default:
				i++
			}
		}
		switch {
		case k < lt:
			hi = lt - 1
		case k > gt:
			lo = gt + 1
		default:
			return p
		}
	}
	return v[k]
}

func medianOfThree(a, b, c float64) float64 {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
	}
	if a > b {
		return a
	}
	return b
}

// ToPercent formats part/total as a rounded integer percentage, e.g. "42%".
// A zero total gives "0%".
func ToPercent[T Number](part, total T) string {
	if total == 0 {
		return "0%"
	}
	percent := int(math.Round(float64(part) * 100.0 / float64(total)))
	return strconv.Itoa(percent) + "%"
}

func formatValue[T Number](v T) string {
	switch x := any(v).(type) {
	case float32:
		return formatPretty(float64(x))
	case float64:
		return formatPretty(x)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case int:
		return strconv.Itoa(x)
	}
	return ""
}

// formatPretty prints up to 10 decimals without trailing zeros.
func formatPretty(x float64) string {
	s := strconv.FormatFloat(x, 'f', 10, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		s = "0"
	}
	return s
}

func formatFixed(x float64, decimals int) string {
	s := strconv.FormatFloat(x, 'f', decimals, 64)
	if strings.HasPrefix(s, "-") && strings.Trim(s, "-0.") == "" {
		s = s[1:]
	}
	return s
}

// PreviewValues renders "N values - [v0, v1, ...]". More than ten values are
// shortened to the first five and the last five.
func PreviewValues[T Number](values []T) string {
	n := len(values)
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(n))
	sb.WriteString(" values - [")

	write := func(from, to int) {
		for i := from; i < to; i++ {
			if i != from {
				sb.WriteString(", ")
			}
			sb.WriteString(formatValue(values[i]))
		}
	}

	if n <= 10 {
		write(0, n)
	} else {
		write(0, 5)
		sb.WriteString(", ... ")
		write(n-5, n)
	}
	sb.WriteString("]")
	return sb.String()
}

// SummaryStats renders "N values - (min=.. 10%=.. median=.. 90%=.. max=..)".
func SummaryStats[T Number](values []T) string {
	return summary(values, formatValue[T], formatPretty)
}

// SummaryStatsFloat is SummaryStats with every number printed with fixed decimals.
func SummaryStatsFloat[T float32 | float64](values []T, decimals int) string {
	fixed := func(x float64) string { return formatFixed(x, decimals) }
	return summary(values, func(v T) string { return fixed(float64(v)) }, fixed)
}

func summary[T Number](values []T, extreme func(T) string, interpolated func(float64) string) string {
	n := len(values)
	prefix := strconv.Itoa(n) + " values - "
	if n == 0 {
		return prefix + "(empty)"
	}

	// Non-empty input and constant p cannot fail.
	mn, _ := MinValue(values)
	mx, _ := MaxValue(values)
	p10, _ := Percentile(values, 10)
	med, _ := Median(values)
	p90, _ := Percentile(values, 90)

	return prefix + "(min=" + extreme(mn) +
		" 10%=" + interpolated(p10) +
		" median=" + interpolated(med) +
		" 90%=" + interpolated(p90) +
		" max=" + extreme(mx) + ")"
}
