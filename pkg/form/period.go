package form

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	rangeSep   = " ~ "
	dateLayout = "2006-01-02"
)

// DateRange is a decoded custom period. Dates are YYYY-MM-DD; an empty End
// means the position is still open.
type DateRange struct {
	Start string
	End   string
}

// Valid reports whether both dates are real calendar dates and Start <= End.
func (r DateRange) Valid() bool {
	if !isDate(r.Start) {
		return false
	}
	if r.End == "" {
		return true
	}
	return isDate(r.End) && r.Start <= r.End
}

func isDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// EncodePeriod renders r in the dashed form "YYYY-MM-DD ~ YYYY-MM-DD", or
// just the start date for an open range.
func EncodePeriod(r DateRange) string {
	if r.End == "" {
		return r.Start
	}
	return r.Start + rangeSep + r.End
}

// DecodePeriod parses either the dashed or the segmented
// "YYYY 년 MM 월 DD 일" encoding. Components are zero padded. The second
// result is false when a side is not a complete date or the end comes
// before the start.
func DecodePeriod(s string) (DateRange, bool) {
	start, end := splitRange(s)
	r := DateRange{}
	var ok bool
	if r.Start, ok = decodeDate(start); !ok {
		return DateRange{}, false
	}
	if strings.TrimSpace(end) != "" {
		if r.End, ok = decodeDate(end); !ok || r.End < r.Start {
			return DateRange{}, false
		}
	}
	return r, true
}

// checkOrder rejects an encoded period whose complete end date comes before
// its complete start date. Partially typed sides are not compared.
func checkOrder(encoded string) error {
	start, end := splitRange(encoded)
	s, okStart := decodeDate(start)
	e, okEnd := decodeDate(end)
	if okStart && okEnd && e < s {
		return fmt.Errorf("%s ends before %s: %w", e, s, ErrInvalidRange)
	}
	return nil
}

func splitRange(s string) (string, string) {
	start, end, _ := strings.Cut(s, "~")
	return strings.TrimSpace(start), strings.TrimSpace(end)
}

func decodeDate(s string) (string, bool) {
	y, m, d := dateParts(s)
	if y == "" || m == "" || d == "" {
		return "", false
	}
	out := fmt.Sprintf("%s-%s-%s", padLeft(y, 4), padLeft(m, 2), padLeft(d, 2))
	return out, isDate(out)
}

// Segment addresses one box of the segmented date input.
type Segment int

const (
	StartYear Segment = iota
	StartMonth
	StartDay
	EndYear
	EndMonth
	EndDay
)

var segmentWidth = [...]int{4, 2, 2, 4, 2, 2}

// ParseSegment maps names such as "start-year" or "sY" to a Segment.
func ParseSegment(name string) (Segment, error) {
	switch strings.ToLower(name) {
	case "start-year", "sy":
		return StartYear, nil
	case "start-month", "sm":
		return StartMonth, nil
	case "start-day", "sd":
		return StartDay, nil
	case "end-year", "ey":
		return EndYear, nil
	case "end-month", "em":
		return EndMonth, nil
	case "end-day", "ed":
		return EndDay, nil
	}
	return 0, fmt.Errorf("segment %q: %w", name, ErrUnknownOption)
}

// PeriodParts holds the digits typed into each segment box.
type PeriodParts [6]string

// With returns a copy with seg replaced by the digits of value, cut to the
// width of the box.
func (p PeriodParts) With(seg Segment, value string) PeriodParts {
	digits := onlyDigits(value)
	if w := segmentWidth[seg]; len(digits) > w {
		digits = digits[:w]
	}
	p[seg] = digits
	return p
}

var (
	yearRe  = regexp.MustCompile(`(\d+)\s*년`)
	monthRe = regexp.MustCompile(`(\d+)\s*월`)
	dayRe   = regexp.MustCompile(`(\d+)\s*일`)
	plainRe = regexp.MustCompile(`^(\d{1,4})(?:[-.](\d{1,2}))?(?:[-.](\d{1,2}))?`)
)

// ParseParts splits an encoded custom period back into segment digits.
// Segments are recovered by their labels, so partial encodings such as
// "2024 년" come back with only the year set.
func ParseParts(s string) PeriodParts {
	var p PeriodParts
	start, end := splitRange(s)
	p[StartYear], p[StartMonth], p[StartDay] = dateParts(start)
	p[EndYear], p[EndMonth], p[EndDay] = dateParts(end)
	return p
}

func dateParts(s string) (y, m, d string) {
	if s == "" {
		return "", "", ""
	}
	if strings.ContainsAny(s, "년월일") {
		return firstGroup(yearRe, s), firstGroup(monthRe, s), firstGroup(dayRe, s)
	}
	if g := plainRe.FindStringSubmatch(s); g != nil {
		return g[1], g[2], g[3]
	}
	return "", "", ""
}

func firstGroup(re *regexp.Regexp, s string) string {
	if g := re.FindStringSubmatch(s); g != nil {
		return g[1]
	}
	return ""
}

// AssembleParts encodes segment digits in the segmented form. Only filled
// segments are written; an empty end side drops the " ~ " suffix entirely.
// An end typed before any start is written as "~ END" so it parses back
// into the end boxes.
func AssembleParts(p PeriodParts) string {
	start := segmented(p[StartYear], p[StartMonth], p[StartDay])
	end := segmented(p[EndYear], p[EndMonth], p[EndDay])
	switch {
	case end == "":
		return start
	case start == "":
		return strings.TrimLeft(rangeSep, " ") + end
	}
	return start + rangeSep + end
}

func segmented(y, m, d string) string {
	var out []string
	if y != "" {
		out = append(out, padLeft(y, 4)+" 년")
	}
	if m != "" {
		out = append(out, padLeft(m, 2)+" 월")
	}
	if d != "" {
		out = append(out, padLeft(d, 2)+" 일")
	}
	return strings.Join(out, " ")
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
