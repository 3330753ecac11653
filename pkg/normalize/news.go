package normalize

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/helmcode/lossnote/pkg/model"
)

// MaxNewsItems caps the news list shown under the market context.
const MaxNewsItems = 3

// The whole value must be a date with one separator kind; RE2 has no
// backreferences, so each separator gets its own pattern.
var newsDateRes = []*regexp.Regexp{
	regexp.MustCompile(`^\s*(\d{4})\.(\d{1,2})\.(\d{1,2})\.?\s*$`),
	regexp.MustCompile(`^\s*(\d{4})-(\d{1,2})-(\d{1,2})\s*$`),
}

// FormatNewsDate renders dotted or dashed dates as "YYYY. MM. DD.".
// Anything else, including timestamps and out of range months or days, is
// returned unchanged; an empty value becomes a placeholder.
func FormatNewsDate(value string) string {
	if isBlank(value) {
		return model.NoDate
	}
	for _, re := range newsDateRes {
		m := re.FindStringSubmatch(value)
		if m == nil || !inRange(m[2], 12) || !inRange(m[3], 31) {
			continue
		}
		return fmt.Sprintf("%s. %s. %s.", m[1], padLeft2(m[2]), padLeft2(m[3]))
	}
	return value
}

func inRange(digits string, max int) bool {
	n, err := strconv.Atoi(digits)
	return err == nil && n >= 1 && n <= max
}

func padLeft2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// mergeNews picks summaries over headlines when both are present and keeps
// the first MaxNewsItems in their original order.
func mergeNews(summaries, headlines []newsItemRaw) []model.NewsItem {
	src := headlines
	if len(summaries) > 0 {
		src = summaries
	}
	if len(src) > MaxNewsItems {
		src = src[:MaxNewsItems]
	}
	out := make([]model.NewsItem, 0, len(src))
	for i, n := range src {
		out = append(out, model.NewsItem{
			Title:   firstNonBlank(n.Title, fmt.Sprintf("News %d", i+1)),
			Source:  n.Source,
			Date:    FormatNewsDate(n.Date),
			Link:    n.Link,
			Summary: firstNonBlank(n.Summary, n.Snippet),
		})
	}
	return out
}
