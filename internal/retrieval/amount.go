package retrieval

import (
	"regexp"
	"strconv"
	"strings"
)

// Amount extraction is pattern-only. Korean insurance filings state
// benefit amounts in won with 만/천만/억 unit suffixes or as percentages;
// anything else is not an amount and never becomes one.

type amountPattern struct {
	re   *regexp.Regexp
	unit int64
}

var compoundEokPattern = regexp.MustCompile(`(\d[\d,]*)\s*억\s*(\d[\d,]*)\s*천만\s*원`)

var amountPatterns = []amountPattern{
	{regexp.MustCompile(`(\d[\d,]*)\s*억\s*원?`), 100_000_000},
	{regexp.MustCompile(`(\d[\d,]*)\s*천만\s*원`), 10_000_000},
	{regexp.MustCompile(`(\d[\d,]*)\s*만\s*원`), 10_000},
	{regexp.MustCompile(`(\d[\d,]*)\s*원`), 1},
}

var percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)

// dropKeywords mark fragments whose amounts describe premiums or
// surrender values, not benefits. Such fragments never yield an amount.
var dropKeywords = []string{"보험료", "납입", "해지환급금"}

// ExtractAmount scans a fragment for a benefit amount. It returns the
// literal matched expression and its value in won; percentages return
// the percent value with the literal carrying the % sign.
func ExtractAmount(text string) (raw string, value int64, ok bool) {
	for _, kw := range dropKeywords {
		if strings.Contains(text, kw) {
			return "", 0, false
		}
	}
	if m := compoundEokPattern.FindStringSubmatch(text); m != nil {
		eok, err1 := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
		cheonman, err2 := strconv.ParseInt(strings.ReplaceAll(m[2], ",", ""), 10, 64)
		if err1 == nil && err2 == nil {
			return strings.TrimSpace(m[0]), eok*100_000_000 + cheonman*10_000_000, true
		}
	}
	for _, p := range amountPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		digits := strings.ReplaceAll(m[1], ",", "")
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			continue
		}
		return strings.TrimSpace(m[0]), n * p.unit, true
	}
	if m := percentPattern.FindStringSubmatch(text); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return strings.TrimSpace(m[0]), int64(n), true
		}
	}
	return "", 0, false
}
