package pazar3

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// amount matches a number with optional thousands groups and a short decimal
// tail: "5500", "5,500", "5 500", "1.200,50".
const amount = `\d{1,3}(?:[.,\s\x{00A0}]\d{3})+(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?`

// pricePatterns are tried in order; the first one that matches wins.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)цена\s*[:\-]?\s*(` + amount + `)`),
	regexp.MustCompile(`(?i)price\s*[:\-]?\s*(` + amount + `)`),
	regexp.MustCompile(`(?i)(` + amount + `)\s*(?:€|eur|еур|евра|евро|мкд|mkd|ден)`),
	regexp.MustCompile(`(?i)(?:€|eur|еур|мкд|mkd)\s*(` + amount + `)`),
	regexp.MustCompile(`^\s*(` + amount + `)\s*$`),
}

var (
	thousandsOnly = regexp.MustCompile(`^\d{1,3}([.,]\d{3})+$`)
	digitRun      = regexp.MustCompile(`\d+`)
	decimalNumber = regexp.MustCompile(`\d+\.?\d*`)
	monthYear     = regexp.MustCompile(`^(\d{1,2})/(\d{4})$`)
	nonDigit      = regexp.MustCompile(`\D+`)
)

var errNoNumber = errors.New("no number found")

// ParsePriceText extracts a price from free text. It returns 0 when no
// pattern matches; callers treat 0 as unknown, not free.
func ParsePriceText(s string) float64 {
	if strings.TrimSpace(s) == "" {
		return 0
	}
	for _, re := range pricePatterns {
		m := re.FindStringSubmatch(s)
		if len(m) < 2 {
			continue
		}
		v, err := parseAmount(m[1])
		if err != nil || v < 0 {
			continue
		}
		return v
	}
	return 0
}

// parseAmount strips thousands separators and normalises the decimal mark.
func parseAmount(s string) (float64, error) {
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' || r == '\t' {
			return -1
		}
		return r
	}, s)

	switch {
	case thousandsOnly.MatchString(s):
		s = strings.NewReplacer(",", "", ".", "").Replace(s)
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", ".")
	}
	return strconv.ParseFloat(s, 64)
}

// ParseCurrency classifies the currency mentioned in a price string.
// Anything that is not recognisably denars is taken to be euros.
func ParseCurrency(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	for _, marker := range []string{"мкд", "mkd", "ден"} {
		if strings.Contains(s, marker) {
			return "MKD"
		}
	}
	return "EUR"
}

// ParseMileageRange reads a mileage that may be a single value or a
// "from - to" bracket. start and end are the first and last numbers, with
// end never below start.
func ParseMileageRange(s string) (start, end int, ok bool) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '.', ',':
			return -1
		}
		return r
	}, s)

	nums := digitRun.FindAllString(s, -1)
	if len(nums) == 0 {
		return 0, 0, false
	}
	start, err := strconv.Atoi(nums[0])
	if err != nil {
		return 0, 0, false
	}
	end, err = strconv.Atoi(nums[len(nums)-1])
	if err != nil {
		return 0, 0, false
	}
	if end < start {
		start, end = end, start
	}
	return start, end, true
}

// ParseEngineSize pulls the displacement out of strings like "1,9 TDI" or "2.0".
func ParseEngineSize(s string) (float64, error) {
	m := decimalNumber.FindString(strings.ReplaceAll(s, ",", "."))
	if m == "" {
		return 0, fmt.Errorf("engine size %q: %w", s, errNoNumber)
	}
	return strconv.ParseFloat(m, 64)
}

// ParseRegistrationDate converts "MM/YYYY" into "YYYY-MM".
func ParseRegistrationDate(s string) (string, bool) {
	m := monthYear.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	month, _ := strconv.Atoi(m[1])
	if month < 1 || month > 12 {
		return "", false
	}
	return m[2] + "-" + fmt.Sprintf("%02d", month), true
}

// ParseViews reads a view counter such as "1.234" or "1 234 прегледи".
func ParseViews(s string) (int, error) {
	digits := nonDigit.ReplaceAllString(s, "")
	if digits == "" {
		return 0, fmt.Errorf("views %q: %w", s, errNoNumber)
	}
	return strconv.Atoi(digits)
}

// SellerType classifies the "advertised by" value. Физичко лице is a private
// person; everything else is a business.
func SellerType(s string) string {
	if strings.Contains(s, "Физичко") || strings.Contains(strings.ToLower(s), "private") {
		return "Private"
	}
	return "Business"
}
