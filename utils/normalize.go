package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	nonAlnumRegex = regexp.MustCompile(`[^A-Z0-9]`)
	numericRegex  = regexp.MustCompile(`[^0-9.]`)
)

// CleanNumber parses a currency-like string into a signed amount.
// Parenthesized, "CR"-suffixed, and minus-prefixed forms negate.
// Unparsable input returns 0, as does any magnitude above limit:
// values that large are treated as parse noise, not business data.
func CleanNumber(raw string, limit float64) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
	}
	if strings.HasSuffix(strings.ToUpper(s), "CR") {
		negative = true
	}
	if strings.HasPrefix(s, "-") {
		negative = true
	}

	digits := numericRegex.ReplaceAllString(s, "")
	// Keep only the first decimal point; stray dots are separators.
	if strings.Count(digits, ".") > 1 {
		idx := strings.Index(digits, ".")
		digits = digits[:idx+1] + strings.ReplaceAll(digits[idx+1:], ".", "")
	}
	if digits == "" || digits == "." {
		return 0
	}

	value, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	if value > limit {
		return 0
	}
	if negative {
		value = -value
	}
	return value
}

// NormalizeIdentifier canonicalizes a policy number for matching:
// uppercase, letters and digits only, leading zeros stripped. Purely
// a function of content, and idempotent.
func NormalizeIdentifier(raw string) string {
	s := nonAlnumRegex.ReplaceAllString(strings.ToUpper(raw), "")
	return strings.TrimLeft(s, "0")
}

// RecordKey derives the deduplicating identifier for a commission
// record from its normalized policy, the amount rounded to cents, and
// a positional discriminator. Re-uploading the same file reproduces
// the same keys; distinct same-amount records in different positions
// stay distinct.
func RecordKey(normPolicy string, amount float64, position int) string {
	cents := decimal.NewFromFloat(amount).Round(2).StringFixed(2)
	return fmt.Sprintf("%s|%s|%d", normPolicy, cents, position)
}

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

var (
	monthNameRegex  = regexp.MustCompile(`(?i)(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)[\s_\-.]*((?:19|20)\d{2})`)
	yearFirstRegex  = regexp.MustCompile(`((?:19|20)\d{2})[\s_\-./](\d{1,2})`)
	monthFirstRegex = regexp.MustCompile(`(\d{1,2})[\s_\-./]((?:19|20)\d{2})`)
)

// ExtractPeriod pulls a "YYYY-MM" period token out of a filename.
// Month-name forms win over year-first numeric forms, which win over
// month-first numeric forms. Returns "" when nothing date-like is
// present.
func ExtractPeriod(filename string) string {
	if m := monthNameRegex.FindStringSubmatch(filename); m != nil {
		month := monthNames[strings.ToLower(m[1][:3])]
		return fmt.Sprintf("%s-%02d", m[2], month)
	}
	if m := yearFirstRegex.FindStringSubmatch(filename); m != nil {
		if month, err := strconv.Atoi(m[2]); err == nil && month >= 1 && month <= 12 {
			return fmt.Sprintf("%s-%02d", m[1], month)
		}
	}
	if m := monthFirstRegex.FindStringSubmatch(filename); m != nil {
		if month, err := strconv.Atoi(m[1]); err == nil && month >= 1 && month <= 12 {
			return fmt.Sprintf("%s-%02d", m[2], month)
		}
	}
	return ""
}
