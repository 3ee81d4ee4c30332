package utils

import (
	"regexp"
	"strings"

	"github.com/agencyval/commission-recon/dto"
)

// Line-oriented fallback for documents where no header row (or fewer
// than two columns) could be inferred. Each row is treated as one
// string: currency tokens locate the amounts, the remainder yields a
// policy number and a client name.

var (
	currencyRegex   = regexp.MustCompile(`\(?-?\$?\d{1,3}(?:,\d{3})*\.\d{2}\)?(?:\s?CR)?|\(?-?\$?\d+\.\d{2}\)?(?:\s?CR)?`)
	twoSpaceRegex   = regexp.MustCompile(`\s{2,}`)
	dateShapeRegex  = regexp.MustCompile(`^\d{1,4}[/\-.]\d{1,2}(?:[/\-.]\d{1,4})?$`)
	pureDigitsRegex = regexp.MustCompile(`^\d+$`)
	nameWordRegex   = regexp.MustCompile(`^[A-Z][A-Za-z.,'&-]*$`)
)

var lineNoiseWords = map[string]bool{
	"new":       true,
	"renewal":   true,
	"rewrite":   true,
	"endt":      true,
	"audit":     true,
	"total":     true,
	"subtotal":  true,
	"statement": true,
	"page":      true,
}

// ExtractLines applies the fallback heuristic to clustered rows.
func ExtractLines(rows []Row) ([]dto.RawStatementRow, int) {
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = row.Text()
	}
	return ExtractLineStrings(lines)
}

// ExtractLineStrings parses whole-row strings: the row's last
// currency token is the commission, the first (when a second exists)
// the premium; the stripped remainder is split on runs of 2+ spaces,
// the first policy-shaped token is the policy identifier and the
// following capitalized tokens the client name. Rows without both a
// currency token and a policy shape are skipped and counted.
func ExtractLineStrings(lines []string) ([]dto.RawStatementRow, int) {
	var out []dto.RawStatementRow
	skipped := 0

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		if totalsRegex.MatchString(lower) || pageNumRegex.MatchString(lower) ||
			strings.Contains(lower, "statement date") {
			skipped++
			continue
		}

		currency := currencyRegex.FindAllString(trimmed, -1)
		if len(currency) == 0 {
			skipped++
			continue
		}
		commission := currency[len(currency)-1]
		premium := ""
		if len(currency) > 1 {
			premium = currency[0]
		}

		// Replace currency tokens with hard splits so the remainder
		// tokenizes cleanly.
		remainder := currencyRegex.ReplaceAllString(trimmed, "  ")
		tokens := twoSpaceRegex.Split(strings.TrimSpace(remainder), -1)

		policy := ""
		name := ""
		for _, token := range tokens {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			if policy == "" && looksLikePolicyNumber(token) {
				policy = token
				continue
			}
			if policy != "" && name == "" {
				if candidate := nameFromToken(token); candidate != "" {
					name = candidate
				}
			}
		}

		if policy == "" {
			skipped++
			continue
		}
		out = append(out, dto.RawStatementRow{
			Policy:     policy,
			Name:       name,
			Premium:    premium,
			Commission: commission,
			Raw:        trimmed,
		})
	}
	return out, skipped
}

// looksLikePolicyNumber reports whether a token has a policy-number
// shape: mixed letters and digits, or 5+ pure digits, at least 3
// characters, and not a date or percentage.
func looksLikePolicyNumber(token string) bool {
	if len(token) < 3 || strings.Contains(token, "%") {
		return false
	}
	if dateShapeRegex.MatchString(token) {
		return false
	}
	compact := strings.Map(func(r rune) rune {
		if r == '-' || r == '/' || r == ' ' {
			return -1
		}
		return r
	}, token)
	if len(compact) < 3 {
		return false
	}
	if pureDigitsRegex.MatchString(compact) {
		return len(compact) >= 5
	}
	hasLetter := false
	hasDigit := false
	for _, r := range compact {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		default:
			return false
		}
	}
	return hasLetter && hasDigit
}

// nameFromToken extracts a client name from a token: consecutive
// capitalized, non-noise words, accepted once 2-4 of them run
// together (a single qualifying word is kept as a last resort).
func nameFromToken(token string) string {
	words := strings.Fields(token)
	var run []string
	for _, w := range words {
		if lineNoiseWords[strings.ToLower(w)] || !nameWordRegex.MatchString(w) {
			if len(run) >= 2 {
				break
			}
			run = run[:0]
			continue
		}
		run = append(run, w)
		if len(run) == 4 {
			break
		}
	}
	if len(run) == 0 {
		return ""
	}
	return strings.Join(run, " ")
}
