package utils

import (
	"strings"

	"github.com/agencyval/commission-recon/dto"
)

// fieldKeywords drives both the spreadsheet column mapper and the
// layout header detector. Fields are tried in priority order; within
// a field, keywords run from exact report-column names down to
// generic words, so "policy number" cannot be stolen by a "Phone
// Number" column before the intended header is seen.
var fieldKeywords = []struct {
	Field    dto.Field
	Keywords []string
}{
	{dto.FieldPolicy, []string{
		"policy data policy number", "policy number", "policy no", "policy #", "pol #", "pol no", "policy",
	}},
	{dto.FieldPremium, []string{
		"policy data premium - annualized", "annualized premium", "written premium", "premium amount", "annual premium", "premium",
	}},
	{dto.FieldCommission, []string{
		"commission amount", "commission paid", "comm amount", "commission", "comm paid", "comm",
	}},
	{dto.FieldAccount, []string{
		"insured name", "account name", "client name", "named insured", "insured", "account", "client", "customer",
	}},
	{dto.FieldCarrier, []string{
		"carrier name", "writing company", "carrier", "insurer", "company",
	}},
	{dto.FieldEffectiveDate, []string{
		"effective date", "eff date", "effective",
	}},
	{dto.FieldExpirationDate, []string{
		"expiration date", "exp date", "renewal date", "expiration",
	}},
	{dto.FieldLineOfBusiness, []string{
		"line of business", "product line", "coverage type", "lob",
	}},
	{dto.FieldTransactionType, []string{
		"transaction type", "trans type", "transaction",
	}},
	{dto.FieldProducer, []string{
		"producer name", "agent name", "producer", "agent", "csr",
	}},
}

// MapColumns assigns each semantic field a column index from a header
// row. Case-insensitive substring match, most-specific keyword first;
// a claimed column is never reused, so the mapping is 1:1. Unmatched
// fields are simply absent (Index reports -1); zero matches is not an
// error.
func MapColumns(header []string) dto.ColumnMap {
	cells := make([]string, len(header))
	for i, h := range header {
		cells[i] = strings.ToLower(strings.TrimSpace(h))
	}

	columns := dto.ColumnMap{}
	claimed := make(map[int]bool)

	for _, fk := range fieldKeywords {
	keywords:
		for _, keyword := range fk.Keywords {
			for i, cell := range cells {
				if claimed[i] || cell == "" {
					continue
				}
				if strings.Contains(cell, keyword) {
					columns[fk.Field] = i
					claimed[i] = true
					break keywords
				}
			}
		}
	}
	return columns
}

// IsHeaderRow reports whether a spreadsheet row looks like a
// statement or policy-list header: it must name both a policy-like
// column and a money-like (premium or commission) column.
func IsHeaderRow(cells []string) bool {
	joined := strings.ToLower(strings.Join(cells, " "))
	hasPolicy := false
	hasMoney := false
	for _, fk := range fieldKeywords {
		switch fk.Field {
		case dto.FieldPolicy:
			hasPolicy = containsAny(joined, fk.Keywords)
		case dto.FieldPremium, dto.FieldCommission:
			hasMoney = hasMoney || containsAny(joined, fk.Keywords)
		}
	}
	return hasPolicy && hasMoney
}

// FindHeaderRow scans the first maxScan rows for the header; -1 when
// none qualifies.
func FindHeaderRow(rows [][]string, maxScan int) int {
	if maxScan > len(rows) {
		maxScan = len(rows)
	}
	for i := 0; i < maxScan; i++ {
		if IsHeaderRow(rows[i]) {
			return i
		}
	}
	return -1
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// matchedFields counts how many catalog fields have a keyword present
// in text, and records which keyword anchored each.
func matchedFields(text string) map[dto.Field]string {
	matches := make(map[dto.Field]string)
	for _, fk := range fieldKeywords {
		for _, keyword := range fk.Keywords {
			if strings.Contains(text, keyword) {
				matches[fk.Field] = keyword
				break
			}
		}
	}
	return matches
}

// ExpectedFieldCount is the size of the semantic column catalog, used
// by the document-level confidence score.
func ExpectedFieldCount() int {
	return len(fieldKeywords)
}
