package service

import (
	"strings"
	"time"

	"github.com/agencyval/commission-recon/dto"
	"github.com/agencyval/commission-recon/utils"
)

// ReconcileOptions carries the two tunable constants of the engine.
type ReconcileOptions struct {
	// ProjectionRate is applied to a policy's premium when no
	// commission record matches it.
	ProjectionRate float64
	// AmountCap bounds CleanNumber when parsing premiums out of
	// policy rows.
	AmountCap float64
}

// policyBucket aggregates commission records sharing a normalized
// identifier. claimed ensures each policy's matched total is counted
// exactly once, even when several commission rows map to it.
type policyBucket struct {
	total   float64
	records int
	claimed bool
}

// ComputeReconciliation matches commission records against the policy
// list and answers "what is the base revenue". A pure function of the
// two collections: safe to recompute on every query.
func ComputeReconciliation(records []dto.CommissionRecord, policies []dto.PolicyRow, columns dto.ColumnMap, opts ReconcileOptions) dto.ReconciliationState {
	var state dto.ReconciliationState
	if len(records) == 0 {
		return state
	}

	total := 0.0
	for _, rec := range records {
		total += rec.Commission
	}

	if len(policies) == 0 {
		// No policy list: commissions are all we know.
		state.UnmatchedCommission = total
		state.BaseRevenue = total
		return state
	}

	buckets := make(map[string]*policyBucket)
	for _, rec := range records {
		b := buckets[rec.Policy]
		if b == nil {
			b = &policyBucket{}
			buckets[rec.Policy] = b
		}
		b.total += rec.Commission
		b.records++
	}

	for _, row := range policies {
		if row.Excluded {
			continue
		}
		id := utils.NormalizeIdentifier(columns.Cell(dto.FieldPolicy, row.Cells))
		if b, ok := buckets[id]; ok && id != "" && !b.claimed {
			// Commissions are ground truth when a policy matches.
			state.VerifiedCash += b.total
			b.claimed = true
			state.MatchedPolicies++
			continue
		}
		premium := utils.CleanNumber(columns.Cell(dto.FieldPremium, row.Cells), opts.AmountCap)
		state.ProjectedRevenue += premium * opts.ProjectionRate
		state.UnmatchedPolicies++
	}

	for _, b := range buckets {
		if !b.claimed {
			state.UnmatchedCommission += b.total
		}
	}

	if n := state.MatchedPolicies + state.UnmatchedPolicies; n > 0 {
		state.MatchRate = float64(state.MatchedPolicies) / float64(n)
	}
	state.BaseRevenue = state.VerifiedCash + state.ProjectedRevenue
	return state
}

// ComputeAnalytics recomputes the read-side metrics over the same two
// collections. No side effects.
func ComputeAnalytics(records []dto.CommissionRecord, policies []dto.PolicyRow, columns dto.ColumnMap, amountCap float64) dto.Analytics {
	analytics := dto.Analytics{
		RecordCount: len(records),
		PolicyCount: len(policies),
	}

	confidenceSum := 0
	for _, rec := range records {
		analytics.TotalCommission += rec.Commission
		confidenceSum += rec.Confidence.Score
	}
	if len(records) > 0 {
		analytics.AverageConfidence = float64(confidenceSum) / float64(len(records))
	}

	for _, row := range policies {
		if row.Excluded {
			continue
		}
		analytics.TotalPremium += utils.CleanNumber(columns.Cell(dto.FieldPremium, row.Cells), amountCap)
	}

	analytics.RetentionRate = retentionEstimate(policies, columns)
	return analytics
}

var policyDateFormats = []string{
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006-01-02",
	"01/02/06",
}

// retentionEstimate approximates the book's retention from the
// effective-date column: the share of policies that have already been
// held through at least one renewal cycle. Without a mapped date
// column the feature is unavailable, reported as nil rather than an
// error.
func retentionEstimate(policies []dto.PolicyRow, columns dto.ColumnMap) *float64 {
	idx := columns.Index(dto.FieldEffectiveDate)
	if idx < 0 {
		idx = columns.Index(dto.FieldExpirationDate)
	}
	if idx < 0 {
		return nil
	}

	parsed := 0
	renewed := 0
	cutoff := time.Now().AddDate(-1, 0, 0)
	for _, row := range policies {
		if row.Excluded || idx >= len(row.Cells) {
			continue
		}
		t, ok := parsePolicyDate(row.Cells[idx])
		if !ok {
			continue
		}
		parsed++
		if t.Before(cutoff) {
			renewed++
		}
	}
	if parsed == 0 {
		return nil
	}
	rate := float64(renewed) / float64(parsed)
	return &rate
}

func parsePolicyDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, format := range policyDateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
