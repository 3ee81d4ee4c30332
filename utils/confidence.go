package utils

import (
	"fmt"
	"strings"

	"github.com/agencyval/commission-recon/dto"
)

// Confidence scores are diagnostic metadata. They never gate whether
// a record or document is retained.

// PolicyPlausibility rates an identifier's shape on a 0-100 scale.
// Mixed letter/digit identifiers of realistic length score highest;
// short or empty strings score lowest.
func PolicyPlausibility(id string) int {
	norm := NormalizeIdentifier(id)
	if norm == "" {
		return 10
	}
	hasLetter := strings.ContainsAny(norm, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	hasDigit := strings.ContainsAny(norm, "0123456789")

	switch {
	case hasLetter && hasDigit && len(norm) >= 6:
		return 90
	case hasLetter && hasDigit && len(norm) >= 4:
		return 75
	case hasDigit && !hasLetter && len(norm) >= 5:
		return 70
	case len(norm) >= 3:
		return 50
	default:
		return 30
	}
}

// ScoreRecord rates one parsed commission record: base 50, adjusted
// by independent plausibility heuristics, each contributing a signed
// delta and a reason, clamped to [0,100].
func ScoreRecord(policyPlausibility int, commission, premium float64, clientName string) dto.Confidence {
	score := 50
	var reasons []string

	add := func(delta int, reason string) {
		score += delta
		reasons = append(reasons, fmt.Sprintf("%s (%+d)", reason, delta))
	}

	switch {
	case policyPlausibility >= 80:
		add(20, "policy number looks valid")
	case policyPlausibility >= 60:
		add(10, "policy number plausible")
	default:
		add(-10, "policy number questionable")
	}

	magnitude := commission
	if magnitude < 0 {
		magnitude = -magnitude
	}
	switch {
	case magnitude >= 1 && magnitude <= 50000:
		add(10, "commission in typical range")
	case magnitude < 1:
		add(-15, "commission near zero")
	}

	if premium > 0 {
		if premium > commission {
			add(10, "premium exceeds commission")
		} else {
			add(-5, "premium below commission")
		}
	}

	name := strings.TrimSpace(clientName)
	switch {
	case len(strings.Fields(name)) >= 2:
		add(5, "client name present")
	case name == "" || name == "-":
		add(-5, "client name missing")
	}

	return dto.Confidence{Score: clamp(score), Level: levelFor(clamp(score)), Reasons: reasons}
}

// ScoreDocument rates a whole parsed policy list from its column
// mapping and row yield: base 40, same clamp and level mapping as
// records.
func ScoreDocument(columns dto.ColumnMap, rowCount int) dto.Confidence {
	score := 40
	var reasons []string

	add := func(delta int, reason string) {
		score += delta
		reasons = append(reasons, fmt.Sprintf("%s (%+d)", reason, delta))
	}

	if columns.Index(dto.FieldPolicy) >= 0 {
		add(25, "policy column found")
	} else {
		add(-20, "policy column not found")
	}
	if columns.Index(dto.FieldPremium) >= 0 {
		add(15, "premium column found")
	}

	mapped := len(columns)
	fraction := float64(mapped) / float64(ExpectedFieldCount())
	if fraction > 0.6 {
		add(15, "most expected columns mapped")
	} else if fraction > 0.3 {
		add(5, "some expected columns mapped")
	}

	if rowCount > 10 {
		add(5, fmt.Sprintf("%d rows parsed", rowCount))
	}

	return dto.Confidence{Score: clamp(score), Level: levelFor(clamp(score)), Reasons: reasons}
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func levelFor(score int) dto.ConfidenceLevel {
	switch {
	case score >= 70:
		return dto.ConfidenceHigh
	case score >= 45:
		return dto.ConfidenceMedium
	default:
		return dto.ConfidenceLow
	}
}
