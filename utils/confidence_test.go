package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agencyval/commission-recon/dto"
)

func TestPolicyPlausibility(t *testing.T) {
	assert.GreaterOrEqual(t, PolicyPlausibility("AB123456"), 80)
	assert.GreaterOrEqual(t, PolicyPlausibility("98765"), 60)
	assert.Less(t, PolicyPlausibility("ab"), 60)
	assert.Less(t, PolicyPlausibility(""), 60)
}

func TestScoreRecord(t *testing.T) {
	conf := ScoreRecord(90, 900, 10000, "Alpha Industries Inc")

	// 50 +20 (policy) +10 (commission range) +10 (premium) +5 (name)
	assert.Equal(t, 95, conf.Score)
	assert.Equal(t, dto.ConfidenceHigh, conf.Level)
	assert.Len(t, conf.Reasons, 4)
}

func TestScoreRecordLow(t *testing.T) {
	conf := ScoreRecord(10, 0.5, 0, "")

	// 50 -10 (policy) -15 (near-zero commission) -5 (no name)
	assert.Equal(t, 20, conf.Score)
	assert.Equal(t, dto.ConfidenceLow, conf.Level)
}

func TestScoreRecordMonotonicInPolicyPlausibility(t *testing.T) {
	// Holding everything else fixed, a more plausible policy number
	// strictly raises the score.
	low := ScoreRecord(50, 1200, 0, "")
	mid := ScoreRecord(65, 1200, 0, "")
	high := ScoreRecord(85, 1200, 0, "")

	assert.Greater(t, mid.Score, low.Score)
	assert.Greater(t, high.Score, mid.Score)
}

func TestScoreRecordPremiumHeuristic(t *testing.T) {
	above := ScoreRecord(90, 900, 10000, "Alpha Industries")
	below := ScoreRecord(90, 900, 100, "Alpha Industries")
	absent := ScoreRecord(90, 900, 0, "Alpha Industries")

	assert.Greater(t, above.Score, absent.Score)
	assert.Less(t, below.Score, absent.Score)
}

func TestScoreDocument(t *testing.T) {
	columns := dto.ColumnMap{
		dto.FieldPolicy:  0,
		dto.FieldPremium: 1,
	}

	conf := ScoreDocument(columns, 12)

	// 40 +25 (policy) +15 (premium) +5 (>10 rows); 2/10 columns
	// mapped earns no fraction bonus.
	assert.Equal(t, 85, conf.Score)
	assert.Equal(t, dto.ConfidenceHigh, conf.Level)
}

func TestScoreDocumentNoPolicyColumn(t *testing.T) {
	conf := ScoreDocument(dto.ColumnMap{}, 3)

	assert.Equal(t, 20, conf.Score)
	assert.Equal(t, dto.ConfidenceLow, conf.Level)
}

func TestScoreDocumentClampedAt100(t *testing.T) {
	columns := dto.ColumnMap{
		dto.FieldPolicy:          0,
		dto.FieldPremium:         1,
		dto.FieldCommission:      2,
		dto.FieldAccount:         3,
		dto.FieldCarrier:         4,
		dto.FieldEffectiveDate:   5,
		dto.FieldExpirationDate:  6,
		dto.FieldLineOfBusiness:  7,
		dto.FieldTransactionType: 8,
		dto.FieldProducer:        9,
	}

	conf := ScoreDocument(columns, 50)

	assert.Equal(t, 100, conf.Score)
	assert.Equal(t, dto.ConfidenceHigh, conf.Level)
}
