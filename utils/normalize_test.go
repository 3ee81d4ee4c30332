package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanNumber(t *testing.T) {
	assert.Equal(t, 1250.75, CleanNumber("$1,250.75", 500000))
	assert.Equal(t, -1234.50, CleanNumber("(1,234.50)", 500000))
	assert.Equal(t, -500.00, CleanNumber("500.00 CR", 500000))
	assert.Equal(t, -42.10, CleanNumber("-42.10", 500000))
	assert.Equal(t, 0.0, CleanNumber("", 500000))
	assert.Equal(t, 0.0, CleanNumber("N/A", 500000))
	assert.Equal(t, 900.0, CleanNumber("  900.00  ", 500000))
}

func TestCleanNumberRejectsLargeMagnitudes(t *testing.T) {
	// Values above the cap are parse noise, e.g. a premium figure
	// landing in a commission column.
	assert.Equal(t, 0.0, CleanNumber("750,000.00", 500000))
	assert.Equal(t, 500000.0, CleanNumber("500,000.00", 500000))
	assert.Equal(t, 750000.0, CleanNumber("750,000.00", 1000000))
}

func TestNormalizeIdentifier(t *testing.T) {
	assert.Equal(t, "AB123", NormalizeIdentifier("00-ab.123"))
	assert.Equal(t, "A100", NormalizeIdentifier("a-100"))
	assert.Equal(t, "A100", NormalizeIdentifier("A100"))
	assert.Equal(t, "", NormalizeIdentifier("0000"))
	assert.Equal(t, "", NormalizeIdentifier("  --  "))
}

func TestNormalizeIdentifierIdempotent(t *testing.T) {
	inputs := []string{"00-ab.123", "POL 00123/A", "b200", "", "0x09"}
	for _, in := range inputs {
		once := NormalizeIdentifier(in)
		assert.Equal(t, once, NormalizeIdentifier(once))
	}
}

func TestExtractPeriod(t *testing.T) {
	assert.Equal(t, "2024-03", ExtractPeriod("Commissions_March_2024.pdf"))
	assert.Equal(t, "2024-03", ExtractPeriod("mar2024_statement.xlsx"))
	assert.Equal(t, "2024-05", ExtractPeriod("stmt-2024-05.xlsx"))
	assert.Equal(t, "2023-07", ExtractPeriod("07-2023_commissions.csv"))
	assert.Equal(t, "", ExtractPeriod("statement.pdf"))
}

func TestExtractPeriodMonthNameWins(t *testing.T) {
	// Month-name tokens take priority over numeric ones.
	assert.Equal(t, "2024-01", ExtractPeriod("January 2024 run 03-2022.pdf"))
}

func TestRecordKey(t *testing.T) {
	assert.Equal(t, "A100|900.00|3", RecordKey("A100", 900.004, 3))
	assert.Equal(t, "A100|-42.10|0", RecordKey("A100", -42.1, 0))

	// Same content, different position: distinct records retained.
	assert.NotEqual(t, RecordKey("A100", 900, 1), RecordKey("A100", 900, 2))
}
