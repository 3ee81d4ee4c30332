package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agencyval/commission-recon/dto"
)

func TestMapColumns(t *testing.T) {
	header := []string{
		"Policy Data Policy Number",
		"Policy Data Premium - Annualized",
		"Insured Name",
	}

	columns := MapColumns(header)

	assert.Equal(t, 0, columns.Index(dto.FieldPolicy))
	assert.Equal(t, 1, columns.Index(dto.FieldPremium))
	assert.Equal(t, 2, columns.Index(dto.FieldAccount))
	assert.Equal(t, -1, columns.Index(dto.FieldCommission))
}

func TestMapColumnsNoColumnReused(t *testing.T) {
	columns := MapColumns([]string{"Policy Number", "Premium", "Commission"})

	seen := make(map[int]dto.Field)
	for field, idx := range columns {
		prev, dup := seen[idx]
		assert.False(t, dup, "column %d claimed by both %s and %s", idx, prev, field)
		seen[idx] = field
	}
}

func TestMapColumnsGenericKeywordSkipsWrongColumn(t *testing.T) {
	// "Phone Number" must not satisfy the policy field ahead of the
	// real policy column.
	columns := MapColumns([]string{"Phone Number", "Policy #", "Premium"})

	assert.Equal(t, 1, columns.Index(dto.FieldPolicy))
	assert.Equal(t, 2, columns.Index(dto.FieldPremium))
}

func TestIsHeaderRow(t *testing.T) {
	assert.True(t, IsHeaderRow([]string{"Policy Number", "Insured Name", "Premium"}))
	assert.True(t, IsHeaderRow([]string{"Policy #", "Commission Amount"}))
	assert.False(t, IsHeaderRow([]string{"Policy Number", "Insured Name"}))
	assert.False(t, IsHeaderRow([]string{"Acme Insurance Agency", "2024"}))
}

func TestFindHeaderRow(t *testing.T) {
	rows := [][]string{
		{"Acme Insurance Agency"},
		{"Commission Statement - March 2024"},
		{},
		{"Policy Number", "Insured Name", "Premium", "Commission"},
		{"A100", "Alpha Industries", "10,000.00", "900.00"},
	}

	assert.Equal(t, 3, FindHeaderRow(rows, 25))
	assert.Equal(t, -1, FindHeaderRow(rows[:2], 25))
	assert.Equal(t, -1, FindHeaderRow(rows, 2))
}
