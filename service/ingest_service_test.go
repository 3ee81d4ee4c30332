package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyval/commission-recon/config"
	"github.com/agencyval/commission-recon/dto"
)

type testFile struct {
	name string
	data string
}

const statementCSV = `Policy Number,Insured Name,Premium,Commission
A100,Alpha Industries,10000.00,900.00
B200,Beta Logistics LLC,20000.00,450.00
`

const policyCSV = `Policy Number,Premium
A100,10000.00
B200,20000.00
`

func newTestService() *IngestService {
	cfg := &config.Config{
		ServerPort:     "8080",
		MaxFileSize:    10 << 20,
		CommissionCap:  500000,
		ProjectionRate: 0.10,
	}
	return NewIngestService(cfg, NewPDFProcessor(), NewSheetProcessor())
}

func makeFileHeaders(t *testing.T, files []testFile) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile("files[]", f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.data))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	return form.File["files[]"]
}

func ingestCSV(t *testing.T, s *IngestService, name, data string) *dto.StatementUploadResult {
	t.Helper()
	result, err := s.IngestStatements(context.Background(), &dto.StatementUploadRequest{
		Files: makeFileHeaders(t, []testFile{{name, data}}),
	})
	require.NoError(t, err)
	return result
}

func TestIngestStatementsCSV(t *testing.T) {
	s := newTestService()

	result := ingestCSV(t, s, "commissions_2024-03.csv", statementCSV)

	assert.Equal(t, 2, result.RecordsAdded)
	assert.Equal(t, 2, result.TotalRecords)
	require.Len(t, result.Files, 1)
	assert.Empty(t, result.Files[0].Error)

	records := s.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "A100", records[0].Policy)
	assert.Equal(t, 900.0, records[0].Commission)
	assert.Equal(t, "Alpha Industries", records[0].ClientName)
	assert.Equal(t, "2024-03", records[0].Period)
	assert.Equal(t, "commissions_2024-03.csv", records[0].SourceFile)
	assert.NotEmpty(t, records[0].Confidence.Reasons)
}

func TestIngestStatementsDeduplicates(t *testing.T) {
	s := newTestService()

	first := ingestCSV(t, s, "march.csv", statementCSV)
	second := ingestCSV(t, s, "march.csv", statementCSV)

	assert.Equal(t, 2, first.RecordsAdded)
	assert.Equal(t, 0, second.RecordsAdded)
	assert.Equal(t, 2, second.TotalRecords)

	// Re-uploading the same file must not change base revenue.
	assert.InDelta(t, 1350.0, s.Reconciliation().State.BaseRevenue, 0.001)
}

func TestIngestStatementsBatchIsolatesFailures(t *testing.T) {
	s := newTestService()

	files := []testFile{
		{"january.csv", statementCSV},
		{"corrupt.xlsx", "this is not a spreadsheet"},
		{"february.csv", "Policy Number,Insured Name,Premium,Commission\nC300,Gamma Holdings,5000.00,300.00\n"},
	}
	result, err := s.IngestStatements(context.Background(), &dto.StatementUploadRequest{
		Files: makeFileHeaders(t, files),
	})
	require.NoError(t, err)
	require.Len(t, result.Files, 3)

	assert.Equal(t, 2, result.Files[0].Records)
	assert.NotEmpty(t, result.Files[1].Error)
	assert.Equal(t, 1, result.Files[2].Records)
	assert.Equal(t, 3, result.TotalRecords)
}

func TestIngestStatementsCancelled(t *testing.T) {
	s := newTestService()
	ingestCSV(t, s, "january.csv", statementCSV)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.IngestStatements(ctx, &dto.StatementUploadRequest{
		Files: makeFileHeaders(t, []testFile{{"february.csv", statementCSV}}),
	})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.NotEmpty(t, result.Files[0].Error)

	// Records accumulated before cancellation stay valid.
	assert.Len(t, s.Records(), 2)
}

func TestIngestPolicyListAndReconcile(t *testing.T) {
	s := newTestService()
	ingestCSV(t, s, "march.csv", "Policy Number,Insured Name,Premium,Commission\nA100,Alpha Industries,10000.00,900.00\n")

	policyFiles := makeFileHeaders(t, []testFile{{"book.csv", policyCSV}})
	result, err := s.IngestPolicyList(context.Background(), policyFiles[0])
	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, 0, result.Columns.Index(dto.FieldPolicy))
	assert.Equal(t, 1, result.Columns.Index(dto.FieldPremium))

	recon := s.Reconciliation()
	assert.InDelta(t, 900.0, recon.State.VerifiedCash, 0.001)
	assert.InDelta(t, 2000.0, recon.State.ProjectedRevenue, 0.001)
	assert.InDelta(t, 2900.0, recon.State.BaseRevenue, 0.001)
}

func TestSetPolicyExcluded(t *testing.T) {
	s := newTestService()
	ingestCSV(t, s, "march.csv", statementCSV)

	policyFiles := makeFileHeaders(t, []testFile{{"book.csv", policyCSV}})
	_, err := s.IngestPolicyList(context.Background(), policyFiles[0])
	require.NoError(t, err)

	require.NoError(t, s.SetPolicyExcluded(1, true))

	recon := s.Reconciliation()
	// B200 is excluded: its commission goes unmatched and nothing is
	// projected for it.
	assert.InDelta(t, 900.0, recon.State.VerifiedCash, 0.001)
	assert.Equal(t, 0.0, recon.State.ProjectedRevenue)

	assert.Error(t, s.SetPolicyExcluded(5, true))
}

func TestSetPolicyExcludedWithoutList(t *testing.T) {
	s := newTestService()
	assert.ErrorIs(t, s.SetPolicyExcluded(0, true), dto.ErrNoPolicyList)
}

func TestIngestPolicyListNoHeader(t *testing.T) {
	s := newTestService()

	policyFiles := makeFileHeaders(t, []testFile{{"book.csv", "A100,10000\nB200,20000\n"}})
	_, err := s.IngestPolicyList(context.Background(), policyFiles[0])
	assert.ErrorIs(t, err, dto.ErrNoHeaderRow)
}

func TestIngestStatementsNoHeaderFallsBack(t *testing.T) {
	s := newTestService()

	// No recognizable header: the line-oriented heuristics still
	// recover policy, name, and amounts.
	csv := "AB12345,John Smith,\"1,200.00\",180.00\n"
	result := ingestCSV(t, s, "plain.csv", csv)

	require.Len(t, result.Files, 1)
	assert.True(t, result.Files[0].UsedFallback)
	require.Equal(t, 1, result.RecordsAdded)

	records := s.Records()
	assert.Equal(t, "AB12345", records[0].Policy)
	assert.Equal(t, 180.0, records[0].Commission)
}

func TestResetClearsSession(t *testing.T) {
	s := newTestService()
	ingestCSV(t, s, "march.csv", statementCSV)
	require.NotEmpty(t, s.Records())

	s.Reset()

	assert.Empty(t, s.Records())
	assert.Empty(t, s.Log())
	assert.InDelta(t, 0.0, s.Reconciliation().State.BaseRevenue, 0.001)
}

func TestLogStreamIsOrdered(t *testing.T) {
	s := newTestService()
	ingestCSV(t, s, "march.csv", statementCSV)

	entries := s.Log()
	require.NotEmpty(t, entries)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Time.Before(entries[i-1].Time))
	}
}
