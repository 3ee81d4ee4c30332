package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agencyval/commission-recon/config"
	"github.com/agencyval/commission-recon/dto"
	"github.com/agencyval/commission-recon/utils"
)

// headerScanLimit bounds how deep into a spreadsheet the header row
// is searched for.
const headerScanLimit = 25

// IngestService owns one session's ingestion state: the append-only
// commission record collection, the current policy list, and the log
// stream. There is exactly one logical mutator, but gin serves
// handlers concurrently, so a mutex guards the state.
type IngestService struct {
	cfg    *config.Config
	pdf    PDFProcessor
	sheets SheetProcessor

	mu               sync.Mutex
	records          map[string]dto.CommissionRecord
	order            []string
	policies         []dto.PolicyRow
	columns          dto.ColumnMap
	policyFile       string
	policyConfidence dto.Confidence
	logEntries       []dto.LogEntry
}

func NewIngestService(cfg *config.Config, pdf PDFProcessor, sheets SheetProcessor) *IngestService {
	return &IngestService{
		cfg:     cfg,
		pdf:     pdf,
		sheets:  sheets,
		records: make(map[string]dto.CommissionRecord),
		columns: dto.ColumnMap{},
	}
}

// IngestStatements processes a batch of commission statements,
// strictly one file at a time. A file that fails to read gets an
// error entry in the result; records accumulated from earlier files
// are untouched. Cancellation stops before the next unit of work, so
// completed files remain valid.
func (s *IngestService) IngestStatements(ctx context.Context, req *dto.StatementUploadRequest) (*dto.StatementUploadResult, error) {
	var metadata dto.UploadMetadata
	if req.Metadata != "" {
		if err := json.Unmarshal([]byte(req.Metadata), &metadata); err != nil {
			return nil, fmt.Errorf("invalid metadata JSON: %w", err)
		}
	}

	result := &dto.StatementUploadResult{
		BatchID: uuid.NewString(),
	}

	for _, fileHeader := range req.Files {
		if err := ctx.Err(); err != nil {
			result.Files = append(result.Files, dto.FileResult{
				Filename: fileHeader.Filename,
				Error:    err.Error(),
			})
			break
		}
		fileResult := s.ingestStatementFile(ctx, fileHeader, metadata.PasswordFor(fileHeader.Filename))
		result.RecordsAdded += fileResult.Records
		result.Files = append(result.Files, fileResult)
	}

	s.mu.Lock()
	result.TotalRecords = len(s.records)
	s.mu.Unlock()
	return result, nil
}

func (s *IngestService) ingestStatementFile(ctx context.Context, fileHeader *multipart.FileHeader, password string) dto.FileResult {
	fileResult := dto.FileResult{Filename: fileHeader.Filename}

	fail := func(err error) dto.FileResult {
		s.logf("error reading %s: %v", fileHeader.Filename, err)
		fileResult.Error = err.Error()
		return fileResult
	}

	if fileHeader.Size > s.cfg.MaxFileSize {
		return fail(dto.ErrFileTooLarge)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return fail(fmt.Errorf("failed to open file: %w", err))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fail(fmt.Errorf("failed to read file: %w", err))
	}

	s.logf("scanning %s", fileHeader.Filename)
	raws, skipped, usedFallback, err := s.extractStatement(ctx, fileHeader.Filename, data, password)
	if err != nil {
		return fail(err)
	}

	added, rejected := s.addRecords(fileHeader.Filename, raws)
	fileResult.Records = added
	fileResult.SkippedRows = skipped + rejected
	fileResult.UsedFallback = usedFallback
	s.logf("%s: %d records added, %d rows skipped", fileHeader.Filename, added, skipped+rejected)
	return fileResult
}

// extractStatement routes a document to the matching extraction path:
// layout reconstruction for PDFs, column mapping for ruled grids.
func (s *IngestService) extractStatement(ctx context.Context, filename string, data []byte, password string) ([]dto.RawStatementRow, int, bool, error) {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return s.extractFromLayout(ctx, filename, data, password)
	}
	return s.extractFromGrid(filename, data)
}

func (s *IngestService) extractFromLayout(ctx context.Context, filename string, data []byte, password string) ([]dto.RawStatementRow, int, bool, error) {
	pages, err := s.pdf.ExtractPages(data, password)
	if err != nil {
		return nil, 0, false, err
	}

	// Pages cluster independently, then concatenate top-to-bottom in
	// page order.
	var rows []utils.Row
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, 0, false, err
		}
		rows = append(rows, utils.ClusterRows(page.Fragments)...)
	}

	headerIdx, bounds := utils.DetectHeader(rows)
	if headerIdx < 0 || len(bounds) < 2 {
		s.logf("%s: no header row detected, using line heuristics", filename)
		raws, skipped := utils.ExtractLines(rows)
		return raws, skipped, true, nil
	}

	s.logf("%s: header detected with %d columns", filename, len(bounds))
	ranges := utils.BuildRanges(bounds)
	raws, skipped := utils.ExtractRows(rows, headerIdx, ranges)
	return raws, skipped, false, nil
}

func (s *IngestService) extractFromGrid(filename string, data []byte) ([]dto.RawStatementRow, int, bool, error) {
	grid, err := s.sheets.ReadGrid(filename, data)
	if err != nil {
		return nil, 0, false, err
	}

	headerIdx := utils.FindHeaderRow(grid, headerScanLimit)
	if headerIdx < 0 {
		s.logf("%s: no header row detected, using line heuristics", filename)
		lines := make([]string, len(grid))
		for i, row := range grid {
			lines[i] = strings.Join(row, "  ")
		}
		raws, skipped := utils.ExtractLineStrings(lines)
		return raws, skipped, true, nil
	}

	columns := utils.MapColumns(grid[headerIdx])
	s.logf("%s: header on row %d, %d columns mapped", filename, headerIdx+1, len(columns))

	var raws []dto.RawStatementRow
	for _, row := range grid[headerIdx+1:] {
		raws = append(raws, dto.RawStatementRow{
			Policy:          columns.Cell(dto.FieldPolicy, row),
			Name:            columns.Cell(dto.FieldAccount, row),
			Premium:         columns.Cell(dto.FieldPremium, row),
			Commission:      columns.Cell(dto.FieldCommission, row),
			Carrier:         columns.Cell(dto.FieldCarrier, row),
			LineOfBusiness:  columns.Cell(dto.FieldLineOfBusiness, row),
			TransactionType: columns.Cell(dto.FieldTransactionType, row),
			Producer:        columns.Cell(dto.FieldProducer, row),
			Raw:             strings.Join(row, "  "),
		})
	}
	return raws, 0, false, nil
}

// addRecords normalizes raw rows into commission records and folds
// them into the session. Rows without a usable policy identifier or
// commission amount are rejected; re-ingested rows deduplicate on the
// derived key. The raw row index is the positional discriminator, so
// re-uploading a file reproduces identical keys.
func (s *IngestService) addRecords(filename string, raws []dto.RawStatementRow) (added, rejected int) {
	period := utils.ExtractPeriod(filename)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, raw := range raws {
		policy := utils.NormalizeIdentifier(raw.Policy)
		commission := utils.CleanNumber(raw.Commission, s.cfg.CommissionCap)
		if policy == "" || commission == 0 {
			rejected++
			continue
		}
		key := utils.RecordKey(policy, commission, i)
		if _, exists := s.records[key]; exists {
			continue
		}

		premium := utils.CleanNumber(raw.Premium, s.cfg.CommissionCap)
		record := dto.CommissionRecord{
			ID:              key,
			Policy:          policy,
			Commission:      commission,
			Premium:         premium,
			ClientName:      strings.TrimSpace(raw.Name),
			SourceFile:      filename,
			Period:          period,
			Producer:        labelOrDash(raw.Producer),
			Carrier:         labelOrDash(raw.Carrier),
			LineOfBusiness:  labelOrDash(raw.LineOfBusiness),
			TransactionType: labelOrDash(raw.TransactionType),
			RawLine:         raw.Raw,
			Confidence:      utils.ScoreRecord(utils.PolicyPlausibility(raw.Policy), commission, premium, raw.Name),
		}
		s.records[key] = record
		s.order = append(s.order, key)
		added++
	}
	return added, rejected
}

// IngestPolicyList replaces the session's policy list wholesale: rows
// from a new upload are never merged into the old list.
func (s *IngestService) IngestPolicyList(ctx context.Context, fileHeader *multipart.FileHeader) (*dto.PolicyUploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fileHeader.Size > s.cfg.MaxFileSize {
		return nil, dto.ErrFileTooLarge
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	grid, err := s.sheets.ReadGrid(fileHeader.Filename, data)
	if err != nil {
		s.logf("error reading %s: %v", fileHeader.Filename, err)
		return nil, err
	}

	headerIdx := utils.FindHeaderRow(grid, headerScanLimit)
	if headerIdx < 0 {
		s.logf("%s: %v", fileHeader.Filename, dto.ErrNoHeaderRow)
		return nil, dto.ErrNoHeaderRow
	}

	columns := utils.MapColumns(grid[headerIdx])
	var rows []dto.PolicyRow
	for _, cells := range grid[headerIdx+1:] {
		if isBlankRow(cells) {
			continue
		}
		rows = append(rows, dto.PolicyRow{Cells: cells})
	}

	confidence := utils.ScoreDocument(columns, len(rows))

	s.mu.Lock()
	s.policies = rows
	s.columns = columns
	s.policyFile = fileHeader.Filename
	s.policyConfidence = confidence
	s.mu.Unlock()

	s.logf("%s: policy list loaded, %d rows, confidence %s", fileHeader.Filename, len(rows), confidence.Level)
	return &dto.PolicyUploadResult{
		Filename:   fileHeader.Filename,
		Rows:       len(rows),
		Columns:    columns,
		Confidence: confidence,
	}, nil
}

// SetPolicyExcluded marks a policy row as excluded without removing
// it, so ordering and indices are preserved.
func (s *IngestService) SetPolicyExcluded(index int, excluded bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.policies) == 0 {
		return dto.ErrNoPolicyList
	}
	if index < 0 || index >= len(s.policies) {
		return fmt.Errorf("policy row %d out of range", index)
	}
	s.policies[index].Excluded = excluded
	return nil
}

// Reconciliation recomputes base revenue and analytics from the
// current collections.
func (s *IngestService) Reconciliation() *dto.ReconciliationResponse {
	s.mu.Lock()
	records := s.recordsLocked()
	policies := make([]dto.PolicyRow, len(s.policies))
	copy(policies, s.policies)
	columns := s.columns
	s.mu.Unlock()

	opts := ReconcileOptions{
		ProjectionRate: s.cfg.ProjectionRate,
		AmountCap:      s.cfg.CommissionCap,
	}
	return &dto.ReconciliationResponse{
		State:     ComputeReconciliation(records, policies, columns, opts),
		Analytics: ComputeAnalytics(records, policies, columns, s.cfg.CommissionCap),
	}
}

func (s *IngestService) Records() []dto.CommissionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordsLocked()
}

func (s *IngestService) Policies() *dto.PoliciesResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]dto.PolicyRow, len(s.policies))
	copy(rows, s.policies)
	return &dto.PoliciesResponse{
		Filename:   s.policyFile,
		Rows:       rows,
		Columns:    s.columns,
		Confidence: s.policyConfidence,
	}
}

func (s *IngestService) Log() []dto.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]dto.LogEntry, len(s.logEntries))
	copy(entries, s.logEntries)
	return entries
}

// Reset discards all session state. Records are immutable and only
// ever superseded by a full reset.
func (s *IngestService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]dto.CommissionRecord)
	s.order = nil
	s.policies = nil
	s.columns = dto.ColumnMap{}
	s.policyFile = ""
	s.policyConfidence = dto.Confidence{}
	s.logEntries = nil
}

func (s *IngestService) recordsLocked() []dto.CommissionRecord {
	records := make([]dto.CommissionRecord, 0, len(s.order))
	for _, key := range s.order {
		records = append(records, s.records[key])
	}
	return records
}

// logf appends to the session's ordered log stream and mirrors to the
// process log. Purely observational, never control flow.
func (s *IngestService) logf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	log.Println(message)

	s.mu.Lock()
	s.logEntries = append(s.logEntries, dto.LogEntry{Time: time.Now(), Message: message})
	s.mu.Unlock()
}

func labelOrDash(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "-"
	}
	return s
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
