package dto

import "time"

type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// Confidence is a diagnostic plausibility score attached to a record
// or to a whole parsed document. It never gates ingestion.
type Confidence struct {
	Score   int             `json:"score"`
	Level   ConfidenceLevel `json:"level"`
	Reasons []string        `json:"reasons"`
}

// Field names a semantic column of a statement or policy list.
type Field string

const (
	FieldPolicy          Field = "policy"
	FieldPremium         Field = "premium"
	FieldCommission      Field = "commission"
	FieldAccount         Field = "account"
	FieldCarrier         Field = "carrier"
	FieldEffectiveDate   Field = "effective_date"
	FieldExpirationDate  Field = "expiration_date"
	FieldLineOfBusiness  Field = "line_of_business"
	FieldTransactionType Field = "transaction_type"
	FieldProducer        Field = "producer"
)

// ColumnMap assigns each semantic field a column index. Built once
// when a document is loaded, read-only afterward.
type ColumnMap map[Field]int

// Index returns the mapped column index for f, or -1 when the field
// was not matched by any header keyword.
func (m ColumnMap) Index(f Field) int {
	if m == nil {
		return -1
	}
	if idx, ok := m[f]; ok {
		return idx
	}
	return -1
}

// Cell returns the cell mapped to f in row, or "" when the field is
// unmapped or the row is too short.
func (m ColumnMap) Cell(f Field, row []string) string {
	idx := m.Index(f)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// CommissionRecord is one line-item of commission income. Immutable
// after creation; held append-only across uploads within a session.
type CommissionRecord struct {
	ID              string     `json:"id"`
	Policy          string     `json:"policy"` // normalized identifier
	Commission      float64    `json:"commission"`
	Premium         float64    `json:"premium"`
	ClientName      string     `json:"client_name"`
	SourceFile      string     `json:"source_file"`
	Period          string     `json:"period,omitempty"` // "YYYY-MM"
	Producer        string     `json:"producer"`
	Carrier         string     `json:"carrier"`
	LineOfBusiness  string     `json:"line_of_business"`
	TransactionType string     `json:"transaction_type"`
	RawLine         string     `json:"raw_line,omitempty"`
	Confidence      Confidence `json:"confidence"`
}

// PolicyRow is one line of the client/policy list. Rows can be
// excluded without being removed so ordering and indices hold.
type PolicyRow struct {
	Cells    []string `json:"cells"`
	Excluded bool     `json:"excluded"`
}

// Fragment is a positioned piece of page text from a layout-only
// document: no inherent row or column structure.
type Fragment struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	FontSize float64 `json:"font_size"`
}

type Page struct {
	Number    int        `json:"number"`
	Fragments []Fragment `json:"fragments"`
}

// RawStatementRow carries the unparsed field strings for one
// extracted statement line, before normalization.
type RawStatementRow struct {
	Policy          string
	Name            string
	Premium         string
	Commission      string
	Carrier         string
	LineOfBusiness  string
	TransactionType string
	Producer        string
	Raw             string
}

// ReconciliationState is derived on demand from the commission and
// policy collections; it is never persisted independently.
type ReconciliationState struct {
	VerifiedCash        float64 `json:"verified_cash"`
	UnmatchedCommission float64 `json:"unmatched_commission"`
	ProjectedRevenue    float64 `json:"projected_revenue"`
	BaseRevenue         float64 `json:"base_revenue"`
	MatchedPolicies     int     `json:"matched_policies"`
	UnmatchedPolicies   int     `json:"unmatched_policies"`
	MatchRate           float64 `json:"match_rate"`
}

// Analytics is pure read-side recomputation over the same two
// collections; cheap enough to run on every query.
type Analytics struct {
	RecordCount       int      `json:"record_count"`
	PolicyCount       int      `json:"policy_count"`
	TotalCommission   float64  `json:"total_commission"`
	TotalPremium      float64  `json:"total_premium"`
	AverageConfidence float64  `json:"average_confidence"`
	RetentionRate     *float64 `json:"retention_rate"` // nil when no date column is mapped
}

type LogEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}
