package utils

import (
	"regexp"
	"sort"
	"strings"

	"github.com/agencyval/commission-recon/dto"
)

// Layout reconstruction is a pure pipeline:
//
//	fragments -> rows -> (header, column ranges) -> records
//
// Each stage is a function of its inputs with no shared state, so a
// malformed page can never poison a neighbor.

// rowTolerance is the vertical distance, in PDF text-space units,
// within which fragments belong to the same visual row.
const rowTolerance = 4.0

// rangeSentinel caps the rightmost column range.
const rangeSentinel = 1e9

// Row is a cluster of fragments sharing a baseline, ordered
// left-to-right.
type Row struct {
	Y         float64
	Fragments []dto.Fragment
}

// Text joins the row's fragments into one display string.
func (r Row) Text() string {
	parts := make([]string, 0, len(r.Fragments))
	for _, f := range r.Fragments {
		if t := strings.TrimSpace(f.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// ColumnBoundary is the detected horizontal anchor of one semantic
// column in the header row.
type ColumnBoundary struct {
	Field dto.Field
	X     float64
}

// ColumnRange is a boundary widened into a non-overlapping horizontal
// interval.
type ColumnRange struct {
	Field  dto.Field
	Min    float64
	Max    float64
	Center float64
}

// ClusterRows groups positioned fragments into visual rows. Fragments
// whose vertical positions differ by no more than rowTolerance share
// a row regardless of arrival order; within a row fragments run
// left-to-right, stably, so identical x positions keep their original
// order.
func ClusterRows(frags []dto.Fragment) []Row {
	if len(frags) == 0 {
		return nil
	}

	sorted := make([]dto.Fragment, len(frags))
	copy(sorted, frags)
	// PDF text space grows upward, so the top of the page is the
	// largest Y.
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var rows []Row
	for _, f := range sorted {
		if len(rows) > 0 && rows[len(rows)-1].Y-f.Y <= rowTolerance {
			last := &rows[len(rows)-1]
			last.Fragments = append(last.Fragments, f)
			continue
		}
		rows = append(rows, Row{Y: f.Y, Fragments: []dto.Fragment{f}})
	}

	for i := range rows {
		fs := rows[i].Fragments
		sort.SliceStable(fs, func(a, b int) bool { return fs[a].X < fs[b].X })
	}
	return rows
}

// DetectHeader scans rows top-to-bottom for the first row whose text
// names at least two distinct semantic columns, and returns its index
// plus one boundary per matched column. The boundary sits at the
// horizontal midpoint of the fragment anchoring the keyword's first
// word. Returns -1 when no row qualifies.
func DetectHeader(rows []Row) (int, []ColumnBoundary) {
	for i, row := range rows {
		text := strings.ToLower(row.Text())
		matches := matchedFields(text)
		if len(matches) < 2 {
			continue
		}

		var bounds []ColumnBoundary
		for field, keyword := range matches {
			anchor, ok := anchorFragment(row, keyword)
			if !ok {
				continue
			}
			bounds = append(bounds, ColumnBoundary{
				Field: field,
				X:     anchor.X + estimateWidth(anchor)/2,
			})
		}
		if len(bounds) < 2 {
			continue
		}
		sort.Slice(bounds, func(a, b int) bool {
			if bounds[a].X == bounds[b].X {
				return bounds[a].Field < bounds[b].Field
			}
			return bounds[a].X < bounds[b].X
		})
		return i, bounds
	}
	return -1, nil
}

// anchorFragment finds the fragment most likely to be the visual
// anchor of a header keyword: the one containing the keyword's first
// word.
func anchorFragment(row Row, keyword string) (dto.Fragment, bool) {
	firstWord := keyword
	if idx := strings.IndexByte(keyword, ' '); idx > 0 {
		firstWord = keyword[:idx]
	}
	for _, f := range row.Fragments {
		if strings.Contains(strings.ToLower(f.Text), firstWord) {
			return f, true
		}
	}
	return dto.Fragment{}, false
}

func estimateWidth(f dto.Fragment) float64 {
	size := f.FontSize
	if size <= 0 {
		size = 10
	}
	return float64(len(f.Text)) * size * 0.5
}

// BuildRanges converts point boundaries into non-overlapping
// intervals covering the full row width: each column runs from the
// midpoint with its left neighbor (or 0) to the midpoint with its
// right neighbor (or a large sentinel).
func BuildRanges(bounds []ColumnBoundary) []ColumnRange {
	ranges := make([]ColumnRange, len(bounds))
	for i, b := range bounds {
		min := 0.0
		if i > 0 {
			min = (bounds[i-1].X + b.X) / 2
		}
		max := rangeSentinel
		if i < len(bounds)-1 {
			max = (b.X + bounds[i+1].X) / 2
		}
		ranges[i] = ColumnRange{Field: b.Field, Min: min, Max: max, Center: b.X}
	}
	return ranges
}

var (
	totalsRegex  = regexp.MustCompile(`(?i)\b(?:sub\s*)?totals?\b`)
	pageNumRegex = regexp.MustCompile(`(?i)\bpage\s+\d+\s+of\s+\d+\b`)
)

// ExtractRows reassembles every row after the header into named
// fields. Each fragment lands in the column range containing its x
// position, or the nearest column center when it sits outside all
// ranges; fragments sharing a column are space-joined. Non-data rows
// (too short, header echoes, statement-date lines, totals, page
// footers) are skipped and counted, never fatal.
func ExtractRows(rows []Row, headerIdx int, ranges []ColumnRange) ([]dto.RawStatementRow, int) {
	var out []dto.RawStatementRow
	skipped := 0

	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if len(row.Fragments) < 2 {
			skipped++
			continue
		}
		text := row.Text()
		lower := strings.ToLower(text)
		if len(matchedFields(lower)) >= 2 ||
			strings.Contains(lower, "statement date") ||
			totalsRegex.MatchString(lower) ||
			pageNumRegex.MatchString(lower) {
			skipped++
			continue
		}

		cols := make(map[dto.Field][]string)
		for _, f := range row.Fragments {
			field := assignColumn(f.X, ranges)
			if t := strings.TrimSpace(f.Text); t != "" {
				cols[field] = append(cols[field], t)
			}
		}

		out = append(out, dto.RawStatementRow{
			Policy:          strings.Join(cols[dto.FieldPolicy], " "),
			Name:            strings.Join(cols[dto.FieldAccount], " "),
			Premium:         strings.Join(cols[dto.FieldPremium], " "),
			Commission:      strings.Join(cols[dto.FieldCommission], " "),
			Carrier:         strings.Join(cols[dto.FieldCarrier], " "),
			LineOfBusiness:  strings.Join(cols[dto.FieldLineOfBusiness], " "),
			TransactionType: strings.Join(cols[dto.FieldTransactionType], " "),
			Producer:        strings.Join(cols[dto.FieldProducer], " "),
			Raw:             text,
		})
	}
	return out, skipped
}

func assignColumn(x float64, ranges []ColumnRange) dto.Field {
	for _, r := range ranges {
		if x >= r.Min && x < r.Max {
			return r.Field
		}
	}
	best := ranges[0].Field
	bestDist := distance(x, ranges[0].Center)
	for _, r := range ranges[1:] {
		if d := distance(x, r.Center); d < bestDist {
			best, bestDist = r.Field, d
		}
	}
	return best
}

func distance(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
