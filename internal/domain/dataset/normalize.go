package dataset

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// sentinel strings that count as an empty cell, case-insensitive. Legacy
// exports frequently serialize missing values as literal "nan"/"NaT".
var emptySentinels = map[string]struct{}{
	"":     {},
	"nan":  {},
	"none": {},
	"null": {},
	"nat":  {},
}

// IsEmptyValue reports whether a cell value counts as empty after trimming.
func IsEmptyValue(v string) bool {
	_, ok := emptySentinels[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

// DigitsOnly strips every non-digit rune. Used to normalize CPF/CNPJ
// documents before comparison.
func DigitsOnly(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeColumns returns a copy of the dataset with column names
// uppercased and trimmed. Cell maps are re-keyed to the normalized names.
func NormalizeColumns(d *Dataset) *Dataset {
	out := &Dataset{Columns: make([]string, len(d.Columns))}
	rename := make(map[string]string, len(d.Columns))
	for i, c := range d.Columns {
		n := strings.ToUpper(strings.TrimSpace(c))
		out.Columns[i] = n
		rename[c] = n
	}
	out.Rows = make([]Row, 0, len(d.Rows))
	for _, row := range d.Rows {
		cells := make(map[string]string, len(row.Cells))
		for k, v := range row.Cells {
			if n, ok := rename[k]; ok {
				cells[n] = v
			} else {
				cells[strings.ToUpper(strings.TrimSpace(k))] = v
			}
		}
		out.Rows = append(out.Rows, Row{Index: row.Index, Cells: cells})
	}
	return out
}

// NormalizeCells returns a copy of the dataset with every cell trimmed and
// CR/LF stripped, plus the set of row indexes that contained a line break.
// A line break inside a field signals row corruption upstream; callers decide
// whether those rows are rejected.
func NormalizeCells(d *Dataset) (*Dataset, map[int]bool) {
	broken := make(map[int]bool)
	out := &Dataset{Columns: append([]string(nil), d.Columns...)}
	out.Rows = make([]Row, 0, len(d.Rows))
	for _, row := range d.Rows {
		cells := make(map[string]string, len(row.Cells))
		for k, v := range row.Cells {
			if strings.ContainsAny(v, "\r\n") {
				broken[row.Index] = true
				v = strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
			}
			cells[k] = strings.TrimSpace(v)
		}
		out.Rows = append(out.Rows, Row{Index: row.Index, Cells: cells})
	}
	return out, broken
}

// ParseMoney parses a Brazilian-formatted monetary string ("R$ 1.234,56",
// "1234,56", "1234.56") into a decimal.
func ParseMoney(v string) (decimal.Decimal, error) {
	s := strings.TrimSpace(v)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		// thousand dots + decimal comma
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

// FormatMoney renders a decimal with two places and a decimal comma, the
// layout expected by the collections system.
func FormatMoney(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// DateLayout is the canonical wire representation for dates (DD/MM/YYYY).
const DateLayout = "02/01/2006"

// ParseDate tries each layout in order and returns the first match.
func ParseDate(v string, layouts []string) (time.Time, bool) {
	s := strings.TrimSpace(v)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
