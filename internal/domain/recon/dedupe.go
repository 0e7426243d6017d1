package recon

import (
	"fmt"
	"sort"

	"github.com/cobmax/batimento/internal/domain/dataset"
	"github.com/shopspring/decimal"
)

// SortDirection orders a tie-break column.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// SortKind selects how tie-break column values compare.
type SortKind string

const (
	// KindString compares values lexicographically.
	KindString SortKind = "string"
	// KindDate parses values as DD/MM/YYYY; unparsable values sort last.
	KindDate SortKind = "date"
	// KindNumber parses values as decimals; unparsable values sort last.
	KindNumber SortKind = "number"
	// KindDocumentRank ranks CNPJ before CPF before anything else.
	KindDocumentRank SortKind = "document_rank"
)

// SortKey is one component of a deduplication tie-break.
type SortKey struct {
	Column    string
	Kind      SortKind
	Direction SortDirection
}

// DocumentRank classifies a debtor document by its digits-only length:
// CNPJ (14 digits) ranks 0, CPF (11 digits) ranks 1, anything else 2.
func DocumentRank(v string) int {
	switch len(dataset.DigitsOnly(v)) {
	case 14:
		return 0
	case 11:
		return 1
	default:
		return 2
	}
}

// compare returns -1, 0 or 1 for a single sort key, before direction is
// applied.
func (k SortKey) compare(a, b string) int {
	switch k.Kind {
	case KindDocumentRank:
		ra, rb := DocumentRank(a), DocumentRank(b)
		switch {
		case ra < rb:
			return -1
		case ra > rb:
			return 1
		}
		return 0
	case KindDate:
		da, okA := dataset.ParseDate(a, []string{dataset.DateLayout})
		db, okB := dataset.ParseDate(b, []string{dataset.DateLayout})
		switch {
		case okA && !okB:
			return -1
		case !okA && okB:
			return 1
		case !okA && !okB:
			return 0
		case da.Before(db):
			return -1
		case da.After(db):
			return 1
		}
		return 0
	case KindNumber:
		na, errA := decimal.NewFromString(a)
		nb, errB := decimal.NewFromString(b)
		switch {
		case errA == nil && errB != nil:
			return -1
		case errA != nil && errB == nil:
			return 1
		case errA != nil && errB != nil:
			return 0
		}
		return na.Cmp(nb)
	default:
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
}

// Dedupe keeps exactly one canonical row per key. Within each key group rows
// are ordered by the tie-break keys (original row index as the final stable
// tie-break) and the first row wins; the rest of every group with more than
// one row goes to the secondary output, used downstream as an enrichment
// list. Primary preserves the first-occurrence order of keys.
func Dedupe(ds *dataset.Dataset, keyColumn string, tieBreak []SortKey) (primary, secondary *dataset.Dataset, err error) {
	if keyColumn == "" {
		return nil, nil, fmt.Errorf("%w: dedupe requires a key column", dataset.ErrConfiguration)
	}

	groups := make(map[string][]dataset.Row)
	var order []string
	for _, row := range ds.Rows {
		key := row.Get(keyColumn)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}

	primary = ds.Empty()
	secondary = ds.Empty()
	for _, key := range order {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool {
			for _, k := range tieBreak {
				c := k.compare(group[i].Get(k.Column), group[j].Get(k.Column))
				if k.Direction == Descending {
					c = -c
				}
				if c != 0 {
					return c < 0
				}
			}
			return group[i].Index < group[j].Index
		})
		primary.Append(group[0])
		for _, row := range group[1:] {
			secondary.Append(row)
		}
	}

	if _, dupes := primary.KeySet(keyColumn); len(dupes) > 0 {
		return nil, nil, fmt.Errorf("%w: dedupe output still has %d duplicate keys (first: %q)",
			dataset.ErrKeyCollision, len(dupes), dupes[0])
	}
	return primary, secondary, nil
}
