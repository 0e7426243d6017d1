// Package recon implements the reconciliation core: key generation,
// row validation, treatment, deduplication, the anti-join primitive and
// carteira splitting.
package recon

import (
	"strings"

	"github.com/cobmax/batimento/internal/domain/dataset"
)

// KeyGenerator derives the CHAVE value for a row. Generation never fails:
// missing components produce empty segments and are caught later by the
// required-fields validator.
type KeyGenerator interface {
	// Name returns the generator name for logs and config errors.
	Name() string
	// Key derives the join key for a row.
	Key(row dataset.Row) string
}

// CompositeKeyGenerator joins the trimmed values of several columns with a
// separator, e.g. CONTRATO + "-" + PARCELA.
type CompositeKeyGenerator struct {
	Components []string
	Separator  string
}

// Name returns the generator name
func (g CompositeKeyGenerator) Name() string { return "composite" }

// Key joins the trimmed component values with the separator.
func (g CompositeKeyGenerator) Key(row dataset.Row) string {
	parts := make([]string, len(g.Components))
	for i, c := range g.Components {
		parts[i] = strings.TrimSpace(row.Get(c))
	}
	return strings.Join(parts, g.Separator)
}

// ColumnKeyGenerator reuses an existing column's trimmed value verbatim.
type ColumnKeyGenerator struct {
	Column string
}

// Name returns the generator name
func (g ColumnKeyGenerator) Name() string { return "column" }

// Key returns the trimmed value of the configured column.
func (g ColumnKeyGenerator) Key(row dataset.Row) string {
	return strings.TrimSpace(row.Get(g.Column))
}
