package recon

import (
	"fmt"

	"github.com/cobmax/batimento/internal/domain/dataset"
)

// TreatmentOptions controls the normalization applied around the validator
// chain.
type TreatmentOptions struct {
	// RejectLineBreaks routes rows that contained CR/LF inside a field to
	// the inconsistencies output.
	RejectLineBreaks bool
	// MoneyColumns are normalized to a canonical dot-decimal representation
	// on the valid set.
	MoneyColumns []string
	// DateColumns are re-rendered in the canonical DD/MM/YYYY layout on the
	// valid set.
	DateColumns []string
	// DateLayouts are the accepted input layouts for DateColumns. Defaults
	// to the canonical layout only.
	DateLayouts []string
}

// TreatmentResult carries both partitions of a treated dataset. Valid and
// Invalid are disjoint by original row index and together cover the input
// exactly.
type TreatmentResult struct {
	Valid   *dataset.Dataset
	Invalid *dataset.Dataset
	// Reasons counts invalid rows per rejection reason.
	Reasons map[string]int
}

// Treat normalizes a raw dataset, derives the CHAVE column and partitions
// rows through the validator chain. Rows whose generated key is empty are
// always invalid, whatever the chain checks. Row-level failures never abort
// the run; they land on the Invalid side with a MOTIVO_INCONSISTENCIA column.
func Treat(raw *dataset.Dataset, keyGen KeyGenerator, chain *Chain, opts TreatmentOptions) (*TreatmentResult, error) {
	if keyGen == nil {
		return nil, fmt.Errorf("%w: treatment requires a key generator", dataset.ErrConfiguration)
	}
	if chain == nil {
		chain = NewChain()
	}

	normalized := dataset.NormalizeColumns(raw)
	normalized, broken := dataset.NormalizeCells(normalized)
	if opts.RejectLineBreaks {
		withBreaks := NewChain(LineBreakValidator{BrokenRows: broken})
		withBreaks.Append(chain.validators...)
		chain = withBreaks
	}

	normalized.AddColumn(dataset.KeyColumn)
	for i := range normalized.Rows {
		normalized.Rows[i].Set(dataset.KeyColumn, keyGen.Key(normalized.Rows[i]))
	}

	valid := normalized.Empty()
	invalid := normalized.Empty()
	invalid.AddColumn(dataset.ReasonColumn)
	reasons := make(map[string]int)

	for _, row := range normalized.Rows {
		ok, reason := chain.Evaluate(row)
		// No row leaves treatment without a usable key, whatever the
		// configured chain checks.
		if ok && dataset.IsEmptyValue(row.Get(dataset.KeyColumn)) {
			ok, reason = false, "CHAVE vazia"
		}
		if !ok {
			r := row.Clone()
			r.Set(dataset.ReasonColumn, reason)
			invalid.Append(r)
			reasons[reason]++
			continue
		}
		valid.Append(row)
	}

	layouts := opts.DateLayouts
	if len(layouts) == 0 {
		layouts = []string{dataset.DateLayout}
	}
	for i := range valid.Rows {
		for _, col := range opts.MoneyColumns {
			if v := valid.Rows[i].Get(col); !dataset.IsEmptyValue(v) {
				if d, err := dataset.ParseMoney(v); err == nil {
					valid.Rows[i].Set(col, d.String())
				}
			}
		}
		for _, col := range opts.DateColumns {
			if v := valid.Rows[i].Get(col); !dataset.IsEmptyValue(v) {
				if d, ok := dataset.ParseDate(v, layouts); ok {
					valid.Rows[i].Set(col, d.Format(dataset.DateLayout))
				}
			}
		}
	}

	return &TreatmentResult{Valid: valid, Invalid: invalid, Reasons: reasons}, nil
}
