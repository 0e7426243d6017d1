package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cobmax/batimento/internal/domain/dataset"
	"github.com/cobmax/batimento/internal/domain/recon"
	"github.com/cobmax/batimento/internal/infrastructure/config"
)

// buildKeyGenerator converts a key spec into a generator.
func buildKeyGenerator(spec config.KeySpec) (recon.KeyGenerator, error) {
	switch spec.Type {
	case "composite":
		sep := spec.Separator
		if sep == "" {
			sep = "-"
		}
		return recon.CompositeKeyGenerator{Components: spec.Components, Separator: sep}, nil
	case "column":
		return recon.ColumnKeyGenerator{Column: spec.Column}, nil
	}
	return nil, fmt.Errorf("%w: unknown key generator type %q", dataset.ErrConfiguration, spec.Type)
}

// buildChain converts the validator specs into a chain, in declaration order.
func buildChain(specs []config.ValidatorSpec, now func() time.Time) (*recon.Chain, error) {
	chain := recon.NewChain()
	for _, spec := range specs {
		v, err := buildValidator(spec, now)
		if err != nil {
			return nil, err
		}
		chain.Append(v)
	}
	return chain, nil
}

func buildValidator(spec config.ValidatorSpec, now func() time.Time) (recon.RowValidator, error) {
	layouts := spec.Layouts
	if len(layouts) == 0 {
		layouts = []string{dataset.DateLayout}
	}
	switch spec.Type {
	case "required_fields":
		return recon.RequiredFieldsValidator{Fields: spec.Fields}, nil
	case "regex":
		return recon.NewRegexValidator(spec.Field, spec.Pattern)
	case "date_range":
		return recon.DateRangeValidator{Field: spec.Field, MinYear: spec.MinYear, Layouts: layouts}, nil
	case "aging":
		return recon.AgingValidator{Field: spec.Field, MaxDays: spec.MaxDays, Layouts: layouts, Now: now}, nil
	case "blacklist":
		docs, err := loadDocumentList(spec.File)
		if err != nil {
			return nil, err
		}
		return recon.NewBlacklistValidator(spec.Field, docs), nil
	case "exclude_values":
		return recon.NewExcludeValuesValidator(spec.Field, spec.Values), nil
	}
	return nil, fmt.Errorf("%w: unknown validator type %q", dataset.ErrConfiguration, spec.Type)
}

// buildTieBreak converts sort key specs into the recon representation.
func buildTieBreak(specs []config.SortKeySpec) []recon.SortKey {
	keys := make([]recon.SortKey, len(specs))
	for i, s := range specs {
		kind := recon.SortKind(s.Kind)
		if s.Kind == "" {
			kind = recon.KindString
		}
		dir := recon.SortDirection(s.Direction)
		if s.Direction == "" {
			dir = recon.Ascending
		}
		keys[i] = recon.SortKey{Column: s.Column, Kind: kind, Direction: dir}
	}
	return keys
}

// buildSplitter converts a split spec into a splitter.
func buildSplitter(spec config.SplitSpec, now func() time.Time) (recon.Splitter, error) {
	switch spec.Rule {
	case "judicial":
		docs, err := loadDocumentList(spec.File)
		if err != nil {
			return nil, err
		}
		return recon.NewJudicialSplitter(spec.DocumentColumn, docs), nil
	case "campaign":
		return &recon.CampaignSplitter{
			DueDateColumn: spec.DueDateColumn,
			GroupColumn:   spec.GroupColumn,
			ThresholdDays: spec.ThresholdDays,
			LowerBucket:   spec.LowerBucket,
			UpperBucket:   spec.UpperBucket,
			Now:           now,
		}, nil
	case "recebimento":
		return &recon.FieldValueSplitter{
			PaymentDateColumn:   spec.PaymentDateColumn,
			PaymentAmountColumn: spec.PaymentAmountColumn,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown split rule %q", dataset.ErrConfiguration, spec.Rule)
}

// loadDocumentList reads an external document list, one CPF/CNPJ per line.
// Blank lines and '#' comments are skipped.
func loadDocumentList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open document list %q: %v", dataset.ErrConfiguration, path, err)
	}
	defer f.Close()

	var docs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		docs = append(docs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: cannot read document list %q: %v", dataset.ErrExtraction, path, err)
	}
	return docs, nil
}
