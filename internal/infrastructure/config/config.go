// Package config loads and validates the per-client pipeline configuration.
// Each client (Tabelionato, VIC, EMCCAMP) is one YAML file: the same engine,
// parameterized by key spec, validator list, dedupe tie-break, splitter rule
// and output layout.
package config

import (
	"github.com/cobmax/batimento/internal/infrastructure/csvio"
)

// Direction names.
const (
	DirectionBatimento = "batimento"
	DirectionBaixa     = "baixa"
)

// Client is the full declarative configuration for one client pipeline.
type Client struct {
	Name       string          `mapstructure:"name" validate:"required"`
	Source     DatasetSpec     `mapstructure:"source" validate:"required"`
	Max        DatasetSpec     `mapstructure:"max" validate:"required"`
	Directions []DirectionSpec `mapstructure:"directions" validate:"required,min=1,dive"`
	Output     OutputSpec      `mapstructure:"output" validate:"required"`
}

// DatasetSpec describes one input side (the creditor ledger or MAX) and how
// it is treated.
type DatasetSpec struct {
	Input     InputSpec      `mapstructure:"input" validate:"required"`
	Treatment TreatmentSpec  `mapstructure:"treatment" validate:"required"`
	Dedupe    *DedupeSpec    `mapstructure:"dedupe"`
}

// InputSpec locates and decodes one input file.
type InputSpec struct {
	Path       string `mapstructure:"path" validate:"required"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=csv xlsx"`
	Separator  string `mapstructure:"separator" validate:"omitempty,len=1"`
	Encoding   string `mapstructure:"encoding" validate:"omitempty,oneof=utf-8 utf-8-sig latin-1"`
	Password   string `mapstructure:"password"`
	Resolution string `mapstructure:"resolution" validate:"omitempty,oneof=strict latest"`
}

// Source converts the spec into a loader source.
func (s InputSpec) Source() csvio.Source {
	var sep rune
	if s.Separator != "" {
		sep = []rune(s.Separator)[0]
	}
	return csvio.Source{
		Path:       s.Path,
		Format:     csvio.Format(s.Format),
		Separator:  sep,
		Encoding:   csvio.Encoding(s.Encoding),
		Password:   s.Password,
		Resolution: csvio.Resolution(s.Resolution),
	}
}

// KeySpec selects the key generation variant.
type KeySpec struct {
	Type       string   `mapstructure:"type" validate:"required,oneof=composite column"`
	Components []string `mapstructure:"components" validate:"required_if=Type composite"`
	Separator  string   `mapstructure:"separator"`
	Column     string   `mapstructure:"column" validate:"required_if=Type column"`
}

// ValidatorSpec declares one validator in chain order.
type ValidatorSpec struct {
	Type    string   `mapstructure:"type" validate:"required,oneof=required_fields regex date_range aging blacklist exclude_values"`
	Field   string   `mapstructure:"field"`
	Fields  []string `mapstructure:"fields"`
	Pattern string   `mapstructure:"pattern"`
	MinYear int      `mapstructure:"min_year"`
	Layouts []string `mapstructure:"layouts"`
	MaxDays int      `mapstructure:"max_days"`
	Values  []string `mapstructure:"values"`
	// File points at an external exclusion list, one document per line.
	File string `mapstructure:"file"`
}

// TreatmentSpec configures normalization and the validator chain for one
// input side.
type TreatmentSpec struct {
	Key              KeySpec         `mapstructure:"key" validate:"required"`
	Validators       []ValidatorSpec `mapstructure:"validators" validate:"dive"`
	RejectLineBreaks bool            `mapstructure:"reject_line_breaks"`
	MoneyColumns     []string        `mapstructure:"money_columns"`
	DateColumns      []string        `mapstructure:"date_columns"`
	DateLayouts      []string        `mapstructure:"date_layouts"`
}

// SortKeySpec is one component of the dedupe tie-break.
type SortKeySpec struct {
	Column    string `mapstructure:"column" validate:"required"`
	Kind      string `mapstructure:"kind" validate:"omitempty,oneof=string date number document_rank"`
	Direction string `mapstructure:"direction" validate:"omitempty,oneof=asc desc"`
}

// DedupeSpec configures deterministic one-row-per-key reduction. Sides whose
// key legitimately repeats (several documents per protocol) must declare it;
// the engine rejects a duplicated right side on anti-join otherwise.
type DedupeSpec struct {
	KeyColumn string        `mapstructure:"key_column"`
	TieBreak  []SortKeySpec `mapstructure:"tie_break" validate:"dive"`
}

// SplitSpec configures the carteira splitter applied to a direction's output.
type SplitSpec struct {
	Rule string `mapstructure:"rule" validate:"required,oneof=judicial campaign recebimento"`

	// judicial
	DocumentColumn string `mapstructure:"document_column"`
	File           string `mapstructure:"file"`

	// campaign
	DueDateColumn string `mapstructure:"due_date_column"`
	GroupColumn   string `mapstructure:"group_column"`
	ThresholdDays int    `mapstructure:"threshold_days"`
	LowerBucket   string `mapstructure:"lower_bucket"`
	UpperBucket   string `mapstructure:"upper_bucket"`

	// recebimento
	PaymentDateColumn   string `mapstructure:"payment_date_column"`
	PaymentAmountColumn string `mapstructure:"payment_amount_column"`
}

// LayoutSpec maps one output column.
type LayoutSpec struct {
	Output  string `mapstructure:"output" validate:"required"`
	Source  string `mapstructure:"source"`
	Default string `mapstructure:"default"`
}

// DirectionSpec declares one reconciliation direction to run.
type DirectionSpec struct {
	Name   string       `mapstructure:"name" validate:"required,oneof=batimento baixa"`
	Prefix string       `mapstructure:"prefix" validate:"required"`
	Split  *SplitSpec   `mapstructure:"split"`
	Layout []LayoutSpec `mapstructure:"layout" validate:"required,min=1,dive"`
}

// OutputSpec configures serialization of every file the run writes.
type OutputSpec struct {
	Dir          string   `mapstructure:"dir" validate:"required"`
	Separator    string   `mapstructure:"separator" validate:"omitempty,len=1"`
	Encoding     string   `mapstructure:"encoding" validate:"omitempty,oneof=utf-8 utf-8-sig latin-1"`
	MoneyColumns []string `mapstructure:"money_columns"`
}

// Options converts the spec into exporter options.
func (s OutputSpec) Options() csvio.ExportOptions {
	var sep rune
	if s.Separator != "" {
		sep = []rune(s.Separator)[0]
	}
	return csvio.ExportOptions{
		Separator:    sep,
		Encoding:     csvio.Encoding(s.Encoding),
		MoneyColumns: s.MoneyColumns,
	}
}
