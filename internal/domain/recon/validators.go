package recon

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cobmax/batimento/internal/domain/dataset"
)

// RowValidator is a single predicate over a row. Validators are pure
// functions of the row plus their configuration.
type RowValidator interface {
	// Name returns the validator name for logs and config errors.
	Name() string
	// Validate returns false plus a rejection reason when the row is invalid.
	Validate(row dataset.Row) (ok bool, reason string)
}

// Chain is an ordered list of validators. Every validator runs for every row;
// the recorded reason is the first rejection in declaration order.
type Chain struct {
	validators []RowValidator
}

// NewChain creates a chain with the given validators in declaration order.
func NewChain(validators ...RowValidator) *Chain {
	return &Chain{validators: validators}
}

// Append adds validators after the existing ones.
func (c *Chain) Append(validators ...RowValidator) {
	c.validators = append(c.validators, validators...)
}

// Evaluate runs the full chain over a row.
func (c *Chain) Evaluate(row dataset.Row) (ok bool, reason string) {
	ok = true
	for _, v := range c.validators {
		if valid, r := v.Validate(row); !valid && ok {
			ok = false
			reason = r
		}
	}
	return ok, reason
}

// RequiredFieldsValidator rejects rows where any named field is empty or a
// sentinel empty string ("nan", "null", ...).
type RequiredFieldsValidator struct {
	Fields []string
}

// Name returns the validator name
func (v RequiredFieldsValidator) Name() string { return "required_fields" }

// Validate checks every configured field for emptiness.
func (v RequiredFieldsValidator) Validate(row dataset.Row) (bool, string) {
	for _, f := range v.Fields {
		if dataset.IsEmptyValue(row.Get(f)) {
			return false, fmt.Sprintf("%s vazia", f)
		}
	}
	return true, ""
}

// RegexValidator rejects rows whose field does not fully match the pattern.
type RegexValidator struct {
	Field   string
	Pattern *regexp.Regexp
}

// NewRegexValidator compiles the pattern anchored for a full match.
func NewRegexValidator(field, pattern string) (*RegexValidator, error) {
	if !strings.HasPrefix(pattern, "^") {
		pattern = "^" + pattern
	}
	if !strings.HasSuffix(pattern, "$") {
		pattern = pattern + "$"
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: regex validator for %s: %v", dataset.ErrConfiguration, field, err)
	}
	return &RegexValidator{Field: field, Pattern: re}, nil
}

// Name returns the validator name
func (v *RegexValidator) Name() string { return "regex" }

// Validate matches the trimmed field value against the pattern.
func (v *RegexValidator) Validate(row dataset.Row) (bool, string) {
	if !v.Pattern.MatchString(strings.TrimSpace(row.Get(v.Field))) {
		return false, fmt.Sprintf("%s formato invalido", v.Field)
	}
	return true, ""
}

// DateRangeValidator rejects rows whose field cannot be parsed as a date in
// any configured layout, or whose year falls below MinYear. Guards against
// OCR/typo artifacts like 0123-01-01.
type DateRangeValidator struct {
	Field   string
	MinYear int
	Layouts []string
}

// Name returns the validator name
func (v DateRangeValidator) Name() string { return "date_range" }

// Validate parses the field and checks the year floor.
func (v DateRangeValidator) Validate(row dataset.Row) (bool, string) {
	d, ok := dataset.ParseDate(row.Get(v.Field), v.Layouts)
	if !ok {
		return false, fmt.Sprintf("%s formato invalido", v.Field)
	}
	if v.MinYear > 0 && d.Year() < v.MinYear {
		return false, fmt.Sprintf("%s ano < %d", v.Field, v.MinYear)
	}
	return true, ""
}

// AgingValidator rejects rows older than MaxDays relative to the reference
// clock. Campaign routing by aging is handled by the CampaignSplitter, not
// here.
type AgingValidator struct {
	Field   string
	MaxDays int
	Layouts []string
	Now     func() time.Time
}

// Name returns the validator name
func (v AgingValidator) Name() string { return "aging" }

// Validate computes reference − field in whole days against MaxDays.
func (v AgingValidator) Validate(row dataset.Row) (bool, string) {
	d, ok := dataset.ParseDate(row.Get(v.Field), v.Layouts)
	if !ok {
		return false, fmt.Sprintf("%s formato invalido", v.Field)
	}
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	aging := int(now().Sub(d).Hours() / 24)
	if aging > v.MaxDays {
		return false, fmt.Sprintf("%s vencido ha mais de %d dias", v.Field, v.MaxDays)
	}
	return true, ""
}

// BlacklistValidator rejects rows whose normalized document appears in an
// externally supplied exclusion list.
type BlacklistValidator struct {
	Field     string
	Documents map[string]struct{}
}

// NewBlacklistValidator normalizes the given documents to digits-only form.
func NewBlacklistValidator(field string, documents []string) *BlacklistValidator {
	set := make(map[string]struct{}, len(documents))
	for _, d := range documents {
		if n := dataset.DigitsOnly(d); n != "" {
			set[n] = struct{}{}
		}
	}
	return &BlacklistValidator{Field: field, Documents: set}
}

// Name returns the validator name
func (v *BlacklistValidator) Name() string { return "blacklist" }

// Validate checks digits-only membership in the exclusion list.
func (v *BlacklistValidator) Validate(row dataset.Row) (bool, string) {
	if _, ok := v.Documents[dataset.DigitsOnly(row.Get(v.Field))]; ok {
		return false, fmt.Sprintf("%s em blacklist", v.Field)
	}
	return true, ""
}

// ExcludeValuesValidator rejects rows whose trimmed, case-folded field value
// is one of the configured values. Used to drop administrative line items
// such as payment type PERMUTA.
type ExcludeValuesValidator struct {
	Field  string
	values map[string]struct{}
}

// NewExcludeValuesValidator builds the case-normalized exclusion set.
func NewExcludeValuesValidator(field string, values []string) *ExcludeValuesValidator {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToUpper(strings.TrimSpace(v))] = struct{}{}
	}
	return &ExcludeValuesValidator{Field: field, values: set}
}

// Name returns the validator name
func (v *ExcludeValuesValidator) Name() string { return "exclude_values" }

// Validate checks membership of the normalized value.
func (v *ExcludeValuesValidator) Validate(row dataset.Row) (bool, string) {
	val := strings.ToUpper(strings.TrimSpace(row.Get(v.Field)))
	if _, ok := v.values[val]; ok {
		return false, fmt.Sprintf("%s valor excluido", v.Field)
	}
	return true, ""
}

// LineBreakValidator rejects rows that contained CR/LF inside a field before
// cell normalization. The treatment stage constructs it from the broken-row
// set reported by dataset.NormalizeCells.
type LineBreakValidator struct {
	BrokenRows map[int]bool
}

// Name returns the validator name
func (v LineBreakValidator) Name() string { return "linebreak" }

// Validate rejects rows flagged as containing a line break.
func (v LineBreakValidator) Validate(row dataset.Row) (bool, string) {
	if v.BrokenRows[row.Index] {
		return false, "quebra de linha"
	}
	return true, ""
}
