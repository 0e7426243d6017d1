package recon

import (
	"fmt"
	"time"

	"github.com/cobmax/batimento/internal/domain/dataset"
)

// Carteira bucket names.
const (
	BucketJudicial       = "judicial"
	BucketExtrajudicial  = "extrajudicial"
	BucketComRecebimento = "com_recebimento"
	BucketSemRecebimento = "sem_recebimento"
)

// Splitter partitions a dataset into named carteira buckets. Partitions are
// exhaustive and disjoint: every row lands in exactly one bucket.
type Splitter interface {
	// Name returns the splitter name for logs and config errors.
	Name() string
	// Split partitions the dataset.
	Split(ds *dataset.Dataset) (map[string]*dataset.Dataset, error)
}

// JudicialSplitter routes rows whose normalized document appears in an
// external CPF/CNPJ list to the judicial bucket, everything else to
// extrajudicial.
type JudicialSplitter struct {
	DocumentColumn string
	documents      map[string]struct{}
}

// NewJudicialSplitter normalizes the judicial document list to digits-only
// form.
func NewJudicialSplitter(documentColumn string, documents []string) *JudicialSplitter {
	set := make(map[string]struct{}, len(documents))
	for _, d := range documents {
		if n := dataset.DigitsOnly(d); n != "" {
			set[n] = struct{}{}
		}
	}
	return &JudicialSplitter{DocumentColumn: documentColumn, documents: set}
}

// Name returns the splitter name
func (s *JudicialSplitter) Name() string { return "judicial" }

// Split partitions by document membership in the judicial list.
func (s *JudicialSplitter) Split(ds *dataset.Dataset) (map[string]*dataset.Dataset, error) {
	out := map[string]*dataset.Dataset{
		BucketJudicial:      ds.Empty(),
		BucketExtrajudicial: ds.Empty(),
	}
	for _, row := range ds.Rows {
		if _, ok := s.documents[dataset.DigitsOnly(row.Get(s.DocumentColumn))]; ok {
			out[BucketJudicial].Append(row)
		} else {
			out[BucketExtrajudicial].Append(row)
		}
	}
	return out, nil
}

// CampaignSplitter partitions by aging against a day threshold: rows at or
// below the threshold go to LowerBucket, rows above it to UpperBucket.
//
// Mixed-aging rule: when GroupColumn is set and a single entity (protocol,
// CPF) has rows on both sides of the threshold, all of its rows are forced
// into LowerBucket so one entity is never split across two campaigns.
//
// Rows whose due date cannot be parsed also land in LowerBucket, the default
// bucket; splitting never drops a row.
type CampaignSplitter struct {
	DueDateColumn string
	GroupColumn   string
	ThresholdDays int
	LowerBucket   string
	UpperBucket   string
	Layouts       []string
	Now           func() time.Time
}

// Name returns the splitter name
func (s *CampaignSplitter) Name() string { return "campaign" }

// Split partitions by aging with the mixed-aging group rule applied.
func (s *CampaignSplitter) Split(ds *dataset.Dataset) (map[string]*dataset.Dataset, error) {
	if s.LowerBucket == "" || s.UpperBucket == "" {
		return nil, fmt.Errorf("%w: campaign splitter requires bucket names", dataset.ErrConfiguration)
	}
	layouts := s.Layouts
	if len(layouts) == 0 {
		layouts = []string{dataset.DateLayout}
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	ref := now()

	// upper[i] records the per-row routing before the group rule.
	upper := make([]bool, len(ds.Rows))
	groupHasLower := make(map[string]bool)
	groupHasUpper := make(map[string]bool)
	for i, row := range ds.Rows {
		due, ok := dataset.ParseDate(row.Get(s.DueDateColumn), layouts)
		if ok {
			aging := int(ref.Sub(due).Hours() / 24)
			upper[i] = aging > s.ThresholdDays
		}
		if s.GroupColumn != "" {
			g := row.Get(s.GroupColumn)
			if upper[i] {
				groupHasUpper[g] = true
			} else {
				groupHasLower[g] = true
			}
		}
	}

	out := map[string]*dataset.Dataset{
		s.LowerBucket: ds.Empty(),
		s.UpperBucket: ds.Empty(),
	}
	for i, row := range ds.Rows {
		toUpper := upper[i]
		if s.GroupColumn != "" {
			g := row.Get(s.GroupColumn)
			if groupHasLower[g] && groupHasUpper[g] {
				toUpper = false
			}
		}
		if toUpper {
			out[s.UpperBucket].Append(row)
		} else {
			out[s.LowerBucket].Append(row)
		}
	}
	return out, nil
}

// FieldValueSplitter routes rows where both the payment date and the payment
// amount are present to com_recebimento, everything else to sem_recebimento.
type FieldValueSplitter struct {
	PaymentDateColumn   string
	PaymentAmountColumn string
}

// Name returns the splitter name
func (s *FieldValueSplitter) Name() string { return "recebimento" }

// Split partitions by presence of the payment fields.
func (s *FieldValueSplitter) Split(ds *dataset.Dataset) (map[string]*dataset.Dataset, error) {
	out := map[string]*dataset.Dataset{
		BucketComRecebimento: ds.Empty(),
		BucketSemRecebimento: ds.Empty(),
	}
	for _, row := range ds.Rows {
		hasDate := !dataset.IsEmptyValue(row.Get(s.PaymentDateColumn))
		hasAmount := !dataset.IsEmptyValue(row.Get(s.PaymentAmountColumn))
		if hasDate && hasAmount {
			out[BucketComRecebimento].Append(row)
		} else {
			out[BucketSemRecebimento].Append(row)
		}
	}
	return out, nil
}
