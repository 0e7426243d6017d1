package recon

import (
	"testing"

	"github.com/cobmax/batimento/internal/domain/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertExhaustive(t *testing.T, in *dataset.Dataset, buckets map[string]*dataset.Dataset) {
	t.Helper()
	total := 0
	seen := make(map[int]int)
	for _, b := range buckets {
		total += b.Len()
		for _, r := range b.Rows {
			seen[r.Index]++
		}
	}
	assert.Equal(t, in.Len(), total)
	for idx, n := range seen {
		assert.Equal(t, 1, n, "row %d must land in exactly one bucket", idx)
	}
}

func TestJudicialSplitter(t *testing.T) {
	s := NewJudicialSplitter("DOCUMENTO", []string{"123.456.789-00"})

	ds := dataset.New("DOCUMENTO")
	ds.AppendCells(map[string]string{"DOCUMENTO": "12345678900"})
	ds.AppendCells(map[string]string{"DOCUMENTO": "999.888.777-66"})

	buckets, err := s.Split(ds)
	require.NoError(t, err)

	assertExhaustive(t, ds, buckets)
	assert.Equal(t, 1, buckets[BucketJudicial].Len())
	assert.Equal(t, 1, buckets[BucketExtrajudicial].Len())
}

func TestCampaignSplitter(t *testing.T) {
	now := fixedNow("01/01/2025")
	newSplitter := func(group string) *CampaignSplitter {
		return &CampaignSplitter{
			DueDateColumn: "VENCIMENTO",
			GroupColumn:   group,
			ThresholdDays: 1800,
			LowerBucket:   "campanha_a",
			UpperBucket:   "campanha_b",
			Now:           now,
		}
	}
	dueInDays := func(days int) string {
		return now().AddDate(0, 0, -days).Format(dataset.DateLayout)
	}

	t.Run("Boundary at the threshold", func(t *testing.T) {
		ds := dataset.New("PROTOCOLO", "VENCIMENTO")
		for i, days := range []int{1799, 1800, 1801} {
			ds.AppendCells(map[string]string{
				"PROTOCOLO":  []string{"P1", "P2", "P3"}[i],
				"VENCIMENTO": dueInDays(days),
			})
		}

		buckets, err := newSplitter("").Split(ds)
		require.NoError(t, err)

		assertExhaustive(t, ds, buckets)
		assert.Equal(t, 2, buckets["campanha_a"].Len())
		assert.Equal(t, 1, buckets["campanha_b"].Len())
	})

	t.Run("Mixed aging forces the whole entity into the lower bucket", func(t *testing.T) {
		ds := dataset.New("PROTOCOLO", "VENCIMENTO")
		for _, days := range []int{1799, 1800, 1801} {
			ds.AppendCells(map[string]string{
				"PROTOCOLO":  "P1",
				"VENCIMENTO": dueInDays(days),
			})
		}

		buckets, err := newSplitter("PROTOCOLO").Split(ds)
		require.NoError(t, err)

		assertExhaustive(t, ds, buckets)
		assert.Equal(t, 3, buckets["campanha_a"].Len())
		assert.Equal(t, 0, buckets["campanha_b"].Len())
	})

	t.Run("Uniformly old entity stays in the upper bucket", func(t *testing.T) {
		ds := dataset.New("PROTOCOLO", "VENCIMENTO")
		for _, days := range []int{1900, 2000} {
			ds.AppendCells(map[string]string{
				"PROTOCOLO":  "P1",
				"VENCIMENTO": dueInDays(days),
			})
		}

		buckets, err := newSplitter("PROTOCOLO").Split(ds)
		require.NoError(t, err)
		assert.Equal(t, 2, buckets["campanha_b"].Len())
	})

	t.Run("Unparsable due date falls back to the lower bucket, never dropped", func(t *testing.T) {
		ds := dataset.New("PROTOCOLO", "VENCIMENTO")
		ds.AppendCells(map[string]string{"PROTOCOLO": "P9", "VENCIMENTO": "not-a-date"})

		buckets, err := newSplitter("").Split(ds)
		require.NoError(t, err)

		assertExhaustive(t, ds, buckets)
		assert.Equal(t, 1, buckets["campanha_a"].Len())
	})

	t.Run("Missing bucket names are a configuration error", func(t *testing.T) {
		s := &CampaignSplitter{DueDateColumn: "VENCIMENTO"}
		_, err := s.Split(dataset.New("VENCIMENTO"))
		assert.ErrorIs(t, err, dataset.ErrConfiguration)
	})
}

func TestFieldValueSplitter(t *testing.T) {
	s := &FieldValueSplitter{PaymentDateColumn: "DATA_RECEBIMENTO", PaymentAmountColumn: "VALOR_RECEBIDO"}

	ds := dataset.New("DATA_RECEBIMENTO", "VALOR_RECEBIDO")
	ds.AppendCells(map[string]string{"DATA_RECEBIMENTO": "01/01/2024", "VALOR_RECEBIDO": "100,00"})
	ds.AppendCells(map[string]string{"DATA_RECEBIMENTO": "01/01/2024", "VALOR_RECEBIDO": ""})
	ds.AppendCells(map[string]string{"DATA_RECEBIMENTO": "nan", "VALOR_RECEBIDO": "100,00"})
	ds.AppendCells(map[string]string{})

	buckets, err := s.Split(ds)
	require.NoError(t, err)

	assertExhaustive(t, ds, buckets)
	assert.Equal(t, 1, buckets[BucketComRecebimento].Len())
	assert.Equal(t, 3, buckets[BucketSemRecebimento].Len())
}

func TestSplitterRegistry(t *testing.T) {
	reg := NewSplitterRegistry()
	s := NewJudicialSplitter("DOCUMENTO", nil)

	require.NoError(t, reg.Register("batimento", s))

	t.Run("Duplicate registration rejected", func(t *testing.T) {
		err := reg.Register("batimento", NewJudicialSplitter("DOCUMENTO", nil))
		assert.ErrorIs(t, err, dataset.ErrAlreadyExists)
	})

	t.Run("Lookup by name", func(t *testing.T) {
		got, err := reg.Get("batimento")
		require.NoError(t, err)
		assert.Same(t, Splitter(s), got)
	})

	t.Run("Unknown name", func(t *testing.T) {
		_, err := reg.Get("missing")
		assert.ErrorIs(t, err, dataset.ErrNotFound)
	})

	t.Run("List is sorted", func(t *testing.T) {
		reg2 := NewSplitterRegistry()
		require.NoError(t, reg2.Register("baixa", NewJudicialSplitter("DOCUMENTO", nil)))
		require.NoError(t, reg2.Register("batimento", s))
		assert.Equal(t, []string{"baixa", "batimento"}, reg2.List())
	})
}
