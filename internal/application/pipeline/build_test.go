package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobmax/batimento/internal/domain/dataset"
	"github.com/cobmax/batimento/internal/domain/recon"
	"github.com/cobmax/batimento/internal/infrastructure/config"
)

func TestBuildKeyGenerator(t *testing.T) {
	t.Run("composite defaults to dash separator", func(t *testing.T) {
		gen, err := buildKeyGenerator(config.KeySpec{Type: "composite", Components: []string{"CONTRATO", "PARCELA"}})
		require.NoError(t, err)
		key := gen.Key(dataset.Row{Cells: map[string]string{"CONTRATO": "A", "PARCELA": "2"}})
		assert.Equal(t, "A-2", key)
	})

	t.Run("column", func(t *testing.T) {
		gen, err := buildKeyGenerator(config.KeySpec{Type: "column", Column: "PROTOCOLO"})
		require.NoError(t, err)
		assert.Equal(t, "P1", gen.Key(dataset.Row{Cells: map[string]string{"PROTOCOLO": "P1"}}))
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := buildKeyGenerator(config.KeySpec{Type: "hash"})
		assert.True(t, errors.Is(err, dataset.ErrConfiguration))
	})
}

func TestBuildChain(t *testing.T) {
	listFile := filepath.Join(t.TempDir(), "blacklist.txt")
	require.NoError(t, os.WriteFile(listFile, []byte("# ignored\n\n111.222.333-44\n"), 0644))

	chain, err := buildChain([]config.ValidatorSpec{
		{Type: "required_fields", Fields: []string{"CONTRATO"}},
		{Type: "regex", Field: "PARCELA", Pattern: `\d+`},
		{Type: "date_range", Field: "VENCIMENTO", MinYear: 1900},
		{Type: "aging", Field: "VENCIMENTO", MaxDays: 1095},
		{Type: "blacklist", Field: "DOCUMENTO", File: listFile},
		{Type: "exclude_values", Field: "TIPO", Values: []string{"PERMUTA"}},
	}, func() time.Time { return time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) })
	require.NoError(t, err)

	ok, reason := chain.Evaluate(dataset.Row{Cells: map[string]string{
		"CONTRATO":   "A",
		"PARCELA":    "7",
		"VENCIMENTO": "10/01/2024",
		"DOCUMENTO":  "999.888.777-66",
		"TIPO":       "VENDA",
	}})
	assert.True(t, ok)
	assert.Empty(t, reason)

	ok, reason = chain.Evaluate(dataset.Row{Cells: map[string]string{
		"CONTRATO":   "A",
		"PARCELA":    "7",
		"VENCIMENTO": "10/01/2024",
		"DOCUMENTO":  "11122233344",
		"TIPO":       "VENDA",
	}})
	assert.False(t, ok)
	assert.Equal(t, "DOCUMENTO em blacklist", reason)
}

func TestBuildValidatorErrors(t *testing.T) {
	_, err := buildValidator(config.ValidatorSpec{Type: "checksum"}, time.Now)
	assert.True(t, errors.Is(err, dataset.ErrConfiguration))

	_, err = buildValidator(config.ValidatorSpec{Type: "regex", Field: "X", Pattern: "("}, time.Now)
	assert.Error(t, err)

	_, err = buildValidator(config.ValidatorSpec{Type: "blacklist", Field: "X", File: "/nonexistent/list.txt"}, time.Now)
	assert.True(t, errors.Is(err, dataset.ErrConfiguration))
}

func TestBuildTieBreak(t *testing.T) {
	keys := buildTieBreak([]config.SortKeySpec{
		{Column: "DOCUMENTO", Kind: "document_rank"},
		{Column: "VENCIMENTO", Kind: "date", Direction: "desc"},
		{Column: "CONTRATO"},
	})
	require.Len(t, keys, 3)
	assert.Equal(t, recon.SortKey{Column: "DOCUMENTO", Kind: recon.KindDocumentRank, Direction: recon.Ascending}, keys[0])
	assert.Equal(t, recon.SortKey{Column: "VENCIMENTO", Kind: recon.KindDate, Direction: recon.Descending}, keys[1])
	assert.Equal(t, recon.SortKey{Column: "CONTRATO", Kind: recon.KindString, Direction: recon.Ascending}, keys[2])
}

func TestBuildSplitter(t *testing.T) {
	t.Run("judicial", func(t *testing.T) {
		listFile := filepath.Join(t.TempDir(), "judicial.txt")
		require.NoError(t, os.WriteFile(listFile, []byte("11122233344\n"), 0644))

		s, err := buildSplitter(config.SplitSpec{Rule: "judicial", DocumentColumn: "DOCUMENTO", File: listFile}, time.Now)
		require.NoError(t, err)
		assert.Equal(t, "judicial", s.Name())
	})

	t.Run("judicial with missing list", func(t *testing.T) {
		_, err := buildSplitter(config.SplitSpec{Rule: "judicial", File: "/nonexistent/list.txt"}, time.Now)
		assert.True(t, errors.Is(err, dataset.ErrConfiguration))
	})

	t.Run("campaign", func(t *testing.T) {
		s, err := buildSplitter(config.SplitSpec{
			Rule:          "campaign",
			DueDateColumn: "VENCIMENTO",
			GroupColumn:   "CONTRATO",
			ThresholdDays: 1800,
			LowerBucket:   "campanha_58",
			UpperBucket:   "campanha_59",
		}, time.Now)
		require.NoError(t, err)
		assert.Equal(t, "campaign", s.Name())
	})

	t.Run("recebimento", func(t *testing.T) {
		s, err := buildSplitter(config.SplitSpec{
			Rule:                "recebimento",
			PaymentDateColumn:   "DATA_PAGAMENTO",
			PaymentAmountColumn: "VALOR_PAGO",
		}, time.Now)
		require.NoError(t, err)
		assert.Equal(t, "recebimento", s.Name())
	})

	t.Run("unknown rule", func(t *testing.T) {
		_, err := buildSplitter(config.SplitSpec{Rule: "alphabetical"}, time.Now)
		assert.True(t, errors.Is(err, dataset.ErrConfiguration))
	})
}

func TestLoadDocumentList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.txt")
	require.NoError(t, os.WriteFile(path, []byte("# header comment\n\n11122233344\n  22233344455  \n"), 0644))

	docs, err := loadDocumentList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"11122233344", "22233344455"}, docs)

	_, err = loadDocumentList(filepath.Join(t.TempDir(), "missing.txt"))
	assert.True(t, errors.Is(err, dataset.ErrConfiguration))
}
