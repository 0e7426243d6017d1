package recon

import (
	"testing"

	"github.com/cobmax/batimento/internal/domain/dataset"
	"github.com/stretchr/testify/assert"
)

func row(cells map[string]string) dataset.Row {
	return dataset.Row{Cells: cells}
}

func TestCompositeKeyGenerator(t *testing.T) {
	gen := CompositeKeyGenerator{Components: []string{"CONTRATO", "PARCELA"}, Separator: "-"}

	t.Run("Joins trimmed components", func(t *testing.T) {
		key := gen.Key(row(map[string]string{"CONTRATO": " 12345 ", "PARCELA": "01"}))
		assert.Equal(t, "12345-01", key)
	})

	t.Run("Missing component yields empty segment, never an error", func(t *testing.T) {
		key := gen.Key(row(map[string]string{"CONTRATO": "12345"}))
		assert.Equal(t, "12345-", key)
	})

	t.Run("Deterministic across repeated calls", func(t *testing.T) {
		r := row(map[string]string{"CONTRATO": "99", "PARCELA": "07"})
		first := gen.Key(r)
		for i := 0; i < 100; i++ {
			assert.Equal(t, first, gen.Key(r))
		}
	})
}

func TestColumnKeyGenerator(t *testing.T) {
	gen := ColumnKeyGenerator{Column: "PROTOCOLO"}

	assert.Equal(t, "P-001", gen.Key(row(map[string]string{"PROTOCOLO": " P-001 "})))
	assert.Equal(t, "", gen.Key(row(map[string]string{})))
}
