package recon

import (
	"testing"

	"github.com/cobmax/batimento/internal/domain/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyed(keys ...string) *dataset.Dataset {
	ds := dataset.New("CHAVE")
	for _, k := range keys {
		ds.AppendCells(map[string]string{"CHAVE": k})
	}
	return ds
}

func keysOf(ds *dataset.Dataset) []string {
	out := make([]string, 0, ds.Len())
	for _, r := range ds.Rows {
		out = append(out, r.Get("CHAVE"))
	}
	return out
}

func TestAntiJoin(t *testing.T) {
	t.Run("Returns rows of A absent from B", func(t *testing.T) {
		a := keyed("X-1", "X-2", "Y-1")
		b := keyed("X-1", "Z-9")

		out, err := AntiJoin(a, b, "CHAVE", "CHAVE")
		require.NoError(t, err)

		assert.Equal(t, []string{"X-2", "Y-1"}, keysOf(out))
	})

	t.Run("Complementarity: every row of A accounted for exactly once", func(t *testing.T) {
		a := keyed("A", "B", "C", "D", "E")
		b := keyed("B", "D", "F")

		out, err := AntiJoin(a, b, "CHAVE", "CHAVE")
		require.NoError(t, err)

		bKeys, _ := b.KeySet("CHAVE")
		matched := 0
		for _, r := range a.Rows {
			if _, ok := bKeys[r.Get("CHAVE")]; ok {
				matched++
			}
		}
		assert.Equal(t, a.Len(), out.Len()+matched)
	})

	t.Run("No result key occurs in B", func(t *testing.T) {
		a := keyed("1", "2", "3")
		b := keyed("2")

		out, err := AntiJoin(a, b, "CHAVE", "CHAVE")
		require.NoError(t, err)

		bKeys, _ := b.KeySet("CHAVE")
		for _, k := range keysOf(out) {
			_, present := bKeys[k]
			assert.False(t, present, "key %q leaked through the anti-join", k)
		}
	})

	t.Run("Empty B returns all of A", func(t *testing.T) {
		a := keyed("A", "B")
		out, err := AntiJoin(a, keyed(), "CHAVE", "CHAVE")
		require.NoError(t, err)
		assert.Equal(t, a.Len(), out.Len())
	})

	t.Run("Duplicate keys on the right side are rejected", func(t *testing.T) {
		a := keyed("A")
		b := keyed("B", "B")

		_, err := AntiJoin(a, b, "CHAVE", "CHAVE")
		assert.ErrorIs(t, err, dataset.ErrKeyCollision)
	})

	t.Run("Missing key columns are a configuration error", func(t *testing.T) {
		_, err := AntiJoin(keyed(), keyed(), "", "CHAVE")
		assert.ErrorIs(t, err, dataset.ErrConfiguration)
	})

	t.Run("Roles swapped gives the baixa direction", func(t *testing.T) {
		source := keyed("X-1", "X-2")
		max := keyed("X-1", "W-7")

		baixa, err := AntiJoin(max, source, "CHAVE", "CHAVE")
		require.NoError(t, err)

		assert.Equal(t, []string{"W-7"}, keysOf(baixa))
	})
}
