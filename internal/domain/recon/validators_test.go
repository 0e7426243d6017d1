package recon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow(day string) func() time.Time {
	t, err := time.Parse("02/01/2006", day)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func TestRequiredFieldsValidator(t *testing.T) {
	v := RequiredFieldsValidator{Fields: []string{"PARCELA", "VENCIMENTO"}}

	t.Run("All present", func(t *testing.T) {
		ok, _ := v.Validate(row(map[string]string{"PARCELA": "01", "VENCIMENTO": "01/01/2024"}))
		assert.True(t, ok)
	})

	t.Run("Empty field names the column", func(t *testing.T) {
		ok, reason := v.Validate(row(map[string]string{"PARCELA": "", "VENCIMENTO": "01/01/2024"}))
		assert.False(t, ok)
		assert.Equal(t, "PARCELA vazia", reason)
	})

	t.Run("Sentinel values count as empty", func(t *testing.T) {
		ok, reason := v.Validate(row(map[string]string{"PARCELA": "01", "VENCIMENTO": "NaT"}))
		assert.False(t, ok)
		assert.Equal(t, "VENCIMENTO vazia", reason)
	})
}

func TestRegexValidator(t *testing.T) {
	v, err := NewRegexValidator("PARCELA", "[0-9]{3,}-[0-9]{2,}")
	require.NoError(t, err)

	for _, c := range []struct {
		value string
		valid bool
	}{
		{"12345-01", true},
		{"abc-01", false},
		{"1", false},
		{"12-1", false},
		{"123-456", true},
		{"2023-01-01", false},
	} {
		ok, reason := v.Validate(row(map[string]string{"PARCELA": c.value}))
		assert.Equal(t, c.valid, ok, "value %q", c.value)
		if !c.valid {
			assert.Equal(t, "PARCELA formato invalido", reason)
		}
	}
}

func TestRegexValidatorBadPattern(t *testing.T) {
	_, err := NewRegexValidator("PARCELA", "[unclosed")
	assert.Error(t, err)
}

func TestDateRangeValidator(t *testing.T) {
	v := DateRangeValidator{Field: "VENCIMENTO", MinYear: 1900, Layouts: []string{"02/01/2006"}}

	t.Run("Valid date", func(t *testing.T) {
		ok, _ := v.Validate(row(map[string]string{"VENCIMENTO": "15/03/2020"}))
		assert.True(t, ok)
	})

	t.Run("Calendar-invalid date gets the parse reason, not the year reason", func(t *testing.T) {
		ok, reason := v.Validate(row(map[string]string{"VENCIMENTO": "31/02/2023"}))
		assert.False(t, ok)
		assert.Equal(t, "VENCIMENTO formato invalido", reason)
	})

	t.Run("Year below floor", func(t *testing.T) {
		ok, reason := v.Validate(row(map[string]string{"VENCIMENTO": "01/01/0123"}))
		assert.False(t, ok)
		assert.Equal(t, "VENCIMENTO ano < 1900", reason)
	})
}

func TestAgingValidator(t *testing.T) {
	v := AgingValidator{
		Field:   "VENCIMENTO",
		MaxDays: 1800,
		Layouts: []string{"02/01/2006"},
		Now:     fixedNow("01/01/2025"),
	}

	t.Run("Within threshold", func(t *testing.T) {
		ok, _ := v.Validate(row(map[string]string{"VENCIMENTO": "01/01/2024"}))
		assert.True(t, ok)
	})

	t.Run("Exactly at threshold is still valid", func(t *testing.T) {
		// 1800 days before the reference date.
		due := fixedNow("01/01/2025")().AddDate(0, 0, -1800).Format("02/01/2006")
		ok, _ := v.Validate(row(map[string]string{"VENCIMENTO": due}))
		assert.True(t, ok)
	})

	t.Run("Past threshold", func(t *testing.T) {
		due := fixedNow("01/01/2025")().AddDate(0, 0, -1801).Format("02/01/2006")
		ok, reason := v.Validate(row(map[string]string{"VENCIMENTO": due}))
		assert.False(t, ok)
		assert.Equal(t, "VENCIMENTO vencido ha mais de 1800 dias", reason)
	})
}

func TestBlacklistValidator(t *testing.T) {
	v := NewBlacklistValidator("DOCUMENTO", []string{"123.456.789-00", "98765432000110"})

	t.Run("Formatted and bare documents both match", func(t *testing.T) {
		ok, reason := v.Validate(row(map[string]string{"DOCUMENTO": "12345678900"}))
		assert.False(t, ok)
		assert.Equal(t, "DOCUMENTO em blacklist", reason)

		ok, _ = v.Validate(row(map[string]string{"DOCUMENTO": "98.765.432/0001-10"}))
		assert.False(t, ok)
	})

	t.Run("Unlisted document passes", func(t *testing.T) {
		ok, _ := v.Validate(row(map[string]string{"DOCUMENTO": "111.222.333-44"}))
		assert.True(t, ok)
	})
}

func TestExcludeValuesValidator(t *testing.T) {
	v := NewExcludeValuesValidator("TIPO_PAGAMENTO", []string{"PERMUTA"})

	ok, reason := v.Validate(row(map[string]string{"TIPO_PAGAMENTO": " permuta "}))
	assert.False(t, ok)
	assert.Equal(t, "TIPO_PAGAMENTO valor excluido", reason)

	ok, _ = v.Validate(row(map[string]string{"TIPO_PAGAMENTO": "BOLETO"}))
	assert.True(t, ok)
}

func TestChainFirstReasonWins(t *testing.T) {
	required := RequiredFieldsValidator{Fields: []string{"PARCELA"}}
	regex, err := NewRegexValidator("PARCELA", "[0-9]{3,}-[0-9]{2,}")
	require.NoError(t, err)

	chain := NewChain(required, regex)

	// Both validators reject; the reason comes from the first in chain order.
	ok, reason := chain.Evaluate(row(map[string]string{"PARCELA": ""}))
	assert.False(t, ok)
	assert.Equal(t, "PARCELA vazia", reason)

	// Declaration order reversed flips the reason.
	chain = NewChain(regex, required)
	ok, reason = chain.Evaluate(row(map[string]string{"PARCELA": ""}))
	assert.False(t, ok)
	assert.Equal(t, "PARCELA formato invalido", reason)
}
