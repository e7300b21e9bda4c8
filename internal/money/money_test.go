package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		a, err := Parse("12.99")
		require.NoError(t, err)
		assert.Equal(t, "12.99", a.StringFixed(2))
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := Parse("twelve")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid amount")
	})
}

func TestNew(t *testing.T) {
	assert.Equal(t, "5.00", New(500).StringFixed(2))
	assert.True(t, New(1299).Equal(MustParse("12.99")))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, "1.04", Round2(MustParse("1.0392")).StringFixed(2))
	assert.Equal(t, "0.01", Round2(MustParse("0.005")).StringFixed(2))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$32.00", Format(FromInt(32)))
	assert.Equal(t, "$0.00", Format(Zero))
}

func TestJSONAsNumber(t *testing.T) {
	out, err := json.Marshal(struct {
		Price Amount `json:"price"`
	}{Price: MustParse("12.99")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":12.99}`, string(out))

	var in struct {
		Price Amount `json:"price"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price":3.5}`), &in))
	assert.Equal(t, "3.50", in.Price.StringFixed(2))
}
