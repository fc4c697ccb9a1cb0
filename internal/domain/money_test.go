package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in      string
		want    Money
		wantErr bool
	}{
		{"10", 1000, false},
		{"10.5", 1050, false},
		{"0.99", 99, false},
		{"0", 0, false},
		{"1.005", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMoney(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoney_JSON(t *testing.T) {
	var body struct {
		Price Money `json:"price"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price": 25.5}`), &body))
	assert.Equal(t, Money(2550), body.Price)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price": 25.5}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"price": "12"}`), &body))
	assert.Equal(t, Money(1200), body.Price)
}

func TestMoney_Mul(t *testing.T) {
	assert.Equal(t, Money(3000), Money(1000).Mul(3))
	assert.Equal(t, "30.00", Money(3000).String())
}
