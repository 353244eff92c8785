package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrencyFor(t *testing.T) {
	tests := []struct {
		region string
		code   string
		symbol string
	}{
		{"Pakistan", "PKR", "₨"},
		{"India", "INR", "₹"},
		{"China", "CNY", "¥"},
		{"USA", "USD", "$"},
		{"Dubai", "AED", "د.إ"},
	}
	for _, tt := range tests {
		c := CurrencyFor(tt.region)
		assert.Equal(t, tt.code, c.Code, tt.region)
		assert.Equal(t, tt.symbol, c.Symbol, tt.region)
	}
}

func TestCurrencyFor_UnknownDefaultsToUSD(t *testing.T) {
	c := CurrencyFor("Atlantis")
	assert.Equal(t, "USD", c.Code)
	assert.Equal(t, "$", c.Symbol)
}
