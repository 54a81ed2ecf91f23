package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCreditCard_Normalization(t *testing.T) {
	card := NewCreditCard("Ali Veli", "4111 1111-1111 1111", "3", "25", "123")

	assert.Equal(t, "4111111111111111", card.Number)
	assert.Equal(t, "03", card.ExpireMonth)
	assert.Equal(t, "2025", card.ExpireYear)
	assert.Equal(t, "25", card.ExpireYearShort())
}

func TestCreditCard_Valid(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   bool
	}{
		{"Valid Visa", "4111111111111111", true},
		{"Valid Mastercard", "5555555555554444", true},
		{"Valid Amex", "378282246310005", true},
		{"Luhn failure", "4111111111111112", false},
		{"Too short", "411111111111", false},
		{"Too long", "41111111111111111111", false},
		{"Non-digit", "411111111111111a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := NewCreditCard("Test", tt.number, "12", "2030", "123")
			assert.Equal(t, tt.want, card.Valid())
		})
	}
}

func TestCreditCard_BIN(t *testing.T) {
	card := NewCreditCard("Test", "4111111111111111", "12", "2030", "123")
	assert.Equal(t, "411111", card.BIN())

	short := NewCreditCard("Test", "4111", "12", "2030", "123")
	assert.Equal(t, "4111", short.BIN())
}

func TestCreditCard_Masked(t *testing.T) {
	card := NewCreditCard("Test", "4111111111111111", "12", "2030", "123")
	assert.Equal(t, "411111******1111", card.Masked())

	short := NewCreditCard("Test", "411111111", "12", "2030", "123")
	assert.Equal(t, "*********", short.Masked())
}

func TestDetectCardType(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   CardType
	}{
		{"Visa", "4111111111111111", CardTypeVisa},
		{"Mastercard 51-55", "5555555555554444", CardTypeMastercard},
		{"Mastercard 2-series", "2221000000000009", CardTypeMastercard},
		{"Amex 34", "340000000000009", CardTypeAmex},
		{"Amex 37", "378282246310005", CardTypeAmex},
		{"Troy", "9792030000000000", CardTypeTroy},
		{"Unknown", "6011000000000004", CardTypeUnknown},
		{"Empty", "", CardTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCardType(tt.number))
		})
	}
}
