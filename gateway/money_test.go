package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPenny(t *testing.T) {
	assert.Equal(t, 15000, ToPenny(150.00))
	assert.Equal(t, 9999, ToPenny(99.99))
	assert.Equal(t, 10, ToPenny(0.10))
	assert.Equal(t, 0, ToPenny(0))
}

func TestPennyToDecimal(t *testing.T) {
	assert.Equal(t, "150.00", PennyToDecimal(15000))
	assert.Equal(t, "0.01", PennyToDecimal(1))
	assert.Equal(t, "0.00", PennyToDecimal(0))
}

func TestToDecimalString(t *testing.T) {
	assert.Equal(t, "150.00", ToDecimalString(150))
	assert.Equal(t, "99.90", ToDecimalString(99.9))
	assert.Equal(t, "1234.56", ToDecimalString(1234.56))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 3.14, Round2(3.14159))
	assert.Equal(t, 4.0, Round2(3.999))
	assert.Equal(t, 150.0, Round2(150))
}
