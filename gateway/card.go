package gateway

import (
	"strings"
)

// CardType is the card scheme detected from the BIN
type CardType string

const (
	CardTypeVisa       CardType = "visa"
	CardTypeMastercard CardType = "mastercard"
	CardTypeAmex       CardType = "amex"
	CardTypeTroy       CardType = "troy"
	CardTypeUnknown    CardType = "unknown"
)

// CreditCard holds normalized card data. Use NewCreditCard so the
// number, month and year normalization rules are always applied.
type CreditCard struct {
	HolderName  string
	Number      string
	ExpireMonth string
	ExpireYear  string
	CVV         string
}

// NewCreditCard normalizes and returns a card. Spaces and dashes are
// stripped from the number, the month is left-padded to two digits and
// a two digit year is expanded to 20yy.
func NewCreditCard(holderName, number, expireMonth, expireYear, cvv string) *CreditCard {
	number = strings.ReplaceAll(number, " ", "")
	number = strings.ReplaceAll(number, "-", "")

	if len(expireMonth) == 1 {
		expireMonth = "0" + expireMonth
	}
	if len(expireYear) == 2 {
		expireYear = "20" + expireYear
	}

	return &CreditCard{
		HolderName:  holderName,
		Number:      number,
		ExpireMonth: expireMonth,
		ExpireYear:  expireYear,
		CVV:         cvv,
	}
}

// Valid runs a Luhn check on the card number. Numbers shorter than 13
// or longer than 19 digits are rejected outright.
func (c *CreditCard) Valid() bool {
	n := len(c.Number)
	if n < 13 || n > 19 {
		return false
	}

	sum := 0
	double := false
	for i := n - 1; i >= 0; i-- {
		d := c.Number[i]
		if d < '0' || d > '9' {
			return false
		}
		digit := int(d - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}

	return sum%10 == 0
}

// BIN returns the first six digits of the card number
func (c *CreditCard) BIN() string {
	if len(c.Number) < 6 {
		return c.Number
	}
	return c.Number[:6]
}

// Masked returns the number with everything between the first six and
// last four digits replaced by stars. Short numbers are fully masked.
func (c *CreditCard) Masked() string {
	n := len(c.Number)
	if n < 10 {
		return strings.Repeat("*", n)
	}
	return c.Number[:6] + strings.Repeat("*", n-10) + c.Number[n-4:]
}

// ExpireYearShort returns the last two digits of the expiry year
func (c *CreditCard) ExpireYearShort() string {
	if len(c.ExpireYear) == 4 {
		return c.ExpireYear[2:]
	}
	return c.ExpireYear
}

// Type detects the card scheme from the BIN
func (c *CreditCard) Type() CardType {
	return DetectCardType(c.Number)
}

// DetectCardType detects the card scheme from the leading digits.
// Troy is checked before Mastercard because the 9792xx range would
// otherwise never match.
func DetectCardType(number string) CardType {
	if number == "" {
		return CardTypeUnknown
	}

	if len(number) >= 6 {
		if prefix6 := atoiPrefix(number, 6); prefix6 >= 979200 && prefix6 <= 979299 {
			return CardTypeTroy
		}
	}

	if strings.HasPrefix(number, "34") || strings.HasPrefix(number, "37") {
		return CardTypeAmex
	}

	if len(number) >= 2 {
		if prefix2 := atoiPrefix(number, 2); prefix2 >= 51 && prefix2 <= 55 {
			return CardTypeMastercard
		}
	}
	if len(number) >= 4 {
		if prefix4 := atoiPrefix(number, 4); prefix4 >= 2221 && prefix4 <= 2720 {
			return CardTypeMastercard
		}
	}

	if strings.HasPrefix(number, "4") {
		return CardTypeVisa
	}

	return CardTypeUnknown
}

func atoiPrefix(s string, n int) int {
	if len(s) < n {
		return -1
	}
	v := 0
	for i := 0; i < n; i++ {
		d := s[i]
		if d < '0' || d > '9' {
			return -1
		}
		v = v*10 + int(d-'0')
	}
	return v
}
