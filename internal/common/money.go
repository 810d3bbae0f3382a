package common

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatBRL renders an amount as Brazilian reais, e.g. "R$1.234,56".
// Rounding to cents goes through decimal so float noise never shifts a cent.
func FormatBRL(amount float64) string {
	cents := decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return money.New(cents, money.BRL).Display()
}
