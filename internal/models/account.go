package models

import "github.com/shopspring/decimal"

const (
	DefaultAccountColor = "#1f77b4"
	DefaultGroup        = "Personnel"
)

// AccountConfig is the configuration kept for one account name.
type AccountConfig struct {
	Name           string          `json:"name"`
	Group          string          `json:"group"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Target         decimal.Decimal `json:"target"`
	Color          string          `json:"color"`
}

// NewAccountConfig returns the configuration created implicitly for a new
// account name.
func NewAccountConfig(name, group string) AccountConfig {
	if group == "" {
		group = DefaultGroup
	}
	return AccountConfig{
		Name:           name,
		Group:          group,
		OpeningBalance: decimal.Zero,
		Target:         decimal.Zero,
		Color:          DefaultAccountColor,
	}
}

// Balance is the opening balance plus the amounts of the given transactions
// that belong to this account.
func (a AccountConfig) Balance(transactions []Transaction) decimal.Decimal {
	balance := a.OpeningBalance
	for _, tx := range transactions {
		if tx.Account == a.Name {
			balance = balance.Add(tx.Amount)
		}
	}
	return balance
}
