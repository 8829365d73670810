package models

// Canonical column names produced by the column mapper.
const (
	ColumnDate   = "Date"
	ColumnName   = "Name"
	ColumnAmount = "Amount"
	ColumnDebit  = "Debit"
	ColumnCredit = "Credit"
)

// Reserved categories used when the rules file does not name its own.
const (
	CategoryInternalTransfer = "🔄 Transfert Interne"
	CategoryOtherIncome      = "💰 Autres Revenus"
	CategoryUncategorized    = "❓ Autre"
)

// Strategy names reported in categorization results and statistics.
const (
	StrategyTransfer = "Transfer"
	StrategyLearned  = "Learned"
	StrategyKeyword  = "Keyword"
	StrategyAI       = "AI"
	StrategyFallback = "SignFallback"
)
