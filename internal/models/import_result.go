package models

import "time"

// Diagnostic records one field that could not be read during an import.
type Diagnostic struct {
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// ImportResult summarises the import of one file into the ledger.
type ImportResult struct {
	BatchID        string    `json:"batch_id"`
	Source         string    `json:"source"`
	Account        string    `json:"account"`
	AccountCreated bool      `json:"account_created"`
	Encoding       string    `json:"encoding"`
	Delimiter      string    `json:"delimiter"`
	HeaderLine     int       `json:"header_line"`
	Columns        []string  `json:"columns"`
	Parsed         int       `json:"parsed"`
	Inserted       int       `json:"inserted"`
	Duplicates     int       `json:"duplicates"`
	DroppedRows    int       `json:"dropped_rows"`
	AmountDefaults int       `json:"amount_defaults"`
	SkippedLines   int       `json:"skipped_lines"`
	FirstDate      time.Time `json:"first_date"`
	LastDate       time.Time `json:"last_date"`

	Diagnostics []Diagnostic         `json:"diagnostics,omitempty"`
	Stats       *CategorizationStats `json:"stats,omitempty"`
}
