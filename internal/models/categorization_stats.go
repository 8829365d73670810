package models

import (
	"sort"

	"fjacquet/budget-csv/internal/logging"
)

// CategorizationStats counts, for one batch, how many transactions each
// strategy classified.
type CategorizationStats struct {
	Total      int            `json:"total"`
	ByStrategy map[string]int `json:"by_strategy"`
	Failed     int            `json:"failed"`
}

// NewCategorizationStats creates an empty CategorizationStats.
func NewCategorizationStats() *CategorizationStats {
	return &CategorizationStats{ByStrategy: make(map[string]int)}
}

// Record counts one transaction classified by strategy.
func (cs *CategorizationStats) Record(strategy string) {
	if cs.ByStrategy == nil {
		cs.ByStrategy = make(map[string]int)
	}
	cs.Total++
	cs.ByStrategy[strategy]++
}

// RecordFailure counts a strategy error that was skipped over.
func (cs *CategorizationStats) RecordFailure() {
	cs.Failed++
}

// Automatic is the number of transactions not left to the sign fallback.
func (cs CategorizationStats) Automatic() int {
	return cs.Total - cs.ByStrategy[StrategyFallback]
}

// Strategies returns the strategy names present, sorted.
func (cs CategorizationStats) Strategies() []string {
	names := make([]string, 0, len(cs.ByStrategy))
	for name := range cs.ByStrategy {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LogSummary logs a summary of categorization statistics
func (cs CategorizationStats) LogSummary(logger logging.Logger, source string) {
	if logger == nil {
		return
	}

	fields := []logging.Field{
		{Key: logging.FieldFile, Value: source},
		{Key: logging.FieldCount, Value: cs.Total},
		{Key: "failed", Value: cs.Failed},
	}
	for _, name := range cs.Strategies() {
		fields = append(fields, logging.Field{Key: "by_" + name, Value: cs.ByStrategy[name]})
	}
	logger.Info("Categorization summary", fields...)
}
