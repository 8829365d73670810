package ledger

import (
	"sort"

	"fjacquet/budget-csv/internal/models"
)

// MergeResult is the outcome of merging an import batch into the ledger.
type MergeResult struct {
	Transactions []models.Transaction // the merged ledger
	Inserted     []models.Transaction // incoming rows that were new
	Duplicates   int                  // incoming rows already present (or repeated within the batch)
}

// Merge returns existing plus every incoming transaction whose identity key
// is not already present. The first row holding a key wins, so merging the
// same batch twice gives the same ledger as merging it once. Neither input
// is modified.
func Merge(existing, incoming []models.Transaction) MergeResult {
	seen := make(map[models.TransactionKey]struct{}, len(existing)+len(incoming))
	merged := make([]models.Transaction, 0, len(existing)+len(incoming))

	for _, tx := range existing {
		key := tx.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, tx)
	}

	result := MergeResult{}
	for _, tx := range incoming {
		key := tx.Key()
		if _, dup := seen[key]; dup {
			result.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, tx)
		result.Inserted = append(result.Inserted, tx)
	}

	result.Transactions = merged
	return result
}

// Sort orders transactions chronologically, then by account. Rows that tie
// keep their relative order.
func Sort(transactions []models.Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		a, b := transactions[i], transactions[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Account < b.Account
	})
}

// Filter returns the transactions matching filter, in their original order.
func Filter(transactions []models.Transaction, filter models.TransactionFilter) []models.Transaction {
	out := make([]models.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if filter.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out
}
