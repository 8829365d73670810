package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstants(t *testing.T) {
	names := []string{
		FieldFile, FieldAccount, FieldTransactionID, FieldCategory, FieldStrategy,
		FieldCount, FieldDelimiter, FieldEncoding, FieldHeaderLine, FieldRow,
		FieldField, FieldRawValue, FieldBatchID, FieldStore,
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		assert.NotEmpty(t, name)
		assert.False(t, seen[name], "duplicate field name %q", name)
		seen[name] = true
	}
}
