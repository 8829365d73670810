package logging

// Standardized field names for structured logging.
const (
	FieldFile          = "file_path"
	FieldAccount       = "account"
	FieldTransactionID = "transaction_id"
	FieldCategory      = "category"
	FieldStrategy      = "strategy"
	FieldReason        = "reason"
	FieldOperation     = "operation"
	FieldStatus        = "status"
	FieldError         = "error"
	FieldDuration      = "duration_ms"
	FieldCount         = "count"
	FieldDelimiter     = "delimiter"
	FieldEncoding      = "encoding"
	FieldHeaderLine    = "header_line"
	FieldRow           = "row"
	FieldField         = "field"
	FieldRawValue      = "raw_value"
	FieldBatchID       = "batch_id"
	FieldStore         = "store"
)
