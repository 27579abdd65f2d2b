package errors

// ErrorCode identifies an error class in API responses and logs.
type ErrorCode int32

const (
	ErrorCode_UNKNOWN ErrorCode = iota
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND
	ErrorCode_ALREADY_EXISTS
	ErrorCode_INVALID_PAYLOAD

	ErrorCode_TRANSCRIPT_INVALID
	ErrorCode_TRANSCRIPT_NOT_FOUND

	ErrorCode_EXTRACTION_FAILED
	ErrorCode_EXTRACTION_CONFLICT

	ErrorCode_INDEXING_FAILED
	ErrorCode_RETRIEVAL_UNAVAILABLE
	ErrorCode_SYNTHESIS_FAILED

	ErrorCode_AI_SERVICE_UNAVAILABLE
	ErrorCode_AI_QUOTA_EXCEEDED

	ErrorCode_INTEGRATION_STORAGE_FAILED
	ErrorCode_INTEGRATION_CACHE_FAILED

	ErrorCode_DB_CONNECTION_FAILED
	ErrorCode_DB_QUERY_FAILED
	ErrorCode_DB_TRANSACTION_FAILED
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNKNOWN:          "UNKNOWN",
	ErrorCode_INTERNAL:         "INTERNAL",
	ErrorCode_INVALID_ARGUMENT: "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:        "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:   "ALREADY_EXISTS",
	ErrorCode_INVALID_PAYLOAD:  "INVALID_PAYLOAD",

	ErrorCode_TRANSCRIPT_INVALID:   "TRANSCRIPT_INVALID",
	ErrorCode_TRANSCRIPT_NOT_FOUND: "TRANSCRIPT_NOT_FOUND",

	ErrorCode_EXTRACTION_FAILED:   "EXTRACTION_FAILED",
	ErrorCode_EXTRACTION_CONFLICT: "EXTRACTION_CONFLICT",

	ErrorCode_INDEXING_FAILED:       "INDEXING_FAILED",
	ErrorCode_RETRIEVAL_UNAVAILABLE: "RETRIEVAL_UNAVAILABLE",
	ErrorCode_SYNTHESIS_FAILED:      "SYNTHESIS_FAILED",

	ErrorCode_AI_SERVICE_UNAVAILABLE: "AI_SERVICE_UNAVAILABLE",
	ErrorCode_AI_QUOTA_EXCEEDED:      "AI_QUOTA_EXCEEDED",

	ErrorCode_INTEGRATION_STORAGE_FAILED: "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:   "INTEGRATION_CACHE_FAILED",

	ErrorCode_DB_CONNECTION_FAILED:  "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:       "DB_QUERY_FAILED",
	ErrorCode_DB_TRANSACTION_FAILED: "DB_TRANSACTION_FAILED",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
