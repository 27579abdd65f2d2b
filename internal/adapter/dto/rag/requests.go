package rag

// QueryRequest asks a question over the account's indexed meetings.
// UseLocalLLM picks the synthesis backend for this request; when omitted
// the configured default applies.
type QueryRequest struct {
	Question    string `json:"question" validate:"required,notblank"`
	TopK        int    `json:"top_k,omitempty" validate:"omitempty,gte=1,lte=50"`
	UseLocalLLM *bool  `json:"use_local_llm,omitempty"`
}

// SearchRequest retrieves raw chunks without answer synthesis.
type SearchRequest struct {
	Query string `json:"query" validate:"required,notblank"`
	TopK  int    `json:"top_k,omitempty" validate:"omitempty,gte=1,lte=50"`
}

// IndexRequest (re)indexes one meeting's current transcript.
type IndexRequest struct {
	MeetingID string `json:"meeting_id" validate:"required,uuid"`
}
