package models

// HTTP wire types for the knowledge-base API. Field names and JSON keys match
// the REST surface consumed by the client router.

// AddDocumentRequest is the body of POST /documents.
type AddDocumentRequest struct {
	Filename      string `json:"filename"`
	ContentBase64 string `json:"content_base64"`
}

// AddDocumentResponse is the success body of POST /documents.
type AddDocumentResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	ChunksAdded int    `json:"chunks_added"`
}

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResult is a single similarity hit. Page is a string so that "N/A" can
// be reported for sources without page numbers.
type QueryResult struct {
	Source  string `json:"source"`
	Page    string `json:"page"`
	Content string `json:"content"`
}

// QueryResponse is the success body of POST /query.
type QueryResponse struct {
	Query   string        `json:"query"`
	Results []QueryResult `json:"results"`
}

// FileInfo describes one indexed source in GET /documents.
type FileInfo struct {
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
	Pages    *int   `json:"pages,omitempty"`
}

// ListDocumentsResponse is the body of GET /documents.
type ListDocumentsResponse struct {
	TotalFiles  int        `json:"total_files"`
	TotalChunks int        `json:"total_chunks"`
	Files       []FileInfo `json:"files"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	IndexLoaded bool   `json:"index_loaded"`
}

// ErrorResponse is the error body for all endpoints.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
