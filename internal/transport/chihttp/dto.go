package chihttp

import "github.com/arcdex/arcdex/internal/domain"

// Error codes returned in the JSON error body.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeRecordNotFound   = "record_not_found"
	codeInvalidQuery     = "invalid_query"
	codeUnauthorized     = "unauthorized"
	codeInternalError    = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type upsertResponse struct {
	Record  domain.Record `json:"record"`
	Created bool          `json:"created"`
}

type recordListResponse struct {
	Items      []domain.Record `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
	HasMore    bool            `json:"has_more"`
}

type searchRequest struct {
	Path     string    `json:"path,omitempty"`
	DataType string    `json:"data_type,omitempty"`
	Format   string    `json:"format,omitempty"`
	Level    string    `json:"level,omitempty"`
	Location string    `json:"location,omitempty"`
	Status   string    `json:"status,omitempty"`
	Corrupt  *bool     `json:"corrupt,omitempty"`
	Start    string    `json:"start,omitempty"`
	End      string    `json:"end,omitempty"`
	BBox     []float64 `json:"bbox,omitempty"`
	Offset   int       `json:"offset,omitempty"`
	Limit    int       `json:"limit,omitempty"`
}

type searchResponse struct {
	Items  []domain.Record `json:"items"`
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

type countResponse struct {
	Count int `json:"count"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
