package models

// ErrorResponse is the standard error envelope for all endpoints.
type ErrorResponse struct {
	Status  int               `json:"status"`           // HTTP status code
	Kind    string            `json:"kind,omitempty"`   // stable machine-readable error kind
	Message string            `json:"message"`          // human readable detail
	Fields  map[string]string `json:"fields,omitempty"` // per-field validation messages
}
