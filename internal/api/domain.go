package api

// Response represents a generic API response for success or error messages.
type Response struct {
	Success   bool   `json:"success" example:"true"`                           // Indicates if the operation was successful.
	Message   string `json:"message,omitempty" example:"Operation successful"` // Optional success message.
	Error     string `json:"error,omitempty" example:"Resource not found"`     // Optional error message.
	RequestID string `json:"request_id,omitempty"`
}

// HealthResponse is returned by the liveness endpoint.
type HealthResponse struct {
	Status  string `json:"status" example:"healthy"`
	Service string `json:"service" example:"trip-aggregator"`
	Mode    string `json:"mode,omitempty" example:"development"`
}
