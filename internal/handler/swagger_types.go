package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// Response is the generic success envelope.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody is the error envelope.
type ErrorResponseBody struct {
	Success bool     `json:"success" example:"false"`
	Error   APIError `json:"error"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Vehicles int    `json:"vehicles,omitempty" example:"6"`
	Ports    int    `json:"ports,omitempty" example:"8"`
}
