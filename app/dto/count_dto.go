package dto

// CreateCountRequest represents the payload for creating a count row
type CreateCountRequest struct {
	CountNumber *int64  `json:"count_number" validate:"required" example:"0"`
	Description *string `json:"description" validate:"omitempty,max=255" example:"page views"`
}

// UpdateCountRequest represents a partial update; absent fields are left untouched
type UpdateCountRequest struct {
	CountNumber Optional[int64]  `json:"count_number" swaggertype:"integer" example:"42"`
	Description Optional[string] `json:"description" validate:"omitempty,max=255" swaggertype:"string" example:"renamed"`
}

// CountView is the public representation of a count row
type CountView struct {
	ID          uint    `json:"id" example:"1"`
	CountNumber int64   `json:"count_number" example:"3"`
	Description *string `json:"description" example:"page views"`
	CreatedAt   string  `json:"created_at" example:"2024-01-01T00:00:00Z"`
	UpdatedAt   *string `json:"updated_at" example:"2024-01-01T00:05:00Z"`
}

// CountResponse is returned by the latest-count endpoint
type CountResponse struct {
	Count int64 `json:"count" example:"1"`
}

// IncrementCountResponse is returned by the latest-count increment endpoint
type IncrementCountResponse struct {
	Count   int64  `json:"count" example:"2"`
	Message string `json:"message" example:"Count incremented successfully"`
}

// ListCountsRequest carries offset pagination for the count listing
type ListCountsRequest struct {
	Skip  int `json:"skip" validate:"gte=0"`
	Limit int `json:"limit" validate:"gte=0"`
}

// IncrementCountByIDRequest carries the step for a per-row increment
type IncrementCountByIDRequest struct {
	ID uint  `json:"id" validate:"required"`
	By int64 `json:"by"`
}

// ExportCountsResponse is an xlsx workbook of every row
type ExportCountsResponse struct {
	Filename string
	Data     []byte
}

// WelcomeResponse lists the available endpoints
type WelcomeResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// HealthResponse reports liveness
type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
}

// ReadinessResponse reports whether the store is reachable
type ReadinessResponse struct {
	Status   string `json:"status" example:"ready"`
	Database string `json:"database" example:"ok"`
}
