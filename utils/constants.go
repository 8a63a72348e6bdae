package utils

import (
	"time"
)

const (
	// DefaultRequestTimeout bounds every request's unit of work
	DefaultRequestTimeout = 30 * time.Second

	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400

	// MaxDescriptionLength is the column size of count_table.description
	MaxDescriptionLength = 255
)

// Pagination defaults for the count listing
const (
	DefaultListSkip  = 0
	DefaultListLimit = 100
)
