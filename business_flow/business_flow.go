// Package businessflow contains the business logic for the application.
package businessflow

import (
	"github.com/amirphl/counter-api/app/dto"
	"github.com/amirphl/counter-api/models"
	"github.com/amirphl/counter-api/utils"
	"github.com/rs/zerolog"
)

// ClientMetadata holds client information attached to flow log lines
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetEndpoint records the matched route, e.g. "PUT /counts/:id"
func (cm *ClientMetadata) SetEndpoint(endpoint string) {
	cm.Endpoint = endpoint
}

// attach adds the metadata fields to a log event; nil metadata is allowed
func (cm *ClientMetadata) attach(e *zerolog.Event) *zerolog.Event {
	if cm == nil {
		return e
	}
	return e.Str("request_id", cm.RequestID).
		Str("ip", cm.IPAddress).
		Str("user_agent", cm.UserAgent).
		Str("endpoint", cm.Endpoint)
}

// ToCountView converts a count row to its public representation
func ToCountView(record models.CountRecord) dto.CountView {
	return dto.CountView{
		ID:          record.ID,
		CountNumber: record.CountNumber,
		Description: record.Description,
		CreatedAt:   utils.FormatRFC3339(record.CreatedAt),
		UpdatedAt:   utils.FormatRFC3339Ptr(record.UpdatedAt),
	}
}
