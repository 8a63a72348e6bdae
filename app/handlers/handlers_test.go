package handlers

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/amirphl/counter-api/app/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateRequestValidation(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name    string
		body    string
		details map[string]string
	}{
		{name: "empty body", body: `{}`},
		{name: "count only", body: `{"count_number": 4}`},
		{name: "null description", body: `{"description": null}`},
		{
			name:    "null count_number",
			body:    `{"count_number": null}`,
			details: map[string]string{"count_number": "count_number must not be null"},
		},
		{
			name:    "description too long",
			body:    `{"description": "` + strings.Repeat("a", 256) + `"}`,
			details: map[string]string{"description": "description must be at most 255 characters"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req dto.UpdateCountRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))

			err := v.Struct(&req)
			if tt.details == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.details, validationDetails(err))
		})
	}
}

func TestCreateRequestValidation(t *testing.T) {
	v := newValidator()

	var req dto.CreateCountRequest
	require.NoError(t, json.Unmarshal([]byte(`{"description": "no number"}`), &req))
	err := v.Struct(&req)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"count_number": "count_number is required"}, validationDetails(err))

	req = dto.CreateCountRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"count_number": 0}`), &req))
	assert.NoError(t, v.Struct(&req), "zero is a present value")
}

func TestListRequestValidation(t *testing.T) {
	v := newValidator()

	err := v.Struct(&dto.ListCountsRequest{Skip: -1, Limit: 10})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"skip": "skip must be greater than or equal to 0"}, validationDetails(err))

	assert.NoError(t, v.Struct(&dto.ListCountsRequest{Skip: 0, Limit: 0}))
}
