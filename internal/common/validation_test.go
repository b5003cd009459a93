package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Title  string `json:"title" validate:"required,max=10"`
	Type   string `json:"type" validate:"required,oneof=video article"`
	URL    string `json:"content_url" validate:"omitempty,url"`
	Amount int64  `json:"amount" validate:"min=0"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(&sampleRequest{Title: "ok", Type: "video", URL: "https://cdn.example.com/a.mp4"}))

	err := ValidateStruct(&sampleRequest{Title: "far too long title", Type: "podcast", URL: "not a url", Amount: -1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "title must be at most 10 characters")
	assert.Contains(t, err.Error(), "type must be one of [video article]")
	assert.Contains(t, err.Error(), "content_url must be a valid URL")
	assert.Contains(t, err.Error(), "amount must be at least 0")
}

func TestValidateStruct_Required(t *testing.T) {
	err := ValidateStruct(&sampleRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is required")
	assert.Contains(t, err.Error(), "type is required")
}
