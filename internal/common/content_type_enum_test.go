package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentType_IsValid(t *testing.T) {
	for _, ct := range []ContentType{ContentTypeVideo, ContentTypeArticle, ContentTypeGallery, ContentTypeEvent} {
		assert.True(t, ct.IsValid(), ct.String())
	}
	assert.False(t, ContentType("podcast").IsValid())
	assert.False(t, ContentType("").IsValid())
}

func TestContentStatus_IsValid(t *testing.T) {
	assert.True(t, StatusDraft.IsValid())
	assert.True(t, StatusPublished.IsValid())
	assert.False(t, ContentStatus("archived").IsValid())
	assert.Equal(t, "scheduled", StatusScheduled.String())
}

func TestEngagementType_Column(t *testing.T) {
	cases := map[EngagementType]string{
		EngagementView:    "views",
		EngagementLike:    "likes",
		EngagementComment: "comments",
		EngagementShare:   "shares",
	}
	for et, col := range cases {
		assert.Equal(t, col, et.Column())
	}
	assert.Empty(t, EngagementType("save").Column())
}

func TestParseEngagementType(t *testing.T) {
	edgeCases := []struct {
		input    string
		expected EngagementType
	}{
		{"view", EngagementView},
		{"LIKE", EngagementLike},
		{"  share ", EngagementShare},
		{"Comment", EngagementComment},
	}
	for _, tc := range edgeCases {
		got, err := ParseEngagementType(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.expected, got)
	}

	_, err := ParseEngagementType("bookmark")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidEngagementType))
	assert.True(t, errors.Is(err, ErrValidation))
}
