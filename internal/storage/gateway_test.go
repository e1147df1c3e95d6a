package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey(KindVideo, "my  holiday clip.mp4")
	require.True(t, strings.HasPrefix(key, "videos/"))
	assert.True(t, strings.HasSuffix(key, "-my-holiday-clip.mp4"), key)
	assert.NotEqual(t, key, ObjectKey(KindVideo, "my  holiday clip.mp4"), "keys must be unique per upload")
}

func TestObjectKeyEmptyName(t *testing.T) {
	assert.True(t, strings.HasSuffix(ObjectKey(KindThumbnail, ""), "-upload"))
}

func TestMockGatewayPut(t *testing.T) {
	loc, err := NewMockGateway().Put(context.Background(), Object{Kind: KindThumbnail, Name: "cover.jpg"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(loc, "/api/thumbnails/"))
	assert.True(t, strings.HasSuffix(loc, "-cover.jpg"))
}
