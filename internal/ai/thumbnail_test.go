package ai

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"strings"
	"testing"

	"github.com/reelhub/backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThumbnailLabel(t *testing.T) {
	assert.Equal(t, "New Video", ThumbnailLabel(""))
	assert.Equal(t, "clip.mp4", ThumbnailLabel("clip.mp4"))
	assert.Equal(t, "exactly_twenty_ch.mp", ThumbnailLabel("exactly_twenty_ch.mp"))
	assert.Equal(t, "this_is_a_very_lo...", ThumbnailLabel("this_is_a_very_long_filename.mp4"))
	assert.Equal(t, strings.Repeat("é", 17)+"...", ThumbnailLabel(strings.Repeat("é", 25)))
}

func TestGenerateThumbnail(t *testing.T) {
	g := newTestGenerator(t, Config{})

	for _, name := range []string{"test-video.mp4", "", "this_is_a_very_long_filename_that_exceeds_the_20_character_limit.mp4"} {
		data, err := g.GenerateThumbnail(name)
		require.NoError(t, err, name)
		require.NotEmpty(t, data, name)

		cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, thumbWidth, cfg.Width)
		assert.Equal(t, thumbHeight, cfg.Height)
	}
}

func TestGenerateThumbnailDrawsGradientAndIcon(t *testing.T) {
	g := newTestGenerator(t, Config{})
	var captured image.Image
	g.encode = func(w io.Writer, img image.Image) error {
		captured = img
		return encodeJPEG(w, img)
	}

	_, err := g.GenerateThumbnail("clip.mp4")
	require.NoError(t, err)
	require.NotNil(t, captured)

	r, gr, b, _ := captured.At(0, 0).RGBA()
	assert.Equal(t, uint32(gradientFrom.R), r>>8)
	assert.Equal(t, uint32(gradientFrom.G), gr>>8)
	assert.Equal(t, uint32(gradientFrom.B), b>>8)

	r, _, _, _ = captured.At(thumbWidth-1, thumbHeight-1).RGBA()
	assert.InDelta(t, float64(gradientTo.R), float64(r>>8), 1)
}

func TestGenerateThumbnailEncodingFailure(t *testing.T) {
	g, err := New(Config{}, WithEncoder(func(io.Writer, image.Image) error {
		return errors.New("disk full")
	}))
	require.NoError(t, err)

	data, err := g.GenerateThumbnail("test-video.mp4")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrGenerationFailed))
	assert.NotNil(t, data)
	assert.Empty(t, data)
}
