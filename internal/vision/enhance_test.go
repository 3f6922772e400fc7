package vision

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnhancePreservesDimensions(t *testing.T) {
	src := testImage(t, 320, 240)

	enhanced, err := Enhance(src)
	require.NoError(t, err)
	require.NotEmpty(t, enhanced)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(enhanced))
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 240, cfg.Height)
}

func TestEnhanceUndecodableInput(t *testing.T) {
	_, err := Enhance([]byte("definitely not an image"))
	assert.Error(t, err)
}
