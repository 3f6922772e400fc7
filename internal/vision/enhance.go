package vision

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Enhance sharpens and boosts the contrast of a fridge photo for the
// second detection pass. Dim, hazy shelf regions often score below the
// confidence threshold on the raw image; the enhanced pass recovers some of
// them. Output dimensions are identical to the input so boxes from both
// passes share a coordinate space.
func Enhance(imageData []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image for enhancement: %w", err)
	}

	img = imaging.Sharpen(img, 1.0)
	img = imaging.AdjustContrast(img, 12)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to encode enhanced image: %w", err)
	}
	return buf.Bytes(), nil
}
