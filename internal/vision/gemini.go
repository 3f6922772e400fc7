package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/dansheikh28/fridgevision/internal/detect"
	"github.com/dansheikh28/fridgevision/internal/svcerr"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const geminiModel = "gemini-2.5-flash"

// Gemini pricing (per million tokens)
const (
	geminiInputPricePerMillion  = 0.30
	geminiOutputPricePerMillion = 2.50
)

const geminiDetectPrompt = `Detect every distinct food item, beverage and food container visible in this photo of refrigerator contents.

Respond with a JSON array where each entry has these fields:
- label: short lowercase name of the detected object (e.g. "apple", "milk", "bottle")
- confidence: your confidence in the detection as a number between 0 and 1
- box_2d: the bounding box as [ymin, xmin, ymax, xmax], with coordinates normalized to 0-1000

Detect containers (bottles, jars, cartons) as their own entries when the contents are not identifiable. Do not include shelves, walls or the refrigerator itself.

Example response:
[{"label": "apple", "confidence": 0.92, "box_2d": [120, 340, 260, 480]}, {"label": "bottle", "confidence": 0.81, "box_2d": [80, 40, 400, 180]}]

Respond ONLY with the JSON array, no markdown or other text.`

// GeminiDetector locates food items with the Gemini vision API.
type GeminiDetector struct {
	client *genai.Client
}

// NewGeminiDetector creates a Gemini-backed detector.
func NewGeminiDetector(ctx context.Context, apiKey string) (*GeminiDetector, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiDetector{client: client}, nil
}

// Detect implements the Detector interface using Gemini. Image dimensions
// come from the image header so the 0-1000 normalized boxes Gemini returns
// can be scaled to absolute pixel coordinates.
func (g *GeminiDetector) Detect(ctx context.Context, imageData []byte, minConfidence float64) ([]detect.Detection, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return nil, svcerr.New(serviceName, svcerr.InvalidImage, fmt.Errorf("failed to decode image: %w", err))
	}

	parts := []*genai.Part{
		genai.NewPartFromText(geminiDetectPrompt),
		{InlineData: &genai.Blob{Data: imageData, MIMEType: http.DetectContentType(imageData)}},
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, geminiModel, contents, nil)
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, svcerr.New(serviceName, svcerr.InvalidResponse, fmt.Errorf("no response from Gemini"))
	}

	dets, err := parseDetections(result.Text(), cfg.Width, cfg.Height, minConfidence)
	if err != nil {
		return nil, err
	}

	// Calculate usage and cost
	var inputTokens, outputTokens int64
	var costUSD float64
	if result.UsageMetadata != nil {
		inputTokens = int64(result.UsageMetadata.PromptTokenCount)
		outputTokens = int64(result.UsageMetadata.CandidatesTokenCount)
		costUSD = float64(inputTokens)/1_000_000*geminiInputPricePerMillion +
			float64(outputTokens)/1_000_000*geminiOutputPricePerMillion
	}
	log.Info().
		Str("model", geminiModel).
		Int("detections", len(dets)).
		Int64("inputTokens", inputTokens).
		Int64("outputTokens", outputTokens).
		Float64("costUSD", costUSD).
		Msg("vision detection call")

	return dets, nil
}

// classifyGeminiError maps Gemini API failures onto the ServiceError
// taxonomy. The SDK does not expose a stable error type for quota
// exhaustion, so the status code and message are matched the same way the
// service reports them.
func classifyGeminiError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return svcerr.New(serviceName, svcerr.Timeout, err)
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "resource_exhausted") {
		return svcerr.New(serviceName, svcerr.QuotaExceeded, err)
	}
	return svcerr.New(serviceName, svcerr.Unknown, err)
}

type geminiDetection struct {
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Box2D      []float64 `json:"box_2d"`
}

// parseDetections decodes Gemini's JSON detection array and scales the
// normalized boxes to pixel coordinates. Malformed entries are dropped; a
// payload without a JSON array at all is an InvalidResponse.
func parseDetections(text string, width, height int, minConfidence float64) ([]detect.Detection, error) {
	// Clean up the response - remove markdown code blocks if present
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end <= start {
		return nil, svcerr.New(serviceName, svcerr.InvalidResponse, fmt.Errorf("no JSON array found in response: %s", text))
	}
	text = text[start : end+1]

	var raw []geminiDetection
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, svcerr.New(serviceName, svcerr.InvalidResponse, fmt.Errorf("failed to parse detection JSON: %w (response: %s)", err, text))
	}

	dets := make([]detect.Detection, 0, len(raw))
	for _, r := range raw {
		if r.Label == "" || len(r.Box2D) != 4 {
			continue
		}
		if r.Confidence < 0 || r.Confidence > 1 || r.Confidence < minConfidence {
			continue
		}
		box := detect.Box{
			X1: clamp(r.Box2D[1]/1000*float64(width), 0, float64(width)),
			Y1: clamp(r.Box2D[0]/1000*float64(height), 0, float64(height)),
			X2: clamp(r.Box2D[3]/1000*float64(width), 0, float64(width)),
			Y2: clamp(r.Box2D[2]/1000*float64(height), 0, float64(height)),
		}
		if !box.Valid() {
			continue
		}
		dets = append(dets, detect.Detection{
			Label:      r.Label,
			Confidence: r.Confidence,
			Box:        box,
		})
	}
	return dets, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
