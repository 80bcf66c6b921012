// Package gemini wraps the Google generative AI client behind the two
// generation operations the pipeline needs: plain text and text-plus-images.
// Callers have no differentiated recovery path, so every upstream failure is
// logged with its cause and surfaced as the single opaque ErrGenerationFailed.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"studypilot/internal/extract"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	// ModelName is the Gemini model to use.
	ModelName = "gemini-2.5-flash"
	// generateTimeout bounds a single generation round-trip so a hung
	// upstream call cannot block a request indefinitely.
	generateTimeout = 2 * time.Minute
)

// ErrGenerationFailed is the only error callers see from generation. The
// underlying cause is logged, not surfaced.
var ErrGenerationFailed = errors.New("generation failed")

// Client wraps the Gemini client.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewClient creates a new Gemini client from the GEMINI_API_KEY environment
// variable.
func NewClient(ctx context.Context) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client: client,
		model:  client.GenerativeModel(ModelName),
	}, nil
}

// Close closes the Gemini client.
func (c *Client) Close() {
	c.client.Close()
}

// Generate performs a single text-only generation round-trip. No retries.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, genai.Text(prompt))
}

// GenerateWithImages performs a single multimodal round-trip with the prompt
// followed by each image as an inline blob. No retries.
func (c *Client) GenerateWithImages(ctx context.Context, prompt string, images []extract.InlineImage) (string, error) {
	parts := make([]genai.Part, 0, len(images)+1)
	parts = append(parts, genai.Text(prompt))
	for _, img := range images {
		data, err := base64.StdEncoding.DecodeString(img.Base64)
		if err != nil {
			log.Printf("ERROR: failed to decode inline image payload (%s): %v", img.MimeType, err)
			return "", ErrGenerationFailed
		}
		parts = append(parts, genai.Blob{MIMEType: img.MimeType, Data: data})
	}
	return c.generate(ctx, parts...)
}

// GenerateStream starts a streaming generation. The capability exists but no
// current call site consumes it; the request/response operations above are
// the contract.
func (c *Client) GenerateStream(ctx context.Context, prompt string) *genai.GenerateContentResponseIterator {
	return c.model.GenerateContentStream(ctx, genai.Text(prompt))
}

func (c *Client) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		log.Printf("ERROR: Gemini generation failed: %v", err)
		return "", ErrGenerationFailed
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Printf("ERROR: Gemini returned no content")
		return "", ErrGenerationFailed
	}

	text := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text += string(t)
		}
	}
	if text == "" {
		log.Printf("ERROR: Gemini response contained no text parts")
		return "", ErrGenerationFailed
	}
	return text, nil
}
