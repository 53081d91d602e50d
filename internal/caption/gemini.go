package caption

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/highlight-flow/internal/logger"
	"github.com/nguyentantai21042004/highlight-flow/internal/segment"
	"github.com/nguyentantai21042004/highlight-flow/pkg/retry"
)

const captionPrompt = `You are captioning a highlight reel cut from an instructional video.
Write ONE short caption (at most 10 words) for the step shown between %.0fs and %.0fs.
Describe the action plainly, no quotes, no trailing punctuation.

Transcript of the segment:
---
%s
---

Return only the caption text.`

// GeminiSource generates captions with the Gemini API, rotating through the
// supplied API keys on quota errors.
type GeminiSource struct {
	apiKeys    []string
	currentKey int
	model      string
	policy     retry.Policy
	logger     logger.Logger
}

// NewGemini creates a caption Source backed by Gemini.
func NewGemini(apiKeys []string, model string, policy retry.Policy, log logger.Logger) (*GeminiSource, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("at least one Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiSource{apiKeys: apiKeys, model: model, policy: policy, logger: log}, nil
}

// Caption asks Gemini for a caption, bounded by the retry policy. Retry
// exhaustion surfaces as *retry.ExternalServiceError; the binder recovers it.
func (g *GeminiSource) Caption(ctx context.Context, seg segment.Selected, transcriptText string) (string, error) {
	prompt := fmt.Sprintf(captionPrompt, seg.Start, seg.End, transcriptText)

	var caption string
	err := g.policy.Do(ctx, func(ctx context.Context) error {
		text, err := g.generate(ctx, prompt)
		if err != nil {
			return err
		}
		caption = text
		return nil
	})
	if err != nil {
		return "", &retry.ExternalServiceError{Service: "gemini", Err: err}
	}
	return caption, nil
}

// generate makes one round over the configured API keys, rotating on
// 429 / quota errors.
func (g *GeminiSource) generate(ctx context.Context, prompt string) (string, error) {
	attempts := len(g.apiKeys)
	var lastErr error

	for range attempts {
		key := g.apiKeys[g.currentKey]

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			g.rotateKey()
			continue
		}

		result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		if err != nil {
			errMsg := err.Error()
			if strings.Contains(errMsg, "429") || strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "RESOURCE_EXHAUSTED") {
				g.logger.Warn(ctx, "Key %d rate limited, rotating...", g.currentKey+1)
				g.rotateKey()
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}

		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			var text string
			for _, part := range result.Candidates[0].Content.Parts {
				if part.Text != "" {
					text += part.Text
				}
			}
			if strings.TrimSpace(text) != "" {
				return strings.TrimSpace(text), nil
			}
		}

		return "", fmt.Errorf("empty response from Gemini")
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (g *GeminiSource) rotateKey() {
	g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
}
