// Package gemini implements integration with Google's Gemini AI API. It turns
// food images or captions plus location and time context into natural-language
// search queries and screens uploaded images for safety and relevance.
package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/dishpatch/dishpatch/internal/config"
	"github.com/dishpatch/dishpatch/internal/text"
)

// SearchContext carries the location and time slots embedded into a synthesis
// instruction. Values pass through to the prompt verbatim; only presence is
// checked, never format.
type SearchContext struct {
	Location  string
	Latitude  string
	Longitude string
	Date      string
	Time      string
}

// Client defines the model operations used by the search pipeline.
// It provides query synthesis from images or captions and the raw image
// classification consumed by the moderation gate.
type Client interface {
	SynthesizeImageQuery(ctx context.Context, imageData []byte, mimeType, userQuery string, sc SearchContext) (string, error)

	SynthesizeCaptionQuery(ctx context.Context, caption, userQuery string, sc SearchContext) (string, error)

	ClassifyImage(ctx context.Context, imageData []byte, mimeType, userQuery string) (string, error)
}

type sdkClient struct {
	genaiClient   *genai.Client
	log           *slog.Logger
	contentConfig *genai.GenerateContentConfig
	modelName     string
}

// NewClient creates a new Gemini client with the provided configuration.
// It initializes the connection to the Gemini API and sets up generation
// parameters shared by all operations.
func NewClient(
	ctx context.Context,
	cfg config.GeminiConfig,
	log *slog.Logger,
) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := cfg.Temperature
	baseCfg := &genai.GenerateContentConfig{
		Temperature: &temperature,

		// Platform-side filtering stays off so the classifier sees what it
		// must judge; moderation decisions belong to the gate.
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
		},
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized", "model", cfg.Model)
	return &sdkClient{
		genaiClient:   gi,
		log:           logger,
		contentConfig: baseCfg,
		modelName:     cfg.Model,
	}, nil
}

func (c *sdkClient) SynthesizeImageQuery(ctx context.Context, imageData []byte, mimeType, userQuery string, sc SearchContext) (string, error) {
	c.log.DebugContext(ctx, "Synthesizing query from image", "image_size", len(imageData), "mime_type", mimeType)
	if len(imageData) == 0 || mimeType == "" {
		return "", fmt.Errorf("image data and MIME type are required")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromBytes(imageData, mimeType)}, genai.RoleUser),
		genai.NewContentFromText(buildSearchInstruction(sourceImageContent, sc), genai.RoleUser),
		genai.NewContentFromText("User question: "+userQuery, genai.RoleUser),
	}

	raw, err := c.generate(ctx, "image query synthesis", contents)
	if err != nil {
		return "", err
	}

	return text.TruncateToSentence(raw, text.MaxQueryLength), nil
}

func (c *sdkClient) SynthesizeCaptionQuery(ctx context.Context, caption, userQuery string, sc SearchContext) (string, error) {
	c.log.DebugContext(ctx, "Synthesizing query from caption", "caption_length", len(caption))

	contents := []*genai.Content{
		genai.NewContentFromText(buildSearchInstruction(sourceImageCaption, sc), genai.RoleUser),
		genai.NewContentFromText("Image caption: "+caption, genai.RoleUser),
		genai.NewContentFromText("User question: "+userQuery, genai.RoleUser),
	}

	raw, err := c.generate(ctx, "caption query synthesis", contents)
	if err != nil {
		return "", err
	}

	return text.TruncateToSentence(raw, text.MaxQueryLength), nil
}

func (c *sdkClient) ClassifyImage(ctx context.Context, imageData []byte, mimeType, userQuery string) (string, error) {
	c.log.DebugContext(ctx, "Classifying image", "image_size", len(imageData), "mime_type", mimeType)
	if len(imageData) == 0 || mimeType == "" {
		return "", fmt.Errorf("image data and MIME type are required")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromBytes(imageData, mimeType)}, genai.RoleUser),
		genai.NewContentFromText(ModerationInstruction, genai.RoleUser),
		genai.NewContentFromText("User question: "+userQuery, genai.RoleUser),
	}

	return c.generate(ctx, "image classification", contents)
}

// generate performs a single GenerateContent call. Calls are never retried:
// a failed classification must fail closed and a failed synthesis has no safe
// fallback query.
func (c *sdkClient) generate(ctx context.Context, op string, contents []*genai.Content) (string, error) {
	resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, c.contentConfig)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini API call failed", "operation", op, "error", err)
		return "", fmt.Errorf("%s failed: %w", op, err)
	}

	return c.extractText(ctx, op, resp)
}

// extractText pulls the text out of a model response. A blocked prompt is an
// error; a well-formed response with no content yields an empty string, which
// the pipeline carries forward as-is.
func (c *sdkClient) extractText(ctx context.Context, op string, resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reason := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reason = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "operation", op, "reason", reason)
		return "", fmt.Errorf("%s blocked by safety filter: %s", op, reason)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		c.log.WarnContext(ctx, "Gemini response has no content", "operation", op)
		return "", nil
	}

	return resp.Text(), nil
}
