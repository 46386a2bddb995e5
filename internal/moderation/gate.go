// Package moderation screens uploaded images before the pipeline spends money
// on model and search calls. Every decision path that cannot positively allow
// an image blocks it.
package moderation

import (
	"context"
	"log/slog"

	"github.com/dishpatch/dishpatch/internal/text"
)

// Verdict categories as emitted by the image classifier.
const (
	CategoryFoodOrVenue     = "food_or_venue"
	CategoryFaceOnly        = "face_only"
	CategoryAdultOrNudity   = "adult_or_nudity"
	CategoryViolenceOrGore  = "violence_or_gore"
	CategoryDrugsOrWeapons  = "drugs_or_weapons"
	CategoryHateOrExtremism = "hate_or_extremism"
	CategoryUnrelated       = "unrelated"
	CategoryUncertain       = "uncertain"
)

// Fixed reasons used when the classifier gives us nothing usable.
const (
	reasonScreeningFailed = "image screening could not be completed"
	reasonUnverified      = "unable to verify safety and relevance"
)

// Verdict is the outcome of screening one image against one user intent.
// It is produced per request and never persisted.
type Verdict struct {
	Allowed  bool
	Reason   string
	Category string
}

// ImageClassifier is the single model operation the gate needs: look at an
// image and an intent, answer with the verdict JSON described in the
// classification prompt.
type ImageClassifier interface {
	ClassifyImage(ctx context.Context, imageData []byte, mimeType, userQuery string) (string, error)
}

// Gate wraps an image classifier with the fail-closed decision policy.
type Gate struct {
	classifier ImageClassifier
	log        *slog.Logger
}

// NewGate creates a moderation gate backed by the given classifier.
func NewGate(classifier ImageClassifier, log *slog.Logger) *Gate {
	return &Gate{
		classifier: classifier,
		log:        log.With("component", "moderation_gate"),
	}
}

// Check screens an image together with the user's stated intent and returns
// a verdict. It never returns an error: any failure to obtain or parse a
// classification blocks the image, because an unverified image would
// otherwise proceed to a paid search call.
func (g *Gate) Check(ctx context.Context, imageData []byte, mimeType, userIntent string) Verdict {
	raw, err := g.classifier.ClassifyImage(ctx, imageData, mimeType, userIntent)
	if err != nil {
		g.log.ErrorContext(ctx, "Image classification failed, blocking request", "error", err)
		return blockedVerdict(reasonScreeningFailed)
	}

	parsed := text.RecoverJSONObject(raw)
	if parsed == nil {
		g.log.WarnContext(ctx, "Classifier output is not a JSON object, blocking request", "output_length", len(raw))
		return blockedVerdict(reasonScreeningFailed)
	}

	reason, _ := parsed["reason"].(string)
	if reason == "" {
		g.log.WarnContext(ctx, "Classifier verdict has no reason, blocking request")
		return blockedVerdict(reasonUnverified)
	}

	allowed, _ := parsed["allowed"].(bool)

	category, _ := parsed["category"].(string)
	if category == "" {
		category = CategoryUncertain
	}

	verdict := Verdict{Allowed: allowed, Reason: reason, Category: category}
	g.log.InfoContext(ctx, "Image screened",
		"allowed", verdict.Allowed,
		"category", verdict.Category)

	return verdict
}

func blockedVerdict(reason string) Verdict {
	return Verdict{
		Allowed:  false,
		Reason:   reason,
		Category: CategoryUncertain,
	}
}
