package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dishpatch/dishpatch/internal/gemini"
	"github.com/dishpatch/dishpatch/internal/moderation"
	"github.com/dishpatch/dishpatch/internal/service"
	"github.com/dishpatch/dishpatch/internal/yelp"
)

type fakeGate struct {
	verdict moderation.Verdict
	calls   int
}

func (f *fakeGate) Check(context.Context, []byte, string, string) moderation.Verdict {
	f.calls++
	return f.verdict
}

type fakeModel struct {
	imageQuery   string
	imageErr     error
	captionQuery string
	captionErr   error

	imageCalls   int
	captionCalls int
}

func (f *fakeModel) SynthesizeImageQuery(context.Context, []byte, string, string, gemini.SearchContext) (string, error) {
	f.imageCalls++
	return f.imageQuery, f.imageErr
}

func (f *fakeModel) SynthesizeCaptionQuery(context.Context, string, string, gemini.SearchContext) (string, error) {
	f.captionCalls++
	return f.captionQuery, f.captionErr
}

func (f *fakeModel) ClassifyImage(context.Context, []byte, string, string) (string, error) {
	return "", errors.New("not used in these tests")
}

type fakeSearcher struct {
	raw map[string]any
	err error

	calls     int
	lastQuery string
}

func (f *fakeSearcher) Search(_ context.Context, query string) (map[string]any, error) {
	f.calls++
	f.lastQuery = query
	return f.raw, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func allowedGate() *fakeGate {
	return &fakeGate{verdict: moderation.Verdict{
		Allowed:  true,
		Reason:   "A plate of food.",
		Category: moderation.CategoryFoodOrVenue,
	}}
}

func imageInput() service.ImageSearchInput {
	return service.ImageSearchInput{
		ImageData: []byte{0xFF, 0xD8},
		MIMEType:  "image/jpeg",
		UserQuery: "where can I eat this?",
		Context: gemini.SearchContext{
			Location: "College Park, Maryland",
			Date:     "12/11/2025",
			Time:     "8pm",
		},
	}
}

func TestSearchByImage(t *testing.T) {
	gate := allowedGate()
	model := &fakeModel{imageQuery: "ramen restaurants in College Park open tonight"}
	searcher := &fakeSearcher{raw: map[string]any{
		"chat_id": "chat-1",
		"response": map[string]any{"text": "Found a few spots."},
		"entities": []any{
			map[string]any{"businesses": []any{
				map[string]any{"name": "Noodle House", "rating": 4.5},
			}},
		},
	}}

	svc := service.NewSearchService(gate, model, searcher, discardLogger())
	result, err := svc.SearchByImage(context.Background(), imageInput())
	require.NoError(t, err)

	assert.Equal(t, 1, gate.calls)
	assert.Equal(t, 1, model.imageCalls)
	assert.Equal(t, 1, searcher.calls)
	assert.Equal(t, "ramen restaurants in College Park open tonight", searcher.lastQuery)

	assert.Equal(t, "ramen restaurants in College Park open tonight", result.Query)
	assert.Equal(t, "Found a few spots.", result.AIResponseText)
	require.Len(t, result.Businesses, 1)
	assert.Equal(t, "Noodle House", result.Businesses[0].Name)
}

func TestSearchByImageBlockedMakesNoPaidCalls(t *testing.T) {
	gate := &fakeGate{verdict: moderation.Verdict{
		Allowed:  false,
		Reason:   "Explicit content.",
		Category: moderation.CategoryAdultOrNudity,
	}}
	model := &fakeModel{}
	searcher := &fakeSearcher{}

	svc := service.NewSearchService(gate, model, searcher, discardLogger())
	result, err := svc.SearchByImage(context.Background(), imageInput())

	require.Error(t, err)
	assert.Nil(t, result)

	var blocked *service.BlockedError
	require.True(t, errors.As(err, &blocked))
	assert.Equal(t, "Explicit content.", blocked.Reason)
	assert.Equal(t, moderation.CategoryAdultOrNudity, blocked.Category)

	assert.Equal(t, 0, model.imageCalls)
	assert.Equal(t, 0, searcher.calls)
}

func TestSearchByImageSynthesisFailureStopsPipeline(t *testing.T) {
	gate := allowedGate()
	model := &fakeModel{imageErr: errors.New("model unavailable")}
	searcher := &fakeSearcher{}

	svc := service.NewSearchService(gate, model, searcher, discardLogger())
	_, err := svc.SearchByImage(context.Background(), imageInput())

	require.Error(t, err)
	assert.Equal(t, 0, searcher.calls)
}

func TestSearchByImageUpstreamErrorPassesThrough(t *testing.T) {
	gate := allowedGate()
	model := &fakeModel{imageQuery: "anything"}
	searcher := &fakeSearcher{err: &yelp.APIError{
		StatusCode: 502,
		Body:       `{"error":"overloaded"}`,
	}}

	svc := service.NewSearchService(gate, model, searcher, discardLogger())
	_, err := svc.SearchByImage(context.Background(), imageInput())

	require.Error(t, err)

	var apiErr *yelp.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 502, apiErr.StatusCode)
	assert.Equal(t, `{"error":"overloaded"}`, apiErr.Body)
}

func TestSearchByImageEmptyQueryStillSearches(t *testing.T) {
	gate := allowedGate()
	model := &fakeModel{imageQuery: ""}
	searcher := &fakeSearcher{raw: map[string]any{}}

	svc := service.NewSearchService(gate, model, searcher, discardLogger())
	result, err := svc.SearchByImage(context.Background(), imageInput())
	require.NoError(t, err)

	assert.Equal(t, 1, searcher.calls)
	assert.Equal(t, "", searcher.lastQuery)
	assert.NotNil(t, result.Businesses)
}

func TestSearchByCaptionSkipsGate(t *testing.T) {
	gate := &fakeGate{}
	model := &fakeModel{captionQuery: "rooftop cocktail bars in College Park"}
	searcher := &fakeSearcher{raw: map[string]any{}}

	svc := service.NewSearchService(gate, model, searcher, discardLogger())
	result, err := svc.SearchByCaption(context.Background(), service.CaptionSearchInput{
		Caption:   "golden hour drinks on a rooftop",
		UserQuery: "somewhere like this for Friday",
		Context:   gemini.SearchContext{Location: "College Park, Maryland"},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, gate.calls)
	assert.Equal(t, 1, model.captionCalls)
	assert.Equal(t, 1, searcher.calls)
	assert.Equal(t, "rooftop cocktail bars in College Park", result.Query)
}

func TestSearchByCaptionSynthesisFailureStopsPipeline(t *testing.T) {
	gate := &fakeGate{}
	model := &fakeModel{captionErr: errors.New("model unavailable")}
	searcher := &fakeSearcher{}

	svc := service.NewSearchService(gate, model, searcher, discardLogger())
	_, err := svc.SearchByCaption(context.Background(), service.CaptionSearchInput{
		Caption:   "a caption",
		UserQuery: "a question",
	})

	require.Error(t, err)
	assert.Equal(t, 0, searcher.calls)
}
