// Package handler exposes the search pipeline over HTTP.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dishpatch/dishpatch/internal/config"
	"github.com/dishpatch/dishpatch/internal/gemini"
	"github.com/dishpatch/dishpatch/internal/service"
	"github.com/dishpatch/dishpatch/internal/yelp"
)

// maxImageSize bounds uploads before any bytes reach the pipeline.
const maxImageSize = 10 << 20

// fallbackImageMIME is assumed when neither the part header nor content
// sniffing identifies the upload.
const fallbackImageMIME = "image/jpeg"

// SearchRunner is the slice of the pipeline service the handlers need.
type SearchRunner interface {
	SearchByImage(ctx context.Context, in service.ImageSearchInput) (*yelp.SearchResult, error)
	SearchByCaption(ctx context.Context, in service.CaptionSearchInput) (*yelp.SearchResult, error)
}

var _ SearchRunner = (*service.SearchService)(nil)

// SearchHandler serves the image and caption search endpoints.
type SearchHandler struct {
	service  SearchRunner
	defaults config.SearchConfig
	log      *slog.Logger
}

// NewSearchHandler wires a handler backed by the pipeline service. The
// configured search defaults fill in the context form fields a caller omits.
func NewSearchHandler(svc SearchRunner, defaults config.SearchConfig, log *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service:  svc,
		defaults: defaults,
		log:      log.With("component", "search_handler"),
	}
}

// SearchImage handles POST /search-image requests.
func (h *SearchHandler) SearchImage(c echo.Context) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing image file")
	}

	userQuery := strings.TrimSpace(c.FormValue("user_query"))
	if userQuery == "" {
		return Error(c, http.StatusBadRequest, "user_query is required")
	}

	if fileHeader.Size > maxImageSize {
		return Error(c, http.StatusRequestEntityTooLarge, "image exceeds the upload limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open image")
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to read image")
	}

	result, err := h.service.SearchByImage(c.Request().Context(), service.ImageSearchInput{
		ImageData: imageData,
		MIMEType:  imageMIMEType(fileHeader.Header.Get("Content-Type"), imageData),
		UserQuery: userQuery,
		Context:   h.searchContext(c),
	})
	if err != nil {
		return h.respondSearchError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// SearchCaption handles POST /search-caption requests. Captions skip the
// moderation gate, so this route goes straight to synthesis.
func (h *SearchHandler) SearchCaption(c echo.Context) error {
	caption := strings.TrimSpace(c.FormValue("caption"))
	if caption == "" {
		return Error(c, http.StatusBadRequest, "caption is required")
	}

	userQuery := strings.TrimSpace(c.FormValue("user_query"))
	if userQuery == "" {
		return Error(c, http.StatusBadRequest, "user_query is required")
	}

	result, err := h.service.SearchByCaption(c.Request().Context(), service.CaptionSearchInput{
		Caption:   caption,
		UserQuery: userQuery,
		Context:   h.searchContext(c),
	})
	if err != nil {
		return h.respondSearchError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// Health handles GET /health requests.
func (h *SearchHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SearchHandler) searchContext(c echo.Context) gemini.SearchContext {
	sc := gemini.SearchContext{
		Location:  strings.TrimSpace(c.FormValue("Location")),
		Latitude:  strings.TrimSpace(c.FormValue("Latitude")),
		Longitude: strings.TrimSpace(c.FormValue("Longitude")),
		Date:      strings.TrimSpace(c.FormValue("Date")),
		Time:      strings.TrimSpace(c.FormValue("Time")),
	}

	if sc.Location == "" {
		sc.Location = h.defaults.Location
	}
	if sc.Date == "" {
		sc.Date = h.defaults.Date
	}
	if sc.Time == "" {
		sc.Time = h.defaults.Time
	}

	return sc
}

func (h *SearchHandler) respondSearchError(c echo.Context, err error) error {
	var blocked *service.BlockedError
	if errors.As(err, &blocked) {
		return Blocked(c, blocked.Reason, blocked.Category)
	}

	var apiErr *yelp.APIError
	if errors.As(err, &apiErr) {
		return Error(c, apiErr.StatusCode, apiErr.Body)
	}

	h.log.ErrorContext(c.Request().Context(), "Search request failed", "error", err)

	return Error(c, http.StatusInternalServerError, err.Error())
}

// imageMIMEType resolves the MIME type for an upload. The part header wins
// when it names a concrete type; otherwise the bytes are sniffed.
func imageMIMEType(declared string, imageData []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}

	if detected := http.DetectContentType(imageData); detected != "application/octet-stream" {
		return detected
	}

	return fallbackImageMIME
}
