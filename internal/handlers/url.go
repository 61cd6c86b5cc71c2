package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener-go/internal/events"
	"github.com/serroba/url-shortener-go/internal/messaging"
	"github.com/serroba/url-shortener-go/internal/middleware"
	"github.com/serroba/url-shortener-go/internal/shortener"
	"go.uber.org/zap"
)

// URLHandler handles URL shortening operations.
type URLHandler struct {
	strategies          map[Strategy]shortener.Strategy
	resolver            *shortener.Resolver
	store               shortener.Repository
	baseURL             string
	defaultStrategy     Strategy
	publishURLShortened messaging.Publish[events.URLShortened]
	logger              *zap.Logger
}

// NewURLHandler creates a new URL handler with injected strategies.
func NewURLHandler(
	store shortener.Repository,
	baseURL string,
	strategies map[Strategy]shortener.Strategy,
	defaultStrategy Strategy,
	publishURLShortened messaging.Publish[events.URLShortened],
	logger *zap.Logger,
) *URLHandler {
	if defaultStrategy == "" {
		defaultStrategy = StrategyToken
	}

	return &URLHandler{
		strategies:          strategies,
		resolver:            shortener.NewResolver(store),
		store:               store,
		baseURL:             strings.TrimSuffix(baseURL, "/"),
		defaultStrategy:     defaultStrategy,
		publishURLShortened: publishURLShortened,
		logger:              logger,
	}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	strategyName := req.Body.Strategy
	if strategyName == "" {
		strategyName = h.defaultStrategy
	}

	strategy, ok := h.strategies[strategyName]
	if !ok {
		return nil, huma.Error400BadRequest("invalid strategy: must be 'token' or 'hash'")
	}

	mapping, err := strategy.Shorten(ctx, req.Body.OriginalURL)
	if err != nil {
		return nil, h.toHTTPError(ctx, err)
	}

	meta := middleware.RequestMetaFromContext(ctx)
	event := events.NewURLShortened(mapping, string(strategyName), meta.ClientIP)

	if err := h.publishURLShortened(ctx, event); err != nil {
		h.logger.Error("failed to publish url shortened event",
			zap.String("code", event.Code),
			zap.String("request_id", meta.RequestID),
			zap.Error(err),
		)
	}

	resp := &CreateShortURLResponse{Status: http.StatusCreated}
	resp.Body = h.toBody(mapping)
	resp.Location = resp.Body.ShortURL

	return resp, nil
}

func (h *URLHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	originalURL, err := h.resolver.Resolve(ctx, req.Code)
	if err != nil {
		return nil, h.toHTTPError(ctx, err)
	}

	return &RedirectResponse{
		Status:   http.StatusMovedPermanently,
		Location: originalURL,
	}, nil
}

func (h *URLHandler) GetMapping(ctx context.Context, req *GetMappingRequest) (*GetMappingResponse, error) {
	mapping, err := h.resolver.Lookup(ctx, req.Code)
	if err != nil {
		return nil, h.toHTTPError(ctx, err)
	}

	return &GetMappingResponse{Body: h.toBody(mapping)}, nil
}

func (h *URLHandler) ListMappings(ctx context.Context, req *ListMappingsRequest) (*ListMappingsResponse, error) {
	mappings, err := h.store.List(ctx, req.Limit)
	if err != nil {
		return nil, h.toHTTPError(ctx, err)
	}

	resp := &ListMappingsResponse{Body: make([]MappingBody, 0, len(mappings))}

	for _, m := range mappings {
		resp.Body = append(resp.Body, h.toBody(m))
	}

	return resp, nil
}

func (h *URLHandler) toBody(mapping *shortener.Mapping) MappingBody {
	return MappingBody{
		ID:          mapping.ID,
		OriginalURL: mapping.OriginalURL,
		ShortCode:   string(mapping.Code),
		ShortURL:    fmt.Sprintf("%s/%s", h.baseURL, mapping.Code),
		CreatedAt:   mapping.CreatedAt,
	}
}

func (h *URLHandler) toHTTPError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, shortener.ErrInvalidURL):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound("short url not found")
	case errors.Is(err, shortener.ErrExhaustedRetries):
		return huma.Error503ServiceUnavailable("could not allocate a short code, try again")
	default:
		h.logger.Error("request failed",
			zap.String("request_id", middleware.RequestIDFromContext(ctx)),
			zap.Error(err),
		)

		return huma.Error500InternalServerError("internal error")
	}
}
