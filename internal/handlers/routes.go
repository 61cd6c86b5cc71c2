package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers all URL shortener routes.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-short-url",
		Method:        http.MethodPost,
		Path:          "/shorten",
		Summary:       "Create short URL",
		Description:   "Creates a shortened URL using the specified strategy (token or hash).",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusServiceUnavailable},
	}, urlHandler.CreateShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "list-mappings",
		Method:      http.MethodGet,
		Path:        "/api/urls",
		Summary:     "List short URLs",
		Description: "Lists the most recently created mappings, newest first.",
		Tags:        []string{"URLs"},
	}, urlHandler.ListMappings)

	huma.Register(api, huma.Operation{
		OperationID: "get-mapping",
		Method:      http.MethodGet,
		Path:        "/api/urls/{code}",
		Summary:     "Get short URL",
		Description: "Returns the mapping for a short code without redirecting.",
		Tags:        []string{"URLs"},
		Errors:      []int{http.StatusNotFound},
	}, urlHandler.GetMapping)

	huma.Register(api, huma.Operation{
		OperationID:   "redirect",
		Method:        http.MethodGet,
		Path:          "/{code}",
		Summary:       "Redirect to original URL",
		Description:   "Redirects to the original URL associated with the short code.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusMovedPermanently,
		Errors:        []int{http.StatusNotFound},
	}, urlHandler.RedirectToURL)
}
