package handlers

import "time"

// Strategy names a shortening policy.
type Strategy string

const (
	StrategyToken Strategy = "token"
	StrategyHash  Strategy = "hash"
)

// CreateShortURLRequest is the request body for creating a short URL.
type CreateShortURLRequest struct {
	Body struct {
		OriginalURL string   `doc:"The URL to shorten" example:"https://example.com/very/long/path" json:"original_url"`
		Strategy    Strategy `doc:"token always creates a new code, hash returns the existing code for an identical URL" enum:"token,hash" json:"strategy,omitempty" required:"false"`
	}
}

// MappingBody is the JSON representation of a mapping.
type MappingBody struct {
	ID          int64     `doc:"Surrogate id"       example:"1"                                  json:"id"`
	OriginalURL string    `doc:"The original URL"   example:"https://example.com/very/long/path" json:"original_url"`
	ShortCode   string    `doc:"The short code"     example:"aZ3kP9q"                            json:"short_code"`
	ShortURL    string    `doc:"The full short URL" example:"http://localhost:8888/aZ3kP9q"      json:"short_url"`
	CreatedAt   time.Time `doc:"Creation time"                                                   json:"created_at"`
}

// CreateShortURLResponse is the response for a successfully created short URL.
type CreateShortURLResponse struct {
	Status   int
	Location string `doc:"The short URL location" header:"Location"`
	Body     MappingBody
}

// RedirectRequest is the request for redirecting a short URL.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"aZ3kP9q" path:"code"`
}

// RedirectResponse carries no body; the Location header does the work.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// GetMappingRequest looks up a mapping by code.
type GetMappingRequest struct {
	Code string `doc:"The short code" example:"aZ3kP9q" path:"code"`
}

// GetMappingResponse returns a single mapping without redirecting.
type GetMappingResponse struct {
	Body MappingBody
}

// ListMappingsRequest pages through recent mappings.
type ListMappingsRequest struct {
	Limit int `default:"50" doc:"Maximum number of mappings" maximum:"100" minimum:"1" query:"limit"`
}

// ListMappingsResponse is a bare JSON array of mappings, newest first.
type ListMappingsResponse struct {
	Body []MappingBody
}
