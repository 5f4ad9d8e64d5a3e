package draft_api_client

const (
	// API Endpoints
	DraftsEndpoint = "/api/v1/drafts"
	DriftEndpoint  = "/api/v1/drafts/drift"

	// Headers
	RequestIDHeader = "X-Request-ID"
)
