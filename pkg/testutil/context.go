package testutil

import (
	"net/http"

	"evidentia/pkg/domain"
	"evidentia/pkg/requestcontext"
)

// WithActorID adds an actor to the request context, as the metadata
// middleware does for a valid X-Actor-ID header. Invalid ids are ignored.
func WithActorID(req *http.Request, actorID string) *http.Request {
	if parsed, err := domain.ParseProfileID(actorID); err == nil {
		return req.WithContext(requestcontext.WithActorID(req.Context(), parsed))
	}
	return req
}

// WithRequestID adds a request id to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
