package core

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Sentinel errors shared across the extraction/analysis pipeline.
var (
	// ErrUnsupportedFormat indicates a document kind we cannot extract.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrDecodeFailure indicates a corrupt or unreadable byte stream.
	ErrDecodeFailure = errors.New("could not decode document content")

	// ErrNotFound indicates the remote resource does not exist.
	ErrNotFound = errors.New("remote resource not found")

	// ErrUnauthorized indicates invalid or expired credentials at the provider.
	ErrUnauthorized = errors.New("unauthorized by remote provider")

	// ErrRateLimited indicates the provider rejected the call for quota reasons.
	// Transient; callers may retry after backoff.
	ErrRateLimited = errors.New("rate limited by remote provider")

	// ErrRemoteUnavailable indicates the provider could not be reached.
	ErrRemoteUnavailable = errors.New("remote provider unavailable")

	// ErrCredentialUnavailable indicates the user has no usable Google
	// token pair stored.
	ErrCredentialUnavailable = errors.New("no valid credential for user")

	// ErrEmptyCompletion indicates the language model returned no usable
	// text (e.g. all candidates were safety-blocked). Distinct from the
	// sentinel summary: nothing may be cached for this outcome.
	ErrEmptyCompletion = errors.New("model returned no content")
)

// ExtractionError wraps a failure to turn one remote document into text.
type ExtractionError struct {
	DocumentID string
	Err        error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract document %s: %v", e.DocumentID, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// AnalysisError wraps a failure to summarize one document. The underlying
// cause may be an ExtractionError or a language-model failure.
type AnalysisError struct {
	DocumentID string
	Err        error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analyze document %s: %v", e.DocumentID, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// WrapGoogleError converts a googleapi.Error into one of the sentinel
// errors above so callers can branch without importing googleapi.
func WrapGoogleError(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	switch gerr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, gerr.Message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, gerr.Message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, gerr.Message)
	default:
		if gerr.Code >= 500 {
			return fmt.Errorf("%w: status %d", ErrRemoteUnavailable, gerr.Code)
		}
		return err
	}
}
