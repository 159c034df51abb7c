package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/iksnae/ragchat/internal"
	"github.com/iksnae/ragchat/internal/api"
)

// Hint returns a short suggestion for resolving err, or "" when there is
// nothing more useful to say than the error itself.
func (s *Shell) Hint(err error) string {
	return HintFor(err, s.apiURL)
}

// HintFor is Hint without a Shell
func HintFor(err error, apiURL string) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return "The license key was rejected and has been cleared. Run `ragchat license set <key>` with a valid key."
	case errors.Is(err, ErrLicenseRequired):
		return "Run `ragchat license set <key>` or set RAGCHAT_LICENSE_KEY."
	case errors.Is(err, api.ErrNetwork):
		if apiURL == "" {
			return "Could not reach the backend. Check that it is running and that api_url is correct."
		}
		return fmt.Sprintf("Could not reach the backend at %s. Check that it is running and that api_url (or --api-url) points to it. The backend must also accept requests from this client.", apiURL)
	case errors.Is(err, internal.ErrSessionNotFound):
		return "Run `ragchat session list` to see the available sessions."
	case errors.Is(err, ErrNoActiveSession):
		return "Run `ragchat session new` or `ragchat session use <id>` first."
	case errors.Is(err, ErrEmptyResponse):
		return "The backend did not produce an answer. Try rephrasing the question or check the backend logs."
	case internal.IsValidationError(err):
		return "Check the input and try again."
	}

	if code := api.StatusCode(err); code >= http.StatusInternalServerError {
		return "The backend reported an internal error. Check the backend logs and try again."
	}
	return ""
}
