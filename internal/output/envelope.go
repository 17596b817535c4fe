//nolint:tagliatelle
package output

import (
	"errors"

	"github.com/farcloser/tactus"
)

// Envelope is the error body returned to API clients.
type Envelope struct {
	ErrorCode   string         `json:"error_code"`
	UserMessage string         `json:"user_message"`
	HowToFix    []string       `json:"how_to_fix"`
	DebugID     string         `json:"debug_id,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}

// ErrorEnvelope builds the client-facing body for err. Analysis failures keep their message and
// remediation. Anything else is reported as an internal error without leaking its text.
func ErrorEnvelope(err error, debugID string) Envelope {
	var ae *tactus.AnalysisError
	if errors.As(err, &ae) {
		env := Envelope{
			ErrorCode:   ae.Code,
			UserMessage: ae.Message,
			HowToFix:    ae.HowToFix,
			DebugID:     debugID,
			Details:     ae.Details,
		}

		if len(ae.Passes) > 0 {
			if env.Details == nil {
				env.Details = map[string]any{}
			}

			env.Details["passes"] = PassesToMap(ae.Passes)
		}

		return env
	}

	return Envelope{
		ErrorCode:   tactus.CodeInternal,
		UserMessage: "Something went wrong while processing the recording.",
		HowToFix:    []string{"Please try again."},
		DebugID:     debugID,
	}
}

// Simple builds an envelope for failures that happen outside the analysis itself.
func Simple(code, message string, howToFix ...string) Envelope {
	if howToFix == nil {
		howToFix = []string{}
	}

	return Envelope{ErrorCode: code, UserMessage: message, HowToFix: howToFix}
}
