// Package generation wraps language-model providers behind a deliberately
// fail-soft contract: a Client always produces a non-empty answer string.
// Provider failures are decoded into a tagged Outcome and mapped to one of
// three distinguishable fallback strings instead of an error, so the end
// user always receives a response and the orchestrator can record exactly
// what the user saw.
package generation

import "context"

// Outcome tags the result of a generation call.
type Outcome int

const (
	// OutcomeSuccess means the provider returned usable text.
	OutcomeSuccess Outcome = iota
	// OutcomeTransportFailure means the provider was unreachable (network
	// error, timeout, cancelled context).
	OutcomeTransportFailure
	// OutcomeServiceError means the provider answered with a non-2xx
	// status.
	OutcomeServiceError
	// OutcomeMalformed means the provider answered 2xx but the response
	// was missing the expected text.
	OutcomeMalformed
)

// String returns the outcome name for logging.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTransportFailure:
		return "transport_failure"
	case OutcomeServiceError:
		return "service_error"
	case OutcomeMalformed:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Fallback strings, one per failure outcome. They are user-visible and
// recorded in session history in place of a model answer.
const (
	FallbackTransport = "I'm having trouble reaching the language model right now. Please try again in a moment."
	FallbackService   = "The language model service returned an error. Please try again later."
	FallbackMalformed = "I received an unexpected reply from the language model and couldn't read it. Please try again."
)

// Request carries the three inputs of a generation call: the fixed system
// instruction, the assembled context block (may be empty) and the raw user
// question.
type Request struct {
	Instruction string
	Context     string
	Question    string
}

// Response is the decoded result. Text is always non-empty: the model's
// answer on success, the matching fallback string otherwise. Status holds
// the HTTP status for OutcomeServiceError, zero otherwise. Err retains the
// underlying cause for logging; it is never shown to the user.
type Response struct {
	Text    string
	Outcome Outcome
	Status  int
	Err     error
}

// Client is the generation-service contract consumed by the orchestrator.
type Client interface {
	Generate(ctx context.Context, req Request) Response
}

// fallbackText maps a failure outcome to its user-visible string.
func fallbackText(o Outcome) string {
	switch o {
	case OutcomeServiceError:
		return FallbackService
	case OutcomeMalformed:
		return FallbackMalformed
	default:
		return FallbackTransport
	}
}

// failure builds a fallback Response for the given outcome.
func failure(o Outcome, status int, err error) Response {
	return Response{Text: fallbackText(o), Outcome: o, Status: status, Err: err}
}

// userContent renders the context block and question into the single user
// message sent to the provider.
func userContent(req Request) string {
	if req.Context == "" {
		return "Question: " + req.Question
	}
	return "Context:\n" + req.Context + "\n\nQuestion: " + req.Question
}
