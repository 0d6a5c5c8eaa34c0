package bgg

import "net/http"

// OutcomeKind classifies the result of a single HTTP attempt
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomePending
	OutcomeRateLimited
	OutcomeServerError
	OutcomeClientError
	OutcomeMalformed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomePending:
		return "pending"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeServerError:
		return "server_error"
	case OutcomeClientError:
		return "client_error"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Outcome is produced once per HTTP attempt. Body is only set on success.
type Outcome struct {
	Kind       OutcomeKind
	StatusCode int
	Body       []byte
}

// Retryable reports whether the retry loop should try the same query again
func (o Outcome) Retryable() bool {
	switch o.Kind {
	case OutcomePending, OutcomeRateLimited, OutcomeServerError:
		return true
	default:
		return false
	}
}

// Classify maps an HTTP status code to an outcome
func Classify(statusCode int, body []byte) Outcome {
	switch {
	case statusCode == http.StatusOK:
		return Outcome{Kind: OutcomeSuccess, StatusCode: statusCode, Body: body}
	case statusCode == http.StatusAccepted:
		return Outcome{Kind: OutcomePending, StatusCode: statusCode}
	case statusCode == http.StatusTooManyRequests:
		return Outcome{Kind: OutcomeRateLimited, StatusCode: statusCode}
	case statusCode >= 500 && statusCode <= 599:
		return Outcome{Kind: OutcomeServerError, StatusCode: statusCode}
	case statusCode >= 400 && statusCode <= 499:
		return Outcome{Kind: OutcomeClientError, StatusCode: statusCode}
	default:
		return Outcome{Kind: OutcomeMalformed, StatusCode: statusCode}
	}
}
