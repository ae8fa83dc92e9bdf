package soundraw

import "fmt"

// APIError is a non-2xx answer from Soundraw
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Soundraw API error: %d - %s", e.Status, e.Body)
}

// ComposeRequestError is returned when a compose submission is rejected
type ComposeRequestError APIError

func (e *ComposeRequestError) Error() string { return (*APIError)(e).Error() }

// VariationRequestError is returned when a variation submission is rejected
type VariationRequestError APIError

func (e *VariationRequestError) Error() string { return (*APIError)(e).Error() }

// PollError is returned when fetching a job result is rejected
type PollError APIError

func (e *PollError) Error() string { return (*APIError)(e).Error() }

type GenerationFailedError struct {
	RequestID string
}

func (e *GenerationFailedError) Error() string {
	return "Soundraw generation failed for request: " + e.RequestID
}

type TimeoutError struct {
	RequestID string
}

func (e *TimeoutError) Error() string {
	return "Timeout waiting for Soundraw result: " + e.RequestID
}

// MissingResultError means a response carried no result payload
type MissingResultError struct{}

func (e *MissingResultError) Error() string {
	return "No result in Soundraw response"
}
