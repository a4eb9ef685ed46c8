package client

import (
	"encoding/json"
	"fmt"
)

// Response is the uniform envelope returned by every operation.
// Callers branch on Success rather than on Go errors: expected failure
// modes (invalid input, network error, server error) are carried in
// Error, never raised.
type Response struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
	Error      *ErrorDetail    `json:"error,omitempty"`
}

// Pagination describes the page window of a list response.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ErrorDetail holds structured failure information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// DecodeData unmarshals the envelope's data payload into v.
func (r *Response) DecodeData(v any) error {
	if !r.Success {
		return fmt.Errorf("cannot decode data of failed response (%s)", r.errorCode())
	}
	if len(r.Data) == 0 {
		return fmt.Errorf("response has no data payload")
	}
	return json.Unmarshal(r.Data, v)
}

func (r *Response) errorCode() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Code
}

// failure builds an error envelope.
func failure(code, message string, details any) *Response {
	return &Response{
		Success: false,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
