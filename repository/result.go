/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package repository

// OperationResult reports the outcome of a snapshot mutation. A failed
// result is an expected outcome, not an error.
type OperationResult struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Ok returns a successful result
func Ok() OperationResult {
	return OperationResult{Success: true}
}

// Fail returns a failed result carrying message
func Fail(message string) OperationResult {
	return OperationResult{ErrorMessage: message}
}

func (r OperationResult) String() string {
	if r.Success {
		return "ok"
	}
	return r.ErrorMessage
}
