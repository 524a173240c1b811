// Package validation provides pure validation functions for API handlers.
//
// This package contains the functional core logic for turning raw wheel
// specification requests into records that are safe to persist. All
// functions are pure (no I/O, no side effects); the current time is passed
// in by the caller.
//
// # Functions
//
//   - ValidateFormNumber: Normalize and check the WHEEL-<digits> format
//   - ValidateSubmittedDate: Reject submission dates in the future
//   - ValidateFields: Require every measurement attribute
//   - ValidateLength: Enforce character bounds
//   - ValidateCreate: Run every check and collect the violations
//
// # Usage
//
// The API handlers validate requests before touching the store:
//
//	spec, err := validation.ValidateCreate(input, time.Now())
//	if err != nil {
//	    // Return 400 Bad Request with the ValidationErrors
//	}
package validation
