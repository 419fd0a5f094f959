// Package core provides the business logic for synthetic data generation.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// Error codes are grouped by category:
//
// # Generation Errors (GEN001-GEN099)
//
//	GEN001 - Invalid count: Record count must be a whole number of at least 1
//	         Patterns: "invalid record count"
//
//	GEN002 - Too many records: Record count exceeds the configured maximum
//	         Patterns: "too many records"
//
//	GEN003 - System busy: Too many generation requests in progress
//	         Patterns: "too many concurrent generations"
//
//	GEN004 - Empty pool: A value pool had no members
//	         Patterns: "empty pool"
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - Invalid schema: Schema text is not valid JSON/YAML or not a mapping of strings
//	         Patterns: "invalid schema syntax"
//
// # Category and Format Errors (CAT001, FMT001)
//
//	CAT001 - Unknown category
//	         Patterns: "unknown category"
//
//	FMT001 - Unknown format
//	         Patterns: "unknown format"
//
// # History Errors (HIS001-HIS099)
//
//	HIS001 - History entry not found
//	         Patterns: "history entry not found"
//
//	HIS002 - Not replayable: Custom schema runs cannot be regenerated from history
//	         Patterns: "not replayable"
//
// # Request and Storage Errors (REQ001-REQ003, DB001-DB003)
//
//	REQ001 - Request was cancelled ("context canceled")
//	REQ002 - Request timed out ("context deadline exceeded")
//	REQ003 - Request body could not be read ("malformed request")
//	DB001  - Storage unavailable ("connection refused")
//	DB002  - Storage connection interrupted ("connection reset")
//	DB003  - Storage timeout ("timeout")
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests ("rate limit")
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check application logs for the
// original technical error.
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns come first.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Generation Errors (GEN001-GEN004)
	// =========================================================================
	{
		pattern: "invalid record count",
		msg: UserMessage{
			Message: "Please enter a valid number of records",
			Action:  "Use a whole number of at least 1",
			Code:    "GEN001",
		},
	},
	{
		pattern: "too many records",
		msg: UserMessage{
			Message: "Requested record count is too large",
			Action:  "Request fewer records per run",
			Code:    "GEN002",
		},
	},
	{
		pattern: "too many concurrent generations",
		msg: UserMessage{
			Message: "System is busy generating other datasets",
			Action:  "Please wait a moment and try again",
			Code:    "GEN003",
		},
	},
	{
		pattern: "empty pool",
		msg: UserMessage{
			Message: "A value pool has no entries",
			Action:  "Please contact support",
			Code:    "GEN004",
		},
	},

	// =========================================================================
	// Schema Errors (SCH001)
	// =========================================================================
	{
		pattern: "invalid schema syntax",
		msg: UserMessage{
			Message: "Invalid JSON schema",
			Action:  `Use an object of field names to specs, e.g. {"age": "number|18,65"}`,
			Code:    "SCH001",
		},
	},

	// =========================================================================
	// Category and Format Errors (CAT001, FMT001)
	// =========================================================================
	{
		pattern: "unknown category",
		msg: UserMessage{
			Message: "Unknown data category",
			Action:  "Choose personal, financial, business, geographic or internet",
			Code:    "CAT001",
		},
	},
	{
		pattern: "unknown format",
		msg: UserMessage{
			Message: "Unknown output format",
			Action:  "Choose json, csv, xml or sql",
			Code:    "FMT001",
		},
	},

	// =========================================================================
	// History Errors (HIS001)
	// =========================================================================
	{
		pattern: "history entry not found",
		msg: UserMessage{
			Message: "History entry not found",
			Action:  "The entry may have been cleared. Refresh the history list",
			Code:    "HIS001",
		},
	},
	{
		pattern: "not replayable",
		msg: UserMessage{
			Message: "This run cannot be replayed",
			Action:  "Paste the schema again and generate from the custom tab",
			Code:    "HIS002",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ003)
	// Must precede the storage "timeout" pattern.
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Request fewer records or try again later",
			Code:    "REQ002",
		},
	},

	{
		pattern: "malformed request",
		msg: UserMessage{
			Message: "Request could not be read",
			Action:  "Send a JSON object or form with category, count and format",
			Code:    "REQ003",
		},
	},

	// =========================================================================
	// Storage Errors (DB001-DB003)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to history storage",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "History storage connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB003",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or the ERR000 fallback.
//
// Example:
//
//	msg := MapError(fmt.Errorf("parse: %w", ErrInvalidSchemaSyntax))
//	// msg.Code == "SCH001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
