package model

import (
	"errors"
	"fmt"
)

// ErrorCode classifies engine failures for callers.
type ErrorCode string

const (
	CodeNotFound          ErrorCode = "not_found"
	CodeInvalidReason     ErrorCode = "invalid_reason"
	CodeInvalidTransition ErrorCode = "invalid_transition"
	CodeInvalidComparison ErrorCode = "invalid_comparison"
	CodeForbidden         ErrorCode = "forbidden"
	CodeConflict          ErrorCode = "conflict"
)

// Error is a classified engine error. It carries the identifiers of whatever
// the caller referenced so surfaces can render an actionable message.
type Error struct {
	Code       ErrorCode
	Message    string
	DocumentID string
	VersionID  string
	Field      string
}

func (e *Error) Error() string {
	switch {
	case e.VersionID != "":
		return fmt.Sprintf("%s: %s (version %s)", e.Code, e.Message, e.VersionID)
	case e.DocumentID != "":
		return fmt.Sprintf("%s: %s (document %s)", e.Code, e.Message, e.DocumentID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsCode reports whether err is an engine Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// NotFoundDocument builds a NotFound error for a missing document.
func NotFoundDocument(documentID string) *Error {
	return &Error{Code: CodeNotFound, Message: "document not found", DocumentID: documentID}
}

// NotFoundVersion builds a NotFound error for a missing or deleted snapshot.
func NotFoundVersion(versionID string) *Error {
	return &Error{Code: CodeNotFound, Message: "version not found", VersionID: versionID}
}

// InvalidReason builds an error for a rejected rollback justification.
func InvalidReason(msg string) *Error {
	return &Error{Code: CodeInvalidReason, Message: msg, Field: "reason"}
}

// InvalidTransition builds an error for an illegal status change.
func InvalidTransition(versionID string, from, to VersionStatus) *Error {
	return &Error{
		Code:      CodeInvalidTransition,
		Message:   fmt.Sprintf("cannot transition from %s to %s", from, to),
		VersionID: versionID,
		Field:     "status",
	}
}

// InvalidComparison builds an error for comparing snapshots across documents.
func InvalidComparison(msg string) *Error {
	return &Error{Code: CodeInvalidComparison, Message: msg}
}

// ForbiddenDelete builds an error for deleting a published snapshot.
func ForbiddenDelete(versionID string) *Error {
	return &Error{
		Code:      CodeForbidden,
		Message:   "cannot delete a published version; publish a newer version first",
		VersionID: versionID,
	}
}

// VersionConflict builds an error for an unresolved version-number race.
func VersionConflict(documentID string) *Error {
	return &Error{
		Code:       CodeConflict,
		Message:    "concurrent version allocation, retry the request",
		DocumentID: documentID,
	}
}
