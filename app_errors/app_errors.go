package app_errors

import (
	"errors"

	"github.com/samber/oops"
)

// Error kinds surfaced to clients in the {error_kind, message} body.
const (
	CodeValidation            = "VALIDATION"
	CodeInvalidCredentials    = "AUTH_INVALID_CREDENTIALS"
	CodeDuplicateAccount      = "AUTH_DUPLICATE_ACCOUNT"
	CodeWeakPassword          = "AUTH_WEAK_PASSWORD"
	CodeNotFound              = "NOT_FOUND"
	CodeConflictExhausted     = "CONFLICT_EXHAUSTED"
	CodeDependencyUnavailable = "DEPENDENCY_UNAVAILABLE"
)

func Validation(format string, args ...any) error {
	return oops.Code(CodeValidation).Errorf(format, args...)
}

func InvalidCredentials(format string, args ...any) error {
	return oops.Code(CodeInvalidCredentials).Errorf(format, args...)
}

func DuplicateAccount(format string, args ...any) error {
	return oops.Code(CodeDuplicateAccount).Errorf(format, args...)
}

func WeakPassword(format string, args ...any) error {
	return oops.Code(CodeWeakPassword).Errorf(format, args...)
}

func NotFound(format string, args ...any) error {
	return oops.Code(CodeNotFound).Errorf(format, args...)
}

func ConflictExhausted(format string, args ...any) error {
	return oops.Code(CodeConflictExhausted).Errorf(format, args...)
}

func DependencyUnavailable(err error, format string, args ...any) error {
	return oops.Code(CodeDependencyUnavailable).Wrapf(err, format, args...)
}

// Kind returns the error kind of a coded error, or "" for plain errors.
func Kind(err error) string {
	var oopsErr oops.OopsError
	if errors.As(err, &oopsErr) {
		code, _ := oopsErr.Code().(string)
		return code
	}
	return ""
}
