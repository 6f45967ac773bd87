package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrProjectNotFound is returned when a referenced project does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrDuplicate is returned when a membership edge or unique user field already exists.
	ErrDuplicate = errors.New("duplicate")
	// ErrLastOwner is returned when a removal would leave a project without owners.
	ErrLastOwner = errors.New("last owner")
	// ErrInvalidCredentials is returned when login credentials do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden is returned when the caller may not act on a resource.
	ErrForbidden = errors.New("forbidden")
	// ErrCredentialNotFound is returned when a user has no link to a provider.
	ErrCredentialNotFound = errors.New("credential not found")
)

// Kind is the category label carried by a DomainError.
type Kind string

const (
	KindNotFound     Kind = "Not Found"
	KindDuplicate    Kind = "Duplicate"
	KindLastOwner    Kind = "Last Owner"
	KindUnauthorized Kind = "Unauthorized"
	KindForbidden    Kind = "Forbidden"
	KindInternal     Kind = "Internal Server Error"
)

// DomainError is a typed failure with a human readable message and the
// transport status it maps to.
type DomainError struct {
	Kind    Kind
	Message string
	Status  int
	Code    string
	cause   error
}

func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel so callers can use errors.Is.
func (e *DomainError) Unwrap() error {
	return e.cause
}

// UserNotFound builds the failure for a missing user id or username.
func UserNotFound(idOrUsername string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("User with %s could not be found.", idOrUsername),
		Status:  http.StatusNotFound,
		Code:    "USER_NOT_FOUND",
		cause:   ErrUserNotFound,
	}
}

// ProjectNotFound builds the failure for a missing project id.
func ProjectNotFound(id string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("Project with id %s not found", id),
		Status:  http.StatusNotFound,
		Code:    "PROJECT_NOT_FOUND",
		cause:   ErrProjectNotFound,
	}
}

// DuplicateMember builds the failure for a user that already holds an edge on a project.
func DuplicateMember(username string) *DomainError {
	return Duplicate(fmt.Sprintf("%s is already a contributor or owner on this project.", username))
}

// DuplicateField builds the failure for a unique user field that is already taken.
func DuplicateField(value string) *DomainError {
	return Duplicate(fmt.Sprintf("%s is already taken.", value))
}

// Duplicate builds a Duplicate failure with the given message.
func Duplicate(message string) *DomainError {
	return &DomainError{
		Kind:    KindDuplicate,
		Message: message,
		Status:  http.StatusUnprocessableEntity,
		Code:    "DUPLICATE",
		cause:   ErrDuplicate,
	}
}

// LastOwner builds the failure for removing the sole owner of a project.
func LastOwner() *DomainError {
	return &DomainError{
		Kind:    KindLastOwner,
		Message: "Cannot delete the last owner for a project.",
		Status:  http.StatusUnprocessableEntity,
		Code:    "LAST_OWNER",
		cause:   ErrLastOwner,
	}
}

// CredentialNotFound builds the failure for unlinking a provider that was never linked.
func CredentialNotFound(provider string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("No %s credentials are linked to this user.", provider),
		Status:  http.StatusNotFound,
		Code:    "CREDENTIAL_NOT_FOUND",
		cause:   ErrCredentialNotFound,
	}
}

// InvalidCredentials builds the failure for a rejected login.
func InvalidCredentials() *DomainError {
	return Unauthorized("Invalid username or password.")
}

// Unauthorized builds a failure for a missing or invalid credential.
func Unauthorized(message string) *DomainError {
	return &DomainError{
		Kind:    KindUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
		Code:    "UNAUTHORIZED",
		cause:   ErrInvalidCredentials,
	}
}

// Forbidden builds the failure for a caller lacking rights on a resource.
func Forbidden(message string) *DomainError {
	return &DomainError{
		Kind:    KindForbidden,
		Message: message,
		Status:  http.StatusForbidden,
		Code:    "FORBIDDEN",
		cause:   ErrForbidden,
	}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Type  string `json:"type,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Kind       Kind
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
		Type:  string(e.Kind),
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything that is not a
// DomainError is reported as an opaque internal error.
func MapErrorToHTTP(err error) *HTTPError {
	var de *DomainError
	if errors.As(err, &de) {
		return &HTTPError{
			StatusCode: de.Status,
			Message:    de.Message,
			Code:       de.Code,
			Kind:       de.Kind,
		}
	}
	return &HTTPError{
		StatusCode: http.StatusInternalServerError,
		Message:    "internal server error",
		Code:       "INTERNAL_ERROR",
		Kind:       KindInternal,
	}
}
