package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/matprat/matprat/backend/internal/recipeform"
)

// Postgres SQLSTATE codes with a dedicated response.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRep      = "22P02"
)

// Public messages for database failures.
const (
	MsgAlreadyExists    = "This item already exists."
	MsgInvalidReference = "Invalid reference to related data."
	MsgInvalidFormat    = "Invalid data format."
	MsgGeneric          = "Something went wrong. Please try again later."
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("authentication required")
)

// ValidationError reports an incomplete or malformed recipe submission.
type ValidationError = recipeform.ValidationError

// NotFoundError reports a missing recipe or resource. Message is user-facing.
type NotFoundError struct {
	Resource string
	Name     string
	Message  string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Name)
}

func recipeNotFound(name string) *NotFoundError {
	return &NotFoundError{
		Resource: "recipe",
		Name:     name,
		Message:  fmt.Sprintf("The recipe %q does not exist.", name),
	}
}

// DatabaseError is a storage failure mapped to an HTTP status and a stable
// public message. The cause is kept for logs and development responses.
type DatabaseError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *DatabaseError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Err.Error()
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// UploadError rejects an uploaded file. It always maps to 400.
type UploadError struct {
	Message string
}

func (e *UploadError) Error() string {
	return e.Message
}

// FileTooLarge reports an upload over the size limit.
func FileTooLarge(maxBytes int64) *UploadError {
	return &UploadError{Message: fmt.Sprintf("File too large. Maximum size is %dMB", maxBytes>>20)}
}

// ClassifyDBError maps a driver error onto the public taxonomy. Postgres
// errors come through lib/pq; the SQLite test dialect reports the same
// conditions as gorm's translated errors.
func ClassifyDBError(err error) *DatabaseError {
	if err == nil {
		return nil
	}
	var dbErr *DatabaseError
	if errors.As(err, &dbErr) {
		return dbErr
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		switch code {
		case pgUniqueViolation:
			return &DatabaseError{Status: http.StatusConflict, Code: code, Message: MsgAlreadyExists, Err: err}
		case pgForeignKeyViolation:
			return &DatabaseError{Status: http.StatusBadRequest, Code: code, Message: MsgInvalidReference, Err: err}
		case pgInvalidTextRep:
			return &DatabaseError{Status: http.StatusBadRequest, Code: code, Message: MsgInvalidFormat, Err: err}
		}
		return &DatabaseError{Status: http.StatusInternalServerError, Code: code, Message: MsgGeneric, Err: err}
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &DatabaseError{Status: http.StatusConflict, Code: pgUniqueViolation, Message: MsgAlreadyExists, Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &DatabaseError{Status: http.StatusBadRequest, Code: pgForeignKeyViolation, Message: MsgInvalidReference, Err: err}
	}
	return &DatabaseError{Status: http.StatusInternalServerError, Message: MsgGeneric, Err: err}
}
