package errors

import (
	stderrors "errors"
	"fmt"
)

type AppError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	cause      error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Is сравнивает ошибки по коду, чтобы errors.Is(err, ErrPersistence) работал
// для любых экземпляров с тем же кодом
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

// WithDetails возвращает копию ошибки с деталями
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// Wrap возвращает копию ошибки с причиной
func (e *AppError) Wrap(cause error) *AppError {
	cp := *e
	cp.cause = cause
	return &cp
}

// NewValidationError - ошибка вызывающей стороны, повтор не поможет
func NewValidationError(field, reason string) *AppError {
	return ErrValidation.WithDetails(map[string]interface{}{
		"field":  field,
		"reason": reason,
	})
}

// NewPersistenceError - сбой хранилища; операцию можно повторить целиком
func NewPersistenceError(op string, cause error) *AppError {
	return ErrPersistence.WithDetails(map[string]interface{}{
		"operation": op,
	}).Wrap(cause)
}

// NewNotFoundError - запись с таким ключом отсутствует
func NewNotFoundError(resource string, key interface{}) *AppError {
	return ErrNotFound.WithDetails(map[string]interface{}{
		"resource": resource,
		"key":      key,
	})
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return stderrors.Is(err, ErrValidation)
}

// IsPersistence reports whether err is a persistence error
func IsPersistence(err error) bool {
	return stderrors.Is(err, ErrPersistence)
}

// As is a shortcut for extracting *AppError from a chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
