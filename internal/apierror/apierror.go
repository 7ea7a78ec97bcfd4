// Package apierror defines the typed error taxonomy of the core engine plus
// the standardized envelope returned to HTTP clients. All errors crossing the
// service boundary are one of these types — handlers decide status codes with
// errors.As, never by matching message substrings.
package apierror

import (
	"fmt"

	"github.com/google/uuid"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError rejects a request before any write: missing references,
// zero line items, non-positive quantities, negative costs.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (e *ValidationError) Error() string { return e.Detail }

func NewValidation(detail string) *ValidationError {
	return &ValidationError{Detail: detail}
}

func NewValidationFields(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// InsufficientStockError is returned when a sale line requests more units than
// the product has at commit time. The check runs under the same lock as the
// stock write, so two concurrent sales can never both pass with one unit left.
type InsufficientStockError struct {
	ProductoID uuid.UUID
	Producto   string
	Solicitado int
	Disponible int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: solicitado %d, disponible %d",
		e.Producto, e.Solicitado, e.Disponible)
}

// NotFoundError marks a missing resource lookup.
type NotFoundError struct {
	Recurso string
	ID      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Recurso, e.ID)
}

func NewNotFound(recurso, id string) *NotFoundError {
	return &NotFoundError{Recurso: recurso, ID: id}
}

// PersistenceError wraps a storage failure mid-transaction. The whole unit of
// work has already been rolled back when the caller sees this.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("error de persistencia en %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func NewPersistence(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}
