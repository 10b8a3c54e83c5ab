package errors

import (
	"errors"
	"strings"
)

// Error kinds. Concrete errors below match exactly one kind via errors.Is.
var (
	ErrValidationFailed = errors.New("error de validación")
	ErrConflict         = errors.New("conflicto de recurso")
	ErrUnauthorized     = errors.New("no autorizado")
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrStore            = errors.New("error de almacenamiento")
)

var (
	ErrInvalidCredentials error = &kindError{kind: ErrUnauthorized, msg: "Credenciales inválidas"}
	ErrTokenMissing       error = &kindError{kind: ErrUnauthorized, msg: "Token de acceso requerido"}
	ErrTokenInvalid       error = &kindError{kind: ErrUnauthorized, msg: "Token inválido o expirado"}
	ErrTokenExpired       error = &kindError{kind: ErrUnauthorized, msg: "Token inválido o expirado"}

	ErrEmailTaken error = &kindError{kind: ErrConflict, msg: "El email ya está registrado"}

	ErrUserNotFound error = &kindError{kind: ErrNotFound, msg: "Usuario no encontrado"}
	ErrTaskNotFound error = &kindError{kind: ErrNotFound, msg: "Tarea no encontrada"}

	ErrInternalServer     = errors.New("Error interno del servidor")
	ErrBadRequest         = errors.New("Datos de solicitud inválidos")
	ErrInvalidGzipRequest = errors.New("Cuerpo gzip inválido")
	ErrGzipCompression    = errors.New("error de compresión gzip")

	ErrConfigFileReadFailed = errors.New("no se pudo leer el archivo de configuración")
	ErrConfigParseFailed    = errors.New("no se pudo interpretar el archivo de configuración")
	ErrConfigInvalidFormat  = errors.New("formato de configuración inválido")
	ErrUnknownDriver        = errors.New("driver de base de datos desconocido")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Is(target error) bool { return target == e.kind }

// FieldError is one entry of a validation failure, keyed by the JSON field name.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidationFailed.Error()
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Msg)
	}
	return strings.Join(msgs, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidationFailed }

// StoreError wraps a backing-store fault. Its message is for logs only.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return "store: " + e.Op
	}
	return "store: " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }

func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
