package services

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator"

	domainerrors "tareas/internal/domain/errors"
	"tareas/internal/domain/models"
)

const (
	priorityRule = "oneof=baja media alta"
	statusRule   = "oneof=pendiente en_progreso completada"

	bcryptMaxBytes = 72
)

// messages are looked up by "field.tag" first, then by "field".
type messages map[string]string

var (
	registerMessages = messages{
		"nombre":             "El nombre debe tener al menos 2 caracteres",
		"email":              "Email inválido",
		"password":           "La contraseña debe tener al menos 6 caracteres",
		"password.bcryptlen": "La contraseña no puede superar 72 bytes",
	}
	loginMessages = messages{
		"email":    "Email inválido",
		"password": "La contraseña es requerida",
	}
	taskMessages = messages{
		"titulo":            "El título es requerido",
		"prioridad":         "Prioridad inválida",
		"estado":            "Estado inválido",
		"fecha_vencimiento": "Fecha inválida",
	}
)

func (m messages) lookup(field, tag string) string {
	if msg, ok := m[field+"."+tag]; ok {
		return msg
	}
	if msg, ok := m[field]; ok {
		return msg
	}
	return "Valor inválido para " + field
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "isodate", func(fl validator.FieldLevel) bool {
		_, ok := models.NormalizeDueDate(fl.Field().String())
		return ok
	})
	// bcrypt only reads the first 72 bytes and rejects longer input.
	mustRegister(v, "bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= bcryptMaxBytes
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

// validateStruct turns validator failures into a ValidationError with one
// entry per offending field.
func validateStruct(v *validator.Validate, s any, msgs messages) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return domainerrors.NewValidationError(domainerrors.FieldError{Msg: err.Error()})
	}
	fields := make([]domainerrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, domainerrors.FieldError{
			Field: fe.Field(),
			Msg:   msgs.lookup(fe.Field(), fe.Tag()),
		})
	}
	return domainerrors.NewValidationError(fields...)
}
