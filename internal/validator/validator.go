package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"articles_api/internal/models"

	"github.com/go-playground/validator/v10"
)

// ErrNoFieldsProvided — в теле PATCH нет ни одного обновляемого поля.
var ErrNoFieldsProvided = errors.New("no updatable fields provided")

// MissingFieldError — в теле создания отсутствует обязательное поле.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q", e.Field)
}

// Validator проверяет тела запросов к /articles.
type Validator struct {
	validate *validator.Validate
}

// New создаёт Validator, сообщающий имена полей так, как они записаны в JSON.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidateCreate проверяет наличие title, style и content именно в этом порядке
// и возвращает *MissingFieldError для первого отсутствующего.
// Пустая строка считается присутствующим значением.
func (v *Validator) ValidateCreate(d models.Draft) error {
	err := v.validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &MissingFieldError{Field: verrs[0].Field()}
	}
	return err
}

// ValidateUpdate требует хотя бы одно из title, style, content.
func (v *Validator) ValidateUpdate(p models.Patch) error {
	if p.Empty() {
		return ErrNoFieldsProvided
	}
	return nil
}
