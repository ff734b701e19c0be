package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/transit-favorites/internal/domain"
	apperrors "github.com/transit-favorites/internal/pkg/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	mustRegister("network_id", func(fl validator.FieldLevel) bool {
		return domain.NetworkID(fl.Field().String()).IsKnown()
	})
	mustRegister("favorite_kind", func(fl validator.FieldLevel) bool {
		return domain.FavoriteKind(fl.Field().String()).IsValid()
	})
	mustRegister("location_type", func(fl validator.FieldLevel) bool {
		return domain.LocationType(fl.Field().String()).IsValid()
	})
	mustRegister("usage_role", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseUsageRole(fl.Field().String())
		return ok
	})
	mustRegister("product_codes", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseProductCodes(fl.Field().String())
		return err == nil
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

// Validate - валидация структуры
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// ValidateAppError валидирует структуру и переводит ошибки в ValidationError
func ValidateAppError(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s:%s", fe.Field(), fe.Tag()))
		}
		return apperrors.NewValidationError(verrs[0].Field(), strings.Join(fields, ","))
	}

	return apperrors.NewValidationError("", err.Error())
}

// GetValidator - получить валидатор для кастомной конфигурации
func GetValidator() *validator.Validate {
	return validate
}
