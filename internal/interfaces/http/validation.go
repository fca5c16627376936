package http

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex/internal/application/dto"
)

var validate = validator.New()

func init() {
	// decimal.Decimal se valida como número (gte=0, etc.).
	validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// errResponded indica que el helper ya escribió la respuesta de error.
var errResponded = errors.New("respuesta enviada")

// bindAndValidate parsea el body JSON y aplica las etiquetas validate.
// Si falla, escribe la respuesta 400 y devuelve errResponded.
func bindAndValidate(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		return errResponded
	}
	return validateStruct(c, req)
}

// bindQuery parsea y valida parámetros de query.
func bindQuery(c *fiber.Ctx, req any) error {
	if err := c.QueryParser(req); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
		return errResponded
	}
	return validateStruct(c, req)
}

func validateStruct(c *fiber.Ctx, req any) error {
	if err := validate.Struct(req); err != nil {
		fields := map[string]string{}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
		}
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: fields})
		return errResponded
	}
	return nil
}
