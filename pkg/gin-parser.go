package pkg

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ParseAndValidate binds the request's JSON body into dto and runs the
// struct validation tags. Validator errors are flattened to a single
// readable message instead of the library's multi-line dump.
func ParseAndValidate(c *gin.Context, dto interface{}) error {
	if err := c.ShouldBindJSON(dto); err != nil {
		return fmt.Errorf("invalid JSON payload: %w", err)
	}

	if err := validate.Struct(dto); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid field %q: failed %q check", verrs[0].Field(), verrs[0].Tag())
		}
		return err
	}
	return nil
}
