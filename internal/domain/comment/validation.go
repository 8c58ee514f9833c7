package comment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/chloeho97/arcana-front/internal/utils/platformerrors"
)

// DefaultMaxLength bounds comment bodies client-side.
const DefaultMaxLength = 500

// BodyValidator checks comment, reply and message bodies before any network call.
type BodyValidator struct {
	validate  *validator.Validate
	maxLength int
	noun      string
}

// NewBodyValidator returns a validator for bodies of at most maxLength runes.
// noun names the thing being validated in error messages.
func NewBodyValidator(maxLength int, noun string) *BodyValidator {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return &BodyValidator{validate: v, maxLength: maxLength, noun: noun}
}

func (b *BodyValidator) MaxLength() int {
	return b.maxLength
}

// Check validates body and returns it trimmed.
func (b *BodyValidator) Check(ctx context.Context, body string) (string, error) {
	trimmed := strings.TrimSpace(body)
	err := b.validate.Var(trimmed, fmt.Sprintf("notblank,max=%d", b.maxLength))
	if err == nil {
		return trimmed, nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Tag() == "max" {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("%s must be at most %d characters", b.noun, b.maxLength), nil, "8c3e51d7-2a4f-4b69-9d0e-71f6a2c9b853")
	}
	return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
		fmt.Sprintf("%s cannot be empty", b.noun), nil, "e4b0a9c2-6d13-4f87-8b5a-2c9d7e1f3a60")
}

// LengthHint renders the "n/max" counter shown under an input.
func LengthHint(body string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return fmt.Sprintf("%d/%d", utf8.RuneCountInString(body), maxLength)
}
