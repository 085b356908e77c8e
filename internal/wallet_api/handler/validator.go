package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/paywallet-ledger/internal/ledger"
	"github.com/shopspring/decimal"
)

const txTypeTag = "txtype"

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators installs the custom binding rules on gin's validator.
// It is safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin binding engine is not go-playground/validator")
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		registerErr = v.RegisterValidation(txTypeTag, validTransactionType)
	})
	return registerErr
}

func validTransactionType(fl validator.FieldLevel) bool {
	_, err := transaction.ParseType(fl.Field().String())
	return err == nil
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// bindingError turns a ShouldBindJSON failure into an error code and a
// message naming the offending fields.
func bindingError(err error) (code, message string) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return "BAD_REQUEST", "Invalid request body"
	}

	code = "BAD_REQUEST"
	problems := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		if fe.Tag() == txTypeTag {
			code = "INVALID_TYPE"
			problems = append(problems, fmt.Sprintf("%s: unknown transaction type %q", fe.Field(), fe.Value()))
			continue
		}
		problems = append(problems, fieldProblem(fe))
	}
	return code, strings.Join(problems, "; ")
}

func fieldProblem(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// parseAmount accepts a JSON number or a numeric string. Missing, null and
// non-numeric values are ledger.ErrInvalidAmount.
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, ledger.ErrInvalidAmount
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, ledger.ErrInvalidAmount
		}
		return ledger.ParseAmount(s)
	}
	return ledger.ParseAmount(string(raw))
}

func optionalNote(note *string) *string {
	if note == nil {
		return nil
	}
	return transaction.OptionalNote(*note)
}
