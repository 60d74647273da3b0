package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"bubblebliss/internal/domain"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	// local (0XXXXXXXXX) or international (233XXXXXXXXX, +233...) mobile numbers
	rePhone = regexp.MustCompile(`^\+?[0-9]{9,15}$`)
	reLevel = regexp.MustCompile(`^[A-Za-z0-9 %_-]{1,30}$`)
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// report json names, not Go field names
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = val.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		_, ok := Phone(fl.Field().String())
		return ok
	})
	_ = val.RegisterValidation("level", func(fl validator.FieldLevel) bool {
		return reLevel.MatchString(fl.Field().String())
	})
	return val
}

// Struct checks the validate tags of a request DTO and flattens every field
// error into one message suitable for a 400 response.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := trimRoot(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("%s must contain at least %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "email":
		return field + " must be a valid email"
	case "phone":
		return field + " must be a valid phone number"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

// trimRoot drops the struct type name validator puts in front of the path.
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Phone accepts a mobile number with optional spaces and returns it with
// the spaces removed.
func Phone(s string) (string, bool) {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return "", false
	}
	return s, rePhone.MatchString(s)
}

// ID parses a positive numeric path id.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// OrderStatus accepts only the statuses an administrator may assign.
func OrderStatus(s string) (domain.OrderStatus, bool) {
	s = strings.TrimSpace(s)
	for _, st := range domain.AdminSettableStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// OrderStatusList renders the allowed statuses for error messages.
func OrderStatusList() string {
	parts := make([]string, len(domain.AdminSettableStatuses))
	for i, st := range domain.AdminSettableStatuses {
		parts[i] = string(st)
	}
	return strings.Join(parts, ", ")
}

// Password enforces a length window for login checks.
func Password(s string) bool {
	l := len(s)
	return l >= 1 && l <= 72
}
