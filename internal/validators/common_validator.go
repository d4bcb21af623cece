package validators

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("future_date", validateFutureDate)
	validate.RegisterValidation("car_year", validateCarYear)
}

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// Details flattens the errors into the field->message map the response
// envelope carries.
func (v ValidationErrors) Details() map[string]string {
	details := make(map[string]string, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

// ValidateStruct validates a struct and returns detailed errors.
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(fieldErr.Field()),
				Tag:     fieldErr.Tag(),
				Message: getErrorMessage(fieldErr),
			})
		}
	}

	return validationErrors
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	case "object_id":
		return "must be a valid object ID"
	case "future_date":
		return "must be a date in the future"
	case "car_year":
		return "must be a plausible model year"
	default:
		return "is invalid"
	}
}

func validateObjectID(fl validator.FieldLevel) bool {
	if id, ok := fl.Field().Interface().(primitive.ObjectID); ok {
		return !id.IsZero()
	}
	_, err := primitive.ObjectIDFromHex(fl.Field().String())
	return err == nil
}

func validateFutureDate(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return date.After(time.Now().Add(-24 * time.Hour))
}

func validateCarYear(fl validator.FieldLevel) bool {
	year := int(fl.Field().Int())
	return year >= 1990 && year <= time.Now().Year()+1
}
