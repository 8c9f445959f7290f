package validator

import (
	"errors"
	"fmt"
	"strings"

	"innkeep/pkg/logger"
	"innkeep/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BlockValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBlockValidator(log *logger.Logger) *BlockValidator {
	return &BlockValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *BlockValidator) Validate(block *model.RoomBlock) error {
	if err := v.validate.Struct(block); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	if !block.DateEnd.After(block.DateStart) {
		return ValidationErrors{
			ValidationError{
				Field:   "DateEnd",
				Message: "date_end must be after date_start",
			},
		}
	}

	return nil
}

func (v *BlockValidator) ValidateUpdate(update *model.RoomBlockUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.DateStart != nil && update.DateEnd != nil {
		if !update.DateEnd.After(*update.DateStart) {
			return ValidationErrors{
				ValidationError{
					Field:   "DateEnd",
					Message: "date_end must be after date_start",
				},
			}
		}
	}

	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
