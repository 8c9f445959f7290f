package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

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

type ReservationValidator struct {
	validate      *validator.Validate
	maxStayNights int
	logger        *logger.Logger
}

func NewReservationValidator(maxStayNights int, log *logger.Logger) *ReservationValidator {
	return &ReservationValidator{
		validate:      validator.New(),
		maxStayNights: maxStayNights,
		logger:        log,
	}
}

func (v *ReservationValidator) Validate(reservation *model.Reservation) error {
	if err := v.validate.Struct(reservation); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	return v.validateStayWindow(reservation.DateStart, reservation.DateEnd)
}

func (v *ReservationValidator) ValidateUpdate(update *model.ReservationUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.Guests != nil {
		if err := v.validate.Struct(update.Guests); err != nil {
			var validationErrs validator.ValidationErrors
			if errors.As(err, &validationErrs) {
				return translateValidationErrors(validationErrs)
			}
			return err
		}
	}

	if update.DateStart != nil && update.DateEnd != nil {
		return v.validateStayWindow(*update.DateStart, *update.DateEnd)
	}

	return nil
}

func (v *ReservationValidator) validateStayWindow(dateStart, dateEnd time.Time) error {
	if !dateEnd.After(dateStart) {
		return ValidationErrors{
			ValidationError{
				Field:   "DateEnd",
				Message: "date_end must be after date_start",
			},
		}
	}

	nights := model.DaysBetween(dateStart, dateEnd)
	if nights > v.maxStayNights {
		return ValidationErrors{
			ValidationError{
				Field:   "DateEnd",
				Message: fmt.Sprintf("stay exceeds the maximum of %d nights", v.maxStayNights),
			},
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
