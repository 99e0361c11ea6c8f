package utils

import (
	"context"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/inventory_backend/config"
)

var validate = validator.New()

// NormalizeEmail trims and lowercases an email address. Lookups and
// uniqueness checks always run on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return NewValidationError("invalid email format")
	}
	return nil
}

// ValidatePassword enforces the account password policy:
// at least 8 characters with one uppercase, one lowercase and one digit.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return NewValidationError("password must be at least 8 characters long")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return NewValidationError("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return NewValidationError("password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return NewValidationError("password must contain at least one digit")
	}
	return nil
}

// count records matching $condition
func ResourceCountWhere[T any](ctx context.Context, condition string, value ...interface{}) (int64, error) {
	var model T

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&model).Where(condition, value...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ValidateUnique returns ErrorDuplicateRecord when a row already holds
// the given column value within the condition scope.
func ValidateUnique[T any](ctx context.Context, condition string, value ...interface{}) error {
	count, err := ResourceCountWhere[T](ctx, condition, value...)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrorDuplicateRecord
	}
	return nil
}
