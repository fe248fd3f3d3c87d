// Package validation builds the validator instance shared by all handlers,
// with the storefront's custom rules registered.
package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// Indian mobile numbers: 10 digits starting 6-9.
	mobilePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	// 6-digit postal code.
	pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)
)

// New returns a validator with the "inmobile" and "pincode" rules.
func New() *validator.Validate {
	v := validator.New()
	// Registration only fails for empty tags; these are constants.
	_ = v.RegisterValidation("inmobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
		return pincodePattern.MatchString(fl.Field().String())
	})
	return v
}

// IsMobile reports whether s matches the national mobile pattern. Used by
// the order coordinator when re-validating a stored address.
func IsMobile(s string) bool { return mobilePattern.MatchString(s) }
