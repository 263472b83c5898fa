package dto

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Role code patterns are uppercase alphanumerics with an optional trailing
// wildcard, e.g. "EEXEN", "EE*", "CLERK".
var roleCodePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*\*?$`)

// ValidRoleCode is the "rolecode" binding tag implementation.
func ValidRoleCode(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return roleCodePattern.MatchString(value)
}
