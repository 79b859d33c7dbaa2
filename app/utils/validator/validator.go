package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"planora/app/domain"

	"github.com/go-playground/validator/v10"
)

var (
	lowerRe = regexp.MustCompile(`[a-z]`)
	upperRe = regexp.MustCompile(`[A-Z]`)
	digitRe = regexp.MustCompile(`[0-9]`)
	// The space class matches Unicode separators as well as ASCII whitespace
	personNameRe = regexp.MustCompile(`^[a-zA-ZÀ-ÿ\t\n\v\f\r\p{Zs}\p{Zl}\p{Zp}\x{FEFF}'-]+$`)
)

// Validator wraps the go-playground validator with the registration rules
type Validator struct {
	validator *validator.Validate
	countries *domain.CountrySet
}

// New creates a new validator instance. Countries outside the given set are
// rejected by the supported_country tag.
func New(countries *domain.CountrySet) *Validator {
	if countries == nil {
		countries = domain.NewCountrySet(domain.DefaultCountries...)
	}

	validate := validator.New()
	registerCustomValidators(validate, countries)

	// Use JSON field names so error keys match the form paths
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		validator: validate,
		countries: countries,
	}
}

// Validate validates a struct and returns a *ValidationError keyed by dotted
// field path.
func (v *Validator) Validate(i interface{}) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("failed to validate: %w", err)
	}
	return v.newValidationError(errs)
}

// ValidationError holds every failed field with its messages
type ValidationError struct {
	Errors map[string][]string `json:"errors"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, fmt.Sprintf("%s: %s", field, strings.Join(e.Errors[field], "; ")))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, ", "))
}

func (e *ValidationError) add(field, message string) {
	if e.Errors == nil {
		e.Errors = make(map[string][]string)
	}
	e.Errors[field] = append(e.Errors[field], message)
}

func (v *Validator) newValidationError(errs validator.ValidationErrors) *ValidationError {
	out := &ValidationError{Errors: make(map[string][]string)}
	for _, err := range errs {
		path := fieldPath(err.Namespace())
		out.add(path, v.message(path, err.Tag(), err.Param()))
	}
	return out
}

// fieldPath drops the root struct name: "AccountCreationInput.user.email"
// becomes "user.email".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

var fieldLabels = map[string]string{
	domain.FieldCompanyName:    "Company name",
	domain.FieldCompanyCountry: "Country",
	domain.FieldCompanySector:  "Sector",
	domain.FieldUserEmail:      "Email",
	domain.FieldUserPassword:   "Password",
	domain.FieldUserConfirm:    "Password confirmation",
	domain.FieldUserFirstName:  "First name",
	domain.FieldUserLastName:   "Last name",
	domain.FieldUserRole:       "Role",
	domain.FieldRequestID:      "Request id",
	domain.FieldSignInEmail:    "Email",
	domain.FieldSignInPassword: "Password",
}

// messageOverrides replace the generic message for a path and tag
var messageOverrides = map[string]string{
	domain.FieldCompanyName + "|required":    "Company name must be at least 2 characters",
	domain.FieldCompanyCountry + "|required": "Country is required",
	domain.FieldCompanySector + "|required":  "Sector is required",
	domain.FieldCompanySector + "|min":       "Sector is required",
	domain.FieldUserEmail + "|required":      "Invalid email address",
	domain.FieldUserPassword + "|required":   "Password must be at least 8 characters",
	domain.FieldUserFirstName + "|required":  "First name must be at least 2 characters",
	domain.FieldUserLastName + "|required":   "Last name must be at least 2 characters",
	domain.FieldSignInEmail + "|required":    "Invalid email address",
	domain.FieldSignInPassword + "|required": "Password is required",
}

func (v *Validator) message(path, tag, param string) string {
	if msg, ok := messageOverrides[path+"|"+tag]; ok {
		return msg
	}

	label, ok := fieldLabels[path]
	if !ok {
		label = path
	}

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, param)
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", label, param)
	case "email":
		return "Invalid email address"
	case "eqfield":
		return "Passwords do not match"
	case TagPasswordPolicy:
		return "Password must contain at least one lowercase letter, one uppercase letter, and one number"
	case TagPersonName:
		return fmt.Sprintf("%s can only contain letters, spaces, hyphens, and apostrophes", label)
	case TagSupportedCountry:
		return "Currently supported countries: " + strings.Join(v.countries.Names(), ", ")
	case TagAssignableRole:
		return "Role must be one of: " + strings.Join(assignableRoleNames(), ", ")
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func assignableRoleNames() []string {
	roles := domain.AssignableRoles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Lower()
	}
	return names
}

// registerCustomValidators registers custom validation rules
func registerCustomValidators(validate *validator.Validate, countries *domain.CountrySet) {
	// Password policy: one lower, one upper and one digit. Length is
	// checked by min/max.
	validate.RegisterValidation(TagPasswordPolicy, func(fl validator.FieldLevel) bool {
		password := fl.Field().String()
		return lowerRe.MatchString(password) && upperRe.MatchString(password) && digitRe.MatchString(password)
	})

	// Person names: letters including accented ones, spaces, hyphens, apostrophes
	validate.RegisterValidation(TagPersonName, func(fl validator.FieldLevel) bool {
		return personNameRe.MatchString(fl.Field().String())
	})

	validate.RegisterValidation(TagSupportedCountry, func(fl validator.FieldLevel) bool {
		return countries.Contains(fl.Field().String())
	})

	// Roles arrive in lower-case form spelling; an empty role means the default
	validate.RegisterValidation(TagAssignableRole, func(fl validator.FieldLevel) bool {
		_, err := domain.NormalizeRole(fl.Field().String())
		return err == nil
	})
}

// Custom validation tags
const (
	TagPasswordPolicy   = "password_policy"
	TagPersonName       = "person_name"
	TagSupportedCountry = "supported_country"
	TagAssignableRole   = "assignable_role"
)
