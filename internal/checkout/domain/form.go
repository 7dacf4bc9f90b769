package domain

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	FieldName     = "name"
	FieldPhone    = "phone"
	FieldLocation = "location"
)

const (
	nameMin     = 2
	nameMax     = 100
	locationMin = 5
	locationMax = 200
)

var phonePattern = regexp.MustCompile(`^\+?254\d{9}$`)

type FormData struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

func (f FormData) Trimmed() FormData {
	return FormData{
		Name:     strings.TrimSpace(f.Name),
		Phone:    strings.TrimSpace(f.Phone),
		Location: strings.TrimSpace(f.Location),
	}
}

// ValidationErrors maps a form field to its message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks every field of the trimmed form and reports all failures at once.
// It returns nil when the form is valid.
func Validate(f FormData) error {
	f = f.Trimmed()
	errs := ValidationErrors{}

	switch n := utf8.RuneCountInString(f.Name); {
	case n < nameMin:
		errs[FieldName] = "Name must be at least 2 characters"
	case n > nameMax:
		errs[FieldName] = "Name must be at most 100 characters"
	}

	if !phonePattern.MatchString(f.Phone) {
		errs[FieldPhone] = "Enter valid Kenyan phone (+254...)"
	}

	switch n := utf8.RuneCountInString(f.Location); {
	case n < locationMin:
		errs[FieldLocation] = "Please provide your location"
	case n > locationMax:
		errs[FieldLocation] = "Location must be at most 200 characters"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
