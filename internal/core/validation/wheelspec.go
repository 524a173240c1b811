package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/artpar/wheelspec/internal/core/domain"
)

// =============================================================================
// Rules
// =============================================================================

// Rule names the constraint a field violated.
type Rule string

const (
	RuleInvalidFormat Rule = "invalid_format"
	RuleFutureDate    Rule = "future_date"
	RuleMissingField  Rule = "missing_field"
	RuleOutOfRange    Rule = "out_of_range"
)

// Length bounds, counted in characters before normalization.
const (
	FormNumberMinLength  = 5
	FormNumberMaxLength  = 50
	SubmittedByMinLength = 3
	SubmittedByMaxLength = 50
)

// =============================================================================
// Errors
// =============================================================================

// FieldError describes one violated constraint.
type FieldError struct {
	Field   string `json:"field"`
	Rule    Rule   `json:"rule"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every violation found in a request.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether any violation matches the rule.
func (v ValidationErrors) Has(rule Rule) bool {
	for _, e := range v {
		if e.Rule == rule {
			return true
		}
	}
	return false
}

func (v *ValidationErrors) add(e *FieldError) {
	if e != nil {
		*v = append(*v, *e)
	}
}

// =============================================================================
// Input
// =============================================================================

// FieldsInput carries raw measurement attributes. A nil pointer means the
// attribute was absent or null.
type FieldsInput struct {
	TreadDiameterNew      *string
	LastShopIssueSize     *string
	CondemningDia         *string
	WheelGauge            *string
	VariationSameAxle     *string
	VariationSameBogie    *string
	VariationSameCoach    *string
	WheelProfile          *string
	IntermediateWWP       *string
	BearingSeatDiameter   *string
	RollerBearingOuterDia *string
	RollerBearingBoreDia  *string
	RollerBearingWidth    *string
	AxleBoxHousingBoreDia *string
	WheelDiscWidth        *string
	WheelSeatDiameter     *string
}

// CreateInput is an unvalidated creation request.
type CreateInput struct {
	FormNumber    string
	SubmittedBy   string
	SubmittedDate string
	Fields        *FieldsInput
}

// =============================================================================
// Validators
// =============================================================================

// ValidateLength checks that raw has between min and max characters.
func ValidateLength(field, raw string, min, max int) *FieldError {
	n := utf8.RuneCountInString(raw)
	if n < min || n > max {
		return &FieldError{
			Field:   field,
			Rule:    RuleOutOfRange,
			Message: fmt.Sprintf("must be between %d and %d characters", min, max),
		}
	}
	return nil
}

// ValidateFormNumber normalizes a form number and checks its format.
// The part after WHEEL- must be digits; hyphen-separated digit groups
// such as WHEEL-2025-007 are accepted.
//
// Example:
//
//	v, ferr := ValidateFormNumber(" wheel-2025-001 ") // v == "WHEEL-2025-001"
func ValidateFormNumber(raw string) (string, *FieldError) {
	v := domain.NormalizeFormNumber(raw)
	if !strings.HasPrefix(v, domain.FormNumberPrefix) {
		return "", &FieldError{
			Field:   "formNumber",
			Rule:    RuleInvalidFormat,
			Message: "form number must start with " + domain.FormNumberPrefix,
		}
	}
	if !isDigitGroups(v[len(domain.FormNumberPrefix):]) {
		return "", &FieldError{
			Field:   "formNumber",
			Rule:    RuleInvalidFormat,
			Message: "form number must be followed by digits after " + domain.FormNumberPrefix,
		}
	}
	return v, nil
}

// isDigitGroups reports whether s is one or more non-empty runs of ASCII
// digits separated by single hyphens.
func isDigitGroups(s string) bool {
	if s == "" {
		return false
	}
	for _, group := range strings.Split(s, "-") {
		if group == "" {
			return false
		}
		for i := 0; i < len(group); i++ {
			if group[i] < '0' || group[i] > '9' {
				return false
			}
		}
	}
	return true
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(field, raw string) (time.Time, *FieldError) {
	d, err := time.Parse(domain.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, &FieldError{
			Field:   field,
			Rule:    RuleInvalidFormat,
			Message: "date must use the YYYY-MM-DD format",
		}
	}
	return domain.DateOf(d), nil
}

// ValidateSubmittedDate rejects dates after the calendar day of now.
func ValidateSubmittedDate(d, now time.Time) (time.Time, *FieldError) {
	date := domain.DateOf(d)
	if date.After(domain.DateOf(now)) {
		return time.Time{}, &FieldError{
			Field:   "submittedDate",
			Rule:    RuleFutureDate,
			Message: "submitted date cannot be in the future",
		}
	}
	return date, nil
}

// ValidateFields requires every measurement attribute to be present.
func ValidateFields(in *FieldsInput) (domain.Fields, ValidationErrors) {
	if in == nil {
		return domain.Fields{}, ValidationErrors{{
			Field:   "fields",
			Rule:    RuleMissingField,
			Message: "fields is required",
		}}
	}

	var (
		out  domain.Fields
		errs ValidationErrors
	)
	attrs := []struct {
		name string
		src  *string
		dst  *string
	}{
		{"treadDiameterNew", in.TreadDiameterNew, &out.TreadDiameterNew},
		{"lastShopIssueSize", in.LastShopIssueSize, &out.LastShopIssueSize},
		{"condemningDia", in.CondemningDia, &out.CondemningDia},
		{"wheelGauge", in.WheelGauge, &out.WheelGauge},
		{"variationSameAxle", in.VariationSameAxle, &out.VariationSameAxle},
		{"variationSameBogie", in.VariationSameBogie, &out.VariationSameBogie},
		{"variationSameCoach", in.VariationSameCoach, &out.VariationSameCoach},
		{"wheelProfile", in.WheelProfile, &out.WheelProfile},
		{"intermediateWWP", in.IntermediateWWP, &out.IntermediateWWP},
		{"bearingSeatDiameter", in.BearingSeatDiameter, &out.BearingSeatDiameter},
		{"rollerBearingOuterDia", in.RollerBearingOuterDia, &out.RollerBearingOuterDia},
		{"rollerBearingBoreDia", in.RollerBearingBoreDia, &out.RollerBearingBoreDia},
		{"rollerBearingWidth", in.RollerBearingWidth, &out.RollerBearingWidth},
		{"axleBoxHousingBoreDia", in.AxleBoxHousingBoreDia, &out.AxleBoxHousingBoreDia},
		{"wheelDiscWidth", in.WheelDiscWidth, &out.WheelDiscWidth},
		{"wheelSeatDiameter", in.WheelSeatDiameter, &out.WheelSeatDiameter},
	}
	for _, a := range attrs {
		if a.src == nil {
			errs = append(errs, FieldError{
				Field:   "fields." + a.name,
				Rule:    RuleMissingField,
				Message: a.name + " is required",
			})
			continue
		}
		*a.dst = *a.src
	}
	return out, errs
}

// ValidateCreate validates a creation request and returns the record to
// persist. The returned error is always ValidationErrors.
func ValidateCreate(in CreateInput, now time.Time) (*domain.WheelSpecification, error) {
	var errs ValidationErrors

	formNumber := ""
	if ferr := ValidateLength("formNumber", in.FormNumber, FormNumberMinLength, FormNumberMaxLength); ferr != nil {
		errs.add(ferr)
	} else {
		var fnErr *FieldError
		formNumber, fnErr = ValidateFormNumber(in.FormNumber)
		errs.add(fnErr)
	}

	errs.add(ValidateLength("submittedBy", in.SubmittedBy, SubmittedByMinLength, SubmittedByMaxLength))

	var submittedDate time.Time
	if strings.TrimSpace(in.SubmittedDate) == "" {
		errs.add(&FieldError{
			Field:   "submittedDate",
			Rule:    RuleMissingField,
			Message: "submittedDate is required",
		})
	} else if d, ferr := ParseDate("submittedDate", in.SubmittedDate); ferr != nil {
		errs.add(ferr)
	} else {
		var dErr *FieldError
		submittedDate, dErr = ValidateSubmittedDate(d, now)
		errs.add(dErr)
	}

	fields, fieldErrs := ValidateFields(in.Fields)
	errs = append(errs, fieldErrs...)

	if len(errs) > 0 {
		return nil, errs
	}
	return domain.NewWheelSpecification(formNumber, in.SubmittedBy, submittedDate, fields), nil
}
