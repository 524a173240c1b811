package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/artpar/wheelspec/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 7, 3, 10, 30, 0, 0, time.UTC)

func strPtr(s string) *string {
	return &s
}

func validFieldsInput() *FieldsInput {
	return &FieldsInput{
		TreadDiameterNew:      strPtr("915 (906-915)"),
		LastShopIssueSize:     strPtr("837 (800-839)"),
		CondemningDia:         strPtr("825 (800-825)"),
		WheelGauge:            strPtr("1600 (+2,-1)"),
		VariationSameAxle:     strPtr("0.5"),
		VariationSameBogie:    strPtr("5"),
		VariationSameCoach:    strPtr("13"),
		WheelProfile:          strPtr("29.4 Flange Thickness"),
		IntermediateWWP:       strPtr("20 TO 28"),
		BearingSeatDiameter:   strPtr("130.043 TO 130.068"),
		RollerBearingOuterDia: strPtr("280 (+0.0/-0.035)"),
		RollerBearingBoreDia:  strPtr("130 (+0.0/-0.025)"),
		RollerBearingWidth:    strPtr("93 (+0/-0.250)"),
		AxleBoxHousingBoreDia: strPtr("280 (+0.030/+0.052)"),
		WheelDiscWidth:        strPtr("127 (+4/-0)"),
		WheelSeatDiameter:     strPtr("172.000 TO 172.025"),
	}
}

func validCreateInput() CreateInput {
	return CreateInput{
		FormNumber:    "WHEEL-2025001",
		SubmittedBy:   "user_id_123",
		SubmittedDate: "2025-07-03",
		Fields:        validFieldsInput(),
	}
}

// =============================================================================
// Form Number Tests
// =============================================================================

func TestValidateFormNumber(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain digits", "WHEEL-001", "WHEEL-001", false},
		{"lowercase is normalized", "wheel-42", "WHEEL-42", false},
		{"whitespace is trimmed", "  WHEEL-7  ", "WHEEL-7", false},
		{"year and sequence", "wheel-2025-007", "WHEEL-2025-007", false},
		{"wrong prefix", "ABC-123", "", true},
		{"missing digits", "WHEEL-", "", true},
		{"letters after prefix", "wheel-12a", "", true},
		{"trailing hyphen", "WHEEL-2025-", "", true},
		{"double hyphen", "WHEEL-2025--1", "", true},
		{"no hyphen", "WHEEL123", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ferr := ValidateFormNumber(tt.raw)
			if tt.wantErr {
				require.NotNil(t, ferr)
				assert.Equal(t, RuleInvalidFormat, ferr.Rule)
				assert.Equal(t, "formNumber", ferr.Field)
				return
			}
			assert.Nil(t, ferr)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateLength(t *testing.T) {
	assert.Nil(t, ValidateLength("submittedBy", "bob", 3, 50))
	assert.Nil(t, ValidateLength("submittedBy", strings.Repeat("x", 50), 3, 50))

	ferr := ValidateLength("submittedBy", "bo", 3, 50)
	require.NotNil(t, ferr)
	assert.Equal(t, RuleOutOfRange, ferr.Rule)

	ferr = ValidateLength("submittedBy", strings.Repeat("x", 51), 3, 50)
	require.NotNil(t, ferr)
	assert.Equal(t, RuleOutOfRange, ferr.Rule)
}

// =============================================================================
// Date Tests
// =============================================================================

func TestParseDate(t *testing.T) {
	d, ferr := ParseDate("submittedDate", "2025-02-01")
	require.Nil(t, ferr)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), d)

	_, ferr = ParseDate("submittedDate", "01/02/2025")
	require.NotNil(t, ferr)
	assert.Equal(t, RuleInvalidFormat, ferr.Rule)
}

func TestValidateSubmittedDate(t *testing.T) {
	today := time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)

	_, ferr := ValidateSubmittedDate(today, testNow)
	assert.Nil(t, ferr, "today is allowed")

	_, ferr = ValidateSubmittedDate(today.AddDate(0, 0, -30), testNow)
	assert.Nil(t, ferr, "past dates are allowed")

	_, ferr = ValidateSubmittedDate(today.AddDate(0, 0, 1), testNow)
	require.NotNil(t, ferr)
	assert.Equal(t, RuleFutureDate, ferr.Rule)
}

// =============================================================================
// Fields Tests
// =============================================================================

func TestValidateFields_AllPresent(t *testing.T) {
	fields, errs := ValidateFields(validFieldsInput())

	assert.Empty(t, errs)
	assert.Equal(t, "915 (906-915)", fields.TreadDiameterNew)
	assert.Equal(t, "172.000 TO 172.025", fields.WheelSeatDiameter)
}

func TestValidateFields_EmptyStringIsPresent(t *testing.T) {
	in := validFieldsInput()
	in.WheelProfile = strPtr("")

	_, errs := ValidateFields(in)
	assert.Empty(t, errs)
}

func TestValidateFields_MissingAttribute(t *testing.T) {
	in := validFieldsInput()
	in.WheelGauge = nil
	in.RollerBearingWidth = nil

	_, errs := ValidateFields(in)

	require.Len(t, errs, 2)
	assert.Equal(t, "fields.wheelGauge", errs[0].Field)
	assert.Equal(t, RuleMissingField, errs[0].Rule)
	assert.Equal(t, "fields.rollerBearingWidth", errs[1].Field)
}

func TestValidateFields_Nil(t *testing.T) {
	_, errs := ValidateFields(nil)

	require.Len(t, errs, 1)
	assert.Equal(t, "fields", errs[0].Field)
	assert.Equal(t, RuleMissingField, errs[0].Rule)
}

// =============================================================================
// Create Tests
// =============================================================================

func TestValidateCreate_Success(t *testing.T) {
	in := validCreateInput()
	in.FormNumber = "wheel-2025-007"

	spec, err := ValidateCreate(in, testNow)
	require.NoError(t, err)

	assert.Equal(t, "WHEEL-2025-007", spec.FormNumber)
	assert.Equal(t, "user_id_123", spec.SubmittedBy)
	assert.Equal(t, "2025-07-03", spec.SubmittedDateString())
	assert.Equal(t, domain.StatusSaved, spec.Status)
	assert.Equal(t, "915 (906-915)", spec.Fields.TreadDiameterNew)
}

func TestValidateCreate_CollectsAllErrors(t *testing.T) {
	in := CreateInput{
		FormNumber:    "ABC-123",
		SubmittedBy:   "x",
		SubmittedDate: "2025-07-04",
		Fields:        nil,
	}

	spec, err := ValidateCreate(in, testNow)
	assert.Nil(t, spec)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 4)
	assert.True(t, verrs.Has(RuleInvalidFormat))
	assert.True(t, verrs.Has(RuleOutOfRange))
	assert.True(t, verrs.Has(RuleFutureDate))
	assert.True(t, verrs.Has(RuleMissingField))
}

func TestValidateCreate_ShortFormNumberSkipsFormatCheck(t *testing.T) {
	in := validCreateInput()
	in.FormNumber = "W-1"

	_, err := ValidateCreate(in, testNow)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, RuleOutOfRange, verrs[0].Rule)
	assert.Equal(t, "formNumber", verrs[0].Field)
}

func TestValidateCreate_MissingDate(t *testing.T) {
	in := validCreateInput()
	in.SubmittedDate = ""

	_, err := ValidateCreate(in, testNow)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, RuleMissingField, verrs[0].Rule)
}

func TestValidateCreate_MalformedDate(t *testing.T) {
	in := validCreateInput()
	in.SubmittedDate = "yesterday"

	_, err := ValidateCreate(in, testNow)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, RuleInvalidFormat, verrs[0].Rule)
	assert.Equal(t, "submittedDate", verrs[0].Field)
}

func TestValidationErrors_Error(t *testing.T) {
	verrs := ValidationErrors{
		{Field: "formNumber", Rule: RuleInvalidFormat, Message: "bad"},
		{Field: "submittedBy", Rule: RuleOutOfRange, Message: "short"},
	}

	assert.Equal(t, "formNumber: bad; submittedBy: short", verrs.Error())
}
