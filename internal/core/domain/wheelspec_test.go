package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

func createValidFields() Fields {
	return Fields{
		TreadDiameterNew:      "915 (906-915)",
		LastShopIssueSize:     "837 (800-839)",
		CondemningDia:         "825 (800-825)",
		WheelGauge:            "1600 (+2,-1)",
		VariationSameAxle:     "0.5",
		VariationSameBogie:    "5",
		VariationSameCoach:    "13",
		WheelProfile:          "29.4 Flange Thickness",
		IntermediateWWP:       "20 TO 28",
		BearingSeatDiameter:   "130.043 TO 130.068",
		RollerBearingOuterDia: "280 (+0.0/-0.035)",
		RollerBearingBoreDia:  "130 (+0.0/-0.025)",
		RollerBearingWidth:    "93 (+0/-0.250)",
		AxleBoxHousingBoreDia: "280 (+0.030/+0.052)",
		WheelDiscWidth:        "127 (+4/-0)",
		WheelSeatDiameter:     "172.000 TO 172.025",
	}
}

// =============================================================================
// Construction Tests
// =============================================================================

func TestNewWheelSpecification_StartsSaved(t *testing.T) {
	submitted := time.Date(2025, 7, 3, 15, 4, 5, 0, time.UTC)

	spec := NewWheelSpecification("WHEEL-2025", "user_id_123", submitted, createValidFields())

	assert.Equal(t, "WHEEL-2025", spec.FormNumber)
	assert.Equal(t, "user_id_123", spec.SubmittedBy)
	assert.Equal(t, StatusSaved, spec.Status)
	assert.Equal(t, time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC), spec.SubmittedDate)
	assert.Equal(t, "2025-07-03", spec.SubmittedDateString())
}

func TestFields_Summary(t *testing.T) {
	fields := createValidFields()

	summary := fields.Summary()

	assert.Equal(t, fields.TreadDiameterNew, summary.TreadDiameterNew)
	assert.Equal(t, fields.LastShopIssueSize, summary.LastShopIssueSize)
	assert.Equal(t, fields.CondemningDia, summary.CondemningDia)
	assert.Equal(t, fields.WheelGauge, summary.WheelGauge)
}

func TestFieldNames_MatchJSONKeys(t *testing.T) {
	data, err := json.Marshal(createValidFields())
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Len(t, FieldNames, 16)
	assert.Len(t, decoded, len(FieldNames))
	for _, name := range FieldNames {
		assert.Contains(t, decoded, name)
	}
}

// =============================================================================
// Status Tests
// =============================================================================

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    Status
		wantErr bool
	}{
		{"saved", StatusSaved, false},
		{"PENDING", StatusPending, false},
		{" approved ", StatusApproved, false},
		{"rejected", StatusRejected, false},
		{"archived", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseStatus(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusSaved, StatusPending, true},
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusRejected, StatusSaved, true},
		{StatusSaved, StatusApproved, false},
		{StatusSaved, StatusRejected, false},
		{StatusApproved, StatusPending, false},
		{StatusApproved, StatusSaved, false},
		{StatusPending, StatusSaved, false},
		{Status("unknown"), StatusSaved, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestWheelSpecification_Transition(t *testing.T) {
	spec := NewWheelSpecification("WHEEL-1", "alice", time.Now(), createValidFields())

	require.NoError(t, spec.Transition(StatusPending))
	assert.Equal(t, StatusPending, spec.Status)
	assert.NotZero(t, spec.UpdatedAt)

	err := spec.Transition(StatusSaved)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusPending, spec.Status)
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestFilter_IsEmpty(t *testing.T) {
	date := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, Filter{}.IsEmpty())
	assert.False(t, Filter{FormNumber: "WHEEL-1"}.IsEmpty())
	assert.False(t, Filter{SubmittedBy: "alice"}.IsEmpty())
	assert.False(t, Filter{SubmittedDate: &date}.IsEmpty())
}

func TestNormalizeFormNumber(t *testing.T) {
	assert.Equal(t, "WHEEL-2025-007", NormalizeFormNumber("  wheel-2025-007 "))
	assert.Equal(t, "ABC", NormalizeFormNumber("abc"))
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	got := DateOf(time.Date(2025, 2, 1, 23, 59, 0, 0, loc))

	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), got)
}
