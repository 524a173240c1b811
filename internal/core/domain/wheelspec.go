package domain

import (
	"errors"
	"strings"
	"time"
)

// =============================================================================
// Wheel Specification Errors
// =============================================================================

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownStatus     = errors.New("unknown status")
)

// =============================================================================
// Constants
// =============================================================================

const (
	// FormNumberPrefix is the required prefix of every form number.
	FormNumberPrefix = "WHEEL-"

	// DateLayout is the wire and storage layout of submitted dates.
	DateLayout = "2006-01-02"
)

// =============================================================================
// Status
// =============================================================================

type Status string

const (
	StatusSaved    Status = "saved"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// validTransitions lists the statuses reachable from each status.
// Approved forms are final.
var validTransitions = map[Status][]Status{
	StatusSaved:    {StatusPending},
	StatusPending:  {StatusApproved, StatusRejected},
	StatusRejected: {StatusSaved},
	StatusApproved: {},
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// ParseStatus converts a stored status string into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrUnknownStatus
	}
	return s, nil
}

// ValidateTransition checks if a status transition is allowed.
func ValidateTransition(from, to Status) error {
	allowed, exists := validTransitions[from]
	if !exists {
		return ErrInvalidTransition
	}

	for _, s := range allowed {
		if s == to {
			return nil
		}
	}

	return ErrInvalidTransition
}

// =============================================================================
// Fields
// =============================================================================

// Fields holds the measurement attributes of a wheel specification form.
// Every attribute is required.
type Fields struct {
	TreadDiameterNew      string `json:"treadDiameterNew"`
	LastShopIssueSize     string `json:"lastShopIssueSize"`
	CondemningDia         string `json:"condemningDia"`
	WheelGauge            string `json:"wheelGauge"`
	VariationSameAxle     string `json:"variationSameAxle"`
	VariationSameBogie    string `json:"variationSameBogie"`
	VariationSameCoach    string `json:"variationSameCoach"`
	WheelProfile          string `json:"wheelProfile"`
	IntermediateWWP       string `json:"intermediateWWP"`
	BearingSeatDiameter   string `json:"bearingSeatDiameter"`
	RollerBearingOuterDia string `json:"rollerBearingOuterDia"`
	RollerBearingBoreDia  string `json:"rollerBearingBoreDia"`
	RollerBearingWidth    string `json:"rollerBearingWidth"`
	AxleBoxHousingBoreDia string `json:"axleBoxHousingBoreDia"`
	WheelDiscWidth        string `json:"wheelDiscWidth"`
	WheelSeatDiameter     string `json:"wheelSeatDiameter"`
}

// FieldNames lists the JSON names of all measurement attributes in form order.
var FieldNames = []string{
	"treadDiameterNew",
	"lastShopIssueSize",
	"condemningDia",
	"wheelGauge",
	"variationSameAxle",
	"variationSameBogie",
	"variationSameCoach",
	"wheelProfile",
	"intermediateWWP",
	"bearingSeatDiameter",
	"rollerBearingOuterDia",
	"rollerBearingBoreDia",
	"rollerBearingWidth",
	"axleBoxHousingBoreDia",
	"wheelDiscWidth",
	"wheelSeatDiameter",
}

// FieldsSummary is the subset of measurements shown in listings.
type FieldsSummary struct {
	TreadDiameterNew  string `json:"treadDiameterNew"`
	LastShopIssueSize string `json:"lastShopIssueSize"`
	CondemningDia     string `json:"condemningDia"`
	WheelGauge        string `json:"wheelGauge"`
}

// Summary returns the listing projection of the fields.
func (f Fields) Summary() FieldsSummary {
	return FieldsSummary{
		TreadDiameterNew:  f.TreadDiameterNew,
		LastShopIssueSize: f.LastShopIssueSize,
		CondemningDia:     f.CondemningDia,
		WheelGauge:        f.WheelGauge,
	}
}

// =============================================================================
// Wheel Specification
// =============================================================================

// WheelSpecification is a submitted wheel specification form.
type WheelSpecification struct {
	FormNumber    string    `json:"formNumber"`
	SubmittedBy   string    `json:"submittedBy"`
	SubmittedDate time.Time `json:"submittedDate"`
	Fields        Fields    `json:"fields"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewWheelSpecification creates an unsaved form in the saved status.
// Inputs are expected to be validated already.
func NewWheelSpecification(formNumber, submittedBy string, submittedDate time.Time, fields Fields) *WheelSpecification {
	return &WheelSpecification{
		FormNumber:    formNumber,
		SubmittedBy:   submittedBy,
		SubmittedDate: DateOf(submittedDate),
		Fields:        fields,
		Status:        StatusSaved,
	}
}

// Transition moves the form to a new status.
func (w *WheelSpecification) Transition(to Status) error {
	if err := ValidateTransition(w.Status, to); err != nil {
		return err
	}
	w.Status = to
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// SubmittedDateString returns the submitted date in DateLayout.
func (w *WheelSpecification) SubmittedDateString() string {
	return w.SubmittedDate.Format(DateLayout)
}

// =============================================================================
// Filter
// =============================================================================

// Filter selects wheel specifications. Empty fields are not constrained.
type Filter struct {
	FormNumber    string
	SubmittedBy   string
	SubmittedDate *time.Time
}

// IsEmpty reports whether the filter constrains nothing.
func (f Filter) IsEmpty() bool {
	return f.FormNumber == "" && f.SubmittedBy == "" && f.SubmittedDate == nil
}

// =============================================================================
// Dates
// =============================================================================

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizeFormNumber trims and uppercases a form number.
func NormalizeFormNumber(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
