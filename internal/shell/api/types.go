package api

import (
	"time"

	"github.com/artpar/wheelspec/internal/core/domain"
	"github.com/artpar/wheelspec/internal/core/validation"
)

// =============================================================================
// Request Types
// =============================================================================

// CreateWheelSpecificationRequest is the request body for creating a form.
type CreateWheelSpecificationRequest struct {
	FormNumber    string         `json:"formNumber"`
	SubmittedBy   string         `json:"submittedBy"`
	SubmittedDate string         `json:"submittedDate"`
	Fields        *FieldsRequest `json:"fields"`
}

// FieldsRequest carries the measurement attributes. Absent and null
// attributes decode to nil.
type FieldsRequest struct {
	TreadDiameterNew      *string `json:"treadDiameterNew"`
	LastShopIssueSize     *string `json:"lastShopIssueSize"`
	CondemningDia         *string `json:"condemningDia"`
	WheelGauge            *string `json:"wheelGauge"`
	VariationSameAxle     *string `json:"variationSameAxle"`
	VariationSameBogie    *string `json:"variationSameBogie"`
	VariationSameCoach    *string `json:"variationSameCoach"`
	WheelProfile          *string `json:"wheelProfile"`
	IntermediateWWP       *string `json:"intermediateWWP"`
	BearingSeatDiameter   *string `json:"bearingSeatDiameter"`
	RollerBearingOuterDia *string `json:"rollerBearingOuterDia"`
	RollerBearingBoreDia  *string `json:"rollerBearingBoreDia"`
	RollerBearingWidth    *string `json:"rollerBearingWidth"`
	AxleBoxHousingBoreDia *string `json:"axleBoxHousingBoreDia"`
	WheelDiscWidth        *string `json:"wheelDiscWidth"`
	WheelSeatDiameter     *string `json:"wheelSeatDiameter"`
}

func (r CreateWheelSpecificationRequest) toInput() validation.CreateInput {
	in := validation.CreateInput{
		FormNumber:    r.FormNumber,
		SubmittedBy:   r.SubmittedBy,
		SubmittedDate: r.SubmittedDate,
	}
	if f := r.Fields; f != nil {
		in.Fields = &validation.FieldsInput{
			TreadDiameterNew:      f.TreadDiameterNew,
			LastShopIssueSize:     f.LastShopIssueSize,
			CondemningDia:         f.CondemningDia,
			WheelGauge:            f.WheelGauge,
			VariationSameAxle:     f.VariationSameAxle,
			VariationSameBogie:    f.VariationSameBogie,
			VariationSameCoach:    f.VariationSameCoach,
			WheelProfile:          f.WheelProfile,
			IntermediateWWP:       f.IntermediateWWP,
			BearingSeatDiameter:   f.BearingSeatDiameter,
			RollerBearingOuterDia: f.RollerBearingOuterDia,
			RollerBearingBoreDia:  f.RollerBearingBoreDia,
			RollerBearingWidth:    f.RollerBearingWidth,
			AxleBoxHousingBoreDia: f.AxleBoxHousingBoreDia,
			WheelDiscWidth:        f.WheelDiscWidth,
			WheelSeatDiameter:     f.WheelSeatDiameter,
		}
	}
	return in
}

// =============================================================================
// Response Types
// =============================================================================

// Envelope wraps every API response.
type Envelope struct {
	Data    any                     `json:"data"`
	Message string                  `json:"message"`
	Success bool                    `json:"success"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

// CreatedWheelSpecification is the data returned by create.
type CreatedWheelSpecification struct {
	FormNumber    string `json:"formNumber"`
	SubmittedBy   string `json:"submittedBy"`
	SubmittedDate string `json:"submittedDate"`
	Status        string `json:"status"`
}

// WheelSpecificationSummary is one entry of the list response.
type WheelSpecificationSummary struct {
	FormNumber    string               `json:"formNumber"`
	SubmittedBy   string               `json:"submittedBy"`
	SubmittedDate string               `json:"submittedDate"`
	Fields        domain.FieldsSummary `json:"fields"`
	Status        string               `json:"status"`
}

// WheelSpecificationResponse is the full record.
type WheelSpecificationResponse struct {
	FormNumber    string        `json:"formNumber"`
	SubmittedBy   string        `json:"submittedBy"`
	SubmittedDate string        `json:"submittedDate"`
	Fields        domain.Fields `json:"fields"`
	Status        string        `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the readiness check response.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// =============================================================================
// Converters
// =============================================================================

func toCreated(s *domain.WheelSpecification) CreatedWheelSpecification {
	return CreatedWheelSpecification{
		FormNumber:    s.FormNumber,
		SubmittedBy:   s.SubmittedBy,
		SubmittedDate: s.SubmittedDateString(),
		Status:        string(s.Status),
	}
}

func toSummary(s *domain.WheelSpecification) WheelSpecificationSummary {
	return WheelSpecificationSummary{
		FormNumber:    s.FormNumber,
		SubmittedBy:   s.SubmittedBy,
		SubmittedDate: s.SubmittedDateString(),
		Fields:        s.Fields.Summary(),
		Status:        string(s.Status),
	}
}

func toResponse(s *domain.WheelSpecification) WheelSpecificationResponse {
	return WheelSpecificationResponse{
		FormNumber:    s.FormNumber,
		SubmittedBy:   s.SubmittedBy,
		SubmittedDate: s.SubmittedDateString(),
		Fields:        s.Fields,
		Status:        string(s.Status),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
