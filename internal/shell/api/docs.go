package api

import (
	"net/http"

	"github.com/artpar/wheelspec/internal/shell/api/openapi"
)

// newAPIDocument describes the routes served by Handler.Routes.
func newAPIDocument() *openapi.Generator {
	g := openapi.NewGenerator()

	g.Register(openapi.Route{
		Method:      http.MethodPost,
		Path:        FormsPath,
		OperationID: "createWheelSpecification",
		Summary:     "Submit a wheel specification form",
		Tag:         "WheelSpecifications",
		Request:     CreateWheelSpecificationRequest{},
		Data:        CreatedWheelSpecification{},
		Responses: map[int]string{
			http.StatusCreated:             "Form created",
			http.StatusBadRequest:          "Malformed body or failed validation",
			http.StatusConflict:            "Form number already exists",
			http.StatusInternalServerError: "Storage failure",
		},
	})

	g.Register(openapi.Route{
		Method:      http.MethodGet,
		Path:        FormsPath,
		OperationID: "listWheelSpecifications",
		Summary:     "List wheel specification forms",
		Tag:         "WheelSpecifications",
		Query:       []string{"formNumber", "submittedBy", "submittedDate"},
		Data:        []WheelSpecificationSummary{},
		Responses: map[int]string{
			http.StatusOK:                  "Matching forms",
			http.StatusBadRequest:          "Malformed submittedDate",
			http.StatusInternalServerError: "Storage failure",
		},
	})

	g.Register(openapi.Route{
		Method:      http.MethodGet,
		Path:        FormsPath + "/{formNumber}",
		OperationID: "getWheelSpecification",
		Summary:     "Get one wheel specification form",
		Tag:         "WheelSpecifications",
		Data:        WheelSpecificationResponse{},
		Responses: map[int]string{
			http.StatusOK:                  "The form",
			http.StatusNotFound:            "No form with this number",
			http.StatusInternalServerError: "Storage failure",
		},
	})

	g.Register(openapi.Route{
		Method:      http.MethodGet,
		Path:        "/health",
		OperationID: "health",
		Summary:     "Liveness probe",
		Tag:         "Operations",
		Data:        HealthResponse{},
		Raw:         true,
		Responses:   map[int]string{http.StatusOK: "Service is up"},
	})

	g.Register(openapi.Route{
		Method:      http.MethodGet,
		Path:        "/ready",
		OperationID: "ready",
		Summary:     "Readiness probe",
		Tag:         "Operations",
		Data:        ReadyResponse{},
		Raw:         true,
		Responses: map[int]string{
			http.StatusOK:                 "Database reachable",
			http.StatusServiceUnavailable: "Database unreachable",
		},
	})

	return g
}
