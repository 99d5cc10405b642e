package claimdto

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/awmpietro/golang-claim-evaluation-case/internal/app"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/catalog"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/claims"
)

type EvaluateRequest struct {
	Claim          *catalog.ClaimRecord   `json:"claim"`
	Policies       []catalog.PolicyRecord `json:"policies,omitempty"`
	CatalogYAML    string                 `json:"catalog_yaml,omitempty"`
	CatalogID      string                 `json:"catalog_id,omitempty"`
	CatalogVersion string                 `json:"catalog_version,omitempty"`
	Debug          bool                   `json:"debug,omitempty"`
}

func (r EvaluateRequest) Options() app.EvaluateOptions {
	return app.EvaluateOptions{
		CatalogID:      r.CatalogID,
		CatalogVersion: r.CatalogVersion,
	}
}

// Decode turns the wire request into a service request. Errors here are
// always caller mistakes (400).
func (r EvaluateRequest) Decode() (app.Request, error) {
	if r.Claim == nil {
		return app.Request{}, fmt.Errorf("claim is required")
	}
	claim, err := r.Claim.ToClaim()
	if err != nil {
		return app.Request{}, err
	}
	policies, err := catalog.ToPolicies(r.Policies)
	if err != nil {
		return app.Request{}, err
	}
	if len(r.Policies) == 0 {
		policies = nil
	}

	return app.Request{
		Claim:   claim,
		Catalog: app.Catalog{Policies: policies, YAML: r.CatalogYAML},
		Options: r.Options(),
	}, nil
}

type EvaluateResponse struct {
	DecisionID string                `json:"decision_id"`
	Result     claims.ClaimResult    `json:"result"`
	Trace      *claims.DecisionTrace `json:"trace,omitempty"`
	Catalog    *app.CatalogInfo      `json:"catalog,omitempty"`
}

func FromDecision(d *app.Decision) EvaluateResponse {
	return EvaluateResponse{
		DecisionID: d.ID,
		Result:     d.Result,
		Trace:      d.Trace,
		Catalog:    d.Catalog,
	}
}

// StatusFor maps a service error to an HTTP status. Business rejections are
// not errors and never reach here.
func StatusFor(err error) int {
	var vErr *claims.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func ErrorBody(msg string, err error) map[string]any {
	body := map[string]any{
		"error":   msg,
		"details": err.Error(),
	}
	var vErr *claims.ValidationError
	if errors.As(err, &vErr) {
		body["problems"] = vErr.Problems
	}
	return body
}
