package main

import (
	"encoding/json"

	"github.com/awmpietro/golang-claim-evaluation-case/internal/catalog"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/claims"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/transport/claimdto"
)

const loadCatalog = `policies:
  - policy_id: POL123
    start_date: "2023-01-01"
    end_date: "2024-01-01"
    deductible: 500
    coverage_limit: 10000
    covered_incidents: [accident, fire]
  - policy_id: POL456
    start_date: "2022-06-01"
    end_date: "2025-06-01"
    deductible: 250
    coverage_limit: 50000
    covered_incidents: [accident, theft]
`

// claimCase is one request body of the mix and the reason code the server must return.
type claimCase struct {
	name string
	body []byte
	want claims.ReasonCode
}

// claimMix covers every reason code against one shared catalog, so the
// server-side catalog cache is hit on every request after the first.
func claimMix() ([]claimCase, error) {
	specs := []struct {
		name  string
		claim catalog.ClaimRecord
		want  claims.ReasonCode
	}{
		{"approved", catalog.ClaimRecord{PolicyID: "POL123", IncidentType: "fire", IncidentDate: "2023-06-15", AmountClaimed: 3000}, claims.ReasonApproved},
		{"capped", catalog.ClaimRecord{PolicyID: "POL123", IncidentType: "accident", IncidentDate: "2023-06-15", AmountClaimed: 20000}, claims.ReasonApproved},
		{"not_found", catalog.ClaimRecord{PolicyID: "POL999", IncidentType: "fire", IncidentDate: "2023-06-15", AmountClaimed: 3000}, claims.ReasonPolicyNotFound},
		{"inactive", catalog.ClaimRecord{PolicyID: "POL123", IncidentType: "fire", IncidentDate: "2025-01-01", AmountClaimed: 3000}, claims.ReasonPolicyInactive},
		{"not_covered", catalog.ClaimRecord{PolicyID: "POL456", IncidentType: "fire", IncidentDate: "2024-02-01", AmountClaimed: 3000}, claims.ReasonNotCovered},
		{"zero_payout", catalog.ClaimRecord{PolicyID: "POL456", IncidentType: "theft", IncidentDate: "2024-02-01", AmountClaimed: 250}, claims.ReasonZeroPayout},
	}

	out := make([]claimCase, 0, len(specs))
	for _, s := range specs {
		claim := s.claim
		body, err := json.Marshal(claimdto.EvaluateRequest{Claim: &claim, CatalogYAML: loadCatalog})
		if err != nil {
			return nil, err
		}
		out = append(out, claimCase{name: s.name, body: body, want: s.want})
	}
	return out, nil
}
