package claims

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed input. It is never a reason code.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Problems, "; ")
}

// Validate checks the claim and every policy. Evaluate itself does not call it;
// callers that want strict input opt in.
func Validate(claim Claim, policies []Policy) error {
	var problems []string
	problems = append(problems, ValidateClaim(claim)...)

	seen := make(map[string]int, len(policies))
	for i, p := range policies {
		for _, pr := range ValidatePolicy(p) {
			problems = append(problems, fmt.Sprintf("policies[%d]: %s", i, pr))
		}
		if p.PolicyID == "" {
			continue
		}
		if first, dup := seen[p.PolicyID]; dup {
			problems = append(problems, fmt.Sprintf("policies[%d]: duplicate policy_id %q (first at index %d)", i, p.PolicyID, first))
			continue
		}
		seen[p.PolicyID] = i
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func ValidateClaim(c Claim) []string {
	var problems []string
	if c.PolicyID == "" {
		problems = append(problems, "claim: policy_id is required")
	}
	if !c.IncidentType.Valid() {
		problems = append(problems, fmt.Sprintf("claim: unknown incident_type %q", c.IncidentType))
	}
	if c.IncidentDate.IsZero() {
		problems = append(problems, "claim: incident_date is required")
	}
	if c.AmountClaimed < 0 {
		problems = append(problems, fmt.Sprintf("claim: amount_claimed must be non-negative (got %v)", c.AmountClaimed))
	}
	return problems
}

func ValidatePolicy(p Policy) []string {
	var problems []string
	if p.PolicyID == "" {
		problems = append(problems, "policy_id is required")
	}
	if p.StartDate.After(p.EndDate) {
		problems = append(problems, "start_date is after end_date")
	}
	if p.Deductible < 0 {
		problems = append(problems, fmt.Sprintf("deductible must be non-negative (got %v)", p.Deductible))
	}
	if p.CoverageLimit < 0 {
		problems = append(problems, fmt.Sprintf("coverage_limit must be non-negative (got %v)", p.CoverageLimit))
	}
	for _, t := range p.CoveredIncidents {
		if !t.Valid() {
			problems = append(problems, fmt.Sprintf("unknown covered incident %q", t))
		}
	}
	return problems
}
