package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/awmpietro/golang-claim-evaluation-case/internal/claims"
)

const dateLayout = "2006-01-02"

// PolicyRecord is the wire/file shape of a claims.Policy.
type PolicyRecord struct {
	PolicyID         string   `json:"policy_id" yaml:"policy_id"`
	StartDate        string   `json:"start_date" yaml:"start_date"`
	EndDate          string   `json:"end_date" yaml:"end_date"`
	Deductible       float64  `json:"deductible" yaml:"deductible"`
	CoverageLimit    float64  `json:"coverage_limit" yaml:"coverage_limit"`
	CoveredIncidents []string `json:"covered_incidents" yaml:"covered_incidents"`
}

// ClaimRecord is the wire/file shape of a claims.Claim.
type ClaimRecord struct {
	PolicyID      string  `json:"policy_id" yaml:"policy_id"`
	IncidentType  string  `json:"incident_type" yaml:"incident_type"`
	IncidentDate  string  `json:"incident_date" yaml:"incident_date"`
	AmountClaimed float64 `json:"amount_claimed" yaml:"amount_claimed"`
}

// ParseTime accepts a calendar date (UTC midnight) or an RFC 3339 instant.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD or RFC 3339)", s)
	}
	return t, nil
}

func formatTime(t time.Time) string {
	if t.Equal(t.Truncate(24*time.Hour)) && t.Location() == time.UTC {
		return t.Format(dateLayout)
	}
	return t.Format(time.RFC3339Nano)
}

func (r PolicyRecord) ToPolicy() (claims.Policy, error) {
	start, err := ParseTime(r.StartDate)
	if err != nil {
		return claims.Policy{}, fmt.Errorf("policy %q start_date: %w", r.PolicyID, err)
	}
	end, err := ParseTime(r.EndDate)
	if err != nil {
		return claims.Policy{}, fmt.Errorf("policy %q end_date: %w", r.PolicyID, err)
	}

	covered := make([]claims.IncidentType, 0, len(r.CoveredIncidents))
	for _, raw := range r.CoveredIncidents {
		it, err := claims.ParseIncidentType(raw)
		if err != nil {
			return claims.Policy{}, fmt.Errorf("policy %q covered_incidents: %w", r.PolicyID, err)
		}
		covered = append(covered, it)
	}

	return claims.Policy{
		PolicyID:         r.PolicyID,
		StartDate:        start,
		EndDate:          end,
		Deductible:       r.Deductible,
		CoverageLimit:    r.CoverageLimit,
		CoveredIncidents: covered,
	}, nil
}

func FromPolicy(p claims.Policy) PolicyRecord {
	covered := make([]string, 0, len(p.CoveredIncidents))
	for _, it := range p.CoveredIncidents {
		covered = append(covered, string(it))
	}
	return PolicyRecord{
		PolicyID:         p.PolicyID,
		StartDate:        formatTime(p.StartDate),
		EndDate:          formatTime(p.EndDate),
		Deductible:       p.Deductible,
		CoverageLimit:    p.CoverageLimit,
		CoveredIncidents: covered,
	}
}

func (r ClaimRecord) ToClaim() (claims.Claim, error) {
	it, err := claims.ParseIncidentType(r.IncidentType)
	if err != nil {
		return claims.Claim{}, fmt.Errorf("claim incident_type: %w", err)
	}
	at, err := ParseTime(r.IncidentDate)
	if err != nil {
		return claims.Claim{}, fmt.Errorf("claim incident_date: %w", err)
	}
	return claims.Claim{
		PolicyID:      r.PolicyID,
		IncidentType:  it,
		IncidentDate:  at,
		AmountClaimed: r.AmountClaimed,
	}, nil
}

func FromClaim(c claims.Claim) ClaimRecord {
	return ClaimRecord{
		PolicyID:      c.PolicyID,
		IncidentType:  string(c.IncidentType),
		IncidentDate:  formatTime(c.IncidentDate),
		AmountClaimed: c.AmountClaimed,
	}
}

// ToPolicies converts records in order; the first bad record aborts.
func ToPolicies(records []PolicyRecord) ([]claims.Policy, error) {
	out := make([]claims.Policy, 0, len(records))
	for i, r := range records {
		p, err := r.ToPolicy()
		if err != nil {
			return nil, fmt.Errorf("policies[%d]: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}
