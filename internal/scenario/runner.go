package scenario

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/awmpietro/golang-claim-evaluation-case/internal/catalog"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/claims"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/scenario/expect"
)

const payoutTolerance = 1e-9

// Evaluator is satisfied by *claims.Engine.
type Evaluator interface {
	Evaluate(claim claims.Claim, policies []claims.Policy) claims.ClaimResult
}

// Run evaluates every case against policies. Cases are independent.
func Run(s *Scenario, policies []claims.Policy, ev Evaluator) *RunResult {
	result := &RunResult{
		Name:  s.Name,
		Total: len(s.Cases),
	}

	for i, c := range s.Cases {
		cr := CaseResult{
			Index:    i + 1,
			Name:     c.Name,
			PolicyID: c.Claim.PolicyID,
		}

		claim, err := c.Claim.ToClaim()
		if err != nil {
			cr.Actual = "error"
			cr.Failures = append(cr.Failures, err.Error())
		} else {
			res := ev.Evaluate(claim, policies)
			cr.Actual = fmt.Sprintf("%s payout=%.2f", res.ReasonCode, res.Payout)
			cr.Failures = check(c, claim, res)
		}

		if len(cr.Failures) == 0 {
			cr.Passed = true
			result.Passed++
		} else {
			result.Failed++
		}
		result.Cases = append(result.Cases, cr)
	}

	return result
}

func check(c Case, claim claims.Claim, res claims.ClaimResult) []string {
	var failures []string

	if c.Expect.Approved != nil && *c.Expect.Approved != res.Approved {
		failures = append(failures, fmt.Sprintf("expected approved=%t, got %t", *c.Expect.Approved, res.Approved))
	}
	if c.Expect.Payout != nil && math.Abs(*c.Expect.Payout-res.Payout) > payoutTolerance {
		failures = append(failures, fmt.Sprintf("expected payout=%.2f, got %.2f", *c.Expect.Payout, res.Payout))
	}
	if c.Expect.ReasonCode != "" && claims.ReasonCode(c.Expect.ReasonCode) != res.ReasonCode {
		failures = append(failures, fmt.Sprintf("expected reason_code=%s, got %s", c.Expect.ReasonCode, res.ReasonCode))
	}

	if c.Assert != "" {
		ok, err := expect.Eval(c.Assert, assertionVars(claim, res))
		switch {
		case err != nil:
			failures = append(failures, fmt.Sprintf("assert %q: %v", c.Assert, err))
		case !ok:
			failures = append(failures, fmt.Sprintf("assert %q is false", c.Assert))
		}
	}

	return failures
}

func assertionVars(claim claims.Claim, res claims.ClaimResult) map[string]any {
	return map[string]any{
		"approved":       res.Approved,
		"payout":         res.Payout,
		"reason_code":    string(res.ReasonCode),
		"policy_id":      claim.PolicyID,
		"incident_type":  string(claim.IncidentType),
		"amount_claimed": claim.AmountClaimed,
	}
}

// Load reads a scenario file and resolves its policies. A catalog path is
// relative to the scenario file; inline policies are appended after it.
func Load(path string) (*Scenario, []claims.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = filepath.Base(path)
	}
	if len(s.Cases) == 0 {
		return nil, nil, fmt.Errorf("scenario %s has no cases", path)
	}

	var policies []claims.Policy
	if s.Catalog != "" {
		catalogPath := s.Catalog
		if !filepath.IsAbs(catalogPath) {
			catalogPath = filepath.Join(filepath.Dir(path), catalogPath)
		}
		loaded, _, err := catalog.LoadFile(catalogPath)
		if err != nil {
			return nil, nil, err
		}
		policies = append(policies, loaded...)
	}

	inline, err := catalog.ToPolicies(s.Policies)
	if err != nil {
		return nil, nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	policies = append(policies, inline...)

	return &s, policies, nil
}

// LoadAndRun loads a scenario file and runs it.
func LoadAndRun(path string, ev Evaluator) (*RunResult, error) {
	s, policies, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Run(s, policies, ev), nil
}
