package scenario

import "github.com/awmpietro/golang-claim-evaluation-case/internal/catalog"

// Scenario is a YAML file of claims with their expected outcomes.
type Scenario struct {
	Name     string                 `yaml:"name"`
	Catalog  string                 `yaml:"catalog"`
	Policies []catalog.PolicyRecord `yaml:"policies"`
	Cases    []Case                 `yaml:"cases"`
}

type Case struct {
	Name   string              `yaml:"name"`
	Claim  catalog.ClaimRecord `yaml:"claim"`
	Expect Expectation         `yaml:"expect"`
	Assert string              `yaml:"assert"`
}

// Expectation fields left unset are not checked.
type Expectation struct {
	Approved   *bool    `yaml:"approved"`
	Payout     *float64 `yaml:"payout"`
	ReasonCode string   `yaml:"reason_code"`
}

type RunResult struct {
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Cases  []CaseResult `json:"cases"`
}

type CaseResult struct {
	Index    int      `json:"index"`
	Name     string   `json:"name"`
	PolicyID string   `json:"policy_id"`
	Actual   string   `json:"actual"`
	Passed   bool     `json:"passed"`
	Failures []string `json:"failures,omitempty"`
}
