package claims

import (
	"fmt"
	"time"
)

// IncidentType is the closed set of incident tags a claim can carry.
type IncidentType string

const (
	IncidentAccident    IncidentType = "accident"
	IncidentTheft       IncidentType = "theft"
	IncidentFire        IncidentType = "fire"
	IncidentWaterDamage IncidentType = "water damage"
)

// IncidentTypes returns every known incident type in declaration order.
func IncidentTypes() []IncidentType {
	return []IncidentType{IncidentAccident, IncidentTheft, IncidentFire, IncidentWaterDamage}
}

func (t IncidentType) Valid() bool {
	switch t {
	case IncidentAccident, IncidentTheft, IncidentFire, IncidentWaterDamage:
		return true
	}
	return false
}

// ParseIncidentType matches the exact tag, no case folding.
func ParseIncidentType(s string) (IncidentType, error) {
	t := IncidentType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown incident type %q", s)
	}
	return t, nil
}

// ReasonCode classifies the outcome of an evaluation.
type ReasonCode string

const (
	ReasonPolicyNotFound ReasonCode = "POLICY_NOT_FOUND"
	ReasonPolicyInactive ReasonCode = "POLICY_INACTIVE"
	ReasonNotCovered     ReasonCode = "NOT_COVERED"
	ReasonZeroPayout     ReasonCode = "ZERO_PAYOUT"
	ReasonApproved       ReasonCode = "APPROVED"
)

func ReasonCodes() []ReasonCode {
	return []ReasonCode{ReasonPolicyNotFound, ReasonPolicyInactive, ReasonNotCovered, ReasonZeroPayout, ReasonApproved}
}

func (c ReasonCode) Valid() bool {
	for _, known := range ReasonCodes() {
		if c == known {
			return true
		}
	}
	return false
}

// Approved reports whether the code belongs to an approved result.
func (c ReasonCode) Approved() bool {
	switch c {
	case ReasonApproved:
		return true
	case ReasonPolicyNotFound, ReasonPolicyInactive, ReasonNotCovered, ReasonZeroPayout:
		return false
	default:
		return false
	}
}

// Policy is an insurance contract. StartDate and EndDate are both inclusive.
type Policy struct {
	PolicyID         string
	StartDate        time.Time
	EndDate          time.Time
	Deductible       float64
	CoverageLimit    float64
	CoveredIncidents []IncidentType
}

// Covers reports whether t is listed in CoveredIncidents.
func (p Policy) Covers(t IncidentType) bool {
	for _, c := range p.CoveredIncidents {
		if c == t {
			return true
		}
	}
	return false
}

// ActiveAt reports whether at falls inside [StartDate, EndDate].
func (p Policy) ActiveAt(at time.Time) bool {
	return !at.Before(p.StartDate) && !at.After(p.EndDate)
}

// Claim references its policy by id only.
type Claim struct {
	PolicyID      string
	IncidentType  IncidentType
	IncidentDate  time.Time
	AmountClaimed float64
}

type ClaimResult struct {
	Approved   bool       `json:"approved"`
	Payout     float64    `json:"payout"`
	ReasonCode ReasonCode `json:"reason_code"`
}

func rejected(code ReasonCode) ClaimResult {
	return ClaimResult{Approved: false, Payout: 0, ReasonCode: code}
}

func approved(payout float64) ClaimResult {
	return ClaimResult{Approved: true, Payout: payout, ReasonCode: ReasonApproved}
}
