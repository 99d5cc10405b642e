package claims

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// Guard names one step of the evaluation chain.
type Guard string

const (
	GuardPolicyLookup   Guard = "policy_lookup"
	GuardActivityWindow Guard = "activity_window"
	GuardCoverage       Guard = "coverage"
	GuardPayout         Guard = "payout"
	GuardCap            Guard = "cap"
)

// Guards returns the chain in evaluation order.
func Guards() []Guard {
	return []Guard{GuardPolicyLookup, GuardActivityWindow, GuardCoverage, GuardPayout, GuardCap}
}

type evaluation struct {
	claim    Claim
	policies []Policy
	policy   *Policy
	raw      float64
	payout   float64
	capped   bool

	// withDetail is set for traced runs; guards skip formatting otherwise.
	withDetail bool
}

// check returns passed=false together with the rejection code when the guard fails.
type check func(ev *evaluation) (passed bool, code ReasonCode, detail string)

type guardStep struct {
	guard Guard
	check check
}

var chain = []guardStep{
	{guard: GuardPolicyLookup, check: lookupPolicy},
	{guard: GuardActivityWindow, check: checkActivityWindow},
	{guard: GuardCoverage, check: checkCoverage},
	{guard: GuardPayout, check: computePayout},
	{guard: GuardCap, check: applyCap},
}

func lookupPolicy(ev *evaluation) (bool, ReasonCode, string) {
	for i := range ev.policies {
		if ev.policies[i].PolicyID == ev.claim.PolicyID {
			ev.policy = &ev.policies[i]
			if !ev.withDetail {
				return true, "", ""
			}
			return true, "", fmt.Sprintf("matched policy at index %d", i)
		}
	}
	if !ev.withDetail {
		return false, ReasonPolicyNotFound, ""
	}
	return false, ReasonPolicyNotFound, fmt.Sprintf("no policy with id %q among %d", ev.claim.PolicyID, len(ev.policies))
}

func checkActivityWindow(ev *evaluation) (bool, ReasonCode, string) {
	ok := ev.policy.ActiveAt(ev.claim.IncidentDate)
	var detail string
	if ev.withDetail {
		detail = fmt.Sprintf("incident=%s window=[%s, %s]",
			ev.claim.IncidentDate.Format(time.RFC3339),
			ev.policy.StartDate.Format(time.RFC3339),
			ev.policy.EndDate.Format(time.RFC3339),
		)
	}
	if !ok {
		return false, ReasonPolicyInactive, detail
	}
	return true, "", detail
}

func checkCoverage(ev *evaluation) (bool, ReasonCode, string) {
	ok := ev.policy.Covers(ev.claim.IncidentType)
	var detail string
	if ev.withDetail {
		detail = fmt.Sprintf("incident_type=%q covered=%v", ev.claim.IncidentType, ev.policy.CoveredIncidents)
	}
	if !ok {
		return false, ReasonNotCovered, detail
	}
	return true, "", detail
}

func computePayout(ev *evaluation) (bool, ReasonCode, string) {
	ev.raw = ev.claim.AmountClaimed - ev.policy.Deductible
	var detail string
	if ev.withDetail {
		detail = fmt.Sprintf("claimed=%.2f deductible=%.2f raw=%.2f", ev.claim.AmountClaimed, ev.policy.Deductible, ev.raw)
	}
	if ev.raw <= 0 {
		return false, ReasonZeroPayout, detail
	}
	return true, "", detail
}

// applyCap never rejects: a capped payout is still approved.
func applyCap(ev *evaluation) (bool, ReasonCode, string) {
	ev.payout = math.Min(ev.raw, ev.policy.CoverageLimit)
	ev.capped = ev.payout < ev.raw
	if !ev.withDetail {
		return true, "", ""
	}
	return true, "", fmt.Sprintf("raw=%.2f limit=%.2f capped=%t", ev.raw, ev.policy.CoverageLimit, ev.capped)
}

// Evaluate decides a claim against policies. It never mutates its inputs and
// is safe to call concurrently. The first failing guard decides the result.
func Evaluate(claim Claim, policies []Policy) ClaimResult {
	ev := &evaluation{claim: claim, policies: policies}
	for _, step := range chain {
		if ok, code, _ := step.check(ev); !ok {
			return rejected(code)
		}
	}
	return approved(ev.payout)
}

// Engine runs the same chain as Evaluate with per-guard instrumentation.
// It holds no per-call state.
type Engine struct {
	latencyObserver GuardLatencyObserver
	logger          *zap.Logger
}

type EngineOption func(*Engine)

func WithGuardLatencyObserver(observer GuardLatencyObserver) EngineOption {
	return func(e *Engine) {
		e.latencyObserver = observer
	}
}

func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

func (e *Engine) Evaluate(claim Claim, policies []Policy) ClaimResult {
	res, _ := e.run(claim, policies, false)
	return res
}

// EvaluateWithTrace returns the result plus every guard that ran.
func (e *Engine) EvaluateWithTrace(claim Claim, policies []Policy) (ClaimResult, *DecisionTrace) {
	return e.run(claim, policies, true)
}

func (e *Engine) run(claim Claim, policies []Policy, withTrace bool) (ClaimResult, *DecisionTrace) {
	ev := &evaluation{claim: claim, policies: policies, withDetail: withTrace}

	var trace *DecisionTrace
	if withTrace {
		trace = &DecisionTrace{PolicyID: claim.PolicyID, Steps: make([]GuardStep, 0, len(chain))}
	}

	result := ClaimResult{}
	decided := false
	for _, step := range chain {
		start := time.Now()
		ok, code, detail := step.check(ev)
		dur := time.Since(start)
		e.observeGuardLatency(step.guard, dur)

		if trace != nil {
			trace.Steps = append(trace.Steps, GuardStep{
				Guard:          step.guard,
				Passed:         ok,
				Detail:         detail,
				DurationMicros: dur.Microseconds(),
			})
		}
		if !ok {
			result = rejected(code)
			decided = true
			if trace != nil {
				trace.FailedGuard = step.guard
			}
			break
		}
	}
	if !decided {
		result = approved(ev.payout)
	}

	if trace != nil {
		trace.Outcome = result.ReasonCode
		trace.Capped = ev.capped
	}

	e.logger.Debug("claim evaluated",
		zap.String("policy_id", claim.PolicyID),
		zap.String("incident_type", string(claim.IncidentType)),
		zap.String("reason_code", string(result.ReasonCode)),
		zap.Bool("approved", result.Approved),
		zap.Float64("payout", result.Payout),
	)

	return result, trace
}

func (e *Engine) observeGuardLatency(guard Guard, duration time.Duration) {
	if e.latencyObserver == nil {
		return
	}
	e.latencyObserver.ObserveGuardLatency(guard, duration)
}
