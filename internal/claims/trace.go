package claims

type DecisionTrace struct {
	PolicyID    string      `json:"policy_id"`
	Steps       []GuardStep `json:"steps"`
	Outcome     ReasonCode  `json:"outcome"`
	FailedGuard Guard       `json:"failed_guard,omitempty"`
	Capped      bool        `json:"capped,omitempty"`
}

type GuardStep struct {
	Guard          Guard  `json:"guard"`
	Passed         bool   `json:"passed"`
	Detail         string `json:"detail,omitempty"`
	DurationMicros int64  `json:"duration_micros"`
}

// Visited lists the guards that ran, in order.
func (t *DecisionTrace) Visited() []Guard {
	if t == nil {
		return nil
	}
	out := make([]Guard, 0, len(t.Steps))
	for _, s := range t.Steps {
		out = append(out, s.Guard)
	}
	return out
}
