package claims

import (
	"fmt"
	"strings"

	"github.com/awalterschulze/gographviz"
)

const graphName = "ClaimEvaluation"

var rejectionByGuard = map[Guard]ReasonCode{
	GuardPolicyLookup:   ReasonPolicyNotFound,
	GuardActivityWindow: ReasonPolicyInactive,
	GuardCoverage:       ReasonNotCovered,
	GuardPayout:         ReasonZeroPayout,
}

// RenderTrace draws the guard chain as Graphviz DOT. When trace is non-nil the
// path it took is highlighted.
func RenderTrace(trace *DecisionTrace) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(graphName); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}
	if err := g.AddAttr(graphName, "rankdir", "LR"); err != nil {
		return "", err
	}

	visited := map[Guard]bool{}
	for _, v := range trace.Visited() {
		visited[v] = true
	}
	outcome := ReasonCode("")
	if trace != nil {
		outcome = trace.Outcome
	}

	guards := Guards()
	for _, guard := range guards {
		attrs := map[string]string{
			"label": quote(strings.ReplaceAll(string(guard), "_", " ")),
			"shape": "box",
		}
		if visited[guard] {
			attrs["style"] = "filled"
			attrs["fillcolor"] = "lightblue"
		}
		if err := g.AddNode(graphName, string(guard), attrs); err != nil {
			return "", fmt.Errorf("add guard node %s: %w", guard, err)
		}
	}

	for _, code := range ReasonCodes() {
		attrs := map[string]string{"shape": "ellipse"}
		if code == outcome {
			attrs["style"] = "filled"
			if code.Approved() {
				attrs["fillcolor"] = "palegreen"
			} else {
				attrs["fillcolor"] = "salmon"
			}
		}
		if err := g.AddNode(graphName, string(code), attrs); err != nil {
			return "", fmt.Errorf("add outcome node %s: %w", code, err)
		}
	}

	for i, guard := range guards {
		next := string(ReasonApproved)
		if i+1 < len(guards) {
			next = string(guards[i+1])
		}
		taken := visited[guard] && (i+1 < len(guards) && visited[guards[i+1]] || next == string(outcome))
		if err := g.AddEdge(string(guard), next, true, edgeAttrs("pass", taken)); err != nil {
			return "", fmt.Errorf("add edge %s -> %s: %w", guard, next, err)
		}

		code, ok := rejectionByGuard[guard]
		if !ok {
			continue
		}
		taken = trace != nil && trace.FailedGuard == guard
		if err := g.AddEdge(string(guard), string(code), true, edgeAttrs("fail", taken)); err != nil {
			return "", fmt.Errorf("add edge %s -> %s: %w", guard, code, err)
		}
	}

	return g.String(), nil
}

func edgeAttrs(label string, taken bool) map[string]string {
	attrs := map[string]string{"label": quote(label)}
	if taken {
		attrs["color"] = "blue"
		attrs["penwidth"] = "2"
	}
	return attrs
}

func quote(s string) string {
	return `"` + s + `"`
}
