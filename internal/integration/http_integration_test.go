package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/awmpietro/golang-claim-evaluation-case/internal/app"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/catalog"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/catalog/cache"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/claims"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/scenario"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/transport/httptransport"
)

const homeCatalog = `policies:
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

func newEvaluateServer(opts ...app.ServiceOption) *httptest.Server {
	engine := claims.NewEngine()
	c := cache.NewInMemory(1024)
	svc := app.NewService(catalog.NewParser(), engine, c, opts...)
	h := httptransport.NewHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("/evaluate", h.Evaluate)
	return httptest.NewServer(mux)
}

func TestScenarioFiles_Integration(t *testing.T) {
	path := filepath.Join("..", "scenario", "testdata", "fire_policy.yaml")

	r, err := scenario.LoadAndRun(path, claims.NewEngine())
	if err != nil {
		t.Fatal(err)
	}
	if r.Failed != 0 {
		t.Fatalf("expected all cases to pass:\n%s", scenario.FormatText([]*scenario.RunResult{r}))
	}
}

func postEvaluate(t *testing.T, srv *httptest.Server, rawBody string) (int, map[string]any, string) {
	t.Helper()

	resp, err := http.Post(srv.URL+"/evaluate", "application/json", bytes.NewBufferString(rawBody))
	if err != nil {
		t.Fatalf("post /evaluate failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response failed: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return resp.StatusCode, nil, string(body)
	}
	return resp.StatusCode, out, string(body)
}

func postEvaluateJSON(t *testing.T, srv *httptest.Server, payload map[string]any) (int, map[string]any, string) {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	return postEvaluate(t, srv, string(b))
}

func claimBody(policyID, incident, date string, amount float64) map[string]any {
	return map[string]any{
		"policy_id":      policyID,
		"incident_type":  incident,
		"incident_date":  date,
		"amount_claimed": amount,
	}
}

func TestHTTPEvaluate_EndToEndSuccess(t *testing.T) {
	srv := newEvaluateServer()
	defer srv.Close()

	status, out, body := postEvaluateJSON(t, srv, map[string]any{
		"claim":        claimBody("POL123", "fire", "2023-06-15", 3000),
		"catalog_yaml": homeCatalog,
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	result, ok := out["result"].(map[string]any)
	if !ok {
		t.Fatalf("missing result object: %#v", out)
	}
	if result["approved"] != true || result["payout"] != 2500.0 || result["reason_code"] != "APPROVED" {
		t.Fatalf("unexpected result: %#v", result)
	}
	if id, _ := out["decision_id"].(string); id == "" {
		t.Fatalf("expected decision_id")
	}
}

func TestHTTPEvaluate_CoversEveryReasonCode(t *testing.T) {
	srv := newEvaluateServer()
	defer srv.Close()

	tests := []struct {
		name       string
		claim      map[string]any
		wantCode   string
		wantPayout float64
		wantAppr   bool
	}{
		{name: "approved", claim: claimBody("POL123", "fire", "2023-06-15", 3000), wantCode: "APPROVED", wantPayout: 2500, wantAppr: true},
		{name: "capped", claim: claimBody("POL123", "accident", "2023-06-15", 20000), wantCode: "APPROVED", wantPayout: 10000, wantAppr: true},
		{name: "not found", claim: claimBody("POL999", "fire", "2023-06-15", 3000), wantCode: "POLICY_NOT_FOUND"},
		{name: "inactive", claim: claimBody("POL123", "fire", "2025-01-01", 3000), wantCode: "POLICY_INACTIVE"},
		{name: "not covered", claim: claimBody("POL123", "theft", "2023-06-15", 3000), wantCode: "NOT_COVERED"},
		{name: "zero payout", claim: claimBody("POL123", "fire", "2023-06-15", 500), wantCode: "ZERO_PAYOUT"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, out, body := postEvaluateJSON(t, srv, map[string]any{
				"claim":        tc.claim,
				"catalog_yaml": homeCatalog,
			})
			if status != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", status, body)
			}
			result := out["result"].(map[string]any)
			if result["reason_code"] != tc.wantCode {
				t.Fatalf("expected %s, got %#v", tc.wantCode, result["reason_code"])
			}
			if result["approved"] != tc.wantAppr || result["payout"] != tc.wantPayout {
				t.Fatalf("unexpected result: %#v", result)
			}
		})
	}
}

func TestHTTPEvaluate_InlinePolicies(t *testing.T) {
	srv := newEvaluateServer()
	defer srv.Close()

	status, out, body := postEvaluateJSON(t, srv, map[string]any{
		"claim": claimBody("POL9", "water damage", "2024-03-01", 800),
		"policies": []map[string]any{{
			"policy_id":         "POL9",
			"start_date":        "2024-01-01",
			"end_date":          "2024-12-31",
			"deductible":        100,
			"coverage_limit":    5000,
			"covered_incidents": []string{"water damage"},
		}},
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	result := out["result"].(map[string]any)
	if result["payout"] != 700.0 {
		t.Fatalf("expected payout 700, got %#v", result["payout"])
	}
}

func TestHTTPEvaluate_InputErrors(t *testing.T) {
	srv := newEvaluateServer()
	defer srv.Close()

	t.Run("invalid_json", func(t *testing.T) {
		status, _, _ := postEvaluate(t, srv, `{`)
		if status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", status)
		}
	})

	t.Run("invalid_catalog_yaml", func(t *testing.T) {
		status, out, _ := postEvaluateJSON(t, srv, map[string]any{
			"claim":        claimBody("POL123", "fire", "2023-06-15", 3000),
			"catalog_yaml": "policies: [",
		})
		if status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", status)
		}
		if out["details"] == nil {
			t.Fatalf("expected error details")
		}
	})

	t.Run("unknown_incident_type", func(t *testing.T) {
		status, out, _ := postEvaluateJSON(t, srv, map[string]any{
			"claim":        claimBody("POL123", "Fire", "2023-06-15", 3000),
			"catalog_yaml": homeCatalog,
		})
		if status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", status)
		}
		details, _ := out["details"].(string)
		if !strings.Contains(details, "unknown incident type") {
			t.Fatalf("unexpected details: %q", details)
		}
	})

	t.Run("both_catalog_sources", func(t *testing.T) {
		status, _, _ := postEvaluateJSON(t, srv, map[string]any{
			"claim":        claimBody("POL123", "fire", "2023-06-15", 3000),
			"catalog_yaml": homeCatalog,
			"policies":     []map[string]any{{"policy_id": "A", "start_date": "2023-01-01", "end_date": "2023-02-01"}},
		})
		if status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", status)
		}
	})
}

func TestHTTPEvaluate_StrictValidation(t *testing.T) {
	srv := newEvaluateServer(app.WithStrictValidation(true))
	defer srv.Close()

	malformed := strings.Replace(homeCatalog, "deductible: 500", "deductible: -500", 1)
	status, out, body := postEvaluateJSON(t, srv, map[string]any{
		"claim":        claimBody("POL123", "fire", "2023-06-15", 3000),
		"catalog_yaml": malformed,
	})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", status, body)
	}
	if out["problems"] == nil {
		t.Fatalf("expected problems list: %s", body)
	}
}

func TestHTTPEvaluate_DebugTrace(t *testing.T) {
	srv := newEvaluateServer()
	defer srv.Close()

	status, out, _ := postEvaluateJSON(t, srv, map[string]any{
		"claim":        claimBody("POL123", "theft", "2023-06-15", 3000),
		"catalog_yaml": homeCatalog,
		"debug":        true,
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	trace, ok := out["trace"].(map[string]any)
	if !ok {
		t.Fatalf("expected trace in response")
	}
	if trace["failed_guard"] != "coverage" || trace["outcome"] != "NOT_COVERED" {
		t.Fatalf("unexpected trace: %#v", trace)
	}
}

func TestHTTPEvaluate_CatalogVersioningValidAndInvalid(t *testing.T) {
	srv := newEvaluateServer()
	defer srv.Close()

	t.Run("valid_pair", func(t *testing.T) {
		status, out, _ := postEvaluateJSON(t, srv, map[string]any{
			"claim":           claimBody("POL123", "fire", "2023-06-15", 3000),
			"catalog_yaml":    homeCatalog,
			"catalog_id":      "home",
			"catalog_version": "2023.1",
		})
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		info := out["catalog"].(map[string]any)
		if info["id"] != "home" || info["version"] != "2023.1" {
			t.Fatalf("unexpected catalog info: %#v", info)
		}
		if info["hash"] != catalog.Hash(homeCatalog) {
			t.Fatalf("unexpected catalog hash: %#v", info["hash"])
		}
	})

	t.Run("invalid_pair", func(t *testing.T) {
		status, out, _ := postEvaluateJSON(t, srv, map[string]any{
			"claim":        claimBody("POL123", "fire", "2023-06-15", 3000),
			"catalog_yaml": homeCatalog,
			"catalog_id":   "home",
		})
		if status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", status)
		}
		details, _ := out["details"].(string)
		if !strings.Contains(details, "catalog_id and catalog_version") {
			t.Fatalf("unexpected details: %q", details)
		}
	})
}

func TestHTTPEvaluate_ConcurrentRequests(t *testing.T) {
	srv := newEvaluateServer()
	defer srv.Close()

	const n = 80
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			incident, want := "fire", "APPROVED"
			if i%3 == 1 {
				incident, want = "theft", "NOT_COVERED"
			}
			status, out, body := postEvaluateNoFatal(srv, map[string]any{
				"claim":        claimBody("POL123", incident, "2023-06-15", 3000),
				"catalog_yaml": homeCatalog,
			})
			if status != http.StatusOK {
				errs <- &integrationErr{msg: "status not ok", body: body}
				return
			}
			result, _ := out["result"].(map[string]any)
			if result == nil || result["reason_code"] != want {
				errs <- &integrationErr{msg: fmt.Sprintf("expected %s", want), body: body}
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatal(err)
	}
}

type integrationErr struct {
	msg  string
	body string
}

func (e *integrationErr) Error() string {
	return e.msg + ": " + e.body
}

func postEvaluateNoFatal(srv *httptest.Server, payload map[string]any) (int, map[string]any, string) {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err.Error()
	}
	resp, err := http.Post(srv.URL+"/evaluate", "application/json", bytes.NewBuffer(b))
	if err != nil {
		return 0, nil, err.Error()
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	var out map[string]any
	_ = json.Unmarshal(body, &out)
	return resp.StatusCode, out, string(body)
}
