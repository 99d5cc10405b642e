package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awmpietro/golang-claim-evaluation-case/internal/claims"
)

func TestLoadAndRun_AllCasesPass(t *testing.T) {
	r, err := LoadAndRun(filepath.Join("testdata", "fire_policy.yaml"), claims.NewEngine())
	require.NoError(t, err)

	assert.Equal(t, "fire-policy", r.Name)
	assert.Equal(t, 7, r.Total)
	assert.Equal(t, 7, r.Passed, FormatText([]*RunResult{r}))
	assert.Equal(t, 0, r.Failed)
}

func TestLoadAndRun_ReportsFailures(t *testing.T) {
	r, err := LoadAndRun(filepath.Join("testdata", "broken.yaml"), claims.NewEngine())
	require.NoError(t, err)

	assert.Equal(t, 4, r.Total)
	assert.Equal(t, 1, r.Passed)
	assert.Equal(t, 3, r.Failed)

	assert.Contains(t, r.Cases[0].Failures[0], "expected payout=600.00, got 500.00")
	assert.Equal(t, "error", r.Cases[1].Actual)
	assert.Contains(t, r.Cases[1].Failures[0], `unknown incident type "flood"`)
	assert.Contains(t, r.Cases[2].Failures[0], "missing variables [deductible]")
	assert.True(t, r.Cases[3].Passed)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	noCases := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(noCases, []byte("name: x\ncases: []\n"), 0o600))
	_, _, err := Load(noCases)
	assert.ErrorContains(t, err, "has no cases")

	unknownKey := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknownKey, []byte("name: x\nexpectations: []\n"), 0o600))
	_, _, err = Load(unknownKey)
	assert.Error(t, err)

	missingCatalog := filepath.Join(dir, "missing.yaml")
	require.NoError(t, os.WriteFile(missingCatalog, []byte("catalog: nope.yaml\ncases:\n  - claim: {policy_id: A}\n"), 0o600))
	_, _, err = Load(missingCatalog)
	assert.ErrorContains(t, err, "nope.yaml")

	_, _, err = Load(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}

func TestFormatText(t *testing.T) {
	ok, err := LoadAndRun(filepath.Join("testdata", "fire_policy.yaml"), claims.NewEngine())
	require.NoError(t, err)
	bad, err := LoadAndRun(filepath.Join("testdata", "broken.yaml"), claims.NewEngine())
	require.NoError(t, err)

	out := FormatText([]*RunResult{ok, bad})
	assert.True(t, strings.HasPrefix(out, "Checking 2 scenario files..."))
	assert.Contains(t, out, "PASS  fire-policy (7/7)")
	assert.Contains(t, out, "FAIL  broken-expectations (1/4)")
	assert.Contains(t, out, "8 of 11 cases passed. 1 of 2 scenarios failed.")
}

func TestFormatJSON(t *testing.T) {
	r, err := LoadAndRun(filepath.Join("testdata", "fire_policy.yaml"), claims.NewEngine())
	require.NoError(t, err)

	out, err := FormatJSON([]*RunResult{r})
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "fire-policy"`)
	assert.Contains(t, out, `"passed": 7`)
}
