package catalog

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/awmpietro/golang-claim-evaluation-case/internal/claims"
)

// Document is the YAML layout of a policy catalog.
type Document struct {
	Policies []PolicyRecord `yaml:"policies" json:"policies"`
}

type Parser struct{}

func NewParser() *Parser { return &Parser{} }

// Parse decodes a YAML catalog. Unknown keys are rejected; policy order is kept.
func (p *Parser) Parse(doc string) ([]claims.Policy, error) {
	if strings.TrimSpace(doc) == "" {
		return nil, fmt.Errorf("catalog document is empty")
	}

	dec := yaml.NewDecoder(strings.NewReader(doc))
	dec.KnownFields(true)

	var d Document
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalog document is empty")
		}
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	return ToPolicies(d.Policies)
}

// Hash identifies a catalog document by content.
func Hash(doc string) string {
	sum := sha256.Sum256([]byte(doc))
	return "sha256:" + hex.EncodeToString(sum[:])
}

// HashPolicies hashes an inline policy list through its record encoding.
func HashPolicies(policies []claims.Policy) string {
	records := make([]PolicyRecord, 0, len(policies))
	for _, p := range policies {
		records = append(records, FromPolicy(p))
	}
	b, _ := json.Marshal(records)
	return Hash(string(b))
}

// LoadFile reads and parses a catalog file, returning its content hash.
func LoadFile(path string) ([]claims.Policy, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read catalog %s: %w", path, err)
	}
	policies, err := NewParser().Parse(string(data))
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return policies, Hash(string(data)), nil
}

// LoadClaimFile reads a single claim from a YAML (or JSON) file.
func LoadClaimFile(path string) (claims.Claim, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return claims.Claim{}, fmt.Errorf("read claim %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var rec ClaimRecord
	if err := dec.Decode(&rec); err != nil {
		return claims.Claim{}, fmt.Errorf("parse claim %s: %w", path, err)
	}
	c, err := rec.ToClaim()
	if err != nil {
		return claims.Claim{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
