package app

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/awmpietro/golang-claim-evaluation-case/internal/catalog"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/claims"
)

type CatalogParser interface {
	Parse(doc string) ([]claims.Policy, error)
}

type Engine interface {
	Evaluate(claim claims.Claim, policies []claims.Policy) claims.ClaimResult
}

type TraceEngine interface {
	EvaluateWithTrace(claim claims.Claim, policies []claims.Policy) (claims.ClaimResult, *claims.DecisionTrace)
}

type Cache interface {
	GetOrCompute(doc string, fn func() ([]claims.Policy, error)) ([]claims.Policy, error)
}

// Catalog carries the policies to evaluate against: either inline or as a
// YAML document, never both.
type Catalog struct {
	Policies []claims.Policy
	YAML     string
}

type EvaluateOptions struct {
	CatalogID      string
	CatalogVersion string
}

type Request struct {
	Claim   claims.Claim
	Catalog Catalog
	Options EvaluateOptions
}

type CatalogInfo struct {
	ID       string `json:"id,omitempty"`
	Version  string `json:"version,omitempty"`
	Hash     string `json:"hash"`
	Policies int    `json:"policies"`
}

type Decision struct {
	ID      string
	Result  claims.ClaimResult
	Trace   *claims.DecisionTrace
	Catalog *CatalogInfo
}

var ErrCatalogConflict = errors.New("provide either policies or catalog_yaml, not both")

type Service struct {
	parser CatalogParser
	engine Engine
	cache  Cache
	logger *zap.Logger
	strict bool
	newID  func() string
}

type ServiceOption func(*Service)

func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStrictValidation rejects malformed claims and catalogs with a
// *claims.ValidationError before evaluating.
func WithStrictValidation(strict bool) ServiceOption {
	return func(s *Service) {
		s.strict = strict
	}
}

func NewService(parser CatalogParser, engine Engine, cache Cache, opts ...ServiceOption) *Service {
	s := &Service{
		parser: parser,
		engine: engine,
		cache:  cache,
		logger: zap.NewNop(),
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate resolves the catalog (cached for YAML documents) and decides the claim.
func (s *Service) Evaluate(req Request) (*Decision, error) {
	policies, info, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	d := &Decision{
		ID:      s.newID(),
		Result:  s.engine.Evaluate(req.Claim, policies),
		Catalog: info,
	}
	s.logDecision(req, d)
	return d, nil
}

// EvaluateWithTrace is Evaluate plus the guard trace when the engine supports it.
func (s *Service) EvaluateWithTrace(req Request) (*Decision, error) {
	policies, info, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	d := &Decision{ID: s.newID(), Catalog: info}

	traceEngine, ok := s.engine.(TraceEngine)
	if !ok {
		d.Result = s.engine.Evaluate(req.Claim, policies)
	} else {
		d.Result, d.Trace = traceEngine.EvaluateWithTrace(req.Claim, policies)
	}

	s.logDecision(req, d)
	return d, nil
}

func (s *Service) prepare(req Request) ([]claims.Policy, *CatalogInfo, error) {
	if (req.Options.CatalogID == "") != (req.Options.CatalogVersion == "") {
		return nil, nil, fmt.Errorf("catalog_id and catalog_version must be provided together")
	}

	policies, hash, err := s.resolveCatalog(req.Catalog)
	if err != nil {
		return nil, nil, err
	}

	if s.strict {
		if err := claims.Validate(req.Claim, policies); err != nil {
			s.logger.Info("claim rejected by strict validation",
				zap.String("policy_id", req.Claim.PolicyID),
				zap.Error(err),
			)
			return nil, nil, err
		}
	}

	info := &CatalogInfo{
		ID:       req.Options.CatalogID,
		Version:  req.Options.CatalogVersion,
		Hash:     hash,
		Policies: len(policies),
	}
	return policies, info, nil
}

func (s *Service) resolveCatalog(c Catalog) ([]claims.Policy, string, error) {
	if c.YAML == "" {
		return cloneSlice(c.Policies), catalog.HashPolicies(c.Policies), nil
	}
	if len(c.Policies) > 0 {
		return nil, "", ErrCatalogConflict
	}

	policies, err := s.cache.GetOrCompute(c.YAML, func() ([]claims.Policy, error) {
		return s.parser.Parse(c.YAML)
	})
	if err != nil {
		return nil, "", err
	}
	return policies, catalog.Hash(c.YAML), nil
}

func (s *Service) logDecision(req Request, d *Decision) {
	fields := []zap.Field{
		zap.String("decision_id", d.ID),
		zap.String("policy_id", req.Claim.PolicyID),
		zap.String("incident_type", string(req.Claim.IncidentType)),
		zap.String("reason_code", string(d.Result.ReasonCode)),
		zap.Bool("approved", d.Result.Approved),
		zap.Float64("payout", d.Result.Payout),
	}
	if d.Catalog != nil {
		fields = append(fields, zap.String("catalog_hash", d.Catalog.Hash))
		if d.Catalog.ID != "" {
			fields = append(fields, zap.String("catalog_id", d.Catalog.ID), zap.String("catalog_version", d.Catalog.Version))
		}
	}
	s.logger.Info("claim decision", fields...)
}

// cloneSlice shields the evaluation from callers reusing their slice.
func cloneSlice(in []claims.Policy) []claims.Policy {
	if in == nil {
		return nil
	}
	out := make([]claims.Policy, len(in))
	copy(out, in)
	return out
}
