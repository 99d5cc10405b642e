package app

type EvaluateService interface {
	Evaluate(req Request) (*Decision, error)
	EvaluateWithTrace(req Request) (*Decision, error)
}
