package httptransport

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/awmpietro/golang-claim-evaluation-case/internal/app"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/transport/claimdto"
)

type Handler struct {
	svc app.EvaluateService
}

func NewHandler(svc app.EvaluateService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, claimdto.ErrorBody("method not allowed", fmt.Errorf("use POST, got %s", r.Method)))
		return
	}

	var in claimdto.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, claimdto.ErrorBody("invalid json", err))
		return
	}

	req, err := in.Decode()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, claimdto.ErrorBody("invalid request", err))
		return
	}

	evaluate := h.svc.Evaluate
	if in.Debug {
		evaluate = h.svc.EvaluateWithTrace
	}

	d, err := evaluate(req)
	if err != nil {
		writeJSON(w, claimdto.StatusFor(err), claimdto.ErrorBody("evaluation failed", err))
		return
	}
	writeJSON(w, http.StatusOK, claimdto.FromDecision(d))
}

func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
