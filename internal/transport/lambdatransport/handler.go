package lambdatransport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/awmpietro/golang-claim-evaluation-case/internal/app"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/transport/claimdto"
)

type Handler struct {
	svc app.EvaluateService
}

func NewHandler(svc app.EvaluateService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Evaluate(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	body, err := readBody(req)
	if err != nil {
		return jsonResp(http.StatusBadRequest, claimdto.ErrorBody("invalid body", err)), nil
	}

	var in claimdto.EvaluateRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return jsonResp(http.StatusBadRequest, claimdto.ErrorBody("invalid json", err)), nil
	}

	evalReq, err := in.Decode()
	if err != nil {
		return jsonResp(http.StatusBadRequest, claimdto.ErrorBody("invalid request", err)), nil
	}

	var d *app.Decision
	if in.Debug {
		d, err = h.svc.EvaluateWithTrace(evalReq)
	} else {
		d, err = h.svc.Evaluate(evalReq)
	}
	if err != nil {
		return jsonResp(claimdto.StatusFor(err), claimdto.ErrorBody("evaluation failed", err)), nil
	}
	return jsonResp(http.StatusOK, claimdto.FromDecision(d)), nil
}

func readBody(req events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if req.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(req.Body)
	}
	return []byte(req.Body), nil
}

func jsonResp(status int, body any) events.APIGatewayV2HTTPResponse {
	b, _ := json.Marshal(body)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       string(b),
	}
}
