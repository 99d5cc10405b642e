package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/awmpietro/golang-claim-evaluation-case/internal/app"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/catalog"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/catalog/cache"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/claims"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/config"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/transport/lambdatransport"
)

func main() {
	cfg := config.Load()

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	latencyObserver := claims.NewAsyncGuardLatencyObserver(claims.NewGuardLatencyLogger(logger), cfg.ObsBuffer)
	defer latencyObserver.Close()
	engine := claims.NewEngine(
		claims.WithGuardLatencyObserver(latencyObserver),
		claims.WithLogger(logger),
	)
	c := cache.NewInMemory(cfg.CacheMaxItems)

	svc := app.NewService(catalog.NewParser(), engine, c,
		app.WithLogger(logger),
		app.WithStrictValidation(cfg.StrictValidation),
	)
	h := lambdatransport.NewHandler(svc)

	lambda.Start(h.Evaluate)
}
