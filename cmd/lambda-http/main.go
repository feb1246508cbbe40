// Command lambda-http serves the match API behind an API Gateway HTTP API
// (payload format 2.0).
//
//	GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"go.uber.org/zap"

	"resume-match/internal/bootstrap"
	"resume-match/internal/shared/config"
	"resume-match/internal/shared/telemetry"
)

type handlerFunc func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

func main() {
	cfg := config.Load()
	if _, err := telemetry.Init(true, cfg.LogDebug); err != nil {
		log.Printf("init logger: %v", err)
	}

	// Built during the init phase and reused by every warm invocation.
	app, err := bootstrap.Build(context.Background(), cfg)
	if err != nil {
		telemetry.L().Error("lambda.bootstrap_failed", zap.Error(err))
		lambda.Start(unavailable())
		return
	}
	lambda.Start(proxy(ginadapter.NewV2(app.Router)))
}

func proxy(adapter *ginadapter.GinLambdaV2) handlerFunc {
	return func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			telemetry.L().Debug("lambda.invoke",
				zap.String("aws_request_id", lc.AwsRequestID),
				zap.String("route", req.RouteKey),
			)
		}
		return adapter.ProxyWithContext(ctx, req)
	}
}

// unavailable answers every request with 503 so API Gateway returns a JSON
// body instead of a bare 502 while the environment is misconfigured.
func unavailable() handlerFunc {
	return func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusServiceUnavailable,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"error":"Service unavailable"}`,
		}, nil
	}
}
