package metrics

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/kantai-tool/fleetdeck/internal/application/mediator"
)

// PrometheusMiddleware records duration and outcome of every mediator request.
//
// Command names are extracted via reflection and simplified to remove package prefixes.
// For example: "*commands.SaveDocumentCommand" becomes "SaveDocumentCommand"
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		// Skip metrics if collector is nil (metrics disabled)
		if collector == nil {
			return next(ctx, request)
		}

		commandName := extractCommandName(request)
		start := time.Now()

		response, err := next(ctx, request)

		collector.RecordCommandExecution(commandName, time.Since(start).Seconds(), err == nil)
		return response, err
	}
}

// extractCommandName extracts a clean command name from the request using reflection
func extractCommandName(request mediator.Request) string {
	if request == nil {
		return "UnknownCommand"
	}

	fullName := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if i := strings.LastIndex(fullName, "."); i >= 0 {
		return fullName[i+1:]
	}
	return fullName
}
