package tools

import (
	"fmt"
	"time"

	"github.com/richard-senior/h2h/internal/logger"
	"github.com/richard-senior/h2h/pkg/protocol"
)

var now = time.Now

// DateTimeTool lets the model work out which fixtures are upcoming and how old a result is
func DateTimeTool() protocol.Tool {
	return protocol.Tool{
		Name:        "get_datetime",
		Description: "Returns the current date and time, useful before asking about upcoming fixtures or recent form",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"format": {
					Type:        "string",
					Description: "The format of the datetime to be returned such as 2006-01-02T15:04:05Z07:00",
				},
				"timezone": {
					Type:        "string",
					Description: "IANA zone name such as Europe/London, defaults to UTC",
				},
			},
			Required: []string{},
		},
	}
}

// HandleDateTimeTool handles the date time tool invocation
func HandleDateTimeTool(params any) (any, error) {
	logger.Info("Handling datetime tool invocation")

	args, err := argsMap(params)
	if err != nil {
		return nil, err
	}
	format, _ := stringArg(args, "format", false)
	if format == "" {
		format = time.RFC3339
	}
	zone, _ := stringArg(args, "timezone", false)
	if zone == "" {
		zone = "UTC"
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", zone, err)
	}

	t := now().In(loc)
	return map[string]any{
		"datetime": t.Format(format),
		"timezone": loc.String(),
		"weekday":  t.Weekday().String(),
	}, nil
}
