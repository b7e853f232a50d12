package tools

import (
	"context"
	"fmt"

	"github.com/richard-senior/h2h/internal/logger"
	"github.com/richard-senior/h2h/pkg/protocol"
)

func MatchPredictTool() protocol.Tool {
	return protocol.Tool{
		Name: "match_predict",
		Description: `
		Asks a language model for data-driven predictions about upcoming fixtures between two teams.
		The model is only given recent form, head-to-head history and the fixture list, and is told
		to say so when that isn't enough for a confident prediction.
		`,
		InputSchema: protocol.InputSchema{
			Type:       "object",
			Properties: teamProperties,
			Required:   []string{"team1", "team2"},
		},
	}
}

// HandleMatchPredict returns the model's predictions for the two teams
func HandleMatchPredict(params any) (any, error) {
	logger.Info("Handling match_predict tool invocation")

	team1, team2, err := teamsArgs(params)
	if err != nil {
		return nil, err
	}
	d := current()
	if d.Predictor == nil {
		return nil, fmt.Errorf("predictions are not configured, is OPENAI_API_KEY set?")
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.Config.FootballData.Timeout*6)
	defer cancel()

	return d.Predictor.Predict(ctx, team1, team2)
}
