package predict

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/richard-senior/h2h/internal/config"
	"github.com/richard-senior/h2h/internal/logger"
	"github.com/richard-senior/h2h/pkg/analysis"
	"github.com/richard-senior/h2h/pkg/footballdata"
	"github.com/sashabaranov/go-openai"
)

const maxAttempts = 3

// ErrNoMatches means one of the teams has no recent matches to base a prediction on
var ErrNoMatches = errors.New("no recent matches")

// Completer is the chat completion call, *openai.Client satisfies it
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Comparer interface {
	Compare(ctx context.Context, team1, team2 string) (*analysis.Comparison, error)
}

type FixtureSource interface {
	UpcomingMatches(ctx context.Context, competitionID string) ([]footballdata.Fixture, error)
}

type Prediction struct {
	Team1    string   `json:"team1"`
	Team2    string   `json:"team2"`
	Upcoming []string `json:"upcoming"`
	Text     string   `json:"prediction"`
}

type Predictor struct {
	comparer    Comparer
	fixtures    FixtureSource
	llm         Completer
	model       string
	temperature float32
	competition string
	backoff     time.Duration
}

// NewOpenAIClient builds a client from config, BaseURL allows any OpenAI compatible endpoint
func NewOpenAIClient(cfg config.OpenAIConfig) *openai.Client {
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(c)
}

func NewPredictor(comparer Comparer, fixtures FixtureSource, llm Completer, cfg *config.Config) *Predictor {
	return &Predictor{
		comparer:    comparer,
		fixtures:    fixtures,
		llm:         llm,
		model:       cfg.OpenAI.Model,
		temperature: cfg.OpenAI.Temperature,
		competition: cfg.FootballData.CompetitionID,
		backoff:     3 * time.Second,
	}
}

// Predict gathers form, head-to-head and upcoming fixtures for the two teams and asks the model
func (p *Predictor) Predict(ctx context.Context, team1, team2 string) (*Prediction, error) {
	c, err := p.comparer.Compare(ctx, team1, team2)
	if err != nil {
		return nil, err
	}
	for _, team := range []*analysis.TeamAnalysis{c.Team1, c.Team2} {
		if len(team.MatchHistory) == 0 {
			return nil, fmt.Errorf("%s: %w", team.Name, ErrNoMatches)
		}
	}

	fixtures, err := p.fixtures.UpcomingMatches(ctx, p.competition)
	if err != nil {
		logger.Warn("Couldn't fetch upcoming matches, predicting without them", err)
	}
	upcoming := UpcomingBetween(fixtures, team1, team2)

	prompt := BuildPrompt(team1, team2, FormatMatchData(c), upcoming)
	text, err := p.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return &Prediction{Team1: team1, Team2: team2, Upcoming: upcoming, Text: text}, nil
}

func (p *Predictor) complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemMessage},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: p.temperature,
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := p.llm.CreateChatCompletion(ctx, req)
		if err == nil && len(resp.Choices) > 0 {
			return resp.Choices[0].Message.Content, nil
		}
		if err == nil {
			err = errors.New("no choices returned")
		}
		lastErr = err
		logger.Warn(fmt.Sprintf("Chat completion attempt %d failed:", attempt), err)

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * p.backoff):
			}
		}
	}
	return "", fmt.Errorf("chat completion failed after %d attempts: %w", maxAttempts, lastErr)
}
