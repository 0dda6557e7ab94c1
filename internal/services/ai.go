package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/task-hierarchy-api/internal/constants"
	"github.com/yukikurage/task-hierarchy-api/internal/models"
)

// ChatCompleter is the part of the OpenAI client the drafting service uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type AIService struct {
	client ChatCompleter
}

// DraftTask is a suggested delegation a manager reviews before assigning it.
type DraftTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// NewAIServiceWithClient is used by tests to inject a fake completer.
func NewAIServiceWithClient(client ChatCompleter) *AIService {
	return &AIService{client: client}
}

// DraftTasksFromText asks the model to split free text into draft tasks.
// Blank titles are dropped and unknown priorities are left unspecified.
func (s *AIService) DraftTasksFromText(ctx context.Context, actor Actor, text string) ([]DraftTask, error) {
	if s == nil || s.client == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if err := actor.Require(models.RoleManager, models.RoleDirector); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}

	prompt := fmt.Sprintf(`You are a task extraction assistant for a team manager. Split the text below into concrete tasks that can be delegated to team members.

Text:
%s

Return a JSON array in exactly this shape:
[
  {
    "title": "short task title",
    "description": "what needs to be done",
    "priority": "high, medium or low"
  }
]

Rules:
- Return [] if the text contains no tasks
- priority must be one of high, medium, low
- Return only JSON, no explanations`, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: OpenAI API error: %v", ErrUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no response from OpenAI", ErrUnavailable)
	}

	content := resp.Choices[0].Message.Content

	var drafts []DraftTask
	if err := json.Unmarshal([]byte(content), &drafts); err != nil {
		return nil, fmt.Errorf("%w: failed to parse AI response: %v (response: %s)", ErrUnavailable, err, content)
	}

	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(drafts) > constants.MaxAIDraftTasks {
		return nil, fmt.Errorf("%w: AI drafted too many tasks (max %d)", ErrInvalidInput, constants.MaxAIDraftTasks)
	}

	valid := make([]DraftTask, 0, len(drafts))
	for _, d := range drafts {
		d.Title = strings.TrimSpace(d.Title)
		if d.Title == "" {
			continue
		}
		if models.Rank(d.Priority) == models.RankUnspecified {
			d.Priority = ""
		}
		valid = append(valid, d)
	}

	if len(valid) == 0 {
		return nil, ErrAINoValidTasks
	}
	return valid, nil
}
