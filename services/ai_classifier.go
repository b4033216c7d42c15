package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// GeneratedTask is one AI-proposed task for a goal.
type GeneratedTask struct {
	TaskDescription string   `json:"task_description"`
	DueDate         string   `json:"due_date"`
	Priority        string   `json:"priority"`
	EstimatedHours  int      `json:"estimated_hours"`
	RequiredSkills  []string `json:"required_skills"`
	SuccessCriteria string   `json:"success_criteria"`
}

// AIClassifierService breaks a goal down into tasks via an OpenAI-style
// chat-completions endpoint, with a rule-based fallback when the API is
// unconfigured or unavailable.
type AIClassifierService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewAIClassifierService(client *http.Client) *AIClassifierService {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := os.Getenv("AI_API_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := os.Getenv("AI_MODEL")
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	return &AIClassifierService{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  os.Getenv("AI_API_KEY"),
		model:   model,
	}
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ClassifyGoal asks the model to break the goal into 3-7 executable tasks.
// Any request, decode, or parse failure falls back to the rule-based
// breakdown so goal creation never fails on AI trouble.
func (s *AIClassifierService) ClassifyGoal(ctx context.Context, title, description string, targetDate *time.Time) []GeneratedTask {
	if s.apiKey == "" {
		log.Println("⚠️ AI_API_KEY not configured, using fallback task classification")
		return fallbackTaskBreakdown(title, targetDate)
	}

	tasks, err := s.requestBreakdown(ctx, title, description, targetDate)
	if err != nil {
		log.Printf("⚠️ AI classification failed, using fallback: %v", err)
		return fallbackTaskBreakdown(title, targetDate)
	}
	return tasks
}

func (s *AIClassifierService) requestBreakdown(ctx context.Context, title, description string, targetDate *time.Time) ([]GeneratedTask, error) {
	deadline := "unspecified"
	if targetDate != nil {
		deadline = targetDate.Format("2006-01-02")
	}

	prompt := fmt.Sprintf(`You are an expert strategic planner. Break the following company goal into 3 to 7 sequential, executable tasks.

Goal title: %s
Goal description: %s
Deadline: %s

Respond with a JSON array only. Each element must have: task_description, due_date (YYYY-MM-DD), priority (low|medium|high), estimated_hours (int), required_skills (array of strings), success_criteria.`,
		title, description, deadline)

	body, err := json.Marshal(chatCompletionRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("AI API returned status %d", resp.StatusCode)
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("failed to decode AI response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("AI response contained no choices")
	}

	return parseGeneratedTasks(completion.Choices[0].Message.Content)
}

// parseGeneratedTasks extracts the JSON array from the model output, which
// may be wrapped in markdown fences or prose.
func parseGeneratedTasks(content string) ([]GeneratedTask, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in AI response")
	}

	var tasks []GeneratedTask
	if err := json.Unmarshal([]byte(content[start:end+1]), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI task list: %w", err)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("AI returned an empty task list")
	}
	for i := range tasks {
		if tasks[i].Priority == "" {
			tasks[i].Priority = "medium"
		}
	}
	return tasks, nil
}

// fallbackTaskBreakdown produces a generic 3-step plan spaced backwards
// from the deadline, mirroring the behavior when no model is reachable.
func fallbackTaskBreakdown(title string, targetDate *time.Time) []GeneratedTask {
	deadline := time.Now().AddDate(0, 0, 90)
	if targetDate != nil {
		deadline = *targetDate
	}

	tasks := make([]GeneratedTask, 0, 3)
	for i := 0; i < 3; i++ {
		due := deadline.AddDate(0, 0, -(2-i)*15)
		tasks = append(tasks, GeneratedTask{
			TaskDescription: fmt.Sprintf("Task %d: Execute part of %s", i+1, strings.ToLower(title)),
			DueDate:         due.Format("2006-01-02"),
			Priority:        "medium",
			EstimatedHours:  16,
			RequiredSkills:  []string{"project management", "communication"},
			SuccessCriteria: fmt.Sprintf("Complete part %d of the goal", i+1),
		})
	}
	return tasks
}
