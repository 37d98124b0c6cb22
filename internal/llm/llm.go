package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joescharf/todo/internal/models"
)

// ExtractedTodo holds a single task extracted from free-form notes.
type ExtractedTodo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueInDays   *int   `json:"due_in_days"` // nil when no deadline was mentioned
}

// Item converts the extraction into a new todo item. Unknown priorities
// fall back to medium.
func (e ExtractedTodo) Item(now time.Time) models.TodoItem {
	p, err := models.ParsePriority(e.Priority)
	if err != nil {
		p = models.PriorityMedium
	}
	item := models.TodoItem{
		Title:       strings.TrimSpace(e.Title),
		Description: strings.TrimSpace(e.Description),
		Status:      models.StatusTodo,
		Priority:    p,
	}
	if e.DueInDays != nil {
		item.DueDate = models.DueOn(now.AddDate(0, 0, *e.DueInDays))
	}
	return item
}

// Client wraps the Anthropic API for task extraction.
type Client struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewClient creates an LLM client with the given API key and model.
func NewClient(apiKey, model string) *Client {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &Client{
		api:   &client,
		model: anthropic.Model(model),
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return string(c.model) }

// buildPrompt constructs the system and user prompts for task extraction.
func buildPrompt(content string, today time.Time) (system string, user string) {
	system = `You extract actionable tasks from notes for a personal todo list. Return ONLY a JSON array of objects with these fields:
- "title": concise task title in imperative form
- "description": one or two sentences of context (can be empty string if the title is self-explanatory)
- "priority": one of "low", "medium", "high"
- "due_in_days": integer number of days from today until the task is due, or null when no deadline is stated or implied

Rules:
- Each numbered/bulleted item is one task
- Default priority to "medium" unless context suggests urgency ("urgent", "asap", "blocker" = high) or optionality ("someday", "nice to have" = low)
- Resolve relative deadlines ("tomorrow", "next Friday", "end of month") against today's date
- Skip items that are already marked done (e.g. "[x]")
- Never create placeholder tasks like "no tasks" or "N/A"
- Return valid JSON only, no markdown fencing or explanation`

	var sb strings.Builder
	sb.WriteString("Today is ")
	sb.WriteString(today.Format("Monday, 2006-01-02"))
	sb.WriteString(".\n\nExtract tasks from these notes:\n\n")
	sb.WriteString(content)
	user = sb.String()
	return
}

// ExtractTodos sends notes to the LLM and returns structured tasks.
func (c *Client) ExtractTodos(ctx context.Context, content string, today time.Time) ([]ExtractedTodo, error) {
	systemPrompt, userPrompt := buildPrompt(content, today)

	text, err := c.complete(ctx, systemPrompt, userPrompt, 4096)
	if err != nil {
		return nil, err
	}

	var todos []ExtractedTodo
	if err := json.Unmarshal([]byte(text), &todos); err != nil {
		return nil, fmt.Errorf("parse LLM response as JSON: %w\nraw response: %s", err, text)
	}
	return todos, nil
}

// Enrichment holds the LLM-generated fields for a terse task.
type Enrichment struct {
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// buildEnrichPrompt constructs the system and user prompts for task enrichment.
func buildEnrichPrompt(title, description string) (system string, user string) {
	system = `You help fill in todo items. Given a task title and optional description, return a JSON object with exactly two fields:

- "description": A concise 1-2 sentence description of what doing this task involves. If a description is already provided, improve it for clarity.
- "priority": one of "low", "medium", "high", judged from the wording of the task

Rules:
- Return valid JSON only, no markdown fencing or explanation
- Do not invent deadlines, people or details that the title does not support`

	var sb strings.Builder
	sb.WriteString("Task title: ")
	sb.WriteString(title)
	sb.WriteString("\n")
	if description != "" {
		sb.WriteString("\nExisting description: ")
		sb.WriteString(description)
		sb.WriteString("\n")
	}
	user = sb.String()
	return
}

// EnrichTodo asks the LLM for a description and priority for a task title.
func (c *Client) EnrichTodo(ctx context.Context, title, description string) (*Enrichment, error) {
	systemPrompt, userPrompt := buildEnrichPrompt(title, description)

	text, err := c.complete(ctx, systemPrompt, userPrompt, 1024)
	if err != nil {
		return nil, err
	}

	var e Enrichment
	if err := json.Unmarshal([]byte(text), &e); err != nil {
		return nil, fmt.Errorf("parse LLM response as JSON: %w\nraw response: %s", err, text)
	}
	return &e, nil
}

func (c *Client) complete(ctx context.Context, system, user string, maxTokens int64) (string, error) {
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return "", fmt.Errorf("no text content in API response")
	}
	return stripFences(text), nil
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.SplitN(text, "\n", 2)
		if len(lines) > 1 {
			text = lines[1]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	return text
}
