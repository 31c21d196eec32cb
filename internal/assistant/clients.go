package assistant

//go:generate mockgen -destination=./clients_mock_test.go -package=assistant -source=clients.go LLMClient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"partselect-chat/internal/domain"

	"github.com/google/generative-ai-go/genai"
	jsoniter "github.com/json-iterator/go"
	"google.golang.org/api/option"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LLMClient defines the contract for a language model that answers a prompt.
type LLMClient interface {
	// Complete returns the model's reply to the prompt.
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// --- Gemini ---

// GeminiClient talks to the Gemini API.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiClient creates a Gemini client for the given model.
func NewGeminiClient(ctx context.Context, apiKey, model string, temperature float32) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{
		client:      client,
		model:       model,
		temperature: temperature,
	}, nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// Complete runs the prompt as a chat session seeded with the remembered history.
func (c *GeminiClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(c.temperature)
	if prompt.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompt.System)}}
	}

	history, err := geminiHistory(prompt.History)
	if err != nil {
		return "", err
	}
	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(prompt.User))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	return text, nil
}

// geminiHistory converts remembered turns to chat contents. Gemini requires the history
// to open with a user turn, so leading model turns are dropped.
func geminiHistory(turns []domain.Turn) ([]*genai.Content, error) {
	var history []*genai.Content
	for _, turn := range turns {
		if err := turn.Validate(); err != nil {
			return nil, fmt.Errorf("invalid history: %w", err)
		}
		role := "user"
		if turn.Role == domain.RoleAssistant {
			role = "model"
		}
		if len(history) == 0 && role == "model" {
			continue
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}
	return history, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

// --- OpenAI-compatible chat completions ---

// httpOpenAIClient talks to any server implementing the chat completions API.
type httpOpenAIClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float32
}

// NewOpenAIClient creates a chat completions client.
func NewOpenAIClient(baseURL, apiKey, model string, temperature float32) LLMClient {
	return &httpOpenAIClient{
		httpClient:  &http.Client{},
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
	}
}

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []chatCompletionMessage `json:"messages"`
	Temperature float32                 `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMessage `json:"message"`
	} `json:"choices"`
}

func (c *httpOpenAIClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	messages := make([]chatCompletionMessage, 0, len(prompt.History)+2)
	if prompt.System != "" {
		messages = append(messages, chatCompletionMessage{Role: domain.RoleSystem, Content: prompt.System})
	}
	for _, turn := range prompt.History {
		if err := turn.Validate(); err != nil {
			return "", fmt.Errorf("invalid history: %w", err)
		}
		messages = append(messages, chatCompletionMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, chatCompletionMessage{Role: domain.RoleUser, Content: prompt.User})

	body, err := json.Marshal(chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call chat completions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completions returned non-OK status: %s", resp.Status)
	}

	var result chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode chat completion response: %w", err)
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("chat completions returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}

// --- Stub ---

// stubLLMClient is a fake LLMClient.
type stubLLMClient struct{}

// NewStubLLMClient creates a fake client.
func NewStubLLMClient() LLMClient {
	return &stubLLMClient{}
}

func (s *stubLLMClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	// Return a canned response
	return "Hello! I'm the PartSelect assistant. Configure a language model to get real answers about your appliance parts.", nil
}
