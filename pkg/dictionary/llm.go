package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL           = "https://api.groq.com/openai/v1"
	DefaultModel             = "llama-3.1-8b-instant"
	DefaultRequestsPerMinute = 30
	defaultLookupTimeout     = 20 * time.Second
)

// LLMConfig configures an LLM dictionary.
type LLMConfig struct {
	APIKey            string
	BaseURL           string
	Model             string
	RequestsPerMinute int
	Timeout           time.Duration
	Logger            *slog.Logger
}

// LLM defines words through any OpenAI-compatible chat completion API.
type LLM struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

// NewLLM creates an LLM dictionary. Missing settings take the package defaults.
func NewLLM(cfg LLMConfig) *LLM {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = DefaultRequestsPerMinute
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = baseURL

	return &LLM{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		timeout: timeout,
		logger:  logger,
	}
}

const definitionSystemPrompt = `You are a concise English dictionary for language learners.
Reply with a single JSON object and nothing else, using these keys:
"definition" (string, one sentence), "partOfSpeech" (string), "pronunciation" (string, IPA),
"etymology" (string, one short phrase), "examples" (array of 2 short sentences),
"synonyms" (array of up to 3 strings), "antonyms" (array of up to 3 strings).`

// LookupDefinition asks the model to define word, using sentence to pick the
// right sense. Transport and decoding failures are returned as *LookupError.
func (l *LLM) LookupDefinition(ctx context.Context, word, sentence string) (Definition, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return Definition{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	prompt := fmt.Sprintf("Word: %s", word)
	if s := strings.TrimSpace(sentence); s != "" {
		prompt += fmt.Sprintf("\nAs used in: %s", s)
	}

	req := openai.ChatCompletionRequest{
		Model:       l.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: definitionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	start := time.Now()
	resp, err := l.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Definition{}, &LookupError{Word: word, Err: err}
	}
	if len(resp.Choices) == 0 {
		return Definition{}, &LookupError{Word: word, Err: fmt.Errorf("empty response")}
	}

	def, err := parseDefinition(resp.Choices[0].Message.Content)
	if err != nil {
		return Definition{}, &LookupError{Word: word, Err: err}
	}
	def.Word = word

	l.logger.Debug("definition lookup completed",
		"word", word,
		"latency_ms", time.Since(start).Milliseconds(),
		"tokens", resp.Usage.TotalTokens)
	return def, nil
}

var reCodeFence = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

func parseDefinition(content string) (Definition, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		if m := reCodeFence.FindStringSubmatch(content); len(m) > 1 {
			content = m[1]
		}
	}

	var def Definition
	if err := json.Unmarshal([]byte(content), &def); err != nil {
		return Definition{}, fmt.Errorf("decode definition: %w", err)
	}
	if strings.TrimSpace(def.Definition) == "" {
		return Definition{}, fmt.Errorf("definition missing from response")
	}
	return def, nil
}
