package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	perplexityBaseURL = "https://api.perplexity.ai/"
	openAIBaseURL     = "https://api.openai.com/v1/"

	perplexityDefaultModel = "sonar-small-chat"

	defaultChatTimeout = 30 * time.Second

	systemPrompt = "You are a helpful assistant that summarizes and answers questions clearly."
	userPrompt   = "First, summarize this question clearly. Then, provide a short and direct answer.\n" +
		"Start the summary with \"Summary:\" and the answer with \"Answer:\".\n" +
		"Question: %s"
)

var errNilClient = errors.New("llm: nil chat client")

// ChatClient calls an OpenAI-compatible Chat Completions API.
// Perplexity and OpenAI share this implementation and differ only in base URL, key and model.
type ChatClient struct {
	name    string
	model   openai.ChatModel
	timeout time.Duration
	client  *openai.Client
}

// ChatOptions configures a ChatClient. Empty fields fall back to provider defaults.
type ChatOptions struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// NewPerplexityClient builds a client against api.perplexity.ai.
func NewPerplexityClient(opts ChatOptions) (*ChatClient, error) {
	if opts.Model == "" {
		opts.Model = perplexityDefaultModel
	}
	if opts.BaseURL == "" {
		opts.BaseURL = perplexityBaseURL
	}
	// OpenAI account headers, set by the SDK from OPENAI_ORG_ID and OPENAI_PROJECT_ID, stay with OpenAI.
	return newChatClient("perplexity", opts,
		option.WithHeaderDel("OpenAI-Organization"),
		option.WithHeaderDel("OpenAI-Project"),
	)
}

// NewOpenAIClient builds a client against api.openai.com.
func NewOpenAIClient(opts ChatOptions) (*ChatClient, error) {
	if opts.Model == "" {
		opts.Model = string(openai.ChatModelGPT4oMini)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = openAIBaseURL
	}
	return newChatClient("openai", opts)
}

func newChatClient(name string, opts ChatOptions, extra ...option.RequestOption) (*ChatClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%s: api key required", name)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultChatTimeout
	}
	// The relay never retries; a failed call is reported as-is.
	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(opts.BaseURL),
		option.WithMaxRetries(0),
	}, extra...)
	cli := openai.NewClient(reqOpts...)
	return &ChatClient{
		name:    name,
		model:   openai.ChatModel(opts.Model),
		timeout: opts.Timeout,
		client:  &cli,
	}, nil
}

// Name identifies the upstream provider in logs.
func (c *ChatClient) Name() string {
	return c.name
}

func (c *ChatClient) Complete(ctx context.Context, question string) (string, error) {
	if c == nil || c.client == nil {
		return "", errNilClient
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: buildMessages(systemPrompt, fmt.Sprintf(userPrompt, question)),
	})
	if err != nil {
		return "", fmt.Errorf("%s: chat completion: %w", c.name, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%s: %w", c.name, ErrEmptyCompletion)
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}
