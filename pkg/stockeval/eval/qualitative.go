package eval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	openRouterURL   = "https://openrouter.ai/api/v1/chat/completions"
	openRouterModel = "deepseek/deepseek-chat-v3-0324:free"
)

// OpenRouterAnalyst implements Analyst against the OpenRouter chat
// completions API. One request is made per symbol; a symbol whose request
// fails is simply omitted from the results, which callers treat as "no
// result" rather than an error.
type OpenRouterAnalyst struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewOpenRouterAnalyst returns an analyst. baseURL overrides the endpoint in
// tests; empty means production.
func NewOpenRouterAnalyst(apiKey, baseURL string, timeout time.Duration, log zerolog.Logger) *OpenRouterAnalyst {
	if baseURL == "" {
		baseURL = openRouterURL
	}
	return &OpenRouterAnalyst{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (a *OpenRouterAnalyst) Analyze(ctx context.Context, reqs []AnalysisRequest) ([]Analysis, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("qualitative analysis requires OPENROUTER_API_KEY")
	}
	var out []Analysis
	for _, r := range reqs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		text, err := a.ask(ctx, r.Symbol, r.Summary)
		if err != nil {
			a.log.Warn().Str("symbol", r.Symbol).Err(err).Msg("qualitative analysis failed")
			continue
		}
		out = append(out, Analysis{Symbol: r.Symbol, Qualitative: text})
	}
	return out, nil
}

func (a *OpenRouterAnalyst) ask(ctx context.Context, symbol, summary string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       openRouterModel,
		Messages:    []chatMessage{{Role: "user", Content: qualitativePrompt(symbol, summary)}},
		MaxTokens:   300,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Title", "Stock Screener App")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openrouter: status %s", resp.Status)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("openrouter: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openrouter: empty response")
	}
	return parsed.Choices[0].Message.Content, nil
}

func qualitativePrompt(symbol, summary string) string {
	return fmt.Sprintf(`For %s, respond clearly in bullet points.
Each bullet point must start with "Yes" or "No", followed by a short label of the question in parentheses, then a brief explanation.
Do not restate the question.

Then at the end give a final score out of eight.

Answer the following:

1. Does this company have a wide moat? (Wide Moat)
2. Is it highly scalable? (Scalable)
3. Is it focused on cash flow generation? (Cash Flow Focus)
4. Does it have low need for reinvestment (R&D, capex)? (Low Reinvestment)
5. Does it have pricing power? (Pricing Power)
6. Does it show high operating predictability? (Predictability)
7. Is it mainly driven by organic growth? (Organic Growth)
8. Does it have a clear growth strategy? (Growth Strategy)

Also add a confidence metric after the score out 100%%
Financial summary:
%s
`, symbol, summary)
}
