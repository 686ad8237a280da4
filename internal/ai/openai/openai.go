package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/trace"
	"stock-signal-bot/internal/types"
)

const defaultBaseURL = "https://api.openai.com/v1"

const systemPrompt = `You are a trading signal reviewer. You receive a statistical signal summary as JSON and respond ONLY with compact JSON matching this schema:
{"recommendation":"CONFIRM|REJECT|MODIFY|PROCEED_WITH_CAUTION","confidence":0.0,"risk_assessment":"LOW|MEDIUM|HIGH","statistical_analysis":"...","key_factors":["..."],"sentiment_analysis":{"overall_sentiment":"POSITIVE|NEGATIVE|NEUTRAL","sentiment_score":0.0,"sentiment_reasoning":"..."},"visual_analysis":{"chart_pattern":"...","trend_direction":"...","support_resistance":"...","visual_confirmation":"CONFIRMS|CONTRADICTS|NEUTRAL"}}
Omit sentiment_analysis or visual_analysis when you were not given the inputs for them.`

type Client struct {
	cfg     *store.Config
	httpc   *http.Client
	apiKey  string
	baseURL string

	// OnRetry, when set, is invoked once per retry attempt.
	OnRetry func()
}

func NewClient(cfg *store.Config) (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY missing")
	}
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		cfg:     cfg,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: time.Duration(cfg.AI.TimeoutSeconds) * time.Second},
	}, nil
}

// caution is the sentinel returned when the service cannot deliver a
// usable verdict. Callers distinguish it from a real REJECT through the
// Unavailable flag.
func caution() types.ConfirmationResult {
	return types.ConfirmationResult{
		Recommendation: types.RecommendCaution,
		Confidence:     0.0,
		Risk:           types.RiskMedium,
		Unavailable:    true,
	}
}

func (c *Client) Confirm(ctx context.Context, req types.ConfirmRequest) (types.ConfirmationResult, error) {
	ctx, span := trace.StartSpan(ctx, "openai-confirm-call")
	defer span.End()

	body, err := c.buildBody(req)
	if err != nil {
		return caution(), nil
	}

	for attempt := 0; attempt <= c.cfg.AI.MaxRetries; attempt++ {
		if attempt > 0 {
			if c.OnRetry != nil {
				c.OnRetry()
			}
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return caution(), nil
			case <-time.After(backoff):
			}
		}

		content, retryable, err := c.post(ctx, body)
		if err == nil {
			return c.parse(content), nil
		}
		if !retryable {
			break
		}
	}
	return caution(), nil
}

func (c *Client) buildBody(req types.ConfirmRequest) ([]byte, error) {
	summary, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf("Review this signal and respond with JSON only.\nSignal:%s", string(summary))

	model := c.cfg.AI.Model
	var userContent any = prompt
	if c.cfg.AI.VisionEnabled && len(req.ChartPNG) > 0 {
		model = c.cfg.AI.VisionModel
		userContent = []map[string]any{
			{"type": "text", "text": prompt},
			{"type": "image_url", "image_url": map[string]string{
				"url": "data:image/png;base64," + base64.StdEncoding.EncodeToString(req.ChartPNG),
			}},
		}
	}

	body := map[string]any{
		"model": model,
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userContent},
		},
		"temperature": c.cfg.AI.Temperature,
		"max_tokens":  c.cfg.AI.MaxTokens,
	}
	return json.Marshal(body)
}

// post performs one chat-completion call. The second return reports
// whether the failure is worth retrying.
func (c *Client) post(ctx context.Context, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		// Timeouts and connection resets are transient.
		return "", true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", true, fmt.Errorf("openai http %d", resp.StatusCode)
	case resp.StatusCode >= 300:
		return "", false, fmt.Errorf("openai http %d", resp.StatusCode)
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", false, err
	}
	if len(r.Choices) == 0 {
		return "", false, errors.New("no choices")
	}
	return strings.TrimSpace(r.Choices[0].Message.Content), false, nil
}

// parse extracts and normalizes the verdict JSON. A response that fails
// schema validation degrades to the caution sentinel.
func (c *Client) parse(content string) types.ConfirmationResult {
	payload := extractJSON(content)
	if payload == "" {
		return caution()
	}

	var res types.ConfirmationResult
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return caution()
	}

	res.Recommendation = types.Recommendation(strings.ToUpper(strings.TrimSpace(string(res.Recommendation))))
	switch res.Recommendation {
	case types.RecommendConfirm, types.RecommendReject, types.RecommendModify, types.RecommendCaution:
	default:
		return caution()
	}

	if res.Confidence < 0 || res.Confidence > 1 {
		res.Confidence = 0.0
	}

	res.Risk = types.RiskTier(strings.ToUpper(strings.TrimSpace(string(res.Risk))))
	switch res.Risk {
	case types.RiskLow, types.RiskMedium, types.RiskHigh:
	default:
		res.Risk = types.RiskMedium
	}

	if res.Visual != nil {
		res.Visual.Agreement = types.Agreement(strings.ToUpper(strings.TrimSpace(string(res.Visual.Agreement))))
		switch res.Visual.Agreement {
		case types.AgreementConfirms, types.AgreementContradicts, types.AgreementNeutral:
		default:
			res.Visual.Agreement = types.AgreementNeutral
		}
	}
	if res.Sentiment != nil {
		if res.Sentiment.Score < -1 || res.Sentiment.Score > 1 {
			res.Sentiment.Score = 0.0
		}
	}
	res.Unavailable = false
	return res
}

// extractJSON tolerates markdown fences and surrounding prose around
// the JSON object.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(s[start : end+1])
}
