package locale

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"userachievements/config"
)

// failureThreshold consecutive failures open the breaker for breakerTimeout
const (
	failureThreshold = 5
	breakerTimeout   = 30 * time.Second
)

// HTTPTranslator calls a LibreTranslate-compatible /translate endpoint.
// A circuit breaker stops calling a backend that keeps failing so that
// user lists degrade to original text without waiting on timeouts.
type HTTPTranslator struct {
	client  *http.Client
	url     string
	apiKey  string
	source  string
	breaker *gobreaker.CircuitBreaker[string]
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error,omitempty"`
}

func NewHTTPTranslator(cfg config.TranslatorConfig, log *zap.Logger) *HTTPTranslator {
	settings := gobreaker.Settings{
		Name:    "translator",
		Timeout: breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("translator circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &HTTPTranslator{
		client:  &http.Client{Timeout: cfg.Timeout},
		url:     cfg.URL,
		apiKey:  cfg.APIKey,
		source:  cfg.SourceLanguage,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
	}
}

func (t *HTTPTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	if SameLanguage(target, t.source) {
		return text, nil
	}

	out, err := t.breaker.Execute(func() (string, error) {
		return t.call(ctx, text, target)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", err
	}
	return out, nil
}

func (t *HTTPTranslator) call(ctx context.Context, text, target string) (string, error) {
	body, err := json.Marshal(translateRequest{
		Q:      text,
		Source: t.source,
		Target: target,
		Format: "text",
		APIKey: t.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	var decoded translateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, decoded.Error)
	}
	if decoded.TranslatedText == "" {
		return "", fmt.Errorf("%w: empty translation", ErrUnavailable)
	}
	return decoded.TranslatedText, nil
}
