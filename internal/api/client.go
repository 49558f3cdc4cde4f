// Package api talks to the remote question bank and answer evaluator.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/compquiz/internal/levels"
	"github.com/verte-zerg/compquiz/internal/model"
)

const (
	questionPath = "/api/question"
	checkPath    = "/api/check"

	defaultTimeout    = 30 * time.Second
	defaultRetryDelay = 300 * time.Millisecond
	maxRetryDelay     = 5 * time.Second
	maxErrorBody      = 512
)

// TransportError reports a failure to obtain a usable response from the service.
type TransportError struct {
	Op     string
	Status int
	Err    error

	decode bool
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the request may succeed.
func (e *TransportError) Retryable() bool {
	if e.decode {
		return false
	}
	switch {
	case e.Status == 0:
		return true
	case e.Status == http.StatusTooManyRequests:
		return true
	case e.Status >= http.StatusInternalServerError:
		return true
	}
	return false
}

// Options configures a Client.
type Options struct {
	// Timeout bounds each HTTP request. Zero uses 30 seconds.
	Timeout time.Duration
	// Retries is the number of extra attempts for question fetches.
	Retries int
	// RetryDelay is the initial backoff between fetch attempts.
	RetryDelay time.Duration
	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client is an HTTP client for the quiz service.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	retrier retry.Retry[model.Question]
	logger  zerolog.Logger
}

// New returns a client for the service at baseURL.
func New(baseURL string, opts Options) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", baseURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid api url %q: missing host", baseURL)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		baseURL: parsed,
		http:    httpClient,
		logger:  opts.Logger.With().Str("component", "api").Logger(),
	}
	if opts.Retries > 0 {
		delay := opts.RetryDelay
		if delay <= 0 {
			delay = defaultRetryDelay
		}
		c.retrier = retry.New[model.Question](retry.Config{
			MaxAttempts:   opts.Retries + 1,
			InitialDelay:  delay,
			MaxDelay:      maxRetryDelay,
			Multiplier:    2.0,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
			IsRetryable:   isRetryable,
		})
	}
	return c, nil
}

// BaseURL returns the service address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchQuestion requests a question. Level 0 lets the server choose.
func (c *Client) FetchQuestion(ctx context.Context, level int) (model.Question, error) {
	if level != 0 && !levels.Valid(level) {
		return model.Question{}, fmt.Errorf("level %d out of range %d-%d", level, levels.Min, levels.Max)
	}
	if c.retrier == nil {
		return c.fetchOnce(ctx, level)
	}
	return c.retrier.Do(ctx, func(ctx context.Context) (model.Question, error) {
		return c.fetchOnce(ctx, level)
	})
}

func (c *Client) fetchOnce(ctx context.Context, level int) (model.Question, error) {
	const op = "fetch question"
	endpoint := c.endpoint(questionPath)
	if level != 0 {
		endpoint.RawQuery = url.Values{"level": []string{strconv.Itoa(level)}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), http.NoBody)
	if err != nil {
		return model.Question{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, requestID, err := c.do(req)
	if err != nil {
		return model.Question{}, &TransportError{Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		err := &TransportError{Op: op, Status: resp.StatusCode, Err: errors.New(readErrorBody(resp.Body))}
		c.logger.Warn().Str("request_id", requestID).Int("status", resp.StatusCode).Msg("question request rejected")
		return model.Question{}, err
	}
	q, err := decodeQuestion(resp.Body)
	if err != nil {
		return model.Question{}, &TransportError{Op: op, Status: resp.StatusCode, Err: err, decode: true}
	}
	c.logger.Debug().Str("request_id", requestID).Str("question_id", q.ID).Int("level", q.Level).Msg("question received")
	return q, nil
}

// CheckAnswer submits code for evaluation against the question. Evaluation
// errors reported by the service come back as a verdict, not an error.
func (c *Client) CheckAnswer(ctx context.Context, questionID, code string) (model.Verdict, error) {
	const op = "check answer"
	body, err := json.Marshal(checkPayload{Code: code, ID: questionID})
	if err != nil {
		return model.Verdict{}, fmt.Errorf("failed to encode answer: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(checkPath).String(), bytes.NewReader(body))
	if err != nil {
		return model.Verdict{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, requestID, err := c.do(req)
	if err != nil {
		return model.Verdict{}, &TransportError{Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		c.logger.Warn().Str("request_id", requestID).Int("status", resp.StatusCode).Msg("check request rejected")
		return model.Verdict{}, &TransportError{Op: op, Status: resp.StatusCode, Err: errors.New(readErrorBody(resp.Body))}
	}
	v, err := decodeVerdict(resp.Body)
	if err != nil {
		return model.Verdict{}, &TransportError{Op: op, Status: resp.StatusCode, Err: err, decode: true}
	}
	c.logger.Debug().
		Str("request_id", requestID).
		Str("question_id", questionID).
		Bool("correct", v.Correct).
		Bool("evaluation_error", v.HasError()).
		Msg("verdict received")
	return v, nil
}

func (c *Client) do(req *http.Request) (*http.Response, string, error) {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("request_id", requestID).Str("method", req.Method).Str("url", req.URL.String()).Msg("request failed")
		return nil, requestID, fmt.Errorf("request failed: %w", err)
	}
	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("request done")
	return resp, requestID, nil
}

func (c *Client) endpoint(path string) *url.URL {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	u.RawQuery = ""
	return &u
}

func isRetryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable()
	}
	return false
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return "unexpected response"
	}
	return strings.TrimSpace(string(data))
}
