// Package riskclient implements the HTTP client for the remote
// risk-scoring service. The scoring algorithm is opaque to this
// program: the client submits a URL or content and receives a risk
// descriptor back.
//
// The client issues exactly one request per call with no retry. Dedup
// of repeated URLs is the link index's job and happens before this
// package is invoked. Failures are classified as NetworkError or
// MalformedResponseError; both leave the target permanently unscored
// for the session.
package riskclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/linkgate/linkgate/internal/model"
)

// Service endpoint paths.
const (
	analyzeURLPath   = "/analyze/url"
	analyzeEmailPath = "/analyze/email"
)

// maxResponseSize limits how much of a response body is read. Risk
// descriptors are small; anything larger is malformed.
const maxResponseSize = 1 << 20 // 1MB

// Client talks to the risk-scoring service.
type Client struct {
	// baseURL is the service root, without a trailing slash.
	baseURL string

	// httpClient performs the requests. Timeout behavior is whatever
	// this client carries; the engine adds no timeout of its own.
	httpClient *http.Client

	// userAgent is sent with every request.
	userAgent string

	// logger is used for request diagnostics.
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. Useful for tests and for
// callers that need proxy or TLS configuration.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the transport timeout on the client's own
// http.Client. Ignored when WithHTTPClient was also given a client
// after this option.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  "LinkGate/1.0 (+https://github.com/linkgate/linkgate)",
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// urlRequest is the wire format for POST /analyze/url.
type urlRequest struct {
	URL string `json:"url"`
}

// emailRequest is the wire format for POST /analyze/email.
type emailRequest struct {
	Content     string `json:"content"`
	SenderEmail string `json:"sender_email,omitempty"`
}

// wireResult mirrors model.AnalysisResult but keeps risk_score as a
// pointer so a missing field is distinguishable from a zero score.
type wireResult struct {
	RiskScore      *int     `json:"risk_score"`
	RiskLevel      string   `json:"risk_level"`
	Recommendation string   `json:"recommendation"`
	Threats        []string `json:"threats"`
	Details        []string `json:"details"`
	MLConfidence   *float64 `json:"ml_confidence"`
	AnalysisTimeMS float64  `json:"analysis_time_ms"`
	AnalysisType   string   `json:"analysis_type"`
}

// AnalyzeURL submits one URL for scoring and returns the risk
// descriptor. The context bounds the request; no retry is attempted on
// any failure.
func (c *Client) AnalyzeURL(ctx context.Context, targetURL string) (*model.AnalysisResult, error) {
	return c.post(ctx, analyzeURLPath, targetURL, urlRequest{URL: targetURL})
}

// AnalyzeEmail submits text content (e.g. a pasted email body) for
// scoring. senderEmail may be empty.
func (c *Client) AnalyzeEmail(ctx context.Context, content, senderEmail string) (*model.AnalysisResult, error) {
	return c.post(ctx, analyzeEmailPath, "email content", emailRequest{
		Content:     content,
		SenderEmail: senderEmail,
	})
}

// post performs one request/response cycle against the service.
// target is used only for error reporting.
func (c *Client) post(ctx context.Context, path, target string, payload any) (*model.AnalysisResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil, &NetworkError{URL: target, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &NetworkError{URL: target, Err: err}
	}

	var wire wireResult
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &MalformedResponseError{URL: target, Reason: "undecodable JSON payload"}
	}
	if wire.RiskScore == nil {
		return nil, &MalformedResponseError{URL: target, Reason: "missing risk_score"}
	}
	if *wire.RiskScore < 0 || *wire.RiskScore > 100 {
		return nil, &MalformedResponseError{URL: target, Reason: fmt.Sprintf("risk_score %d out of range", *wire.RiskScore)}
	}

	c.logger.Debug("analysis completed",
		"target", target,
		"risk_score", *wire.RiskScore,
		"elapsed", time.Since(start),
	)

	return &model.AnalysisResult{
		RiskScore:      *wire.RiskScore,
		RiskLevel:      wire.RiskLevel,
		Recommendation: wire.Recommendation,
		Threats:        wire.Threats,
		Details:        wire.Details,
		MLConfidence:   wire.MLConfidence,
		AnalysisTimeMS: wire.AnalysisTimeMS,
		AnalysisType:   wire.AnalysisType,
	}, nil
}
