package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/khatapp/udhaar/pkg/logger"
	"github.com/valyala/fasthttp"
)

var (
	ErrNoAvailableProviders = errors.New("no available providers")
)

type DeliveryStatus string

const (
	StatusDelivered DeliveryStatus = "DELIVERED"
	StatusFailed    DeliveryStatus = "FAILED"
	StatusPending   DeliveryStatus = "PENDING"
)

type SendRequest struct {
	MessageID   string `json:"message_id"`
	PhoneNumber string `json:"phone_number"`
	Content     string `json:"content"`
}

type SendResponse struct {
	MessageID   string         `json:"message_id"`
	Status      DeliveryStatus `json:"status"`
	DeliveredAt *time.Time     `json:"delivered_at,omitempty"`
	ErrorCode   string         `json:"error_code,omitempty"`
	ErrorMsg    string         `json:"error_message,omitempty"`
	OperatorID  string         `json:"operator_id"`
	ProcessedAt time.Time      `json:"processed_at"`
}

// Provider is one reachable SMS backend. A provider is benched after
// maxConsecutiveFails and retried once benchDuration has passed.
type Provider struct {
	name   string
	url    string
	client *fasthttp.Client

	consecutiveFails atomic.Int32
	benchedUntil     atomic.Int64
}

const (
	maxConsecutiveFails = 3
	benchDuration       = 30 * time.Second
)

func NewProvider(name, url string) *Provider {
	return &Provider{
		name: name,
		url:  url,
		client: &fasthttp.Client{
			MaxConnsPerHost: 512,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
		},
	}
}

func (p *Provider) available() bool {
	if until := p.benchedUntil.Load(); until > 0 {
		if time.Now().Unix() <= until {
			return false
		}
		p.benchedUntil.Store(0)
		p.consecutiveFails.Store(0)
	}
	return true
}

func (p *Provider) recordFailure() {
	if p.consecutiveFails.Add(1) >= maxConsecutiveFails {
		p.benchedUntil.Store(time.Now().Add(benchDuration).Unix())
	}
}

func (p *Provider) recordSuccess() {
	p.consecutiveFails.Store(0)
}

func (p *Provider) send(ctx context.Context, payload []byte) (*SendResponse, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(p.url + "/send")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	deadline := time.Now().Add(5 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := p.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("provider %s returned status %d", p.name, resp.StatusCode())
	}

	var out SendResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("provider %s returned malformed body: %w", p.name, err)
	}
	return &out, nil
}

// Client fans a send across providers in priority order, failing over to
// the next one when a provider errors or is benched.
type Client struct {
	providers []*Provider
}

func NewClient(providers ...*Provider) (*Client, error) {
	if len(providers) == 0 {
		return nil, errors.New("at least one provider is required")
	}
	return &Client{providers: providers}, nil
}

func (c *Client) Send(ctx context.Context, sendReq SendRequest) (*SendResponse, error) {
	payload, err := json.Marshal(sendReq)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, p := range c.providers {
		if !p.available() {
			continue
		}

		resp, err := p.send(ctx, payload)
		if err != nil {
			p.recordFailure()
			lastErr = err
			logger.Warn("[sms-gateway] provider send failed, trying next",
				"provider", p.name,
				"message_id", sendReq.MessageID,
				"error", err,
			)
			continue
		}

		p.recordSuccess()
		if resp.Status == StatusFailed {
			lastErr = fmt.Errorf("provider %s rejected message: %s", p.name, resp.ErrorMsg)
			continue
		}
		return resp, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoAvailableProviders
}
