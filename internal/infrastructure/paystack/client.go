package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Kingsley-codes/we-listen/config"
	"github.com/Kingsley-codes/we-listen/internal/application"
)

// Client talks to the Paystack REST API. It implements
// application.PaymentGateway.
type Client struct {
	baseURL     string
	secretKey   string
	callbackURL string
	httpClient  *http.Client
}

func NewClient(cfg *config.PaystackConfig) *Client {
	return &Client{
		baseURL:     cfg.BaseURL,
		secretKey:   cfg.SecretKey,
		callbackURL: cfg.CallbackURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

type initializeRequest struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Metadata  struct {
			UserID    string `json:"userId"`
			SessionID string `json:"sessionId"`
		} `json:"metadata"`
	} `json:"data"`
}

func (c *Client) Initialize(ctx context.Context, email string, amountKobo int64, reference string, metadata map[string]string) (string, error) {
	payload := initializeRequest{
		Email:       email,
		Amount:      amountKobo,
		Reference:   reference,
		CallbackURL: c.callbackURL,
		Metadata:    metadata,
	}

	var resp initializeResponse
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", payload, &resp); err != nil {
		return "", err
	}
	if !resp.Status {
		return "", fmt.Errorf("paystack initialize rejected: %s", resp.Message)
	}
	return resp.Data.AuthorizationURL, nil
}

func (c *Client) Verify(ctx context.Context, reference string) (*application.GatewayTransaction, error) {
	var resp verifyResponse
	if err := c.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, fmt.Errorf("paystack verify rejected: %s", resp.Message)
	}
	return &application.GatewayTransaction{
		Reference: resp.Data.Reference,
		Status:    resp.Data.Status,
		UserID:    resp.Data.Metadata.UserID,
		SessionID: resp.Data.Metadata.SessionID,
	}, nil
}

// VerifySignature checks the x-paystack-signature header on a webhook body.
func (c *Client) VerifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paystack request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("paystack %s %s: status %d: %s", method, path, resp.StatusCode, data)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
