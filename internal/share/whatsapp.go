package share

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dukaan-guru/internal/config"

	"github.com/go-resty/resty/v2"
)

// Client sends ledger summaries over a messaging channel.
type Client interface {
	SendText(ctx context.Context, to, body string) error
}

// WhatsAppClient is a resty-backed client for the Meta WhatsApp Cloud API.
type WhatsAppClient struct {
	httpClient    *resty.Client
	phoneNumberID string
}

// NewWhatsAppClient builds the client from configuration values.
func NewWhatsAppClient(cfg config.WhatsAppConfig) *WhatsAppClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New().
		SetBaseURL(fmt.Sprintf("%s/%s", base, cfg.APIVersion)).
		SetHeader("Authorization", "Bearer "+cfg.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &WhatsAppClient{
		httpClient:    restyClient,
		phoneNumberID: cfg.PhoneNumberID,
	}
}

type textPayload struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendText delivers body to the given phone number as a plain text message.
func (c *WhatsAppClient) SendText(ctx context.Context, to, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("recipient phone number is empty")
	}

	payload := textPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
	}
	payload.Text.Body = body

	var apiErr apiError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetError(&apiErr).
		Post(fmt.Sprintf("/%s/messages", c.phoneNumberID))
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("whatsapp api status %d: %s", resp.StatusCode(), apiErr.Error.Message)
	}
	return nil
}
