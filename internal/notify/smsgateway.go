package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/floodwatch/apiserver/config"
)

// SMSGateway sends messages through a token-authenticated HTTP gateway.
type SMSGateway struct {
	client   *http.Client
	url      string
	apiToken string
	senderID string
}

// NewSMSGateway constructs an SMS gateway client from config.
func NewSMSGateway(cfg config.SMSConfig) (*SMSGateway, error) {
	if strings.TrimSpace(cfg.GatewayURL) == "" {
		return nil, errors.New("sms gateway url is required")
	}
	if strings.TrimSpace(cfg.APIToken) == "" {
		return nil, errors.New("sms api token is required")
	}

	return &SMSGateway{
		client:   &http.Client{Timeout: cfg.Timeout},
		url:      cfg.GatewayURL,
		apiToken: cfg.APIToken,
		senderID: cfg.SenderID,
	}, nil
}

type smsPayload struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Message string `json:"message"`
}

// Send posts one message to the gateway. A non-2xx response is an error.
func (g *SMSGateway) Send(ctx context.Context, phoneNumber, message string) error {
	body, err := json.Marshal(smsPayload{
		To:      phoneNumber,
		From:    g.senderID,
		Message: message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}
