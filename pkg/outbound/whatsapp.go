// Package outbound holds the clients for tenant-configured message
// channels. Sends are single-attempt: failures are logged by callers and
// never retried, so a flaky channel cannot duplicate side effects.
package outbound

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vendaflow/vendaflow/pkg/models"
)

// WhatsAppSender sends a text message through a tenant's WhatsApp channel.
type WhatsAppSender interface {
	SendText(ctx context.Context, settings *models.TenantSettings, number, text string) error
}

// EvolutionClient talks to the Evolution API.
type EvolutionClient struct {
	httpClient *http.Client
}

func NewEvolutionClient() *EvolutionClient {
	return &EvolutionClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *EvolutionClient) SendText(ctx context.Context, settings *models.TenantSettings, number, text string) error {
	payload, err := json.Marshal(map[string]string{
		"number": number,
		"text":   text,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/message/sendText/%s",
		normalizeBaseURL(settings.EvolutionAPIURL), settings.EvolutionInstanceName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", settings.EvolutionAPIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("evolution api returned status %d", resp.StatusCode)
	}

	return nil
}

// normalizeBaseURL trims trailing slashes and assumes https for
// tenant-entered URLs that omit the scheme.
func normalizeBaseURL(url string) string {
	url = strings.TrimRight(url, "/")
	if url != "" && !strings.Contains(url, "://") {
		url = "https://" + url
	}

	return url
}
