// Package webhook implements the SEND_WEBHOOK automation action.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/protocol"
	"github.com/vendaflow/vendaflow/pkg/template"
)

// Action posts the triggering deal or task to an external URL. The send is
// fire and forget: a single attempt in the background, failure logged and
// swallowed, never surfaced to the workflow.
type Action struct {
	step       *models.Step
	resolver   *template.Resolver
	httpClient *http.Client
	// dispatch runs the send; tests replace the default go-routine
	// dispatch with a synchronous one.
	dispatch func(func())
}

func (a *Action) Execute(ctx context.Context, ectx *models.ExecutionContext, logger *slog.Logger) (protocol.Result, error) {
	url, ok := a.step.ConfigString("webhook_url")
	if !ok {
		logger.Warn("SEND_WEBHOOK step missing webhook_url, skipping")

		return protocol.Continue(), nil
	}

	resolvedURL := a.resolver.Resolve(ctx, url, ectx)

	var payloadContext any
	if ectx.Deal != nil {
		payloadContext = ectx.Deal
	} else if ectx.Task != nil {
		payloadContext = ectx.Task
	}

	payload, err := json.Marshal(map[string]any{
		"trigger_event": ectx.EventType,
		"context":       payloadContext,
	})
	if err != nil {
		logger.Error("Failed to encode webhook payload", "error", err)

		return protocol.Continue(), nil
	}

	logger.Info("Sending automation webhook", "url", resolvedURL)

	a.dispatch(func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, resolvedURL, bytes.NewReader(payload))
		if err != nil {
			logger.Error("Automation webhook failed", "url", resolvedURL, "error", err)

			return
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := a.httpClient.Do(req)
		if err != nil {
			logger.Error("Automation webhook failed", "url", resolvedURL, "error", err)

			return
		}

		_ = resp.Body.Close()
	})

	return protocol.Continue(), nil
}
