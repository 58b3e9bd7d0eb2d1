package webhook

import (
	"net/http"
	"time"

	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/protocol"
	"github.com/vendaflow/vendaflow/pkg/template"
)

type Factory struct {
	resolver   *template.Resolver
	httpClient *http.Client
	dispatch   func(func())
}

func NewFactory(resolver *template.Resolver) *Factory {
	return &Factory{
		resolver:   resolver,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		dispatch:   func(send func()) { go send() },
	}
}

// NewSynchronousFactory runs sends inline so tests can assert on delivery.
func NewSynchronousFactory(resolver *template.Resolver, client *http.Client) *Factory {
	return &Factory{
		resolver:   resolver,
		httpClient: client,
		dispatch:   func(send func()) { send() },
	}
}

func (f *Factory) ID() models.ActionType {
	return models.ActionSendWebhook
}

func (f *Factory) Create(step *models.Step) (protocol.Action, error) {
	return &Action{
		step:       step,
		resolver:   f.resolver,
		httpClient: f.httpClient,
		dispatch:   f.dispatch,
	}, nil
}

func (f *Factory) Schema() string {
	return `{
		"type": "object",
		"required": ["webhook_url"],
		"properties": {
			"webhook_url": {"type": "string", "minLength": 1}
		}
	}`
}
