// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/vendaflow/vendaflow/pkg/actions/addnote"
	"github.com/vendaflow/vendaflow/pkg/actions/calendarnote"
	"github.com/vendaflow/vendaflow/pkg/actions/createdeal"
	"github.com/vendaflow/vendaflow/pkg/actions/createtask"
	"github.com/vendaflow/vendaflow/pkg/actions/email"
	"github.com/vendaflow/vendaflow/pkg/actions/movestage"
	"github.com/vendaflow/vendaflow/pkg/actions/updatestatus"
	"github.com/vendaflow/vendaflow/pkg/actions/wait"
	"github.com/vendaflow/vendaflow/pkg/actions/webhook"
	"github.com/vendaflow/vendaflow/pkg/actions/whatsapp"
	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/outbound"
	"github.com/vendaflow/vendaflow/pkg/protocol"
	"github.com/vendaflow/vendaflow/pkg/registry"
	"github.com/vendaflow/vendaflow/pkg/template"
)

// NewRegistry builds the action registry with every native action wired to
// its collaborators.
func NewRegistry(logger *slog.Logger, store crm.EntityStore) *registry.Registry {
	reg := registry.NewRegistry(logger)
	resolver := template.NewResolver(store)

	factories := []protocol.ActionFactory{
		createdeal.NewFactory(store, resolver),
		addnote.NewFactory(store, resolver),
		updatestatus.NewFactory(store),
		movestage.NewFactory(store),
		wait.NewFactory(),
		webhook.NewFactory(resolver),
		whatsapp.NewFactory(store, resolver, outbound.NewEvolutionClient()),
		email.NewFactory(store, resolver, outbound.NewSMTPMailer()),
		createtask.NewFactory(store, resolver),
		calendarnote.NewFactory(store, resolver),
	}

	for _, factory := range factories {
		if err := reg.RegisterAction(factory); err != nil {
			panic(err)
		}
	}

	return reg
}
