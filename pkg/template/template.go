// Package template resolves {{...}} placeholders in user-authored strings
// against the live execution context. Markers that cannot be resolved are
// left verbatim; callers must not assume full substitution.
package template

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/models"
)

var (
	dealNamePattern  = regexp.MustCompile(`(?i)\{\{deal\.name\}\}`)
	dealValuePattern = regexp.MustCompile(`(?i)\{\{deal\.value\}\}`)
	dealIDPattern    = regexp.MustCompile(`(?i)\{\{deal\.id\}\}`)

	contactNamePattern  = regexp.MustCompile(`(?i)\{\{contact\.name\}\}`)
	contactEmailPattern = regexp.MustCompile(`(?i)\{\{contact\.email\}\}`)
	contactPhonePattern = regexp.MustCompile(`(?i)\{\{contact\.phone\}\}`)

	taskTitlePattern = regexp.MustCompile(`(?i)\{\{task\.title\}\}`)

	// Custom-field markers resolve by definition name, not ID. The
	// contact.custom pattern is matched first so the plain custom pattern
	// never sees its markers.
	dealCustomPattern    = regexp.MustCompile(`(?i)\{\{custom\.([^}]+)\}\}`)
	contactCustomPattern = regexp.MustCompile(`(?i)\{\{contact\.custom\.([^}]+)\}\}`)
)

// Resolver substitutes placeholders using the entity store for contact and
// custom-field lookups.
type Resolver struct {
	store crm.EntityStore
}

func NewResolver(store crm.EntityStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve replaces every resolvable marker in input. Lookup failures and
// unknown field names leave the marker untouched.
func (r *Resolver) Resolve(ctx context.Context, input string, ectx *models.ExecutionContext) string {
	resolved := input

	var contact *models.Contact
	if ectx.Deal != nil && ectx.Deal.ContactID != "" {
		contact, _ = r.store.GetContact(ctx, ectx.TenantID, ectx.Deal.ContactID)
	}

	if ectx.Deal != nil {
		deal := ectx.Deal
		resolved = dealNamePattern.ReplaceAllString(resolved, deal.Name)
		resolved = dealValuePattern.ReplaceAllString(resolved, formatNumber(deal.Value))
		resolved = dealIDPattern.ReplaceAllString(resolved, deal.ID)

		resolved = r.resolveCustomFields(ctx, resolved, ectx.TenantID, deal.CustomFields, dealCustomPattern, false)
	}

	if contact != nil {
		phone := ""
		if len(contact.Phones) > 0 {
			phone = contact.Phones[0]
		}

		resolved = contactCustomPattern.ReplaceAllStringFunc(resolved, func(marker string) string {
			return r.resolveCustomMarker(ctx, marker, ectx.TenantID, contact.CustomFields, contactCustomPattern, true)
		})

		resolved = contactNamePattern.ReplaceAllString(resolved, contact.Name)
		resolved = contactEmailPattern.ReplaceAllString(resolved, contact.Email)
		resolved = contactPhonePattern.ReplaceAllString(resolved, phone)
	}

	if ectx.Task != nil {
		resolved = taskTitlePattern.ReplaceAllString(resolved, ectx.Task.Title)
	}

	return resolved
}

func (r *Resolver) resolveCustomFields(ctx context.Context, input, tenantID string, values map[string]any, pattern *regexp.Regexp, contactScoped bool) string {
	return pattern.ReplaceAllStringFunc(input, func(marker string) string {
		return r.resolveCustomMarker(ctx, marker, tenantID, values, pattern, contactScoped)
	})
}

func (r *Resolver) resolveCustomMarker(ctx context.Context, marker, tenantID string, values map[string]any, pattern *regexp.Regexp, contactScoped bool) string {
	groups := pattern.FindStringSubmatch(marker)
	if len(groups) < 2 {
		return marker
	}

	fieldName := strings.ToLower(strings.TrimSpace(groups[1]))

	var (
		defs []*models.CustomFieldDefinition
		err  error
	)

	if contactScoped {
		defs, err = r.store.ContactCustomFieldDefinitions(ctx, tenantID)
	} else {
		defs, err = r.store.CustomFieldDefinitions(ctx, tenantID)
	}

	if err != nil {
		return marker
	}

	for _, def := range defs {
		if strings.ToLower(def.Name) != fieldName {
			continue
		}

		value, ok := values[def.ID]
		if !ok || value == nil {
			return marker
		}

		return formatValue(value)
	}

	return marker
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return formatNumber(v)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
