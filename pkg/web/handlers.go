// Package web provides HTTP handlers and REST API endpoints for automation management.
package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/persistence"
	"github.com/vendaflow/vendaflow/pkg/services"
)

// APIHandlers serves the tenant-scoped automation admin API. The tenant is
// a path parameter; authentication sits in front of this service and is not
// handled here.
type APIHandlers struct {
	automationService *services.Automation
	continuations     persistence.ContinuationRepository
	validator         *validator.Validate
}

func NewAPIHandlers(
	automationService *services.Automation,
	continuations persistence.ContinuationRepository,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		automationService: automationService,
		continuations:     continuations,
		validator:         validator,
	}
}

func (h *APIHandlers) GetAutomations(c fiber.Ctx) error {
	tenantID := c.Params("tenantId")
	if tenantID == "" {
		return badRequest(c, "Tenant ID is required")
	}

	automations, err := h.automationService.List(c.Context(), tenantID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(automations)
}

func (h *APIHandlers) GetAutomation(c fiber.Ctx) error {
	tenantID := c.Params("tenantId")
	id := c.Params("id")

	if tenantID == "" || id == "" {
		return badRequest(c, "Tenant ID and automation ID are required")
	}

	automation, err := h.automationService.FetchByID(c.Context(), tenantID, id)
	if err != nil {
		if persistence.IsAutomationNotFound(err) {
			return notFound(c, "Automation not found")
		}

		return internalError(c, err)
	}

	return c.JSON(automation)
}

func (h *APIHandlers) CreateAutomation(c fiber.Ctx) error {
	tenantID := c.Params("tenantId")
	if tenantID == "" {
		return badRequest(c, "Tenant ID is required")
	}

	var req CreateAutomationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	automation := &models.Automation{
		TenantID:      tenantID,
		Name:          req.Name,
		TriggerType:   req.TriggerType,
		TriggerConfig: req.TriggerConfig,
		Steps:         req.Steps,
	}

	created, err := h.automationService.Create(c.Context(), automation)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateAutomation(c fiber.Ctx) error {
	tenantID := c.Params("tenantId")
	id := c.Params("id")

	if tenantID == "" || id == "" {
		return badRequest(c, "Tenant ID and automation ID are required")
	}

	var req UpdateAutomationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	automation := &models.Automation{
		Name:          req.Name,
		TriggerType:   req.TriggerType,
		TriggerConfig: req.TriggerConfig,
		Steps:         req.Steps,
	}

	updated, err := h.automationService.Update(c.Context(), tenantID, id, automation)
	if err != nil {
		if persistence.IsAutomationNotFound(err) {
			return notFound(c, "Automation not found")
		}

		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteAutomation(c fiber.Ctx) error {
	tenantID := c.Params("tenantId")
	id := c.Params("id")

	if tenantID == "" || id == "" {
		return badRequest(c, "Tenant ID and automation ID are required")
	}

	err := h.automationService.Delete(c.Context(), tenantID, id)
	if err != nil {
		if persistence.IsAutomationNotFound(err) {
			return notFound(c, "Automation not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetDealContinuations lists the open continuations suspended on a deal.
func (h *APIHandlers) GetDealContinuations(c fiber.Ctx) error {
	tenantID := c.Params("tenantId")
	dealID := c.Params("dealId")

	if tenantID == "" || dealID == "" {
		return badRequest(c, "Tenant ID and deal ID are required")
	}

	continuations, err := h.continuations.ListForDeal(c.Context(), tenantID, dealID)
	if err != nil {
		return internalError(c, err)
	}

	response := make([]ContinuationResponse, 0, len(continuations))
	for _, continuation := range continuations {
		response = append(response, TransformContinuationResponse(continuation))
	}

	return c.JSON(response)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.automationService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Vendaflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Vendaflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
