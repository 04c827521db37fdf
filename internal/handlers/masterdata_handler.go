package handlers

import (
	"github.com/civictrack/backend/internal/models"
	"github.com/civictrack/backend/internal/repository"
	"github.com/civictrack/backend/internal/services"
	"github.com/civictrack/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// MasterDataHandler serves the ward and department catalogs used to populate
// complaint forms, with display names resolved through the registry.
type MasterDataHandler struct {
	wardRepo       repository.WardRepository
	departmentRepo repository.DepartmentRepository
	resolver       services.MasterDataService
}

func NewMasterDataHandler(wardRepo repository.WardRepository, departmentRepo repository.DepartmentRepository, resolver services.MasterDataService) *MasterDataHandler {
	return &MasterDataHandler{
		wardRepo:       wardRepo,
		departmentRepo: departmentRepo,
		resolver:       resolver,
	}
}

func (h *MasterDataHandler) ListWards(c *fiber.Ctx) error {
	wards, err := h.wardRepo.List(c.Context())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list wards")
	}

	responses := make([]models.WardResponse, 0, len(wards))
	for i := range wards {
		responses = append(responses, models.ToWardResponse(&wards[i]))
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Wards retrieved", responses)
}

func (h *MasterDataHandler) ListDepartments(c *fiber.Ctx) error {
	departments, err := h.departmentRepo.List(c.Context())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list departments")
	}

	responses := make([]models.DepartmentResponse, 0, len(departments))
	for i := range departments {
		responses = append(responses, models.ToDepartmentResponse(&departments[i]))
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Departments retrieved", responses)
}

func (h *MasterDataHandler) ResolveWard(c *fiber.Ctx) error {
	id := c.Params("id")
	name := h.resolver.ResolveWardName(c.Context(), id)
	return utils.SuccessResponse(c, fiber.StatusOK, "Ward resolved", fiber.Map{
		"id":   id,
		"name": name,
	})
}

func (h *MasterDataHandler) ResolveDepartment(c *fiber.Ctx) error {
	id := c.Params("id")
	name := h.resolver.ResolveDepartmentName(c.Context(), id)
	return utils.SuccessResponse(c, fiber.StatusOK, "Department resolved", fiber.Map{
		"id":   id,
		"name": name,
	})
}

func (h *MasterDataHandler) Refresh(c *fiber.Ctx) error {
	if err := h.resolver.Refresh(c.Context()); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Registry refresh failed")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Master data refreshed", nil)
}
