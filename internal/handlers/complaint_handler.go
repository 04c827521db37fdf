package handlers

import (
	"strconv"

	"github.com/civictrack/backend/internal/middleware"
	"github.com/civictrack/backend/internal/models"
	"github.com/civictrack/backend/internal/services"
	"github.com/civictrack/backend/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ComplaintHandler struct {
	service   services.ComplaintService
	evidence  services.EvidenceService
	validator *validator.Validate
}

func NewComplaintHandler(service services.ComplaintService, evidence services.EvidenceService) *ComplaintHandler {
	return &ComplaintHandler{
		service:   service,
		evidence:  evidence,
		validator: validator.New(),
	}
}

// CreateComplaint accepts JSON or a multipart form; multipart submissions
// may carry photos under the "images" field.
func (h *ComplaintHandler) CreateComplaint(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not authenticated")
	}

	var req models.ComplaintCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validator.Struct(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	var files []services.EvidenceFile
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, header := range form.File["images"] {
			src, err := header.Open()
			if err != nil {
				return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read file")
			}
			defer src.Close()

			files = append(files, services.EvidenceFile{
				Name:        header.Filename,
				Size:        header.Size,
				ContentType: header.Header.Get("Content-Type"),
				Reader:      src,
			})
		}
	}

	complaint, err := h.service.Create(c.Context(), actor, &req, files)
	if err != nil {
		return respondError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, "Complaint submitted", complaint)
}

func (h *ComplaintHandler) GetComplaint(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not authenticated")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid ID")
	}

	complaint, err := h.service.GetByID(c.Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Complaint retrieved", complaint)
}

func (h *ComplaintHandler) ListComplaints(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not authenticated")
	}

	filter := &models.ComplaintFilter{}

	if page := c.Query("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil {
			filter.Page = p
		}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	if limit := c.Query("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			filter.Limit = l
		}
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	filter.Search = c.Query("search")

	if status := c.Query("status"); status != "" {
		s := models.ComplaintStatus(status)
		filter.Status = &s
	}
	if wardID := c.Query("ward_id"); wardID != "" {
		if id, err := uuid.Parse(wardID); err == nil {
			filter.WardID = &id
		}
	}
	if deptID := c.Query("department_id"); deptID != "" {
		if id, err := uuid.Parse(deptID); err == nil {
			filter.DepartmentID = &id
		}
	}
	if slaBreached := c.Query("sla_breached"); slaBreached != "" {
		breached := slaBreached == "true"
		filter.SLABreached = &breached
	}

	complaints, total, err := h.service.List(c.Context(), actor, filter)
	if err != nil {
		return respondError(c, err)
	}

	return utils.PaginatedSuccessResponse(c, complaints, filter.Page, filter.Limit, total)
}

// DispatchAction executes a workflow action named in the route, e.g.
// POST /complaints/:id/actions/resolve. The body may be JSON or a multipart
// form; a multipart resolve may carry resolution images under "images".
func (h *ComplaintHandler) DispatchAction(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not authenticated")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid ID")
	}
	action := models.ComplaintAction(c.Params("action"))

	var req models.ComplaintActionRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validator.Struct(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	var files []services.EvidenceFile
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, header := range form.File["images"] {
			src, err := header.Open()
			if err != nil {
				return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read file")
			}
			defer src.Close()

			files = append(files, services.EvidenceFile{
				Name:        header.Filename,
				Size:        header.Size,
				ContentType: header.Header.Get("Content-Type"),
				Reader:      src,
			})
		}
	}

	complaint, err := h.service.Dispatch(c.Context(), actor, id, action, &req, files)
	if err != nil {
		return respondError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Action executed", complaint)
}

func (h *ComplaintHandler) GetHistory(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not authenticated")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid ID")
	}

	history, err := h.service.ListHistory(c.Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "History retrieved", history)
}

// UploadEvidence accepts a multipart batch of images under the "images"
// field, plus "stage" and an optional "message".
func (h *ComplaintHandler) UploadEvidence(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not authenticated")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid ID")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Expected multipart form data")
	}

	stage := models.EvidenceStage(c.FormValue("stage"))
	message := c.FormValue("message")

	headers := form.File["images"]
	if len(headers) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No images uploaded")
	}

	files := make([]services.EvidenceFile, 0, len(headers))
	for _, header := range headers {
		src, err := header.Open()
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read file")
		}
		defer src.Close()

		files = append(files, services.EvidenceFile{
			Name:        header.Filename,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
			Reader:      src,
		})
	}

	evidence, err := h.evidence.Attach(c.Context(), actor, id, stage, message, files)
	if err != nil {
		return respondError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, "Evidence uploaded", evidence)
}

func (h *ComplaintHandler) ListEvidence(c *fiber.Ctx) error {
	if _, ok := middleware.ActorFromContext(c); !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not authenticated")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid ID")
	}

	evidence, err := h.evidence.ListForComplaint(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Evidence retrieved", evidence)
}

func (h *ComplaintHandler) SubmitFeedback(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not authenticated")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid ID")
	}

	var req models.ComplaintFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validator.Struct(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.SubmitFeedback(c.Context(), actor, id, &req); err != nil {
		return respondError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Feedback recorded", nil)
}

func (h *ComplaintHandler) GetStats(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not authenticated")
	}

	stats, err := h.service.GetStats(c.Context(), actor)
	if err != nil {
		return respondError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Stats retrieved", stats)
}
