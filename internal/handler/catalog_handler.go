package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/leslesan/geniuz-api/internal/models"
	"github.com/leslesan/geniuz-api/internal/service"
	appErrors "github.com/leslesan/geniuz-api/pkg/errors"
	"github.com/leslesan/geniuz-api/pkg/response"
)

// CatalogHandler exposes CRUD endpoints for the curriculum catalog.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler constructs a catalog handler.
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

func listFilter(c *gin.Context) models.ListFilter {
	var filter models.ListFilter
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	return filter
}

func bindPayload(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

// ListClasses godoc
// @Summary List classes
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/classes [get]
func (h *CatalogHandler) ListClasses(c *gin.Context) {
	classes, pagination, err := h.service.ListClasses(c.Request.Context(), listFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, pagination)
}

// GetClass godoc
// @Summary Get class detail
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /admin/classes/{id} [get]
func (h *CatalogHandler) GetClass(c *gin.Context) {
	class, err := h.service.GetClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// CreateClass godoc
// @Summary Create class
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.ClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /admin/classes [post]
func (h *CatalogHandler) CreateClass(c *gin.Context) {
	var req models.ClassRequest
	if !bindPayload(c, &req) {
		return
	}
	class, err := h.service.CreateClass(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// UpdateClass godoc
// @Summary Update class
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Param payload body models.ClassRequest true "Class payload"
// @Success 200 {object} response.Envelope
// @Router /admin/classes/{id} [put]
func (h *CatalogHandler) UpdateClass(c *gin.Context) {
	var req models.ClassRequest
	if !bindPayload(c, &req) {
		return
	}
	class, err := h.service.UpdateClass(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// DeleteClass godoc
// @Summary Delete class
// @Tags Catalog
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 204 {object} nil
// @Router /admin/classes/{id} [delete]
func (h *CatalogHandler) DeleteClass(c *gin.Context) {
	if err := h.service.DeleteClass(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListMentors godoc
// @Summary List mentors
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/mentors [get]
func (h *CatalogHandler) ListMentors(c *gin.Context) {
	mentors, pagination, err := h.service.ListMentors(c.Request.Context(), listFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentors, pagination)
}

// CreateMentor godoc
// @Summary Create mentor
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.MentorRequest true "Mentor payload"
// @Success 201 {object} response.Envelope
// @Router /admin/mentors [post]
func (h *CatalogHandler) CreateMentor(c *gin.Context) {
	var req models.MentorRequest
	if !bindPayload(c, &req) {
		return
	}
	mentor, err := h.service.CreateMentor(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mentor)
}

// UpdateMentor godoc
// @Summary Update mentor
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Mentor ID"
// @Param payload body models.MentorRequest true "Mentor payload"
// @Success 200 {object} response.Envelope
// @Router /admin/mentors/{id} [put]
func (h *CatalogHandler) UpdateMentor(c *gin.Context) {
	var req models.MentorRequest
	if !bindPayload(c, &req) {
		return
	}
	mentor, err := h.service.UpdateMentor(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentor, nil)
}

// DeleteMentor godoc
// @Summary Delete mentor
// @Tags Catalog
// @Security BearerAuth
// @Param id path string true "Mentor ID"
// @Success 204 {object} nil
// @Router /admin/mentors/{id} [delete]
func (h *CatalogHandler) DeleteMentor(c *gin.Context) {
	if err := h.service.DeleteMentor(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListFaculties godoc
// @Summary List faculties
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/faculties [get]
func (h *CatalogHandler) ListFaculties(c *gin.Context) {
	faculties, pagination, err := h.service.ListFaculties(c.Request.Context(), listFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculties, pagination)
}

// CreateFaculty godoc
// @Summary Create faculty
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.FacultyRequest true "Faculty payload"
// @Success 201 {object} response.Envelope
// @Router /admin/faculties [post]
func (h *CatalogHandler) CreateFaculty(c *gin.Context) {
	var req models.FacultyRequest
	if !bindPayload(c, &req) {
		return
	}
	faculty, err := h.service.CreateFaculty(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, faculty)
}

// UpdateFaculty godoc
// @Summary Update faculty
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Faculty ID"
// @Param payload body models.FacultyRequest true "Faculty payload"
// @Success 200 {object} response.Envelope
// @Router /admin/faculties/{id} [put]
func (h *CatalogHandler) UpdateFaculty(c *gin.Context) {
	var req models.FacultyRequest
	if !bindPayload(c, &req) {
		return
	}
	faculty, err := h.service.UpdateFaculty(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculty, nil)
}

// DeleteFaculty godoc
// @Summary Delete faculty
// @Tags Catalog
// @Security BearerAuth
// @Param id path string true "Faculty ID"
// @Success 204 {object} nil
// @Router /admin/faculties/{id} [delete]
func (h *CatalogHandler) DeleteFaculty(c *gin.Context) {
	if err := h.service.DeleteFaculty(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListMaterials godoc
// @Summary List materials
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/materials [get]
func (h *CatalogHandler) ListMaterials(c *gin.Context) {
	materials, pagination, err := h.service.ListMaterials(c.Request.Context(), listFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, materials, pagination)
}

// CreateMaterial godoc
// @Summary Create material
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.MaterialRequest true "Material payload"
// @Success 201 {object} response.Envelope
// @Router /admin/materials [post]
func (h *CatalogHandler) CreateMaterial(c *gin.Context) {
	var req models.MaterialRequest
	if !bindPayload(c, &req) {
		return
	}
	material, err := h.service.CreateMaterial(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, material)
}

// UpdateMaterial godoc
// @Summary Update material
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Material ID"
// @Param payload body models.MaterialRequest true "Material payload"
// @Success 200 {object} response.Envelope
// @Router /admin/materials/{id} [put]
func (h *CatalogHandler) UpdateMaterial(c *gin.Context) {
	var req models.MaterialRequest
	if !bindPayload(c, &req) {
		return
	}
	material, err := h.service.UpdateMaterial(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, material, nil)
}

// DeleteMaterial godoc
// @Summary Delete material
// @Tags Catalog
// @Security BearerAuth
// @Param id path string true "Material ID"
// @Success 204 {object} nil
// @Router /admin/materials/{id} [delete]
func (h *CatalogHandler) DeleteMaterial(c *gin.Context) {
	if err := h.service.DeleteMaterial(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListAssignments godoc
// @Summary List assignments
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/assignments [get]
func (h *CatalogHandler) ListAssignments(c *gin.Context) {
	assignments, pagination, err := h.service.ListAssignments(c.Request.Context(), listFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, pagination)
}

// CreateAssignment godoc
// @Summary Create assignment
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.AssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /admin/assignments [post]
func (h *CatalogHandler) CreateAssignment(c *gin.Context) {
	var req models.AssignmentRequest
	if !bindPayload(c, &req) {
		return
	}
	assignment, err := h.service.CreateAssignment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// UpdateAssignment godoc
// @Summary Update assignment
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Param payload body models.AssignmentRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /admin/assignments/{id} [put]
func (h *CatalogHandler) UpdateAssignment(c *gin.Context) {
	var req models.AssignmentRequest
	if !bindPayload(c, &req) {
		return
	}
	assignment, err := h.service.UpdateAssignment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// DeleteAssignment godoc
// @Summary Delete assignment
// @Tags Catalog
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 204 {object} nil
// @Router /admin/assignments/{id} [delete]
func (h *CatalogHandler) DeleteAssignment(c *gin.Context) {
	if err := h.service.DeleteAssignment(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
