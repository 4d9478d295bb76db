package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ortografia-app/ortografia-api/internal/service"
	appErrors "github.com/ortografia-app/ortografia-api/pkg/errors"
	"github.com/ortografia-app/ortografia-api/pkg/response"
)

// GuardianHandler exposes guardian-student link endpoints.
type GuardianHandler struct {
	guardians *service.GuardianService
}

// NewGuardianHandler constructs GuardianHandler.
func NewGuardianHandler(guardians *service.GuardianService) *GuardianHandler {
	return &GuardianHandler{guardians: guardians}
}

// LinkChild godoc
// @Summary Link the calling guardian to a student by email
// @Tags Guardians
// @Accept json
// @Produce json
// @Param payload body service.LinkChildRequest true "Link payload"
// @Success 201 {object} response.Envelope
// @Router /guardians/children [post]
func (h *GuardianHandler) LinkChild(c *gin.Context) {
	claims := claimsFromContext(c)
	var req service.LinkChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	link, err := h.guardians.LinkChild(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// Search godoc
// @Summary Find guardian accounts by email or name
// @Tags Guardians
// @Accept json
// @Produce json
// @Param payload body service.SearchGuardiansRequest true "Search criteria"
// @Success 200 {object} response.Envelope
// @Router /users/search-parent [post]
func (h *GuardianHandler) Search(c *gin.Context) {
	var req service.SearchGuardiansRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	guardians, err := h.guardians.SearchGuardians(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, guardians, nil)
}

// ListChildren godoc
// @Summary List the calling guardian's linked students
// @Tags Guardians
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /guardians/children [get]
func (h *GuardianHandler) ListChildren(c *gin.Context) {
	claims := claimsFromContext(c)
	children, err := h.guardians.ListChildren(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, children, nil)
}

// ListGuardians godoc
// @Summary List a student's guardians
// @Tags Guardians
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/guardians [get]
func (h *GuardianHandler) ListGuardians(c *gin.Context) {
	claims := claimsFromContext(c)
	guardians, err := h.guardians.ListGuardians(c.Request.Context(), claims, c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, guardians, nil)
}

// UpdateLink godoc
// @Summary Update a guardian link
// @Tags Guardians
// @Accept json
// @Produce json
// @Param id path string true "Link ID"
// @Param payload body service.UpdateGuardianLinkRequest true "Link changes"
// @Success 200 {object} response.Envelope
// @Router /guardians/links/{id} [patch]
func (h *GuardianHandler) UpdateLink(c *gin.Context) {
	claims := claimsFromContext(c)
	var req service.UpdateGuardianLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	link, err := h.guardians.UpdateLink(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Unlink godoc
// @Summary Remove a guardian link
// @Tags Guardians
// @Produce json
// @Param id path string true "Link ID"
// @Success 204 "No Content"
// @Router /guardians/links/{id} [delete]
func (h *GuardianHandler) Unlink(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.guardians.Unlink(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
