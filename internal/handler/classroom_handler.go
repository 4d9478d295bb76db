package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ortografia-app/ortografia-api/internal/service"
	appErrors "github.com/ortografia-app/ortografia-api/pkg/errors"
	"github.com/ortografia-app/ortografia-api/pkg/response"
)

// ClassroomHandler exposes classroom management endpoints.
type ClassroomHandler struct {
	classrooms *service.ClassroomService
}

// NewClassroomHandler constructs ClassroomHandler.
func NewClassroomHandler(classrooms *service.ClassroomService) *ClassroomHandler {
	return &ClassroomHandler{classrooms: classrooms}
}

// Create godoc
// @Summary Create a classroom
// @Tags Classrooms
// @Accept json
// @Produce json
// @Param payload body service.CreateClassroomRequest true "Classroom payload"
// @Success 201 {object} response.Envelope
// @Router /classrooms [post]
func (h *ClassroomHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	var req service.CreateClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	classroom, err := h.classrooms.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, classroom)
}

// ListMine godoc
// @Summary List the teacher's classrooms
// @Tags Classrooms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classrooms [get]
func (h *ClassroomHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	classrooms, err := h.classrooms.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classrooms, nil)
}

// ListAvailable godoc
// @Summary List classrooms the calling student can still join
// @Tags Classrooms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classrooms/available [get]
func (h *ClassroomHandler) ListAvailable(c *gin.Context) {
	claims := claimsFromContext(c)
	classrooms, err := h.classrooms.ListAvailable(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classrooms, nil)
}

// Get godoc
// @Summary Get one of the teacher's classrooms
// @Tags Classrooms
// @Produce json
// @Param classroomId path string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{classroomId} [get]
func (h *ClassroomHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	classroom, err := h.classrooms.Get(c.Request.Context(), claims.UserID, c.Param("classroomId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classroom, nil)
}

// Update godoc
// @Summary Update a classroom
// @Tags Classrooms
// @Accept json
// @Produce json
// @Param classroomId path string true "Classroom ID"
// @Param payload body service.UpdateClassroomRequest true "Classroom changes"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{classroomId} [patch]
func (h *ClassroomHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	var req service.UpdateClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	classroom, err := h.classrooms.Update(c.Request.Context(), claims.UserID, c.Param("classroomId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classroom, nil)
}

// ListStudents godoc
// @Summary List the active roster of a classroom
// @Tags Classrooms
// @Produce json
// @Param classroomId path string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{classroomId}/students [get]
func (h *ClassroomHandler) ListStudents(c *gin.Context) {
	claims := claimsFromContext(c)
	students, err := h.classrooms.ListStudents(c.Request.Context(), claims.UserID, c.Param("classroomId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}
