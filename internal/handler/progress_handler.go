package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ortografia-app/ortografia-api/internal/service"
	appErrors "github.com/ortografia-app/ortografia-api/pkg/errors"
	"github.com/ortografia-app/ortografia-api/pkg/response"
)

// ProgressHandler exposes game session and progress endpoints.
type ProgressHandler struct {
	progress  *service.ProgressService
	dashboard *service.DashboardService
}

// NewProgressHandler constructs ProgressHandler.
func NewProgressHandler(progress *service.ProgressService, dashboard *service.DashboardService) *ProgressHandler {
	return &ProgressHandler{progress: progress, dashboard: dashboard}
}

// RecordSession godoc
// @Summary Record a finished game session
// @Tags Progress
// @Accept json
// @Produce json
// @Param payload body service.RecordSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Router /progress/sessions [post]
func (h *ProgressHandler) RecordSession(c *gin.Context) {
	claims := claimsFromContext(c)
	var req service.RecordSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.progress.RecordSession(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// MyProgress godoc
// @Summary Return the calling user's sessions and stats
// @Tags Progress
// @Produce json
// @Param limit query int false "Max sessions"
// @Success 200 {object} response.Envelope
// @Router /progress/me [get]
func (h *ProgressHandler) MyProgress(c *gin.Context) {
	claims := claimsFromContext(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	report, err := h.progress.MyProgress(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// StudentProgress godoc
// @Summary Return a student's sessions and stats
// @Tags Progress
// @Produce json
// @Param studentId path string true "Student ID"
// @Param limit query int false "Max sessions"
// @Success 200 {object} response.Envelope
// @Router /progress/students/{studentId} [get]
func (h *ProgressHandler) StudentProgress(c *gin.Context) {
	claims := claimsFromContext(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	report, err := h.progress.StudentProgress(c.Request.Context(), claims, c.Param("studentId"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// ClassroomProgress godoc
// @Summary Return per-student progress for a classroom
// @Tags Progress
// @Produce json
// @Param classroomId path string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Router /progress/classrooms/{classroomId} [get]
func (h *ProgressHandler) ClassroomProgress(c *gin.Context) {
	claims := claimsFromContext(c)
	rows, err := h.progress.ClassroomProgress(c.Request.Context(), claims.UserID, c.Param("classroomId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ExportClassroomProgress godoc
// @Summary Download the classroom progress report
// @Tags Progress
// @Produce text/csv
// @Produce application/pdf
// @Param classroomId path string true "Classroom ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /progress/classrooms/{classroomId}/export [get]
func (h *ProgressHandler) ExportClassroomProgress(c *gin.Context) {
	claims := claimsFromContext(c)
	format := service.ProgressExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.progress.ExportClassroomProgress(c.Request.Context(), claims.UserID, c.Param("classroomId"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

// Dashboard godoc
// @Summary Return the teacher dashboard
// @Tags Progress
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *ProgressHandler) Dashboard(c *gin.Context) {
	claims := claimsFromContext(c)
	dashboard, cached, err := h.dashboard.Teacher(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil, map[string]interface{}{"cached": cached})
}
