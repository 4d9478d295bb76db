package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ortografia-app/ortografia-api/internal/models"
	"github.com/ortografia-app/ortografia-api/internal/service"
	appErrors "github.com/ortografia-app/ortografia-api/pkg/errors"
	"github.com/ortografia-app/ortografia-api/pkg/response"
)

// WordHandler exposes word bank endpoints.
type WordHandler struct {
	words *service.WordService
}

// NewWordHandler constructs WordHandler.
func NewWordHandler(words *service.WordService) *WordHandler {
	return &WordHandler{words: words}
}

// Create godoc
// @Summary Add a word to the bank
// @Tags Words
// @Accept json
// @Produce json
// @Param payload body service.CreateWordRequest true "Word payload"
// @Success 201 {object} response.Envelope
// @Router /words [post]
func (h *WordHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	var req service.CreateWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	word, err := h.words.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, word)
}

// List godoc
// @Summary List the teacher's word catalog
// @Tags Words
// @Produce json
// @Param category query string false "Filter by category"
// @Param difficulty query int false "Filter by difficulty"
// @Param active query bool false "Filter by active flag"
// @Param search query string false "Search in word or hint"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /words [get]
func (h *WordHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)

	var filter models.WordFilter
	filter.Category = c.Query("category")
	filter.Search = c.Query("search")
	if difficulty, err := strconv.Atoi(c.Query("difficulty")); err == nil {
		filter.Difficulty = difficulty
	}
	if raw := c.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	words, pagination, err := h.words.List(c.Request.Context(), claims.UserID, filter, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, words, pagination)
}

// GameWords godoc
// @Summary Fetch a randomised word set for the student's games
// @Tags Words
// @Produce json
// @Param difficulty query int false "Difficulty level"
// @Param limit query int false "Number of words"
// @Success 200 {object} response.Envelope
// @Router /words/game [get]
func (h *WordHandler) GameWords(c *gin.Context) {
	claims := claimsFromContext(c)
	difficulty, _ := strconv.Atoi(c.Query("difficulty"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	words, err := h.words.ListForGame(c.Request.Context(), claims.UserID, difficulty, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, words, nil)
}

// Update godoc
// @Summary Update a word
// @Tags Words
// @Accept json
// @Produce json
// @Param id path string true "Word ID"
// @Param payload body service.UpdateWordRequest true "Word changes"
// @Success 200 {object} response.Envelope
// @Router /words/{id} [patch]
func (h *WordHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	var req service.UpdateWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	word, err := h.words.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, word, nil)
}

// Deactivate godoc
// @Summary Hide a word from the games
// @Tags Words
// @Produce json
// @Param id path string true "Word ID"
// @Success 204 "No Content"
// @Router /words/{id} [delete]
func (h *WordHandler) Deactivate(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.words.Deactivate(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stats godoc
// @Summary Summarise the teacher's word bank
// @Tags Words
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /words/stats [get]
func (h *WordHandler) Stats(c *gin.Context) {
	claims := claimsFromContext(c)
	stats, err := h.words.Stats(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
