package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SONDER730/competition-platform/internal/dto"
	"github.com/SONDER730/competition-platform/internal/service"
	appErrors "github.com/SONDER730/competition-platform/pkg/errors"
	"github.com/SONDER730/competition-platform/pkg/response"
)

// CompetitionHandler wires the competition catalogue to HTTP routes.
type CompetitionHandler struct {
	competitions *service.CompetitionService
}

// NewCompetitionHandler constructs a new CompetitionHandler.
func NewCompetitionHandler(competitions *service.CompetitionService) *CompetitionHandler {
	return &CompetitionHandler{competitions: competitions}
}

// List godoc
// @Summary List competitions
// @Tags Competitions
// @Security BearerAuth
// @Produce json
// @Param search query string false "Filter by name"
// @Param status query int false "Filter by status"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /competitions [get]
func (h *CompetitionHandler) List(c *gin.Context) {
	query := dto.CompetitionListQuery{
		Search: strings.TrimSpace(c.Query("search")),
	}
	if raw := c.Query("status"); raw != "" {
		if status, err := strconv.Atoi(raw); err == nil {
			query.Status = &status
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		query.PageSize = size
	}

	result, err := h.competitions.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Items, &result.Pagination)
}

// Search godoc
// @Summary Search competitions by name
// @Tags Competitions
// @Security BearerAuth
// @Produce json
// @Param q query string true "Name fragment"
// @Success 200 {object} response.Envelope
// @Router /competitions/search [get]
func (h *CompetitionHandler) Search(c *gin.Context) {
	refs, err := h.competitions.Search(c.Request.Context(), strings.TrimSpace(c.Query("q")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, refs, nil)
}

// Get godoc
// @Summary Get one competition
// @Tags Competitions
// @Security BearerAuth
// @Produce json
// @Param id path int true "Competition ID"
// @Success 200 {object} response.Envelope
// @Router /competitions/{id} [get]
func (h *CompetitionHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	competition, err := h.competitions.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, competition, nil)
}

// Create godoc
// @Summary Create a competition
// @Tags Competitions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.CompetitionRequest true "Competition payload"
// @Success 201 {object} response.Envelope
// @Router /competitions [post]
func (h *CompetitionHandler) Create(c *gin.Context) {
	var req dto.CompetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid competition payload"))
		return
	}
	competition, err := h.competitions.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, competition)
}

// Update godoc
// @Summary Update a competition
// @Tags Competitions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Competition ID"
// @Param payload body dto.CompetitionRequest true "Competition payload"
// @Success 200 {object} response.Envelope
// @Router /competitions/{id} [put]
func (h *CompetitionHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CompetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid competition payload"))
		return
	}
	competition, err := h.competitions.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, competition, nil)
}

// Delete godoc
// @Summary Delete a competition
// @Tags Competitions
// @Security BearerAuth
// @Param id path int true "Competition ID"
// @Success 204
// @Router /competitions/{id} [delete]
func (h *CompetitionHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.competitions.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid id parameter")
	}
	return id, nil
}
