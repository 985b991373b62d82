package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/ports"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/services"
)

type TagHandler struct {
	tagService *services.TagService
	logger     ports.LoggerPort
	metrics    ports.MetricsPort
}

type TagRequest struct {
	Name       string `json:"name" binding:"required" example:"Oil Change"`
	Kilometers *int   `json:"kilometers,omitempty" example:"3000"`
	Days       *int   `json:"days,omitempty" example:"90"`
	Enabled    *bool  `json:"enabled,omitempty" example:"true"`
}

type UpdateTag struct {
	Name       *string `json:"name,omitempty" example:"Oil Change"`
	Kilometers *int    `json:"kilometers,omitempty" example:"4000"`
	Days       *int    `json:"days,omitempty" example:"120"`
	Enabled    *bool   `json:"enabled,omitempty" example:"false"`
}

type TagListResponse struct {
	Tags  []*domain.TagInterval `json:"tags"`
	Count int                   `json:"count"`
}

func NewTagHandler(
	tagService *services.TagService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *TagHandler {
	return &TagHandler{
		tagService: tagService,
		logger:     logger,
		metrics:    metrics,
	}
}

// @Summary Список интервалов обслуживания
// @Tags tags
// @Security BearerAuth
// @Produce json
// @Success 200 {object} TagListResponse "Список интервалов"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 500 {object} errorResponse "Внутренняя ошибка сервера"
// @Router /tags [get]
func (h *TagHandler) ListTags(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		h.logger.Warn("Unauthorized access attempt to ListTags", map[string]interface{}{
			"ip": c.ClientIP(),
		})
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	tags, err := h.tagService.ListTags(c.Request.Context(), payload.UserID)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to get tags")
		return
	}

	c.JSON(http.StatusOK, TagListResponse{Tags: tags, Count: len(tags)})
}

// @Summary Создать интервал обслуживания
// @Description Имя уникально для пользователя без учета регистра
// @Tags tags
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body TagRequest true "Данные интервала"
// @Success 201 {object} domain.TagInterval "Интервал создан"
// @Failure 400 {object} errorResponse "Неверный запрос"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 409 {object} errorResponse "Имя уже занято"
// @Router /tags [post]
func (h *TagHandler) CreateTag(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		h.logger.Warn("Unauthorized access attempt to CreateTag", map[string]interface{}{
			"ip": c.ClientIP(),
		})
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in create tag", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	tag := &domain.TagInterval{
		UserID:     payload.UserID,
		Name:       req.Name,
		Kilometers: req.Kilometers,
		Days:       req.Days,
		Enabled:    req.Enabled == nil || *req.Enabled,
	}

	created, err := h.tagService.CreateTag(c.Request.Context(), tag)
	if err != nil {
		respondError(c, err, "Failed to create tag")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// @Summary Добавить стандартные интервалы
// @Description Создает стандартные интервалы, которых еще нет у пользователя
// @Tags tags
// @Security BearerAuth
// @Produce json
// @Success 201 {object} TagListResponse "Созданные интервалы"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 500 {object} errorResponse "Внутренняя ошибка сервера"
// @Router /tags/defaults [post]
func (h *TagHandler) SeedDefaults(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	created, err := h.tagService.SeedDefaults(c.Request.Context(), payload.UserID)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to create default tags")
		return
	}

	c.JSON(http.StatusCreated, TagListResponse{Tags: created, Count: len(created)})
}

func (h *TagHandler) ownedTag(c *gin.Context, payload *domain.TokenPayload) (*domain.TagInterval, bool) {
	tagID := c.Param("id")

	tag, err := h.tagService.GetTag(c.Request.Context(), tagID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "Tag not found")
		} else {
			newErrorResponse(c, http.StatusInternalServerError, "Failed to get tag")
		}
		return nil, false
	}

	if !payload.CanAccess(tag.UserID) {
		h.logger.Warn("Access denied to tag", map[string]interface{}{
			"requester_id": payload.UserID,
			"tag_owner":    tag.UserID,
			"tag_id":       tagID,
		})
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return nil, false
	}

	return tag, true
}

// @Summary Обновить интервал обслуживания
// @Tags tags
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID интервала"
// @Param request body UpdateTag true "Изменения"
// @Success 200 {object} domain.TagInterval "Интервал обновлен"
// @Failure 400 {object} errorResponse "Неверный запрос"
// @Failure 403 {object} errorResponse "Доступ запрещен"
// @Failure 404 {object} errorResponse "Интервал не найден"
// @Failure 409 {object} errorResponse "Имя уже занято"
// @Router /tags/{id} [put]
func (h *TagHandler) UpdateTag(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateTag
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	tag, ok := h.ownedTag(c, payload)
	if !ok {
		return
	}

	updated, err := h.tagService.UpdateTag(c.Request.Context(), tag, domain.TagIntervalPatch{
		Name:       req.Name,
		Kilometers: req.Kilometers,
		Days:       req.Days,
		Enabled:    req.Enabled,
	})
	if err != nil {
		respondError(c, err, "Failed to update tag")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// @Summary Удалить интервал обслуживания
// @Description Записи, ссылающиеся на интервал, не изменяются
// @Tags tags
// @Security BearerAuth
// @Produce json
// @Param id path string true "ID интервала"
// @Success 200 {object} successResponse "Интервал удален"
// @Failure 403 {object} errorResponse "Доступ запрещен"
// @Failure 404 {object} errorResponse "Интервал не найден"
// @Router /tags/{id} [delete]
func (h *TagHandler) DeleteTag(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	tag, ok := h.ownedTag(c, payload)
	if !ok {
		return
	}

	if err := h.tagService.DeleteTag(c.Request.Context(), tag); err != nil {
		respondError(c, err, "Failed to delete tag")
		return
	}

	newSuccessResponse(c, http.StatusOK, "Tag deleted")
}
