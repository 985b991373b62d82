package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/ports"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/services"
)

const maxPhotoSize = 10 << 20

type RecordHandler struct {
	maintenanceService *services.MaintenanceService
	logger             ports.LoggerPort
	metrics            ports.MetricsPort
}

type RecordRequest struct {
	Date       string   `json:"date" form:"date" binding:"required" example:"2024-05-01"`
	Kilometers *int     `json:"kilometers" form:"kilometers" binding:"required" example:"12500"`
	TagIDs     []string `json:"tag_ids" form:"tag_ids" binding:"required" example:"6650c1f0a1b2c3d4e5f60718"`
	Notes      *string  `json:"notes,omitempty" form:"notes" example:"Motul 10W40"`
}

type UpdateRecord struct {
	Date       *string   `json:"date,omitempty" example:"2024-05-01"`
	Kilometers *int      `json:"kilometers,omitempty" example:"12600"`
	TagIDs     *[]string `json:"tag_ids,omitempty"`
	Notes      *string   `json:"notes,omitempty" example:"Changed filter too"`
}

type RecordListResponse struct {
	Records []*domain.MaintenanceRecord `json:"records"`
	Count   int                         `json:"count"`
}

type CreateRecordResponse struct {
	Record  *domain.MaintenanceRecord `json:"record"`
	Warning string                    `json:"warning,omitempty"`
}

func NewRecordHandler(
	maintenanceService *services.MaintenanceService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *RecordHandler {
	return &RecordHandler{
		maintenanceService: maintenanceService,
		logger:             logger,
		metrics:            metrics,
	}
}

// parseDate accepts RFC3339 timestamps and plain calendar dates.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be RFC3339 or YYYY-MM-DD", domain.ErrValidation)
	}
	return t, nil
}

// splitTagIDs lets multipart clients send tag ids either repeated or as one
// comma separated field.
func splitTagIDs(values []string) []string {
	ids := make([]string, 0, len(values))
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// @Summary Список записей обслуживания
// @Description Все записи пользователя, новые первыми. С параметром q выполняется поиск по тегам и заметкам
// @Tags records
// @Security BearerAuth
// @Produce json
// @Param q query string false "Строка поиска"
// @Success 200 {object} RecordListResponse "Список записей"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 500 {object} errorResponse "Внутренняя ошибка сервера"
// @Router /records [get]
func (h *RecordHandler) ListRecords(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		h.logger.Warn("Unauthorized access attempt to ListRecords", map[string]interface{}{
			"ip": c.ClientIP(),
		})
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	records, err := h.maintenanceService.SearchRecords(c.Request.Context(), payload.UserID, c.Query("q"))
	if err != nil {
		h.logger.Error("Failed to list records", map[string]interface{}{
			"error":   err.Error(),
			"user_id": payload.UserID,
		})
		newErrorResponse(c, http.StatusInternalServerError, "Failed to get records")
		return
	}

	c.JSON(http.StatusOK, RecordListResponse{Records: records, Count: len(records)})
}

// @Summary Создать запись обслуживания
// @Description Принимает JSON или multipart/form-data с необязательным файлом photo
// @Tags records
// @Security BearerAuth
// @Accept json,mpfd
// @Produce json
// @Param request body RecordRequest true "Данные записи"
// @Param photo formData file false "Фото"
// @Success 201 {object} CreateRecordResponse "Запись создана"
// @Failure 400 {object} errorResponse "Неверный запрос"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 500 {object} errorResponse "Внутренняя ошибка сервера"
// @Router /records [post]
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		h.logger.Warn("Unauthorized access attempt to CreateRecord", map[string]interface{}{
			"ip": c.ClientIP(),
		})
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req RecordRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Error("Failed to parse create record request", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	photo, err := h.readPhoto(c)
	if err != nil {
		h.logger.Error("Failed to read photo", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid photo")
		return
	}

	record := &domain.MaintenanceRecord{
		UserID:     payload.UserID,
		Date:       date,
		Kilometers: *req.Kilometers,
		TagIDs:     splitTagIDs(req.TagIDs),
		Notes:      req.Notes,
	}

	created, err := h.maintenanceService.AddRecord(c.Request.Context(), record, photo)
	var photoErr *services.PhotoAttachError
	switch {
	case errors.As(err, &photoErr):
		c.JSON(http.StatusCreated, CreateRecordResponse{
			Record:  created,
			Warning: "Record saved but photo upload failed",
		})
		return
	case err != nil:
		h.logger.Error("Failed to create record", map[string]interface{}{
			"error":   err.Error(),
			"user_id": payload.UserID,
		})
		respondError(c, err, "Failed to create record")
		return
	}

	c.JSON(http.StatusCreated, CreateRecordResponse{Record: created})
}

func (h *RecordHandler) readPhoto(c *gin.Context) (*domain.Photo, error) {
	if c.ContentType() != "multipart/form-data" {
		return nil, nil
	}
	header, err := c.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if header.Size > maxPhotoSize {
		return nil, fmt.Errorf("photo is larger than %d bytes", maxPhotoSize)
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return &domain.Photo{
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Data:        data,
	}, nil
}

// ownedRecord loads the record and writes the error response itself when
// the caller may not see it.
func (h *RecordHandler) ownedRecord(c *gin.Context, payload *domain.TokenPayload) (*domain.MaintenanceRecord, bool) {
	recordID := c.Param("id")

	record, err := h.maintenanceService.GetRecord(c.Request.Context(), recordID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "Record not found")
		} else {
			newErrorResponse(c, http.StatusInternalServerError, "Failed to get record")
		}
		return nil, false
	}

	if !payload.CanAccess(record.UserID) {
		h.logger.Warn("Access denied to record", map[string]interface{}{
			"requester_id": payload.UserID,
			"record_owner": record.UserID,
			"record_id":    recordID,
		})
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return nil, false
	}

	return record, true
}

// @Summary Получить запись обслуживания
// @Tags records
// @Security BearerAuth
// @Produce json
// @Param id path string true "ID записи"
// @Success 200 {object} domain.MaintenanceRecord "Запись найдена"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 403 {object} errorResponse "Доступ запрещен"
// @Failure 404 {object} errorResponse "Запись не найдена"
// @Router /records/{id} [get]
func (h *RecordHandler) GetRecord(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	record, ok := h.ownedRecord(c, payload)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, record)
}

// @Summary Обновить запись обслуживания
// @Description Частичное обновление, отсутствующие поля не меняются
// @Tags records
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID записи"
// @Param request body UpdateRecord true "Изменения"
// @Success 200 {object} domain.MaintenanceRecord "Запись обновлена"
// @Failure 400 {object} errorResponse "Неверный запрос"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 403 {object} errorResponse "Доступ запрещен"
// @Failure 404 {object} errorResponse "Запись не найдена"
// @Router /records/{id} [put]
func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateRecord
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in update record", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	patch := domain.MaintenanceRecordPatch{
		Kilometers: req.Kilometers,
		Notes:      req.Notes,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			newErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		patch.Date = &date
	}
	if req.TagIDs != nil {
		patch.TagIDs = append([]string{}, *req.TagIDs...)
	}

	record, ok := h.ownedRecord(c, payload)
	if !ok {
		return
	}

	updated, err := h.maintenanceService.UpdateRecord(c.Request.Context(), record, patch)
	if err != nil {
		h.logger.Error("Failed to update record", map[string]interface{}{
			"error":     err.Error(),
			"record_id": record.ID,
		})
		respondError(c, err, "Failed to update record")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// @Summary Удалить запись обслуживания
// @Tags records
// @Security BearerAuth
// @Produce json
// @Param id path string true "ID записи"
// @Success 200 {object} successResponse "Запись удалена"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 403 {object} errorResponse "Доступ запрещен"
// @Failure 404 {object} errorResponse "Запись не найдена"
// @Router /records/{id} [delete]
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	record, ok := h.ownedRecord(c, payload)
	if !ok {
		return
	}

	if err := h.maintenanceService.DeleteRecord(c.Request.Context(), record); err != nil {
		respondError(c, err, "Failed to delete record")
		return
	}

	newSuccessResponse(c, http.StatusOK, "Record deleted")
}
