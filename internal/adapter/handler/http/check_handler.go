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

type CheckHandler struct {
	odoCheckService *services.OdoCheckService
	logger          ports.LoggerPort
	metrics         ports.MetricsPort
}

type CheckRequest struct {
	Kilometers *int `json:"kilometers" binding:"required" example:"13000"`
}

type StatusResponse struct {
	domain.MaintenanceStatus
	Progress float64 `json:"progress" example:"42.5"`
}

type CheckResponse struct {
	Kilometers int                    `json:"kilometers"`
	CheckedAt  time.Time              `json:"checked_at"`
	Statuses   []StatusResponse       `json:"statuses"`
	Recorded   bool                   `json:"recorded"`
	Check      *domain.OdoCheckRecord `json:"check,omitempty"`
}

type CheckHistoryResponse struct {
	Checks []*domain.OdoCheckRecord `json:"checks"`
	Count  int                      `json:"count"`
}

type ClearHistoryResponse struct {
	Deleted int64 `json:"deleted"`
}

type DashboardResponse struct {
	CurrentKilometers int                         `json:"current_kilometers"`
	RecentRecords     []*domain.MaintenanceRecord `json:"recent_records"`
	Overdue           int                         `json:"overdue"`
	DueSoon           int                         `json:"due_soon"`
	OK                int                         `json:"ok"`
	Statuses          []StatusResponse            `json:"statuses"`
}

func NewCheckHandler(
	odoCheckService *services.OdoCheckService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *CheckHandler {
	return &CheckHandler{
		odoCheckService: odoCheckService,
		logger:          logger,
		metrics:         metrics,
	}
}

func toStatusResponses(statuses []domain.MaintenanceStatus) []StatusResponse {
	out := make([]StatusResponse, len(statuses))
	for i := range statuses {
		out[i] = StatusResponse{
			MaintenanceStatus: statuses[i],
			Progress:          statuses[i].Progress(),
		}
	}
	return out
}

// @Summary Проверка по пробегу
// @Description Оценивает состояние всех включенных интервалов при заданном пробеге и сохраняет снимок
// @Tags checks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CheckRequest true "Текущий пробег"
// @Success 200 {object} CheckResponse "Результат проверки"
// @Failure 400 {object} errorResponse "Неверный запрос"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 500 {object} errorResponse "Внутренняя ошибка сервера"
// @Router /checks [post]
func (h *CheckHandler) Check(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		h.logger.Warn("Unauthorized access attempt to Check", map[string]interface{}{
			"ip": c.ClientIP(),
		})
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in check", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	result, err := h.odoCheckService.Check(c.Request.Context(), payload.UserID, *req.Kilometers)
	if err != nil && !errors.Is(err, domain.ErrCheckNotRecorded) {
		respondError(c, err, "Failed to check maintenance")
		return
	}

	c.JSON(http.StatusOK, CheckResponse{
		Kilometers: result.Kilometers,
		CheckedAt:  result.CheckedAt,
		Statuses:   toStatusResponses(result.Statuses),
		Recorded:   result.Check != nil,
		Check:      result.Check,
	})
}

// @Summary История проверок
// @Tags checks
// @Security BearerAuth
// @Produce json
// @Success 200 {object} CheckHistoryResponse "История, новые первыми"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 500 {object} errorResponse "Внутренняя ошибка сервера"
// @Router /checks [get]
func (h *CheckHandler) History(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	checks, err := h.odoCheckService.History(c.Request.Context(), payload.UserID)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to get check history")
		return
	}

	c.JSON(http.StatusOK, CheckHistoryResponse{Checks: checks, Count: len(checks)})
}

// @Summary Последняя проверка
// @Tags checks
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.OdoCheckRecord "Последний снимок"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 404 {object} errorResponse "Проверок еще не было"
// @Router /checks/latest [get]
func (h *CheckHandler) Latest(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	latest, err := h.odoCheckService.Latest(c.Request.Context(), payload.UserID)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to get latest check")
		return
	}
	if latest == nil {
		newErrorResponse(c, http.StatusNotFound, "No checks recorded")
		return
	}

	c.JSON(http.StatusOK, latest)
}

// @Summary Очистить историю проверок
// @Tags checks
// @Security BearerAuth
// @Produce json
// @Success 200 {object} ClearHistoryResponse "Число удаленных снимков"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 500 {object} errorResponse "Внутренняя ошибка сервера"
// @Router /checks [delete]
func (h *CheckHandler) ClearHistory(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	deleted, err := h.odoCheckService.ClearHistory(c.Request.Context(), payload.UserID)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to clear check history")
		return
	}

	c.JSON(http.StatusOK, ClearHistoryResponse{Deleted: deleted})
}

// @Summary Сводка по обслуживанию
// @Description Состояние интервалов при максимальном записанном пробеге и последние записи
// @Tags checks
// @Security BearerAuth
// @Produce json
// @Success 200 {object} DashboardResponse "Сводка"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 500 {object} errorResponse "Внутренняя ошибка сервера"
// @Router /dashboard [get]
func (h *CheckHandler) Dashboard(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	d, err := h.odoCheckService.Dashboard(c.Request.Context(), payload.UserID)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to build dashboard")
		return
	}

	recent := d.RecentRecords
	if recent == nil {
		recent = []*domain.MaintenanceRecord{}
	}

	c.JSON(http.StatusOK, DashboardResponse{
		CurrentKilometers: d.CurrentKilometers,
		RecentRecords:     recent,
		Overdue:           d.Overdue,
		DueSoon:           d.DueSoon,
		OK:                d.OK,
		Statuses:          toStatusResponses(d.Statuses),
	})
}
