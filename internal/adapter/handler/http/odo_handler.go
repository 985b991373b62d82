package http

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/ports"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/services"
)

type OdoHandler struct {
	odometerService *services.OdometerService
	logger          ports.LoggerPort
	metrics         ports.MetricsPort
}

type OdoResponse struct {
	Odo string `json:"odo" example:"12345"`
}

func NewOdoHandler(
	odometerService *services.OdometerService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *OdoHandler {
	return &OdoHandler{
		odometerService: odometerService,
		logger:          logger,
		metrics:         metrics,
	}
}

// @Summary Распознать пробег по фото
// @Description Возвращает показание одометра, распознанное на фотографии
// @Tags odometer
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Param image formData file true "Фото одометра"
// @Success 200 {object} OdoResponse "Показание одометра"
// @Failure 400 {object} errorResponse "Нет изображения"
// @Failure 500 {object} errorResponse "Не удалось распознать"
// @Router /api/odo-detect [post]
func (h *OdoHandler) Detect(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	header, err := c.FormFile("image")
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "No image provided")
		return
	}

	file, err := header.Open()
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "No image provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoSize))
	if err != nil || len(data) == 0 {
		newErrorResponse(c, http.StatusBadRequest, "No image provided")
		return
	}

	odo, err := h.odometerService.Detect(c.Request.Context(), data)
	if err != nil {
		h.logger.Error("Failed to detect odometer", map[string]interface{}{
			"error": err.Error(),
			"file":  header.Filename,
		})
		newErrorResponse(c, http.StatusInternalServerError, "Failed to detect odometer")
		return
	}

	c.JSON(http.StatusOK, OdoResponse{Odo: odo})
}
