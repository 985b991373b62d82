package ports

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
)

type MetricsPort interface {
	RecordMetrics(c *gin.Context, start time.Time)
	RecordEvaluation(statuses []domain.MaintenanceStatus)
	Handler() http.Handler
}
