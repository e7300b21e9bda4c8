package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"foodzz/internal/auth"
	"foodzz/internal/food"
	"foodzz/internal/metrics"
	"foodzz/internal/notify"
	"foodzz/internal/order"

	"github.com/gin-gonic/gin"
)

// Pinger reports backend health, typically *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Foods       food.Service
	Orders      order.Service
	Issuer      *auth.Issuer
	Credentials *auth.Credentials
	// Events is told about catalog changes; order events come from the
	// order service itself.
	Events notify.Publisher
	// Hub serves the admin WebSocket stream. Optional.
	Hub http.Handler
	DB  Pinger
}

type handler struct {
	Deps
}

// NewRouter builds the REST surface. Token parsing happens in the
// net/http chain in front of it; the admin group only checks the role.
func NewRouter(d Deps) *gin.Engine {
	if d.Events == nil {
		d.Events = notify.Nop{}
	}
	h := &handler{Deps: d}

	r := gin.New()
	r.Use(gin.Recovery(), observe())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.GET("/health", h.health)
	api.GET("/foods", h.listFoods)
	api.GET("/foods/:id", h.getFood)
	api.GET("/orders/:id", h.getOrder)
	api.POST("/checkout", h.checkout)
	api.POST("/admin/login", h.login)

	admin := api.Group("/admin", requireAdmin())
	admin.GET("/stats", h.stats)
	admin.GET("/orders", h.listOrders)
	admin.PUT("/orders/:id/status", h.updateStatus)
	admin.GET("/featured", h.featured)
	admin.POST("/foods", h.createFood)
	admin.PUT("/foods/:id", h.updateFood)
	admin.DELETE("/foods/:id", h.deleteFood)
	admin.POST("/foods/:id/featured", h.setFeatured)
	if d.Hub != nil {
		admin.GET("/ws", gin.WrapH(d.Hub))
	}

	return r
}

// observe records request count and latency per route template.
func observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := auth.ClaimsFrom(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !claims.IsAdmin() {
			writeErr(c, auth.ErrForbidden)
			return
		}
		c.Next()
	}
}

func paramID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}
