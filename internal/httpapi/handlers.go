package httpapi

import (
	"context"
	"net/http"
	"time"

	"foodzz/internal/auth"
	"foodzz/internal/food"
	"foodzz/internal/logger"
	"foodzz/internal/notify"
	"foodzz/internal/order"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}

func (h *handler) health(c *gin.Context) {
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			logger.FromCtx(ctx).Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "message": "database unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "message": "foodzz API is running"})
}

// -- Catalog --

func (h *handler) listFoods(c *gin.Context) {
	items, err := h.Foods.List(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *handler) getFood(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		writeErr(c, err)
		return
	}
	item, err := h.Foods.Get(c.Request.Context(), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handler) featured(c *gin.Context) {
	ids, err := h.Foods.Featured(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	if ids == nil {
		ids = []int{}
	}
	c.JSON(http.StatusOK, gin.H{"featured": ids})
}

func (h *handler) createFood(c *gin.Context) {
	var item food.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.Foods.Create(c.Request.Context(), item)
	if err != nil {
		writeErr(c, err)
		return
	}
	h.foodChanged(c, created.ID)
	c.JSON(http.StatusCreated, created)
}

func (h *handler) updateFood(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		writeErr(c, err)
		return
	}
	var patch food.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	updated, err := h.Foods.Update(c.Request.Context(), id, patch)
	if err != nil {
		writeErr(c, err)
		return
	}
	h.foodChanged(c, id)
	c.JSON(http.StatusOK, updated)
}

func (h *handler) deleteFood(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		writeErr(c, err)
		return
	}
	if err := h.Foods.Delete(c.Request.Context(), id); err != nil {
		writeErr(c, err)
		return
	}
	h.foodChanged(c, id)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handler) setFeatured(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		writeErr(c, err)
		return
	}
	var body struct {
		Featured *bool `json:"featured" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.Foods.SetFeatured(c.Request.Context(), id, *body.Featured); err != nil {
		writeErr(c, err)
		return
	}
	h.foodChanged(c, id)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handler) foodChanged(c *gin.Context, id int) {
	ctx := c.Request.Context()
	ev := notify.Event{Type: notify.FoodChanged, FoodID: id, At: time.Now().UTC()}
	if err := h.Events.Publish(ctx, ev); err != nil {
		logger.FromCtx(ctx).Warn("failed to publish event", zap.Error(err))
	}
}

// -- Orders --

func (h *handler) checkout(c *gin.Context) {
	var sub order.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		badRequest(c, err)
		return
	}

	o, err := h.Orders.Checkout(c.Request.Context(), sub)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, o.Receipt())
}

func (h *handler) getOrder(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		writeErr(c, err)
		return
	}
	o, err := h.Orders.Get(c.Request.Context(), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handler) listOrders(c *gin.Context) {
	orders, err := h.Orders.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		writeErr(c, err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

func (h *handler) updateStatus(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		writeErr(c, err)
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	to, err := order.ParseStatus(body.Status)
	if err != nil {
		writeErr(c, err)
		return
	}

	o, err := h.Orders.UpdateStatus(c.Request.Context(), id, to)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order_id": o.ID, "status": o.Status})
}

func (h *handler) stats(c *gin.Context) {
	st, err := h.Orders.Stats(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// -- Auth --

func (h *handler) login(c *gin.Context) {
	var body struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.Credentials.Verify(body.Username, body.Password); err != nil {
		logger.FromCtx(c.Request.Context()).Warn("failed admin login", zap.String("username", body.Username))
		writeErr(c, err)
		return
	}

	token, exp, err := h.Issuer.Generate(body.Username, auth.RoleAdmin)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expires_at": exp})
}
