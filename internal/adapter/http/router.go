package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/adapter/http/middleware"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/logging"
)

func NewRouter(oh *OrderHandler, ph *PaymentHandler, ih *InventoryHandler, authz *middleware.Authz) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// gateway callbacks authenticate by secure hash, not bearer token
	r.GET("/payment/return", ph.Return)
	r.GET("/payment/ipn", ph.IPN)

	v1 := r.Group("/v1", authz.Require())
	{
		v1.POST("/orders", oh.CreateOrder)
		v1.GET("/orders/:id", oh.GetOrderByID)
		v1.GET("/orders/:id/status", oh.GetOrderStatus)
		v1.POST("/payment/url", ph.BuildPayURL)
		v1.POST("/inventory/:productId/adjust", ih.AdjustStock)
	}

	return r
}
