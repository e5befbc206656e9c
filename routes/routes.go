package routes

import (
	"order-intake-service/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterHealthRoutes(r *gin.Engine, hc *controllers.HealthController) {
	r.GET("/", hc.Welcome)
	r.GET("/health", hc.Health)
}

// RegisterOrderRoutes sets up order intake and lifecycle routes.
func RegisterOrderRoutes(r *gin.Engine, oc *controllers.OrderController) {
	orderRoutes := r.Group("/orders")
	orderRoutes.POST("", oc.CreateOrder)
	orderRoutes.GET("/:id", oc.GetOrder)
	orderRoutes.GET("/:id/status", oc.GetOrderStatus)
	orderRoutes.PATCH("/:id/status", oc.UpdateOrderStatus)

	r.GET("/users/:id/orders", oc.ListUserOrders)
}

func RegisterProductRoutes(r *gin.Engine, pc *controllers.ProductController) {
	productRoutes := r.Group("/products")
	productRoutes.POST("", pc.CreateProduct)
	productRoutes.GET("/:id", pc.GetProduct)
}
