package routes

import (
	"pos-service/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, pc *controllers.POSController, wc *controllers.WebhookController) {
	cart := r.Group("/cart")
	{
		cart.GET("", pc.GetCart)
		cart.DELETE("", pc.ClearCart)
		cart.POST("/items", pc.AddItem)
		cart.DELETE("/items/:line_id", pc.RemoveItem)
		cart.PUT("/items/:line_id/quantity", pc.SetQuantity)
		cart.PUT("/items/:line_id/staff", pc.AssignStaff)
		cart.PUT("/staff", pc.SelectStaff)
		cart.PUT("/customer", pc.SetCustomer)
		cart.PUT("/payment-method", pc.SetPaymentMethod)
		cart.PUT("/discount", pc.SetDiscount)
		cart.PUT("/tip", pc.SetTip)
	}

	r.POST("/checkout", pc.SubmitCheckout)
	r.GET("/transactions/:id", pc.GetTransaction)

	r.GET("/catalog/services", pc.ListServices)
	r.GET("/catalog/products", pc.ListProducts)
	r.GET("/staff", pc.ListStaff)

	// Gateway callback (no terminal header)
	r.POST("/gateway/callback", wc.GatewayCallback)
}
