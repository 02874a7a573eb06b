package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"lms-backend/internal/usecase/payment"
	"lms-backend/pkg/utils"
)

type PaymentHandler struct {
	service *payment.Service
}

func NewPaymentHandler(service *payment.Service) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup, authenticate gin.HandlerFunc) {
	paymentGroup := router.Group("/payments")
	paymentGroup.Use(authenticate)
	{
		paymentGroup.POST("/subscribe", h.Subscribe)
	}
}

func (h *PaymentHandler) Subscribe(c *gin.Context) {
	claims, ok := mustClaims(c)
	if !ok {
		return
	}

	subscriptionID, err := h.service.Subscribe(c.Request.Context(), claims.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "subscribed successfully", gin.H{"subscription_id": subscriptionID})
}
