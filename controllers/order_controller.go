package controllers

import (
	"net/http"
	"strconv"

	apperrors "order-intake-service/common/errors"
	"order-intake-service/models"
	"order-intake-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderController struct {
	orderService services.OrderService
}

func NewOrderController(orderService services.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

// CreateOrder handles order intake requests
func (oc *OrderController) CreateOrder(ctx *gin.Context) {
	var req models.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(apperrors.FromBinding(err))
		return
	}

	confirmation, err := oc.orderService.CreateOrder(ctx.Request.Context(), &req)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusCreated, confirmation)
}

// GetOrder returns an order with its items
func (oc *OrderController) GetOrder(ctx *gin.Context) {
	orderID, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	order, err := oc.orderService.GetOrder(ctx.Request.Context(), orderID)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

func (oc *OrderController) GetOrderStatus(ctx *gin.Context) {
	orderID, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	status, err := oc.orderService.GetOrderStatus(ctx.Request.Context(), orderID)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, status)
}

// UpdateOrderStatus moves an order to the requested lifecycle status
func (oc *OrderController) UpdateOrderStatus(ctx *gin.Context) {
	orderID, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(apperrors.FromBinding(err))
		return
	}

	status, err := oc.orderService.UpdateOrderStatus(ctx.Request.Context(), orderID, req.Status)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, status)
}

// ListUserOrders returns paginated orders for a user
func (oc *OrderController) ListUserOrders(ctx *gin.Context) {
	userID, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	page, limit := parsePaginationParams(ctx)

	result, err := oc.orderService.ListUserOrders(ctx.Request.Context(), userID, page, limit)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func parseUUIDParam(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		_ = ctx.Error(apperrors.Validation("Invalid "+name+" format", map[string]string{name: "must be a UUID"}))
		return uuid.Nil, false
	}
	return id, true
}

// parsePaginationParams extracts and validates pagination parameters
func parsePaginationParams(ctx *gin.Context) (int, int) {
	const MaxLimit = 100
	const MaxPage = 10000
	const DefaultPage = 1
	const DefaultLimit = 10

	pageInt := DefaultPage
	limitInt := DefaultLimit

	if p, err := strconv.Atoi(ctx.DefaultQuery("page", "1")); err == nil && p > 0 {
		pageInt = p
		if pageInt > MaxPage {
			pageInt = MaxPage
		}
	}

	if l, err := strconv.Atoi(ctx.DefaultQuery("limit", "10")); err == nil && l > 0 {
		limitInt = l
		if limitInt > MaxLimit {
			limitInt = MaxLimit
		}
	}

	return pageInt, limitInt
}
