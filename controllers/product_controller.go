package controllers

import (
	"net/http"

	apperrors "order-intake-service/common/errors"
	"order-intake-service/models"
	"order-intake-service/services"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	productService services.ProductService
}

func NewProductController(productService services.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

func (pc *ProductController) CreateProduct(ctx *gin.Context) {
	var req models.CreateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(apperrors.FromBinding(err))
		return
	}

	product, err := pc.productService.CreateProduct(ctx.Request.Context(), &req)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusCreated, product)
}

func (pc *ProductController) GetProduct(ctx *gin.Context) {
	productID, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	product, err := pc.productService.GetProduct(ctx.Request.Context(), productID)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, product)
}
