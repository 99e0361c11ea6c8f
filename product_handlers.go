package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
)

func listProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := models.ListProducts(c.Request.Context())
		if err != nil {
			internalError(c, "listProductsHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

func getProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		productId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}

		product, err := models.GetProduct(c.Request.Context(), productId)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
				return
			}
			internalError(c, "getProductHandler", err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// createProductHandler accepts either a JSON body or a multipart form; the
// form variant may carry an optional product image.
func createProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewProduct

		if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
			input.Name = c.PostForm("name")
			input.Description = c.PostForm("description")
			if raw := c.PostForm("threshold"); raw != "" {
				threshold, err := strconv.Atoi(raw)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"message": "invalid threshold value"})
					return
				}
				input.Threshold = threshold
			}

			imagePath, err := saveProductImage(c)
			if err != nil {
				if utils.IsValidationError(err) {
					c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
					return
				}
				internalError(c, "createProductHandler", err)
				return
			}
			input.ImagePath = imagePath
		} else {
			if err := c.ShouldBindJSON(&input); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "product name is required"})
				return
			}
		}

		product, err := models.CreateProduct(c.Request.Context(), &input)
		if err != nil {
			switch {
			case utils.IsValidationError(err):
				c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			case errors.Is(err, utils.ErrorDuplicateRecord):
				c.JSON(http.StatusConflict, gin.H{"message": "a product with this name already exists"})
			default:
				internalError(c, "createProductHandler", err)
			}
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Product created successfully",
			"product": product,
		})
	}
}

func receiveItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		productId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}

		result, err := models.ReceiveItem(c.Request.Context(), productId)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
				return
			}
			internalError(c, "receiveItemHandler", err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

type dispatchRequest struct {
	BarcodeData string `json:"barcode_data" binding:"required"`
}

func dispatchItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dispatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "barcode_data is required"})
			return
		}

		result, err := models.DispatchItem(c.Request.Context(), req.BarcodeData)
		if err != nil {
			switch {
			case errors.Is(err, utils.ErrorInvalidBarcode):
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid barcode"})
			case errors.Is(err, utils.ErrorRecordNotFound):
				c.JSON(http.StatusNotFound, gin.H{"message": "Item not found"})
			case errors.Is(err, utils.ErrorAlreadyDispatched):
				c.JSON(http.StatusConflict, gin.H{"message": "Item already dispatched"})
			case errors.Is(err, utils.ErrorOutOfStock):
				c.JSON(http.StatusBadRequest, gin.H{"message": "No stock available to dispatch"})
			default:
				internalError(c, "dispatchItemHandler", err)
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":      "Item dispatched successfully",
			"product_name": result.ProductName,
			"new_quantity": result.NewQuantity,
		})
	}
}

func exportInventoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workbook, err := models.BuildInventoryWorkbook(c.Request.Context())
		if err != nil {
			internalError(c, "exportInventoryHandler", err)
			return
		}

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", `attachment; filename="inventory.xlsx"`)
		if err := workbook.Write(c.Writer); err != nil {
			internalError(c, "exportInventoryHandler", err)
		}
	}
}
