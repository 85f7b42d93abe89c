package controllers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/stratus-ventures/stratus-site/app/models"
	"github.com/stratus-ventures/stratus-site/app/repository"
)

// ProductUpdateNotifier lets the admin CRUD surface nudge the sync
// subsystem after a product change
type ProductUpdateNotifier interface {
	HandleProductDataUpdate(ctx context.Context, name, changeType string)
}

var (
	productRepo     repository.ProductRepository
	productNotifier ProductUpdateNotifier
)

// InitializeProductController wires the admin product CRUD endpoints
func InitializeProductController(products repository.ProductRepository, notifier ProductUpdateNotifier) {
	productRepo = products
	productNotifier = notifier
}

type productForm struct {
	Name    string `json:"name"`
	Tagline string `json:"tagline"`
	URL     string `json:"url"`
}

// HandleListProducts returns all products with display-formatted names
func HandleListProducts(c *fiber.Ctx) error {
	products, err := productRepo.GetAll()
	if err != nil {
		log.Errorf("[API] list products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "Failed to load products",
		})
	}

	list := make([]fiber.Map, 0, len(products))
	for _, product := range products {
		list = append(list, fiber.Map{
			"id":           product.ID,
			"uuid":         product.UUID,
			"source_id":    product.SourceID,
			"name":         product.Name,
			"display_name": models.FormatTitleCase(product.Name),
			"tagline":      models.FormatTitleCase(product.Tagline),
			"url":          product.URL,
		})
	}
	return c.JSON(fiber.Map{"products": list})
}

// HandleCreateProduct creates a product from the admin form and triggers
// a sync for it
func HandleCreateProduct(c *fiber.Ctx) error {
	var form productForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "bad_request",
			"message": "Invalid request body",
		})
	}

	product := &models.Product{
		SourceID: models.SlugFromName(form.Name),
		Name:     form.Name,
		Tagline:  form.Tagline,
		URL:      form.URL,
	}
	if err := product.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "validation_failed",
			"message": "Product name, tagline, and URL are required",
		})
	}

	if err := productRepo.Create(product); err != nil {
		log.Errorf("[API] create product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "Failed to create product",
		})
	}

	go productNotifier.HandleProductDataUpdate(context.Background(), strings.ToLower(product.Name), "insert")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"product": product})
}

// HandleUpdateProduct updates an existing product and triggers a sync
func HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "bad_request",
			"message": "Invalid product id",
		})
	}

	product, err := productRepo.GetByID(uint64(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   "not_found",
				"message": "Product not found",
			})
		}
		log.Errorf("[API] update product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "Failed to load product",
		})
	}

	var form productForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "bad_request",
			"message": "Invalid request body",
		})
	}

	product.Name = form.Name
	product.Tagline = form.Tagline
	product.URL = form.URL
	if err := product.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "validation_failed",
			"message": "Product name, tagline, and URL are required",
		})
	}

	if err := productRepo.Update(product); err != nil {
		log.Errorf("[API] update product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "Failed to update product",
		})
	}

	go productNotifier.HandleProductDataUpdate(context.Background(), strings.ToLower(product.Name), "update")

	return c.JSON(fiber.Map{"product": product})
}

// HandleDeleteProduct removes a product and its metrics. Deletions need
// no sync reaction.
func HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "bad_request",
			"message": "Invalid product id",
		})
	}

	product, err := productRepo.GetByID(uint64(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   "not_found",
				"message": "Product not found",
			})
		}
		log.Errorf("[API] delete product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "Failed to load product",
		})
	}

	if err := productRepo.Delete(product.ID); err != nil {
		log.Errorf("[API] delete product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "Failed to delete product",
		})
	}

	productNotifier.HandleProductDataUpdate(c.Context(), strings.ToLower(product.Name), "delete")

	return c.JSON(fiber.Map{"deleted": true})
}
