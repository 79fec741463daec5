package handlers

import (
	"fmt"
	"log"
	"time"

	"doamais/internal/apperrors"
	"doamais/internal/models"
	"doamais/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the donation catalog.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes. Listing and detail routes are
// public; every mutating route and the per-user listings require the given
// authentication middleware.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleList)
	// Literal paths before "/:id" so they are not captured as IDs.
	productRoutes.Get("/mine", authRequired, h.HandleListMine)
	productRoutes.Get("/received", authRequired, h.HandleListReceived)
	productRoutes.Get("/:id", h.HandleShow)
	productRoutes.Post("/", authRequired, h.HandleCreate)
	productRoutes.Put("/:id", authRequired, h.HandleUpdate)
	productRoutes.Delete("/:id", authRequired, h.HandleDelete)
	productRoutes.Patch("/:id/schedule", authRequired, h.HandleSchedule)
	productRoutes.Patch("/:id/donate", authRequired, h.HandleConcludeDonation)
}

// statusForError maps a typed core error to an HTTP status code. This mapping
// is the boundary's sole responsibility; the core never sees status codes.
func statusForError(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return fiber.StatusUnprocessableEntity
	case apperrors.KindNotFound:
		return fiber.StatusNotFound
	case apperrors.KindAuthorization:
		return fiber.StatusForbidden
	case apperrors.KindAuthentication:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// fail writes a typed core error as a JSON error response.
func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusForError(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// actingUserID returns the authenticated user ID stored by the JWT
// middleware.
func actingUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

// collectImages fills in image filenames from uploaded attachments when the
// caller supplied no explicit images list. The explicit list always wins.
func collectImages(c *fiber.Ctx, in *models.ProductInput) {
	if len(in.Images) > 0 {
		return
	}
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return
	}
	for _, file := range form.File["images"] {
		in.Images = append(in.Images, file.Filename)
	}
}

// HandleList retrieves one page of products, newest first.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	page := c.QueryInt("page", 0)
	limit := c.QueryInt("limit", 0)

	products, err := h.service.List(page, limit)
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"products": products})
}

// HandleShow retrieves a single product by its ID.
func (h *ProductHandler) HandleShow(c *fiber.Ctx) error {
	product, err := h.service.Show(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"product": product})
}

// HandleListMine retrieves all products listed by the acting user.
func (h *ProductHandler) HandleListMine(c *fiber.Ctx) error {
	products, err := h.service.ListByOwner(actingUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"products": products})
}

// HandleListReceived retrieves all products assigned to the acting user as
// receiver.
func (h *ProductHandler) HandleListReceived(c *fiber.Ctx) error {
	products, err := h.service.ListByReceiver(actingUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"products": products})
}

// HandleCreate creates a new product owned by the acting user.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	var in models.ProductInput
	if err := c.BodyParser(&in); err != nil {
		log.Printf("Error parsing create product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	collectImages(c, &in)

	product, err := h.service.Create(actingUserID(c), in)
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"product": product})
}

// HandleUpdate replaces the mutable fields of a product.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	var in models.ProductInput
	if err := c.BodyParser(&in); err != nil {
		log.Printf("Error parsing update product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	collectImages(c, &in)

	product, err := h.service.Update(actingUserID(c), c.Params("id"), in)
	if err != nil {
		log.Printf("Error updating product %s: %v", c.Params("id"), err)
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"product": product})
}

// HandleDelete removes a product permanently.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(actingUserID(c), c.Params("id")); err != nil {
		log.Printf("Error deleting product %s: %v", c.Params("id"), err)
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted successfully.",
	})
}

// scheduleRequest is the request body for scheduling a pickup or delivery.
type scheduleRequest struct {
	ScheduleDate *time.Time `json:"schedule_date"`
}

// HandleSchedule records a pickup or delivery date on a product.
func (h *ProductHandler) HandleSchedule(c *fiber.Ctx) error {
	var req scheduleRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing schedule request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product, err := h.service.Schedule(actingUserID(c), c.Params("id"), req.ScheduleDate)
	if err != nil {
		log.Printf("Error scheduling product %s: %v", c.Params("id"), err)
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %s scheduled successfully.", product.Name),
		"product": product,
	})
}

// concludeDonationRequest is the request body for concluding a donation.
type concludeDonationRequest struct {
	DonatedAt *time.Time `json:"donated_at"`
}

// HandleConcludeDonation records the donation date on a product.
func (h *ProductHandler) HandleConcludeDonation(c *fiber.Ctx) error {
	var req concludeDonationRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing conclude donation request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product, err := h.service.ConcludeDonation(actingUserID(c), c.Params("id"), req.DonatedAt)
	if err != nil {
		log.Printf("Error concluding donation for product %s: %v", c.Params("id"), err)
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Donation of product %s concluded on %s.", product.Name, product.DonatedAt.Format(time.RFC3339)),
		"product": product,
	})
}
