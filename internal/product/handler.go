package product

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/api/v1/products", h.getProducts)
	app.Get("/api/v1/products/sort-options", h.getSortOptions)
	app.Post("/api/v1/products/you-may-also-like", h.youMayAlsoLike)
	app.Get("/api/v1/products/:id/related", h.getRelated)
	app.Get("/api/v1/products/:slug", h.getProduct)
}

// RegisterAdminRoutes expects r to be mounted behind the admin guard.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/products", h.adminList)
	r.Get("/products/export", h.exportProducts)
	r.Post("/products/import", h.importProducts)
	r.Get("/products/:id", h.adminGet)
	r.Post("/products", h.createProduct)
	r.Put("/products/:id", h.updateProduct)
	r.Delete("/products/:id", h.deleteProduct)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	f, err := parseFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	page, err := h.service.Search(c.UserContext(), SearchQuery{
		Filter: f,
		Sort:   ParseSortOption(c.Query("sort")),
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", DefaultPageSize),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(page)
}

func (h *Handler) getSortOptions(c *fiber.Ctx) error {
	return c.JSON(SortOptions)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	p, err := h.service.View(c.UserContext(), c.Params("slug"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) getRelated(c *fiber.Ctx) error {
	items, err := h.service.Related(c.UserContext(), c.Params("id"), c.QueryInt("limit", DefaultRelatedLimit))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(items)
}

type youMayAlsoLikeRequest struct {
	ProductIDs []string `json:"productIds"`
	Limit      int      `json:"limit"`
}

func (h *Handler) youMayAlsoLike(c *fiber.Ctx) error {
	payload := new(youMayAlsoLikeRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	items, err := h.service.YouMayAlsoLike(c.UserContext(), payload.ProductIDs, payload.Limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(items)
}

func (h *Handler) adminList(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext(), Status(c.Query("status")))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(items)
}

func (h *Handler) adminGet(c *fiber.Ctx) error {
	p, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	in := new(Input)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	created, err := h.service.Create(c.UserContext(), *in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	in := new(Input)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	updated, err := h.service.Update(c.UserContext(), c.Params("id"), *in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) exportProducts(c *fiber.Ctx) error {
	data, err := h.service.Export(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Attachment("products-" + time.Now().UTC().Format("2006-01-02") + ".xlsx")
	return c.Send(data)
}

func (h *Handler) importProducts(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "file is required"})
	}
	file, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	defer file.Close()

	res, err := h.service.Import(c.UserContext(), file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(res)
}

func parseFilter(c *fiber.Ctx) (Filter, error) {
	f := Filter{
		Category:   c.Query("category"),
		Colors:     splitList(c.Query("colors")),
		Sizes:      splitList(c.Query("sizes")),
		Material:   c.Query("material"),
		Brand:      c.Query("brand"),
		Collection: c.Query("collection"),
		Tag:        c.Query("tag"),
		Query:      c.Query("q"),
	}
	var err error
	if f.MinPrice, err = queryFloat(c, "minPrice"); err != nil {
		return Filter{}, err
	}
	if f.MaxPrice, err = queryFloat(c, "maxPrice"); err != nil {
		return Filter{}, err
	}
	if f.InStock, err = queryBool(c, "inStock"); err != nil {
		return Filter{}, err
	}
	if f.OnSale, err = queryBool(c, "onSale"); err != nil {
		return Filter{}, err
	}
	if f.IsNew, err = queryBool(c, "isNew"); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	return &v, nil
}

func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	return &v, nil
}

func writeError(c *fiber.Ctx, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": ve.Error(), "errors": ve.Fields})
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrDuplicateSlug):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
