package sizing

import (
	"github.com/gofiber/fiber/v2"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Post("/api/v1/size-recommendation", h.recommend)
	app.Get("/api/v1/size-charts/:category", h.getChart)
}

type recommendRequest struct {
	HeightCm      float64 `json:"heightCm"`
	WeightKg      float64 `json:"weightKg"`
	BodyType      string  `json:"bodyType"`
	FitPreference string  `json:"fitPreference"`
	Category      string  `json:"category"`
}

func (p recommendRequest) validate() (Measurements, map[string]string) {
	errs := map[string]string{}
	if p.HeightCm < 120 || p.HeightCm > 220 {
		errs["heightCm"] = "heightCm must be between 120 and 220"
	}
	if p.WeightKg < 30 || p.WeightKg > 250 {
		errs["weightKg"] = "weightKg must be between 30 and 250"
	}
	body, ok := ParseBodyType(p.BodyType)
	if !ok {
		errs["bodyType"] = "bodyType must be one of slim, average, athletic, curvy, plus"
	}
	fit, ok := ParseFit(p.FitPreference)
	if !ok {
		errs["fitPreference"] = "fitPreference must be one of tight, regular, loose"
	}
	return Measurements{HeightCm: p.HeightCm, WeightKg: p.WeightKg, BodyType: body, Fit: fit}, errs
}

func (h *Handler) recommend(c *fiber.Ctx) error {
	payload := new(recommendRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	m, errs := payload.validate()
	if len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}
	return c.JSON(Recommend(m, payload.Category))
}

func (h *Handler) getChart(c *fiber.Ctx) error {
	return c.JSON(ChartFor(c.Params("category")))
}
