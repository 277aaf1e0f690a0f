package billing

import (
	"strconv"
	"time"

	"warehouse-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

type RateRequest struct {
	RatePerPalletWeek    decimal.Decimal `json:"rate_per_pallet_week"`
	HandlingFeeFlat      decimal.Decimal `json:"handling_fee_flat"`
	HandlingFeePerPallet decimal.Decimal `json:"handling_fee_per_pallet"`
	Currency             string          `json:"currency"`
}

// PUT /api/rates/:customer
func UpsertRateHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		rate, err := svc.UpsertRate(c.Params("customer"), RateParams{
			RatePerPalletWeek:    body.RatePerPalletWeek,
			HandlingFeeFlat:      body.HandlingFeeFlat,
			HandlingFeePerPallet: body.HandlingFeePerPallet,
			Currency:             body.Currency,
		})
		if err != nil {
			return err
		}
		return c.JSON(rate)
	}
}

// GET /api/rates/:customer
func GetRateHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rate, err := svc.GetRate(c.Params("customer"))
		if err != nil {
			return err
		}
		return c.JSON(rate)
	}
}

type InvoiceRequest struct {
	CustomerName string        `json:"customer_name"`
	StartDate    string        `json:"start_date"`
	EndDate      string        `json:"end_date"`
	WeekStart    string        `json:"week_start"`
	Override     *RateOverride `json:"override"`
}

// parseRange resolves the request's explicit range or week_start shorthand.
func (r InvoiceRequest) parseRange() (start, end time.Time, weekStart *time.Time, err error) {
	if r.WeekStart != "" {
		ws, perr := parseDate(r.WeekStart)
		if perr != nil {
			return start, end, nil, fiber.NewError(fiber.StatusBadRequest, "week_start must be YYYY-MM-DD")
		}
		return ws, ws.AddDate(0, 0, 6), &ws, nil
	}

	if r.StartDate == "" || r.EndDate == "" {
		return start, end, nil, fiber.NewError(fiber.StatusBadRequest, "start_date and end_date (or week_start) are required")
	}
	start, err = parseDate(r.StartDate)
	if err != nil {
		return start, end, nil, fiber.NewError(fiber.StatusBadRequest, "start_date must be YYYY-MM-DD")
	}
	end, err = parseDate(r.EndDate)
	if err != nil {
		return start, end, nil, fiber.NewError(fiber.StatusBadRequest, "end_date must be YYYY-MM-DD")
	}
	return start, end, nil, nil
}

// POST /api/invoices/preview
func PreviewInvoiceHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body InvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		start, end, _, err := body.parseRange()
		if err != nil {
			return err
		}

		preview, err := svc.PreviewInvoice(body.CustomerName, start, end, body.Override)
		if err != nil {
			return err
		}
		return c.JSON(preview)
	}
}

// POST /api/invoices
func GenerateInvoiceHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body InvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		start, end, weekStart, err := body.parseRange()
		if err != nil {
			return err
		}

		invoice, err := svc.GenerateInvoice(GenerateInvoiceParams{
			Customer:  body.CustomerName,
			StartDate: start,
			EndDate:   end,
			WeekStart: weekStart,
			Override:  body.Override,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(invoice)
	}
}

// GET /api/invoices?customer=
func ListInvoicesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		invoices, err := svc.ListInvoices(c.Query("customer"))
		if err != nil {
			return err
		}
		return c.JSON(invoices)
	}
}

// GET /api/invoices/:id
func GetInvoiceHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
		}
		invoice, err := svc.GetInvoice(uint(id))
		if err != nil {
			return err
		}
		return c.JSON(invoice)
	}
}

type InvoiceStatusRequest struct {
	Status models.InvoiceStatus `json:"status"`
}

// PUT /api/invoices/:id/status
func SetInvoiceStatusHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
		}

		var body InvoiceStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		invoice, err := svc.SetInvoiceStatus(uint(id), body.Status)
		if err != nil {
			return err
		}
		return c.JSON(invoice)
	}
}

// GET /api/occupancy?customer=&from=&to=
// Occupancy report without money attached; useful for sanity-checking a
// preview against the raw metrics.
func OccupancyHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := parseDate(c.Query("from"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
		}
		to, err := parseDate(c.Query("to"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
		}

		metrics, err := svc.ComputeOccupancyMetrics(c.Query("customer"), from, to)
		if err != nil {
			return err
		}
		return c.JSON(metrics)
	}
}
