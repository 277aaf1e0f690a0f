package ledger

import (
	"warehouse-backend/internal/auth"
	"warehouse-backend/internal/database"
	"warehouse-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type CheckInRequest struct {
	ID             string      `json:"id"`
	CustomerName   string      `json:"customer_name" validate:"required"`
	ProductID      string      `json:"product_id" validate:"required"`
	PalletQuantity int         `json:"pallet_quantity" validate:"min=0"`
	UnitsPerPallet int         `json:"units_per_pallet" validate:"min=0"`
	CurrentUnits   *int        `json:"current_units" validate:"omitempty,min=0"`
	Location       string      `json:"location" validate:"required"`
	Parts          []PartInput `json:"parts" validate:"dive"`
	Notes          string      `json:"notes"`
	ScannedBy      string      `json:"scanned_by"`
}

// POST /api/pallets
func CheckInHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CheckInRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if body.ScannedBy == "" {
			body.ScannedBy = auth.ActorName(c)
		}

		pallet, err := svc.CheckIn(CheckInParams{
			ID:             body.ID,
			CustomerName:   body.CustomerName,
			ProductID:      body.ProductID,
			PalletQuantity: body.PalletQuantity,
			UnitsPerPallet: body.UnitsPerPallet,
			CurrentUnits:   body.CurrentUnits,
			Location:       body.Location,
			Parts:          body.Parts,
			Notes:          body.Notes,
			ScannedBy:      body.ScannedBy,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(pallet)
	}
}

type RemovePalletsRequest struct {
	Quantity  int    `json:"quantity" validate:"required"`
	ScannedBy string `json:"scanned_by"`
}

// POST /api/pallets/:id/remove-pallets
func RemovePalletsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RemovePalletsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.ScannedBy == "" {
			body.ScannedBy = auth.ActorName(c)
		}

		result, err := svc.RemovePalletQuantity(c.Params("id"), body.Quantity, body.ScannedBy)
		if err != nil {
			return err
		}
		return c.JSON(result)
	}
}

type RemoveUnitsRequest struct {
	Units     int    `json:"units" validate:"required"`
	ScannedBy string `json:"scanned_by"`
}

// POST /api/pallets/:id/remove-units
func RemoveUnitsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RemoveUnitsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.ScannedBy == "" {
			body.ScannedBy = auth.ActorName(c)
		}

		result, err := svc.RemoveUnits(c.Params("id"), body.Units, body.ScannedBy)
		if err != nil {
			return err
		}
		return c.JSON(result)
	}
}

// DELETE /api/pallets/:id
func CheckOutHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.CheckOut(c.Params("id"), auth.ActorName(c)); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "pallet checked out"})
	}
}

// GET /api/pallets
func ListPalletsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var pallets []models.Pallet
		err := database.DB.Preload("Parts").
			Where("status = ?", models.PalletStatusActive).
			Order("date_added DESC").
			Find(&pallets).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "pallet query failed")
		}
		return c.JSON(pallets)
	}
}

// GET /api/pallets/search?q=
func SearchPalletsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := c.Query("q")
		if q == "" {
			return fiber.NewError(fiber.StatusBadRequest, "q is required")
		}

		like := "%" + q + "%"
		var pallets []models.Pallet
		err := database.DB.Preload("Parts").
			Where("status = ?", models.PalletStatusActive).
			Where("product_id ILIKE ? OR location ILIKE ? OR customer_name ILIKE ?", like, like, like).
			Order("date_added DESC").
			Find(&pallets).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "pallet search failed")
		}
		return c.JSON(pallets)
	}
}

// GET /api/locations
func ListLocationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var locations []models.Location
		err := database.DB.Order("aisle, rack, level").Find(&locations).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "location query failed")
		}
		return c.JSON(locations)
	}
}

type StatsResponse struct {
	TotalRecords      int64 `json:"total_records"`
	TotalPallets      int64 `json:"total_pallets"`
	OccupiedLocations int64 `json:"occupied_locations"`
	TotalLocations    int64 `json:"total_locations"`
}

// GET /api/stats
func StatsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var resp StatsResponse

		database.DB.Model(&models.Pallet{}).
			Where("status = ?", models.PalletStatusActive).
			Count(&resp.TotalRecords)

		var totalPallets *int64
		database.DB.Model(&models.Pallet{}).
			Where("status = ?", models.PalletStatusActive).
			Select("SUM(pallet_quantity)").
			Scan(&totalPallets)
		if totalPallets != nil {
			resp.TotalPallets = *totalPallets
		}

		database.DB.Model(&models.Location{}).Where("is_occupied = true").Count(&resp.OccupiedLocations)
		database.DB.Model(&models.Location{}).Count(&resp.TotalLocations)

		return c.JSON(resp)
	}
}
