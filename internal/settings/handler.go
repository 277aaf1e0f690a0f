package settings

import (
	"strings"

	"warehouse-backend/internal/database"
	"warehouse-backend/internal/models"
	"warehouse-backend/internal/notify"

	"github.com/gofiber/fiber/v2"
)

// GET /api/settings
func GetSettingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var st models.Settings
		if err := database.DB.First(&st).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "settings lookup failed")
		}
		return c.JSON(st)
	}
}

type UpdateSettingsRequest struct {
	SheetsWebhookURL *string `json:"sheets_webhook_url"`
	SheetsEnabled    *bool   `json:"sheets_enabled"`
}

// PUT /api/settings
func UpdateSettingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateSettingsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		var st models.Settings
		if err := database.DB.First(&st).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "settings lookup failed")
		}

		if body.SheetsWebhookURL != nil {
			url := strings.TrimSpace(*body.SheetsWebhookURL)
			if url != "" && !strings.HasPrefix(url, "https://") {
				return fiber.NewError(fiber.StatusBadRequest, "webhook URL must use https")
			}
			st.SheetsWebhookURL = url
		}
		if body.SheetsEnabled != nil {
			st.SheetsEnabled = *body.SheetsEnabled
		}

		if err := database.DB.Save(&st).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "settings update failed")
		}
		return c.JSON(st)
	}
}

// POST /api/sheets/test
func TestSheetsHandler(sync *notify.SheetSync) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := sync.Test(c.Context()); err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "sheets connection failed: "+err.Error())
		}
		return c.JSON(fiber.Map{"message": "connection ok"})
	}
}

// POST /api/sheets/sync
func SyncSheetsHandler(sync *notify.SheetSync) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := sync.SyncAll(c.Context()); err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "sheet sync failed: "+err.Error())
		}
		return c.JSON(fiber.Map{"message": "sync complete"})
	}
}
