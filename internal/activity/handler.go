package activity

import (
	"strconv"

	"warehouse-backend/internal/database"

	"github.com/gofiber/fiber/v2"
)

// GET /api/activity?customer=Acme&limit=100
func ListActivityHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		customer := c.Query("customer")

		limit := 0
		if limitStr := c.Query("limit"); limitStr != "" {
			n, err := strconv.Atoi(limitStr)
			if err != nil || n < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "limit must be a non-negative integer")
			}
			limit = n
		}

		entries, err := Query(database.DB, customer, limit)
		if err != nil {
			return err
		}
		return c.JSON(entries)
	}
}
