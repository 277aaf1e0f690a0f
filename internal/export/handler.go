// Package export projects active pallet records into tabular form. Pure
// read-only transformation of ledger state.
package export

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"warehouse-backend/internal/database"
	"warehouse-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

var header = []string{"Customer", "Product ID", "Pallets", "Units/Pallet", "Current Units", "Location", "Date Added"}

func activeRows() ([][]string, error) {
	var pallets []models.Pallet
	err := database.DB.
		Where("status = ?", models.PalletStatusActive).
		Order("customer_name, date_added").
		Find(&pallets).Error
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(pallets))
	for _, p := range pallets {
		rows = append(rows, []string{
			p.CustomerName,
			p.ProductID,
			strconv.Itoa(p.PalletQuantity),
			strconv.Itoa(p.ProductQuantity),
			strconv.Itoa(p.CurrentUnits),
			p.Location,
			p.DateAdded.Format("2006-01-02 15:04:05"),
		})
	}
	return rows, nil
}

// GET /api/export?format=csv|xlsx
func ExportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := activeRows()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "export query failed")
		}

		switch c.Query("format", "csv") {
		case "csv":
			return writeCSV(c, rows)
		case "xlsx":
			return writeXLSX(c, rows)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "format must be csv or xlsx")
		}
	}
}

func writeCSV(c *fiber.Ctx, rows [][]string) error {
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="inventory.csv"`)

	w := csv.NewWriter(c)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(c *fiber.Ctx, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Inventory"
	f.SetSheetName("Sheet1", sheet)

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return err
		}
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="inventory-%s.xlsx"`, time.Now().Format("2006-01-02")))
	return f.Write(c)
}
