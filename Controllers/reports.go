package Controllers

import (
	"fmt"
	"time"

	"Flotilla/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ReportHandler struct {
	DB *gorm.DB
}

func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{DB: db}
}

// TripsReport builds an XLSX workbook with every closed trip in the
// requested window (query params desde/hasta, default last 30 days).
func (h *ReportHandler) TripsReport(c *fiber.Ctx) error {
	until := time.Now()
	since := until.AddDate(0, 0, -30)
	if v := c.Query("desde"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return respondError(c, err)
		}
		since = t
	}
	if v := c.Query("hasta"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return respondError(c, err)
		}
		until = t.AddDate(0, 0, 1)
	}

	var trips []Models.Trip
	err := h.DB.Preload("Vehicle").Preload("Driver").Preload("Expenses").
		Where("end_time IS NOT NULL AND end_time >= ? AND end_time < ?", since, until).
		Order("end_time asc").
		Find(&trips).Error
	if err != nil {
		return respondError(c, err)
	}

	file := excelize.NewFile()
	defer file.Close()

	sheet := "Viajes"
	file.SetSheetName("Sheet1", sheet)

	headers := []string{
		"Placa", "Conductor", "Origen", "Destino",
		"Fecha Inicio", "Fecha Fin", "Km Inicial", "Km Final",
		"Distancia (km)", "Total Gastos",
	}
	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1F4E78"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return respondError(c, err)
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		file.SetCellValue(sheet, cell, header)
	}
	endHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	file.SetCellStyle(sheet, "A1", endHeader, headerStyle)
	file.SetColWidth(sheet, "A", "J", 18)

	for i, trip := range trips {
		row := i + 2
		var total float64
		for _, expense := range trip.Expenses {
			total += expense.Amount
		}

		values := []interface{}{
			trip.Vehicle.Plate,
			trip.Driver.Name,
			trip.Origin,
			trip.Destination,
			trip.StartTime.Format("2006-01-02 15:04"),
			trip.EndTime.Format("2006-01-02 15:04"),
			trip.StartOdometer,
			floatOrEmpty(trip.EndOdometer),
			floatOrEmpty(trip.TotalDistance),
			total,
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			file.SetCellValue(sheet, cell, value)
		}
	}

	buffer, err := file.WriteToBuffer()
	if err != nil {
		return respondError(c, err)
	}

	filename := fmt.Sprintf("reporte-viajes-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buffer.Bytes())
}

func floatOrEmpty(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
