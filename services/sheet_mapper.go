package services

import (
	"github.com/fenilmodi00/meabot-backend/models"
	"github.com/sirupsen/logrus"
)

// MapRows converts raw rectangular sheet data into records for schema.
// Rows narrower than the schema are dropped without error; extra cells are
// ignored. Output order equals input order and is the reference index the
// presentation layer uses to address individual records.
func MapRows(schema models.Schema, rows [][]string) []models.Record {
	required := schema.RequiredColumns()
	records := make([]models.Record, 0, len(rows))
	dropped := 0

	for _, row := range rows {
		if len(row) < required {
			dropped++
			continue
		}
		records = append(records, models.NewRecord(schema.Fields, row[:required]))
	}

	if dropped > 0 {
		logrus.WithFields(logrus.Fields{
			"component":        "SheetMapper",
			"dataset":          schema.Dataset,
			"required_columns": required,
			"dropped_rows":     dropped,
			"mapped_rows":      len(records),
		}).Debug("Dropped short rows while mapping dataset")
	}

	return records
}
