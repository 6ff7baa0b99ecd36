package models

import "fmt"

// Dataset identifies one of the spreadsheet-backed collections served by the bot
type Dataset string

const (
	DatasetExchanges   Dataset = "exchanges"
	DatasetInternships Dataset = "internships"
	DatasetDiscounts   Dataset = "discounts"
)

// AllDatasets lists every dataset in warmup order
var AllDatasets = []Dataset{DatasetDiscounts, DatasetExchanges, DatasetInternships}

// ParseDataset converts a string key into a known Dataset
func ParseDataset(key string) (Dataset, error) {
	switch d := Dataset(key); d {
	case DatasetExchanges, DatasetInternships, DatasetDiscounts:
		return d, nil
	default:
		return "", fmt.Errorf("unknown dataset %q", key)
	}
}

// Schema is the fixed, ordered column layout of a dataset.
// Field order is column order; every field is a required column.
type Schema struct {
	Dataset Dataset  `json:"dataset"`
	Fields  []string `json:"fields"`
}

// RequiredColumns returns the minimum row width accepted for the dataset
func (s Schema) RequiredColumns() int {
	return len(s.Fields)
}

var (
	ExchangeSchema = Schema{
		Dataset: DatasetExchanges,
		Fields: []string{
			"program_name",
			"partner_university",
			"who_can_apply",
			"start_reg",
			"end_reg",
			"duration",
			"website",
		},
	}

	InternshipSchema = Schema{
		Dataset: DatasetInternships,
		Fields: []string{
			"internship_program",
			"field_department",
			"duration_details",
			"location",
			"application_deadline",
			"application_link",
		},
	}

	DiscountSchema = Schema{
		Dataset: DatasetDiscounts,
		Fields: []string{
			"organization",
			"category",
			"discount",
			"addresses",
			"details",
			"instagram",
		},
	}
)

// SchemaFor returns the schema registered for a dataset
func SchemaFor(d Dataset) (Schema, bool) {
	switch d {
	case DatasetExchanges:
		return ExchangeSchema, true
	case DatasetInternships:
		return InternshipSchema, true
	case DatasetDiscounts:
		return DiscountSchema, true
	}
	return Schema{}, false
}
