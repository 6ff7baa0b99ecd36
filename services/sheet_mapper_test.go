package services

import (
	"fmt"
	"testing"

	"github.com/fenilmodi00/meabot-backend/models"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestMapRowsDropsShortRows(t *testing.T) {
	rows := [][]string{
		{"Org A", "Food", "10%", "Addr", "", "@a"},
		{"Org B", "Food", "10%"},
		{},
		{"Org C", "Beauty", "15%", "Addr 1\nAddr 2", "Weekdays", "@c", "extra", "cells"},
	}

	records := MapRows(models.DiscountSchema, rows)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	if got := records[0].Get("organization"); got != "Org A" {
		t.Errorf("expected first record Org A, got %q", got)
	}
	if got := records[1].Get("instagram"); got != "@c" {
		t.Errorf("expected instagram @c, got %q", got)
	}
	if records[1].Len() != len(models.DiscountSchema.Fields) {
		t.Errorf("extra cells must be ignored, record has %d fields", records[1].Len())
	}

	d := models.DiscountFromRecord(records[1])
	if len(d.Addresses) != 2 || d.Addresses[1] != "Addr 2" {
		t.Errorf("expected two addresses, got %v", d.Addresses)
	}
}

func TestMapRowsExactWidthPopulatesAllFields(t *testing.T) {
	row := []string{"Erasmus", "TU Munich", "Year 2+", "1 Feb", "1 Mar", "1 semester", "https://example.org"}

	records := MapRows(models.ExchangeSchema, [][]string{row})
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	e := models.ExchangeFromRecord(records[0])
	if e.ProgramName != "Erasmus" || e.PartnerUniversity != "TU Munich" || e.Website != "https://example.org" {
		t.Errorf("unexpected positional mapping: %+v", e)
	}
	if e.EndReg != "1 Mar" || e.Duration != "1 semester" {
		t.Errorf("unexpected positional mapping: %+v", e)
	}
}

func TestMapRowsEmptyInput(t *testing.T) {
	records := MapRows(models.InternshipSchema, nil)
	if records == nil || len(records) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", records)
	}
}

// TestMapRowsProperties checks count and order preservation for random row widths
func TestMapRowsProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	required := models.InternshipSchema.RequiredColumns()

	properties.Property("one record per wide-enough row, in input order", prop.ForAll(
		func(widths []int) bool {
			rows := make([][]string, len(widths))
			expected := 0
			for i, w := range widths {
				row := make([]string, w)
				for c := range row {
					row[c] = fmt.Sprintf("r%d", i)
				}
				rows[i] = row
				if w >= required {
					expected++
				}
			}

			records := MapRows(models.InternshipSchema, rows)
			if len(records) != expected {
				return false
			}

			j := 0
			for i, w := range widths {
				if w < required {
					continue
				}
				if records[j].Get("internship_program") != fmt.Sprintf("r%d", i) {
					return false
				}
				j++
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, required+3)),
	))

	properties.TestingRun(t)
}
