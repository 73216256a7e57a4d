package model

import (
	"fmt"
	"time"
)

type CodeType string

const (
	CodeTypeJob     CodeType = "JOB"
	CodeTypeShift   CodeType = "SHF"
	CodeTypeInvoice CodeType = "INV"
	CodeTypeVehicle CodeType = "VEH"
	CodeTypeDriver  CodeType = "DRV"
	CodeTypeClient  CodeType = "CLI"
	CodeTypeProduct CodeType = "PRD"
	CodeTypeTrailer CodeType = "TRL"
)

var CodeTypes = []CodeType{
	CodeTypeJob,
	CodeTypeShift,
	CodeTypeInvoice,
	CodeTypeVehicle,
	CodeTypeDriver,
	CodeTypeClient,
	CodeTypeProduct,
	CodeTypeTrailer,
}

func (t CodeType) Valid() bool {
	for _, known := range CodeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// YearInCode reports whether the formatted code embeds the year. The counter
// row is partitioned by year for every type either way.
func (t CodeType) YearInCode() bool {
	switch t {
	case CodeTypeJob, CodeTypeShift, CodeTypeInvoice:
		return true
	default:
		return false
	}
}

// Format renders a sequence value, e.g. JOB-2025-0001 or VEH-0001.
// Sequences beyond 9999 widen rather than wrap.
func (t CodeType) Format(year int, seq int64) string {
	if t.YearInCode() {
		return fmt.Sprintf("%s-%d-%04d", t, year, seq)
	}
	return fmt.Sprintf("%s-%04d", t, seq)
}

// Counter is the last allocated sequence value for one (year, type).
type Counter struct {
	Year      int       `gorm:"primaryKey;autoIncrement:false" json:"year"`
	Type      CodeType  `gorm:"primaryKey;type:varchar(8)" json:"type"`
	Current   int64     `gorm:"not null" json:"current"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Counter) TableName() string {
	return "counters"
}
