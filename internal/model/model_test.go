package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseClockTime(t *testing.T) {
	cases := map[string]ClockTime{
		"08:00":           NewClockTime(8, 0, 0),
		"16:30:15":        NewClockTime(16, 30, 15),
		" 23:59 ":         NewClockTime(23, 59, 0),
		"07:05:00.000000": NewClockTime(7, 5, 0),
	}
	for raw, want := range cases {
		got, err := ParseClockTime(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "24:00", "8am", "12:61"} {
		_, err := ParseClockTime(raw)
		require.Error(t, err, raw)
	}
}

func TestClockTimeJSON(t *testing.T) {
	var payload struct {
		At ClockTime `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":"09:15"}`), &payload))
	require.Equal(t, NewClockTime(9, 15, 0), payload.At)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	require.JSONEq(t, `{"at":"09:15:00"}`, string(out))
}

func TestClockTimeScan(t *testing.T) {
	var c ClockTime
	require.NoError(t, c.Scan("10:20:30"))
	require.Equal(t, NewClockTime(10, 20, 30), c)

	require.NoError(t, c.Scan([]byte("11:00:00")))
	require.Equal(t, NewClockTime(11, 0, 0), c)

	require.NoError(t, c.Scan(time.Date(0, 1, 1, 6, 45, 0, 0, time.UTC)))
	require.Equal(t, NewClockTime(6, 45, 0), c)

	require.Error(t, c.Scan(42))

	v, err := NewClockTime(6, 45, 0).Value()
	require.NoError(t, err)
	require.Equal(t, "06:45:00", v)
}

func TestCodeTypeFormat(t *testing.T) {
	require.Equal(t, "JOB-2025-0001", CodeTypeJob.Format(2025, 1))
	require.Equal(t, "SHF-2025-0042", CodeTypeShift.Format(2025, 42))
	require.Equal(t, "INV-2026-12345", CodeTypeInvoice.Format(2026, 12345))
	require.Equal(t, "VEH-0001", CodeTypeVehicle.Format(2025, 1))
	require.Equal(t, "TRL-0300", CodeTypeTrailer.Format(2025, 300))

	require.True(t, CodeTypeClient.Valid())
	require.False(t, CodeType("XYZ").Valid())
	require.False(t, CodeTypeProduct.YearInCode())
}

func TestLifecycleTables(t *testing.T) {
	require.NoError(t, ShiftLifecycle.Validate(ShiftStatusDraft, ShiftStatusActive))
	require.NoError(t, ShiftLifecycle.Validate(ShiftStatusActive, ShiftStatusCompleted))
	require.Error(t, ShiftLifecycle.Validate(ShiftStatusDraft, ShiftStatusCompleted))
	require.True(t, ShiftLifecycle.Terminal(ShiftStatusCancelled))

	require.NoError(t, JobLifecycle.Validate(JobStatusDraft, JobStatusAssigned))
	require.Error(t, JobLifecycle.Validate(JobStatusDraft, JobStatusCompleted))
	require.Error(t, JobLifecycle.Validate(JobStatusCompleted, JobStatusCancelled))

	require.NoError(t, InvoiceLifecycle.Validate(InvoiceStatusDraft, InvoiceStatusIssued))
	require.Error(t, InvoiceLifecycle.Validate(InvoiceStatusIssued, InvoiceStatusIssued))
}
