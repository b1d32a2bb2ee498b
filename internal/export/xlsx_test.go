package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"recycleadmin/internal/model"
	"recycleadmin/internal/schedule"
)

func open(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestSchedulesWorkbook(t *testing.T) {
	when := model.NewTime(time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC))
	data, err := Schedules([]schedule.Schedule{
		{ScheduleID: 1, UserID: 4, UserEmail: "0912345678", WasteType: "Tái chế",
			Latitude: 10.5, Longitude: 106.25, ScheduledDate: when, Status: schedule.StatusScheduled, Notes: "cổng sau"},
	})
	require.NoError(t, err)

	f := open(t, data)
	rows, err := f.GetRows("Lịch thu gom")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ScheduleHeader, rows[0])
	assert.Equal(t, "4", rows[1][0])
	assert.Equal(t, "2024-05-02 08:30", rows[1][4])
	assert.Equal(t, "", rows[1][5])
	assert.Equal(t, "Đã xác nhận", rows[1][6])
	assert.Equal(t, []string{"Lịch thu gom"}, f.GetSheetList())
}

func TestScanHistoriesWorkbook(t *testing.T) {
	data, err := ScanHistories([]model.ScanHistory{{ScanID: 9, UserID: 2, Label: "chai nhựa", Confidence: 0.875}})
	require.NoError(t, err)

	rows, err := open(t, data).GetRows("Lịch sử quét")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "87.5%", rows[1][5])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "schedules-20240501.xlsx", Filename("schedules", time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)))
}
