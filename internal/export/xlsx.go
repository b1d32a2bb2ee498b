package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"recycleadmin/internal/model"
	"recycleadmin/internal/schedule"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// 列名与后台表格一致
var (
	ScheduleHeader = []string{
		"User ID", "Số điện thoại", "Loại rác", "Vị trí", "Ngày thu gom", "Ngày tạo", "Trạng thái", "Ghi chú",
	}
	ScanHistoryHeader = []string{
		"Mã quét rác", "Mã người dùng", "Số điện thoại", "Nhãn", "Loại", "Độ chính xác", "Thời gian",
	}
)

const dateLayout = "2006-01-02 15:04"

// Schedules 写出预约列表，状态列使用显示名
func Schedules(list []schedule.Schedule) ([]byte, error) {
	rows := make([][]any, 0, len(list))
	for _, s := range list {
		rows = append(rows, []any{
			s.UserID,
			s.UserEmail,
			s.WasteType,
			fmt.Sprintf("%.6f, %.6f", s.Latitude, s.Longitude),
			formatTime(s.ScheduledDate),
			formatTime(s.CreatedAt),
			s.Status.Label(),
			s.Notes,
		})
	}
	return write("Lịch thu gom", ScheduleHeader, []float64{10, 24, 14, 24, 18, 18, 14, 40}, rows)
}

// ScanHistories 写出扫描记录，置信度按百分比
func ScanHistories(list []model.ScanHistory) ([]byte, error) {
	rows := make([][]any, 0, len(list))
	for _, h := range list {
		rows = append(rows, []any{
			h.ScanID,
			h.UserID,
			h.Email,
			h.Label,
			h.Category,
			fmt.Sprintf("%.1f%%", h.Confidence*100),
			formatTime(h.ScannedAt),
		})
	}
	return write("Lịch sử quét", ScanHistoryHeader, []float64{12, 14, 24, 20, 14, 14, 18}, rows)
}

func formatTime(t model.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

func write(sheet string, header []string, widths []float64, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// 复用默认的 Sheet1
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E8F5E9"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename 带日期的下载文件名
func Filename(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s.xlsx", prefix, now.UTC().Format("20060102"))
}
