// Package export renders record lists as Excel workbooks for download.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kruchat2026/devlog/internal/domain"
)

const sheetName = "บันทึกการพัฒนาตนเอง"

var ErrGenerateFailed = errors.New("สร้างไฟล์ Excel ไม่สำเร็จ")

var headers = []string{
	"ชื่อกิจกรรม",
	"ประเภท",
	"รูปแบบ",
	"วันที่เริ่มต้น",
	"วันที่สิ้นสุด",
	"หน่วยงานผู้จัด",
	"ชั่วโมง",
	"สถานะ",
	"ความเห็นผู้ตรวจ",
	"หลักฐาน",
}

var colWidths = []float64{40, 14, 12, 14, 14, 28, 10, 14, 30, 40}

// Records writes one row per record and a closing row with the approved hours
// total. It returns the workbook and a suggested file name.
func Records(records []*domain.Record, owner *domain.User, now time.Time) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrGenerateFailed, err)
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	for i, w := range colWidths {
		col := colName(i)
		_ = f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F46E5"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	totalStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	row := 1
	for i, h := range headers {
		_ = f.SetCellValue(sheetName, cell(colName(i), row), h)
	}
	_ = f.SetCellStyle(sheetName, cell(colName(0), row), cell(colName(len(headers)-1), row), headerStyle)

	for _, r := range records {
		row++
		evidence := ""
		if att := r.Attachment(); att != nil {
			evidence = att.FileURL
		}
		values := []any{
			r.Title,
			r.ActivityType,
			r.Format.Label(),
			r.StartDate,
			r.EndDate,
			r.Organizer,
			r.Hours,
			r.Status.Label(),
			r.ReviewComment,
			evidence,
		}
		for i, v := range values {
			_ = f.SetCellValue(sheetName, cell(colName(i), row), v)
		}
	}

	row++
	stats := domain.ComputeStats(records)
	_ = f.SetCellValue(sheetName, cell(colName(5), row), "รวมชั่วโมงที่อนุมัติ")
	_ = f.SetCellValue(sheetName, cell(colName(6), row), stats.ApprovedHours)
	_ = f.SetCellStyle(sheetName, cell(colName(5), row), cell(colName(6), row), totalStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrGenerateFailed, err)
	}

	name := "records"
	if owner != nil && owner.Name != "" {
		name = owner.Name
	}
	filename := fmt.Sprintf("บันทึกการพัฒนาตนเอง_%s_%s.xlsx", name, now.Format("20060102"))
	return buf, filename, nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
