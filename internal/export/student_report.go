package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/schooldesk/admin-bot/internal/models"
	"github.com/xuri/excelize/v2"
)

// StudentReport собирает карточку ученика в xlsx: лист с предметами и
// оценками, лист проступков и лист пропусков. Возвращает путь к файлу;
// удаление файла — на вызывающем.
func StudentReport(student models.User, subjects map[string][]string,
	infractions []models.Infraction, absences []models.Absence) (string, error) {

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	// ===== Предметы =====
	sheet := "Предметы"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	_ = f.SetCellStr(sheet, "A1", "Предмет")
	_ = f.SetCellStr(sheet, "B1", "Оценки")
	_ = f.SetCellStyle(sheet, "A1", "B1", bold)

	names := make([]string, 0, len(subjects))
	for name := range subjects {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		row := i + 2
		_ = f.SetCellStr(sheet, fmt.Sprintf("A%d", row), name)
		_ = f.SetCellStr(sheet, fmt.Sprintf("B%d", row), strings.Join(subjects[name], ", "))
	}
	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "B", "B", 40)

	// ===== Проступки =====
	sheet = "Проступки"
	if _, err := f.NewSheet(sheet); err != nil {
		return "", fmt.Errorf("new sheet: %w", err)
	}
	for col, h := range []string{"Дата", "Тип", "Описание"} {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellStr(sheet, cell, h)
	}
	_ = f.SetCellStyle(sheet, "A1", "C1", bold)
	for i, inf := range infractions {
		row := i + 2
		_ = f.SetCellStr(sheet, fmt.Sprintf("A%d", row), inf.Date)
		_ = f.SetCellStr(sheet, fmt.Sprintf("B%d", row), inf.InfracType)
		_ = f.SetCellStr(sheet, fmt.Sprintf("C%d", row), inf.Description)
	}
	_ = f.SetColWidth(sheet, "C", "C", 48)

	// ===== Пропуски =====
	sheet = "Пропуски"
	if _, err := f.NewSheet(sheet); err != nil {
		return "", fmt.Errorf("new sheet: %w", err)
	}
	_ = f.SetCellStr(sheet, "A1", "Дата")
	_ = f.SetCellStr(sheet, "B1", "Статус")
	_ = f.SetCellStyle(sheet, "A1", "B1", bold)
	for i, a := range absences {
		row := i + 2
		status := "без уважительной причины"
		if a.Status == models.AbsenceExcused {
			status = "по уважительной причине"
		}
		_ = f.SetCellStr(sheet, fmt.Sprintf("A%d", row), a.Date)
		_ = f.SetCellStr(sheet, fmt.Sprintf("B%d", row), status)
	}
	_ = f.SetColWidth(sheet, "B", "B", 28)

	name := fmt.Sprintf("report_%s_%s.xlsx", student.Username, time.Now().Format("20060102_150405"))
	path := filepath.Join(os.TempDir(), name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return path, nil
}
