package export

import (
	"os"
	"testing"

	"github.com/schooldesk/admin-bot/internal/models"
	"github.com/xuri/excelize/v2"
)

func TestStudentReport(t *testing.T) {
	student := models.User{ID: "st1", FirstName: "Иван", LastName: "Иванов", Username: "ivanov"}
	subjects := map[string][]string{
		"Математика": {"5", "4"},
		"История":    {},
	}
	infractions := []models.Infraction{
		{ID: "i1", InfracType: "Опоздание", Description: "Опоздал на первый урок", Date: "2026-02-10"},
	}
	absences := []models.Absence{
		{ID: "a1", Date: "2026-02-11", Status: models.AbsenceExcused},
		{ID: "a2", Date: "2026-02-12", Status: models.AbsenceAbsent},
	}

	path, err := StudentReport(student, subjects, infractions, absences)
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(path)

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	for _, sheet := range []string{"Предметы", "Проступки", "Пропуски"} {
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			t.Fatalf("нет листа %q", sheet)
		}
	}

	// Предметы отсортированы: История раньше Математики.
	if v, _ := f.GetCellValue("Предметы", "A2"); v != "История" {
		t.Fatalf("A2 = %q", v)
	}
	if v, _ := f.GetCellValue("Предметы", "B3"); v != "5, 4" {
		t.Fatalf("B3 = %q", v)
	}

	if v, _ := f.GetCellValue("Проступки", "B2"); v != "Опоздание" {
		t.Fatalf("Проступки B2 = %q", v)
	}
	if v, _ := f.GetCellValue("Пропуски", "B2"); v != "по уважительной причине" {
		t.Fatalf("Пропуски B2 = %q", v)
	}
	if v, _ := f.GetCellValue("Пропуски", "B3"); v != "без уважительной причины" {
		t.Fatalf("Пропуски B3 = %q", v)
	}
}
