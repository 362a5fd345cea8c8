package collector

import (
	"reflect"
	"strings"
	"testing"
)

func TestColumns(t *testing.T) {
	if len(Columns) != 17 {
		t.Fatalf("len(Columns) = %d, want 17", len(Columns))
	}
	if Columns[0] != "ID вакансии" || Columns[len(Columns)-1] != "Время окончания сбора" {
		t.Errorf("unexpected column order: %v", Columns)
	}
	if got := len(Row{}.Record()); got != len(Columns) {
		t.Errorf("len(Record()) = %d, want %d", got, len(Columns))
	}
}

func TestRecord_RoundTrip(t *testing.T) {
	from, to, currency := 150000.0, 220000.5, "RUR"

	tests := []struct {
		name string
		row  Row
	}{
		{
			name: "full row",
			row: Row{
				ID:           "101",
				Name:         "Data Scientist",
				Employer:     "Сбер",
				SalaryFrom:   &from,
				SalaryTo:     &to,
				Currency:     &currency,
				City:         "Москва",
				Experience:   "От 3 до 6 лет",
				Employment:   "Полная занятость",
				PublishedAt:  "2024-05-01T10:00:00+0300",
				URL:          "https://hh.ru/vacancy/101",
				PageDuration: "3.41 сек",
				Skills:       "Python, SQL",
				Description:  `<p>Работа с "большими" данными, ETL</p>`,
				Query:        "data science",
				StartedAt:    "2024-05-01 10:00:00",
				FinishedAt:   "2024-05-01 10:05:00",
			},
		},
		{
			name: "no salary",
			row: Row{
				ID:           "102",
				Name:         "Аналитик",
				PageDuration: "0.50 сек",
				Query:        "аналитик данных",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RowFromRecord(tt.row.Record())
			if err != nil {
				t.Fatalf("RowFromRecord() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.row) {
				t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, tt.row)
			}
		})
	}
}

func TestRecord_Formatting(t *testing.T) {
	from := 100000.0
	rec := Row{SalaryFrom: &from}.Record()

	if rec[3] != "100000" {
		t.Errorf("salary from = %q, want 100000", rec[3])
	}
	if rec[4] != "" || rec[5] != "" {
		t.Errorf("null salary cells = %q/%q, want empty", rec[4], rec[5])
	}
}

func TestRowFromRecord_Errors(t *testing.T) {
	short := []string{"1", "name"}
	if _, err := RowFromRecord(short); err == nil || !strings.Contains(err.Error(), "want 17") {
		t.Errorf("expected field count error, got %v", err)
	}

	rec := Row{ID: "1"}.Record()
	rec[4] = "many"
	_, err := RowFromRecord(rec)
	if err == nil || !strings.HasPrefix(err.Error(), ColumnSalaryTo) {
		t.Errorf("expected salary parse error, got %v", err)
	}
}
