package collector

import (
	"fmt"
	"strconv"
)

// Column headers of the exported table, in output order.
const (
	ColumnID           = "ID вакансии"
	ColumnName         = "Название"
	ColumnEmployer     = "Компания"
	ColumnSalaryFrom   = "Зарплата (от)"
	ColumnSalaryTo     = "Зарплата (до)"
	ColumnCurrency     = "Валюта"
	ColumnCity         = "Город"
	ColumnExperience   = "Опыт"
	ColumnEmployment   = "Тип занятости"
	ColumnPublishedAt  = "Дата публикации"
	ColumnURL          = "Ссылка"
	ColumnPageDuration = "Время обработки страницы"
	ColumnSkills       = "Ключевые навыки"
	ColumnDescription  = "Описание"
	ColumnQuery        = "Запрос"
	ColumnStartedAt    = "Время начала сбора"
	ColumnFinishedAt   = "Время окончания сбора"
)

// Columns lists the headers in the order Record emits values.
var Columns = []string{
	ColumnID,
	ColumnName,
	ColumnEmployer,
	ColumnSalaryFrom,
	ColumnSalaryTo,
	ColumnCurrency,
	ColumnCity,
	ColumnExperience,
	ColumnEmployment,
	ColumnPublishedAt,
	ColumnURL,
	ColumnPageDuration,
	ColumnSkills,
	ColumnDescription,
	ColumnQuery,
	ColumnStartedAt,
	ColumnFinishedAt,
}

// Row is one flattened vacancy.
type Row struct {
	ID          string
	Name        string
	Employer    string
	SalaryFrom  *float64
	SalaryTo    *float64
	Currency    *string
	City        string
	Experience  string
	Employment  string
	PublishedAt string
	URL         string

	// PageDuration is the wall-clock time spent on the page this row came
	// from, e.g. "3.41 сек". Set once the page is complete.
	PageDuration string

	Skills      string
	Description string

	// Set by the Driver.
	Query      string
	StartedAt  string
	FinishedAt string
}

// Record renders the row as text cells in Columns order. Null values become "".
func (r Row) Record() []string {
	return []string{
		r.ID,
		r.Name,
		r.Employer,
		formatFloat(r.SalaryFrom),
		formatFloat(r.SalaryTo),
		formatString(r.Currency),
		r.City,
		r.Experience,
		r.Employment,
		r.PublishedAt,
		r.URL,
		r.PageDuration,
		r.Skills,
		r.Description,
		r.Query,
		r.StartedAt,
		r.FinishedAt,
	}
}

// RowFromRecord is the inverse of Record. Empty salary and currency cells
// become nil.
func RowFromRecord(rec []string) (Row, error) {
	if len(rec) != len(Columns) {
		return Row{}, fmt.Errorf("record has %d fields, want %d", len(rec), len(Columns))
	}

	from, err := parseFloat(rec[3])
	if err != nil {
		return Row{}, fmt.Errorf("%s: %w", ColumnSalaryFrom, err)
	}
	to, err := parseFloat(rec[4])
	if err != nil {
		return Row{}, fmt.Errorf("%s: %w", ColumnSalaryTo, err)
	}

	return Row{
		ID:           rec[0],
		Name:         rec[1],
		Employer:     rec[2],
		SalaryFrom:   from,
		SalaryTo:     to,
		Currency:     parseString(rec[5]),
		City:         rec[6],
		Experience:   rec[7],
		Employment:   rec[8],
		PublishedAt:  rec[9],
		URL:          rec[10],
		PageDuration: rec[11],
		Skills:       rec[12],
		Description:  rec[13],
		Query:        rec[14],
		StartedAt:    rec[15],
		FinishedAt:   rec[16],
	}, nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parseFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func formatString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func parseString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
