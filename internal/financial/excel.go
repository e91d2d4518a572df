// AngelaMos | 2026
// excel.go

package financial

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/angelamos/stratiq/internal/core"
)

// The import template is strict: three named sheets, fixed metric
// labels. Anything else fails fast with a message naming the missing
// piece so the spreadsheet can be fixed instead of silently skipped.
const (
	sheetIncome  = "Income_Statement"
	sheetBalance = "Balance_Sheet"
	sheetCash    = "Cash_Flow"
)

// ParseWorkbook reads the financial template from an uploaded xlsx.
func ParseWorkbook(r io.Reader) (Statements, error) {
	var st Statements

	f, err := excelize.OpenReader(r)
	if err != nil {
		return st, fmt.Errorf(
			"open workbook: %v: %w",
			err,
			core.ErrInvalidInput,
		)
	}
	defer f.Close()

	income, err := sheetMetrics(f, sheetIncome, 3)
	if err != nil {
		return st, err
	}

	balance, err := sheetMetrics(f, sheetBalance, 1)
	if err != nil {
		return st, err
	}

	cash, err := sheetMetrics(f, sheetCash, 1)
	if err != nil {
		return st, err
	}

	if err := pick3(income, "Revenue",
		&st.RevenueY2, &st.RevenueY1, &st.RevenueY0); err != nil {
		return st, err
	}
	if err := pick3(income, "EBITDA",
		&st.EBITDAY2, &st.EBITDAY1, &st.EBITDAY0); err != nil {
		return st, err
	}
	if err := pick3(income, "Net Profit",
		&st.NetProfitY2, &st.NetProfitY1, &st.NetProfitY0); err != nil {
		return st, err
	}

	if err := pick1(balance, "Total Assets", &st.TotalAssets); err != nil {
		return st, err
	}
	if err := pick1(balance, "Equity", &st.Equity); err != nil {
		return st, err
	}
	if err := pick1(balance, "Current Assets", &st.CurrentAssets); err != nil {
		return st, err
	}
	if err := pick1(balance, "Current Liabilities", &st.CurrentLiabilities); err != nil {
		return st, err
	}
	if err := pick1(balance, "Total Debt", &st.TotalDebt); err != nil {
		return st, err
	}

	if err := pick1(cash, "Operating Cash Flow", &st.OperatingCashFlow); err != nil {
		return st, err
	}
	if err := pick1(cash, "CAPEX", &st.CapEx); err != nil {
		return st, err
	}

	return st, st.Validate()
}

// sheetMetrics reads a sheet into metric label -> value columns,
// skipping the header row. Each metric must carry want values.
func sheetMetrics(
	f *excelize.File,
	sheet string,
	want int,
) (map[string][]decimal.Decimal, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf(
			"missing sheet %q: %w",
			sheet,
			core.ErrInvalidInput,
		)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf(
			"sheet %q has no data rows: %w",
			sheet,
			core.ErrInvalidInput,
		)
	}

	out := make(map[string][]decimal.Decimal, len(rows)-1)

	for i, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		label := strings.TrimSpace(row[0])

		if len(row) < want+1 {
			return nil, fmt.Errorf(
				"sheet %q row %d (%s): expected %d values: %w",
				sheet, i+2, label, want, core.ErrInvalidInput,
			)
		}

		values := make([]decimal.Decimal, 0, want)
		for _, cell := range row[1 : want+1] {
			v, err := parseAmount(cell)
			if err != nil {
				return nil, fmt.Errorf(
					"sheet %q row %d (%s): %v: %w",
					sheet, i+2, label, err, core.ErrInvalidInput,
				)
			}
			values = append(values, v)
		}

		out[label] = values
	}

	return out, nil
}

func pick3(
	metrics map[string][]decimal.Decimal,
	label string,
	y2, y1, y0 *decimal.Decimal,
) error {
	values, ok := metrics[label]
	if !ok || len(values) < 3 {
		return fmt.Errorf(
			"missing metric %q: %w",
			label,
			core.ErrInvalidInput,
		)
	}

	*y2, *y1, *y0 = values[0], values[1], values[2]
	return nil
}

func pick1(
	metrics map[string][]decimal.Decimal,
	label string,
	dst *decimal.Decimal,
) error {
	values, ok := metrics[label]
	if !ok || len(values) < 1 {
		return fmt.Errorf(
			"missing metric %q: %w",
			label,
			core.ErrInvalidInput,
		)
	}

	*dst = values[0]
	return nil
}

func parseAmount(cell string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(cell)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty cell")
	}

	return decimal.NewFromString(cleaned)
}
