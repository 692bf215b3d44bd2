package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"hardware-backoffice/internal/money"
	orders "hardware-backoffice/internal/orders/domain"
	"hardware-backoffice/internal/phtime"
)

const transactionsSheet = "Transactions"

// Filename returns the download name for an export generated at now.
func Filename(r Range, now time.Time) string {
	return fmt.Sprintf("Transaction_History_%s_%s.xlsx", r.Label(), phtime.FormatDate(now))
}

// BuildTransactionXLSX renders the transaction-history workbook. Rows
// arrive pre-filtered to completed orders; the builder only formats.
func BuildTransactionXLSX(list []orders.Order) ([]byte, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", transactionsSheet)

	_ = f.SetCellValue(transactionsSheet, "A1", "Transaction Code")
	_ = f.SetCellValue(transactionsSheet, "B1", "Customer")
	_ = f.SetCellValue(transactionsSheet, "C1", "Status")
	_ = f.SetCellValue(transactionsSheet, "D1", "Total Amount")
	_ = f.SetCellValue(transactionsSheet, "E1", "Created")

	for i, o := range list {
		row := i + 2
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("A%d", row), TransactionCode(o))
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("B%d", row), exportText(o.CustomerName))
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("C%d", row), o.Status)
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("D%d", row), money.FormatPHP(o.ChargeTotal()))
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("E%d", row), exportTimestamp(o.CreatedAt))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Missing fields render as a placeholder so one bad row never aborts
// the whole export.
func exportText(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func exportTimestamp(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return phtime.FormatDateTime(t)
}
