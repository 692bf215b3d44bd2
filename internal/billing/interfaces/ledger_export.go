package interfaces

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	billing "hardware-backoffice/internal/billing/domain"
	"hardware-backoffice/internal/money"
	orders "hardware-backoffice/internal/orders/domain"
	"hardware-backoffice/internal/phtime"
)

// BuildLedgerPDF renders a printable statement of account for an order.
func BuildLedgerPDF(order orders.Order, ledger billing.Ledger) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Statement of Account")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Invoice: %s", order.InvoiceCode))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Customer: %s", order.CustomerName))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Order Status: %s", order.Status))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Order Date: %s", phtime.FormatDate(order.CreatedAt)))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Total Charge: %s", pdfAmount(order.ChargeTotal())))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Credits: %s", pdfAmount(ledger.TotalCredits)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Current Balance: %s", pdfAmount(ledger.CurrentBalance)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(22, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(70, 6, "Description", "1", 0, "C", false, 0, "")
	pdf.CellFormat(28, 6, "Debit", "1", 0, "C", false, 0, "")
	pdf.CellFormat(28, 6, "Credit", "1", 0, "C", false, 0, "")
	pdf.CellFormat(28, 6, "Balance", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, entry := range ledger.Entries {
		pdf.CellFormat(22, 6, phtime.FormatDate(entry.Date), "1", 0, "C", false, 0, "")
		pdf.CellFormat(70, 6, entry.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(28, 6, pdfCell(entry.Debit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 6, pdfCell(entry.Credit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 6, pdfAmount(entry.Balance), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// gofpdf's core fonts cannot render the peso sign; exports use the PHP
// prefix instead.
func pdfAmount(x float64) string {
	return strings.ReplaceAll(money.FormatPHP(x), "₱", "PHP ")
}

func pdfCell(x float64) string {
	if x == 0 {
		return "-"
	}
	return pdfAmount(x)
}
