package infra

// pdf.go — receipt generation using go-pdf/fpdf.
// Generates A7-size thermal receipt-style tickets with the business name
// header, sale number and timestamp, an item table, discount and tax lines,
// a bold total and the payment breakdown.
//
// The output file is saved to storagePath/receipt_{sale_number}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Grey-kingreys/magazin-back-sub000/internal/model"

	"github.com/go-pdf/fpdf"
)

// FormatAmount renders an amount held in the smallest currency unit as a
// two-decimal string, e.g. 250000 -> "2500.00".
func FormatAmount(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// GenerateReceiptPDF renders a PDF receipt for a sale. storagePath is the
// directory where the PDF will be written (created if needed). Returns the
// absolute path to the generated file.
func GenerateReceiptPDF(sale *model.Sale, businessName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("receipt_%s.pdf", sale.SaleNumber)
	filePath := filepath.Join(storagePath, fileName)

	// A7 ≈ 74mm × 105mm — close to thermal receipt paper
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8 // total margins = 8mm

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, businessName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sales Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, sale.SaleNumber, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, sale.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.52 // product name
	col2 := contentW * 0.16 // qty
	col3 := contentW * 0.32 // subtotal

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range sale.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		// Truncate long names
		if len(name) > 22 {
			name = name[:21] + "…"
		}
		pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+FormatAmount(item.Subtotal), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 7)
	if sale.Discount > 0 {
		pdf.CellFormat(col1+col2, 5, "Discount:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "-$"+FormatAmount(sale.Discount), "", 1, "R", false, 0, "")
	}
	if sale.Tax > 0 {
		pdf.CellFormat(col1+col2, 5, "Tax:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+FormatAmount(sale.Tax), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+FormatAmount(sale.Total), "", 1, "R", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 4, "Paid ("+sale.PaymentMethod+"):", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, "$"+FormatAmount(sale.AmountPaid), "", 1, "R", false, 0, "")
	if sale.Change > 0 {
		pdf.CellFormat(col1+col2, 4, "Change:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, "$"+FormatAmount(sale.Change), "", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your purchase!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
