// Package pdf renders finalized invoices into a fixed single-page layout.
// The template measures coordinates from the page bottom, with numeric
// columns right-justified against fixed field widths. The renderer is pure;
// it validates nothing beyond what the builder guarantees and renders absent
// optional profile fields as nothing at all.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/mkalvans/invoicebot/internal/billing"
	"github.com/mkalvans/invoicebot/internal/config"
	"github.com/mkalvans/invoicebot/internal/domain"
)

const (
	margin           = 50.0
	bottomRuleY      = 80.0
	lineThickness    = 0.75
	fieldWidth       = 60.0
	mediumFieldWidth = 100.0
	largeFieldWidth  = 180.0
	rowHeight        = 20.0
	tableTopOffset   = 220.0

	penaltyText     = "0.05% per day"
	instructionText = "PLEASE PROVIDE INVOICE NUMBER IN PAYMENT DETAILS"
)

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// page wraps fpdf with the template's bottom-origin coordinate system.
type page struct {
	pdf    *fpdf.Fpdf
	width  float64
	height float64
}

func (p *page) setFont(style string, size float64) {
	p.pdf.SetFont("Helvetica", style, size)
}

// text draws s with its baseline at y points from the page bottom.
func (p *page) text(x, y float64, s string) {
	p.pdf.Text(x, p.height-y, s)
}

// textRight draws s so its right edge meets x+field, measuring the rendered
// width with the current font.
func (p *page) textRight(x, y, field float64, s string) {
	w := p.pdf.GetStringWidth(s)
	p.pdf.Text(x+field-w, p.height-y, s)
}

func (p *page) rule(x1, y1, x2, y2 float64) {
	p.pdf.Line(x1, p.height-y1, x2, p.height-y2)
}

// blockLine is one row of an optional-field block; absent fields produce no
// line at all rather than an empty one.
type blockLine struct {
	text string
	bold bool
}

// clientBlock lists the rows of the client address block in order. Only the
// name is guaranteed present.
func clientBlock(c *domain.Client) []blockLine {
	lines := []blockLine{{text: c.Name, bold: true}}
	if c.AddressLine1 != "" {
		lines = append(lines, blockLine{text: c.AddressLine1})
	}
	if c.AddressLine2 != "" {
		lines = append(lines, blockLine{text: c.AddressLine2})
	}
	if c.Country != "" {
		lines = append(lines, blockLine{text: c.Country})
	}
	if c.RegNumber != "" {
		lines = append(lines, blockLine{text: "Reg number: " + c.RegNumber})
	}
	if c.VATNumber != "" {
		lines = append(lines, blockLine{text: "VAT number: " + c.VATNumber})
	}
	return lines
}

// termDays is the integer day count between issue and due date, shown as the
// payment terms ("30 days").
func termDays(issue, due time.Time) int {
	return int(due.Sub(issue).Hours() / 24)
}

func pdfDate(t time.Time) string {
	return t.Format("02.01.2006")
}

func issuerAddress(u *domain.User) string {
	return fmt.Sprintf("%s, %s %s", u.Address, u.ZipCode, u.City)
}

// Render produces the invoice document as PDF bytes.
func (r *Renderer) Render(user *domain.User, client *domain.Client, inv *domain.Invoice, lines []domain.LineItem) ([]byte, error) {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	w, h := doc.GetPageSize()
	p := &page{pdf: doc, width: w, height: h}

	top := h - margin
	left := margin
	right := w - margin

	doc.SetLineWidth(lineThickness)

	companyName := user.CompanyName
	if companyName == "" {
		companyName = "Company Name"
	}

	// Company header
	p.setFont("B", 24)
	p.text(left, top, companyName)

	// Client block
	y := top - 30
	p.setFont("", 10)
	p.text(left, y, "Client:")
	for _, bl := range clientBlock(client) {
		y -= 15
		if bl.bold {
			p.setFont("B", 10)
		} else {
			p.setFont("", 10)
		}
		p.text(left, y, bl.text)
	}

	// Invoice metadata block, right-aligned in two columns
	metaX := right - 2*mediumFieldWidth
	y = top - 30
	p.setFont("B", 14)
	p.text(metaX, y, "Invoice nr:")
	p.textRight(metaX+mediumFieldWidth, y, mediumFieldWidth, inv.InvoiceNumber)

	y -= 20
	p.setFont("", 12)
	p.text(metaX, y, "Date:")
	p.textRight(metaX+mediumFieldWidth, y, mediumFieldWidth, pdfDate(inv.IssueDate))

	y -= 20
	p.text(metaX, y, "Terms:")
	p.textRight(metaX+mediumFieldWidth, y, mediumFieldWidth, fmt.Sprintf("%d days", termDays(inv.IssueDate, inv.DueDate)))

	y -= 20
	p.setFont("B", 12)
	p.text(metaX, y, "Due date:")
	p.textRight(metaX+mediumFieldWidth, y, mediumFieldWidth, pdfDate(inv.DueDate))

	y -= 20
	p.setFont("", 12)
	p.text(metaX, y, "Penalty:")
	p.textRight(metaX+mediumFieldWidth, y, mediumFieldWidth, penaltyText)

	// Bank block
	y -= 30
	p.setFont("B", 12)
	p.text(metaX, y, user.BankName)
	y -= 15
	p.setFont("", 12)
	p.text(metaX, y, "IBAN: "+user.IBAN)
	y -= 15
	p.text(metaX, y, "SWIFT: "+user.SWIFT)

	// Line-items table header
	tableTop := top - tableTopOffset
	p.setFont("B", 12)
	p.text(left, tableTop, "Description")
	x := right - 4*fieldWidth
	p.textRight(x, tableTop, fieldWidth, "Price")
	x += fieldWidth
	p.textRight(x, tableTop, fieldWidth, "Quantity")
	x += fieldWidth
	p.textRight(x, tableTop, fieldWidth, "VAT")
	x += fieldWidth
	p.textRight(x, tableTop, fieldWidth, "Total")

	headerRuleY := top - tableTopOffset - 5
	p.rule(left, headerRuleY, right, headerRuleY)

	// Line rows
	p.setFont("", 12)
	for i, line := range lines {
		rowY := top - tableTopOffset - 20 - float64(i)*rowHeight
		p.text(left, rowY, line.Description)
		x = right - 4*fieldWidth
		p.textRight(x, rowY, fieldWidth, line.UnitPrice.StringFixed(2))
		x += fieldWidth
		p.textRight(x, rowY, fieldWidth, line.Quantity.String())
		x += fieldWidth
		p.textRight(x, rowY, fieldWidth, fmt.Sprintf("%d%%", line.VATRate))
		x += fieldWidth
		p.textRight(x, rowY, fieldWidth, billing.LineSubtotal(line).StringFixed(2))
	}

	bottomRule := headerRuleY - float64(len(lines))*rowHeight
	p.rule(left, bottomRule, right, bottomRule)

	// Totals block, aligned against the table's numeric columns. One tax
	// row per distinct rate among the lines, zero rates included.
	totals := billing.ComputeTotals(lines)
	vatRows := billing.RateVAT(lines)
	totalsX := right - fieldWidth - largeFieldWidth
	rowIdx := float64(len(lines)) + 2

	rowY := headerRuleY - rowIdx*rowHeight
	p.setFont("", 12)
	p.textRight(totalsX, rowY, largeFieldWidth, "Subtotal without VAT")
	p.textRight(totalsX+largeFieldWidth, rowY, fieldWidth, totals.Subtotal.StringFixed(2))

	for i, entry := range vatRows {
		rowY = headerRuleY - (float64(len(lines))+3+float64(i))*rowHeight
		p.textRight(totalsX, rowY, largeFieldWidth, fmt.Sprintf("Value added tax %d%%", entry.Rate))
		p.textRight(totalsX+largeFieldWidth, rowY, fieldWidth, entry.Amount.StringFixed(2))
	}

	rowY = headerRuleY - (float64(len(lines))+3+float64(len(vatRows)))*rowHeight
	p.setFont("B", 14)
	p.textRight(totalsX, rowY, largeFieldWidth, fmt.Sprintf("Total to pay (%s)", config.Currency))
	p.textRight(totalsX+largeFieldWidth, rowY, fieldWidth, inv.TotalAmount.StringFixed(2))

	// Payment instruction
	rowY = headerRuleY - (float64(len(lines))+6+float64(len(vatRows)))*rowHeight
	p.setFont("", 10)
	p.text(left, rowY, instructionText)

	// Footer
	p.rule(left, bottomRuleY, right, bottomRuleY)

	y = bottomRuleY - 12
	p.text(left, y, companyName)
	y -= 12
	p.text(left, y, issuerAddress(user))
	y -= 12
	p.text(left, y, "Reg number: "+user.RegNumber)
	y -= 12
	p.text(left, y, "VAT number: "+user.VATNumber)

	contactX := right - largeFieldWidth
	y = bottomRuleY - 12
	p.textRight(contactX, y, largeFieldWidth, "E-mail: "+user.Email)
	y -= 12
	p.textRight(contactX, y, largeFieldWidth, "Phone: "+user.Phone)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
