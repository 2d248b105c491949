// Package conversation holds the per-user multi-step flow state. Each user
// has at most one active flow; starting a new flow replaces whatever was in
// progress. Steps are typed constants scoped to their flow so a step can
// never be paired with another flow's draft.
package conversation

import (
	"github.com/mkalvans/invoicebot/internal/domain"
	"github.com/shopspring/decimal"
)

type Flow string

const (
	FlowSetup   Flow = "setup"
	FlowClient  Flow = "client"
	FlowProduct Flow = "product"
	FlowInvoice Flow = "invoice"
)

type Step string

// Setup wizard steps.
const (
	StepSetupCompanyName Step = "setup_company_name"
	StepSetupRegNumber   Step = "setup_reg_number"
	StepSetupVATNumber   Step = "setup_vat_number"
	StepSetupAddress     Step = "setup_address"
	StepSetupCity        Step = "setup_city"
	StepSetupZipCode     Step = "setup_zip_code"
	StepSetupPhone       Step = "setup_phone"
	StepSetupEmail       Step = "setup_email"
	StepSetupBankName    Step = "setup_bank_name"
	StepSetupIBAN        Step = "setup_iban"
	StepSetupSWIFT       Step = "setup_swift"
)

// Client add/edit steps. The same steps serve both modes; edit mode is
// flagged on the draft and treats "skip" as "keep current".
const (
	StepClientName     Step = "client_name"
	StepClientAddress1 Step = "client_address1"
	StepClientAddress2 Step = "client_address2"
	StepClientCountry  Step = "client_country"
	StepClientReg      Step = "client_reg_number"
	StepClientVAT      Step = "client_vat_number"
)

// Product add/edit steps.
const (
	StepProductName        Step = "product_name"
	StepProductDescription Step = "product_description"
	StepProductPrice       Step = "product_price"
	StepProductVATRate     Step = "product_vat_rate"
)

// Invoice builder steps.
const (
	StepInvoiceSelectClient    Step = "invoice_select_client"
	StepInvoiceChooseItem      Step = "invoice_choose_item"
	StepInvoiceDescription     Step = "invoice_description"
	StepInvoiceQuantity        Step = "invoice_quantity"
	StepInvoiceUnitPrice       Step = "invoice_unit_price"
	StepInvoiceVATRate         Step = "invoice_vat_rate"
	StepInvoiceReview          Step = "invoice_review"
	StepInvoiceAwaitingPayment Step = "invoice_awaiting_payment"
)

// SetupDraft accumulates the /setup wizard answers.
type SetupDraft struct {
	CompanyName string
	RegNumber   string
	VATNumber   string
	Address     string
	City        string
	ZipCode     string
	Phone       string
	Email       string
	BankName    string
	IBAN        string
	SWIFT       string
}

// ClientDraft accumulates client fields for add or edit. When the add
// sub-flow was spawned from the invoice builder, ResumeInvoice carries the
// suspended invoice draft so the builder can continue with the new client.
type ClientDraft struct {
	ClientID      int64 // 0 when adding
	Editing       bool
	Name          string
	AddressLine1  string
	AddressLine2  string
	Country       string
	RegNumber     string
	VATNumber     string
	ResumeInvoice *InvoiceDraft
}

// ProductDraft accumulates product fields for add or edit.
type ProductDraft struct {
	ProductID      int64 // 0 when adding
	Editing        bool
	Name           string
	Description    string
	DefaultPrice   *decimal.Decimal
	DefaultVATRate *int
}

// InvoiceDraft is the in-memory invoice under construction. Lines keeps
// insertion order; Current is the scratch buffer for the line being entered
// and is only appended to Lines once every field validated. PayloadToken
// ties the draft to the Stars invoice sent for it.
type InvoiceDraft struct {
	ClientID     int64
	Lines        []domain.LineItem
	Current      *domain.LineItem
	PayloadToken string

	// CurrentFromProduct marks a scratch line pre-filled from a saved
	// product, whose answered defaults skip their questions.
	CurrentFromProduct bool
}

// CommitCurrent derives the VAT-inclusive line total, appends the scratch
// line to Lines and clears the buffer. The caller must have validated all
// fields first.
func (d *InvoiceDraft) CommitCurrent(lineTotal decimal.Decimal) domain.LineItem {
	line := *d.Current
	line.LineTotal = lineTotal
	d.Lines = append(d.Lines, line)
	d.Current = nil
	return line
}

// State pairs a flow with its step and exactly one draft. The draft pointer
// matching Flow is non-nil; the rest are nil.
type State struct {
	Flow    Flow
	Step    Step
	Setup   *SetupDraft
	Client  *ClientDraft
	Product *ProductDraft
	Invoice *InvoiceDraft
}
