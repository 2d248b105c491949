package handler

import (
	"testing"

	"github.com/mkalvans/invoicebot/internal/conversation"
)

func TestSetupFieldsCoverAllSteps(t *testing.T) {
	wantOrder := []conversation.Step{
		conversation.StepSetupCompanyName,
		conversation.StepSetupRegNumber,
		conversation.StepSetupVATNumber,
		conversation.StepSetupAddress,
		conversation.StepSetupCity,
		conversation.StepSetupZipCode,
		conversation.StepSetupPhone,
		conversation.StepSetupEmail,
		conversation.StepSetupBankName,
		conversation.StepSetupIBAN,
		conversation.StepSetupSWIFT,
	}

	if len(setupFields) != len(wantOrder) {
		t.Fatalf("setupFields has %d entries, want %d", len(setupFields), len(wantOrder))
	}
	for i, step := range wantOrder {
		if setupFields[i].step != step {
			t.Errorf("field %d = %s, want %s", i, setupFields[i].step, step)
		}
	}
}

func TestSetupFieldIndex(t *testing.T) {
	if idx := setupFieldIndex(conversation.StepSetupCompanyName); idx != 0 {
		t.Errorf("company name index = %d, want 0", idx)
	}
	if idx := setupFieldIndex(conversation.StepSetupSWIFT); idx != len(setupFields)-1 {
		t.Errorf("swift index = %d, want last", idx)
	}
	if idx := setupFieldIndex(conversation.StepInvoiceReview); idx != -1 {
		t.Errorf("foreign step index = %d, want -1", idx)
	}
}

func TestSetupFieldValidators(t *testing.T) {
	byStep := make(map[conversation.Step]setupField)
	for _, f := range setupFields {
		byStep[f.step] = f
	}

	if _, ok := byStep[conversation.StepSetupEmail].check("not-an-email"); ok {
		t.Error("email field accepted invalid input")
	}
	if _, ok := byStep[conversation.StepSetupPhone].check("hello"); ok {
		t.Error("phone field accepted invalid input")
	}
	normalized, ok := byStep[conversation.StepSetupIBAN].check("lv80 bank 0000 4351 9500 1")
	if !ok {
		t.Fatal("iban field rejected a valid IBAN")
	}
	if normalized != "LV80BANK0000435195001" {
		t.Errorf("iban normalized to %q", normalized)
	}
	if _, ok := byStep[conversation.StepSetupCompanyName].check(""); ok {
		t.Error("required field accepted empty input")
	}
}

func TestClientFieldsOrder(t *testing.T) {
	wantOrder := []conversation.Step{
		conversation.StepClientName,
		conversation.StepClientAddress1,
		conversation.StepClientAddress2,
		conversation.StepClientCountry,
		conversation.StepClientReg,
		conversation.StepClientVAT,
	}

	if len(clientFields) != len(wantOrder) {
		t.Fatalf("clientFields has %d entries, want %d", len(clientFields), len(wantOrder))
	}
	for i, step := range wantOrder {
		if clientFields[i].step != step {
			t.Errorf("field %d = %s, want %s", i, clientFields[i].step, step)
		}
	}
	if clientFields[0].optional {
		t.Error("client name must be required")
	}
	for _, f := range clientFields[1:] {
		if !f.optional {
			t.Errorf("field %s must be optional", f.step)
		}
	}
}

func TestClientDraftAssignment(t *testing.T) {
	d := &conversation.ClientDraft{}
	values := []string{"ACME", "1 Main St", "Suite 5", "Latvia", "4000123", "LV4000123"}
	for i, f := range clientFields {
		f.assign(d, values[i])
	}

	if d.Name != "ACME" || d.AddressLine1 != "1 Main St" || d.AddressLine2 != "Suite 5" ||
		d.Country != "Latvia" || d.RegNumber != "4000123" || d.VATNumber != "LV4000123" {
		t.Errorf("draft = %+v", d)
	}
}
