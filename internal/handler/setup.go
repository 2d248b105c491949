package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/mkalvans/invoicebot/internal/conversation"
	"github.com/mkalvans/invoicebot/internal/validate"
)

// setupField describes one question of the setup wizard. Fields with
// optional set accept "skip" and store an empty value. check both validates
// and normalizes.
type setupField struct {
	step     conversation.Step
	prompt   string
	optional bool
	check    func(string) (string, bool)
	assign   func(*conversation.SetupDraft, string)
}

func anyText(s string) (string, bool)    { return s, validate.Required(s) }
func validEmail(s string) (string, bool) { return s, validate.Email(s) }
func validPhone(s string) (string, bool) { return s, validate.Phone(s) }
func validIBAN(s string) (string, bool)  { return validate.NormalizeIBAN(s), validate.IBAN(s) }

var setupFields = []setupField{
	{conversation.StepSetupCompanyName, "What is your company name?", false, anyText,
		func(d *conversation.SetupDraft, v string) { d.CompanyName = v }},
	{conversation.StepSetupRegNumber, "What is your company registration number?", false, anyText,
		func(d *conversation.SetupDraft, v string) { d.RegNumber = v }},
	{conversation.StepSetupVATNumber, "What is your VAT number? (or \"skip\")", true, anyText,
		func(d *conversation.SetupDraft, v string) { d.VATNumber = v }},
	{conversation.StepSetupAddress, "What is your street address?", false, anyText,
		func(d *conversation.SetupDraft, v string) { d.Address = v }},
	{conversation.StepSetupCity, "Which city?", false, anyText,
		func(d *conversation.SetupDraft, v string) { d.City = v }},
	{conversation.StepSetupZipCode, "Zip code?", false, anyText,
		func(d *conversation.SetupDraft, v string) { d.ZipCode = v }},
	{conversation.StepSetupPhone, "Contact phone number?", false, validPhone,
		func(d *conversation.SetupDraft, v string) { d.Phone = v }},
	{conversation.StepSetupEmail, "Contact e-mail?", false, validEmail,
		func(d *conversation.SetupDraft, v string) { d.Email = v }},
	{conversation.StepSetupBankName, "Bank name?", false, anyText,
		func(d *conversation.SetupDraft, v string) { d.BankName = v }},
	{conversation.StepSetupIBAN, "IBAN?", false, validIBAN,
		func(d *conversation.SetupDraft, v string) { d.IBAN = v }},
	{conversation.StepSetupSWIFT, "SWIFT/BIC? (or \"skip\")", true, anyText,
		func(d *conversation.SetupDraft, v string) { d.SWIFT = v }},
}

func setupFieldIndex(step conversation.Step) int {
	for i, f := range setupFields {
		if f.step == step {
			return i
		}
	}
	return -1
}

func (h *Handler) handleSetup(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	h.deps.Conv.Set(user.TelegramID, &conversation.State{
		Flow:  conversation.FlowSetup,
		Step:  setupFields[0].step,
		Setup: &conversation.SetupDraft{},
	})
	h.reply(ctx, b, update, "Let's set up your company profile. You can /cancel at any time.\n\n"+setupFields[0].prompt)
}

// setupText consumes one wizard answer and advances to the next question,
// saving the profile after the last one.
func (h *Handler) setupText(ctx context.Context, b *bot.Bot, update *models.Update, state *conversation.State, input string) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	idx := setupFieldIndex(state.Step)
	if idx < 0 {
		h.deps.Conv.Clear(user.TelegramID)
		return
	}
	field := setupFields[idx]

	if field.optional && validate.IsSkip(input) {
		field.assign(state.Setup, "")
	} else {
		value, valid := field.check(validate.Sanitize(input))
		if !valid {
			h.reply(ctx, b, update, "That doesn't look right. "+field.prompt)
			return
		}
		field.assign(state.Setup, value)
	}

	if idx+1 < len(setupFields) {
		state.Step = setupFields[idx+1].step
		h.deps.Conv.Set(user.TelegramID, state)
		h.reply(ctx, b, update, setupFields[idx+1].prompt)
		return
	}

	d := state.Setup
	user.CompanyName = d.CompanyName
	user.RegNumber = d.RegNumber
	user.VATNumber = d.VATNumber
	user.Address = d.Address
	user.City = d.City
	user.ZipCode = d.ZipCode
	user.Phone = d.Phone
	user.Email = d.Email
	user.BankName = d.BankName
	user.IBAN = d.IBAN
	user.SWIFT = d.SWIFT

	if err := h.deps.Users.SaveProfile(ctx, user); err != nil {
		h.deps.Ops.Error(ctx, user.ID, "save profile", err)
		h.reply(ctx, b, update, "Could not save your profile, please try again.")
		return
	}

	h.deps.Conv.Clear(user.TelegramID)
	h.reply(ctx, b, update, "Your company profile is saved. Use /invoice to create your first invoice.")
}
