package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/mkalvans/invoicebot/internal/format"
)

const helpText = `Commands:
/invoice - create a new invoice
/invoices - list recent invoices
/clients - manage clients
/addclient - add a client
/products - manage products
/addproduct - add a product
/setup - set up your company profile
/profile - show your company profile
/cancel - cancel the current operation
/paysupport - payment support
/refund - refund your last payment`

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	if !user.HasCompany() {
		h.reply(ctx, b, update,
			"Welcome! I generate PDF invoices for you.\n\n"+
				"Start with /setup to enter your company details, then /invoice to create your first invoice.")
		return
	}
	h.reply(ctx, b, update,
		fmt.Sprintf("Welcome back, %s!\n\nUse /invoice to create an invoice or /help to see all commands.", user.CompanyName))
}

func (h *Handler) handleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.reply(ctx, b, update, helpText)
}

func (h *Handler) handleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	if h.deps.Conv.Get(user.TelegramID) == nil {
		h.reply(ctx, b, update, "Nothing to cancel.")
		return
	}
	h.deps.Conv.Clear(user.TelegramID)
	h.reply(ctx, b, update, "Cancelled.")
}

func (h *Handler) handleProfile(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	var sb strings.Builder
	sb.WriteString("Your company profile:\n\n")
	fmt.Fprintf(&sb, "Company: %s\n", format.OrNotSet(user.CompanyName))
	fmt.Fprintf(&sb, "Reg number: %s\n", format.OrNotSet(user.RegNumber))
	fmt.Fprintf(&sb, "VAT number: %s\n", format.OrNotSet(user.VATNumber))
	fmt.Fprintf(&sb, "Address: %s\n", format.OrNotSet(user.Address))
	fmt.Fprintf(&sb, "City: %s\n", format.OrNotSet(user.City))
	fmt.Fprintf(&sb, "Zip code: %s\n", format.OrNotSet(user.ZipCode))
	fmt.Fprintf(&sb, "Phone: %s\n", format.OrNotSet(user.Phone))
	fmt.Fprintf(&sb, "E-mail: %s\n", format.OrNotSet(user.Email))
	fmt.Fprintf(&sb, "Bank: %s\n", format.OrNotSet(user.BankName))
	fmt.Fprintf(&sb, "IBAN: %s\n", format.OrNotSet(user.IBAN))
	fmt.Fprintf(&sb, "SWIFT: %s\n", format.OrNotSet(user.SWIFT))
	sb.WriteString("\nUse /setup to update it.")

	h.reply(ctx, b, update, sb.String())
}

func (h *Handler) handlePaySupport(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.reply(ctx, b, update,
		"PDF generation costs Telegram Stars. If something went wrong with your payment, "+
			"use /refund within 24 hours to get your Stars back. "+
			"Refunds are processed automatically for the most recent payment.")
}
