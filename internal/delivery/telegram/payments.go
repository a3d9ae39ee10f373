package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

// Payments holds the invoice parameters for the permanent-subscription
// flow. With no provider token configured the flow is disabled and
// /subscribe explains that.
type Payments struct {
	providerToken string
	currency      string
	amount        int
	label         string
}

func NewPayments(providerToken, price, currency string) (*Payments, error) {
	if providerToken == "" {
		return &Payments{}, nil
	}

	value, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("invalid subscription price %q: %w", price, err)
	}
	if value.IsNegative() || value.IsZero() {
		return nil, fmt.Errorf("subscription price must be positive, got %q", price)
	}

	// Telegram invoices take amounts in the currency's minor units.
	amount := int(value.Shift(2).IntPart())
	return &Payments{
		providerToken: providerToken,
		currency:      currency,
		amount:        amount,
		label:         fmt.Sprintf("Permanent subscription (%s %s)", value.StringFixed(2), currency),
	}, nil
}

func (p *Payments) Enabled() bool {
	return p.providerToken != ""
}

func (p *Payments) Invoice(chatID int64) tgbotapi.InvoiceConfig {
	prices := []tgbotapi.LabeledPrice{{Label: p.label, Amount: p.amount}}
	return tgbotapi.NewInvoice(
		chatID,
		"RentWatch subscription",
		"Permanent access to rental and service notifications.",
		"rentwatch-permanent",
		p.providerToken,
		"subscribe",
		p.currency,
		prices,
	)
}
