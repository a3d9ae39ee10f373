package telegram

import (
	"fmt"
	"strings"

	"github.com/GioMach/rentwatch/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const HelpText = `Commands:
/start - register and begin your trial
/services - choose which services to follow
/status - show your subscription status
/subscribe - buy a permanent subscription
/help - show this help

Add me to a group or channel and I will watch its messages for rental
and service offers, then forward matches to you here.
`

const serviceCallbackPrefix = "svc:"

// ServiceCallbackData encodes a service toggle button payload.
func ServiceCallbackData(tag domain.ServiceTag) string {
	return serviceCallbackPrefix + string(tag)
}

// ParseServiceCallback decodes a toggle payload back into its tag.
func ParseServiceCallback(data string) (domain.ServiceTag, bool) {
	if !strings.HasPrefix(data, serviceCallbackPrefix) {
		return "", false
	}
	tag := strings.TrimPrefix(data, serviceCallbackPrefix)
	if tag == "" {
		return "", false
	}
	return domain.ServiceTag(tag), true
}

func serviceKeyboard(catalog domain.Catalog, user *domain.User) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(catalog))
	for _, tag := range catalog.Tags() {
		label := string(tag)
		if user.HasService(tag) {
			label = "✅ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, ServiceCallbackData(tag)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func formatStatus(user *domain.User) string {
	var builder strings.Builder
	switch {
	case user.Permanent:
		builder.WriteString("Subscription: permanent.\n")
	case user.Active && user.ExpiresAt != nil:
		builder.WriteString(fmt.Sprintf("Subscription active until %s.\n", user.ExpiresAt.Format("2006-01-02 15:04 MST")))
	default:
		builder.WriteString("Subscription expired. Enable a service or /subscribe to continue.\n")
	}

	if len(user.Services) == 0 {
		builder.WriteString("No services enabled. Use /services to pick some.")
		return builder.String()
	}
	builder.WriteString("Enabled services:\n")
	for _, tag := range user.Services {
		builder.WriteString(fmt.Sprintf("- %s\n", tag))
	}
	return builder.String()
}
