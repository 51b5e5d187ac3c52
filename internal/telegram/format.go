package telegram

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"ms-restaurant/internal/models"
)

// MessageLimit keeps messages under the Bot API cap of 4096 characters.
const MessageLimit = 3900

var (
	numericChatID = regexp.MustCompile(`^-?\d+$`)
	tMeLink       = regexp.MustCompile(`(?i)(?:https?://)?t\.me/(.+)$`)
)

// MaskToken keeps the first 6 and last 4 characters, or 2 and 2 for short tokens.
func MaskToken(value string) string {
	trimmed := strings.TrimSpace(value)
	runes := []rune(trimmed)
	switch {
	case len(runes) == 0:
		return ""
	case len(runes) <= 10:
		return string(runes[:2]) + "…" + string(runes[len(runes)-2:])
	}
	return string(runes[:6]) + "…" + string(runes[len(runes)-4:])
}

// NormalizeChatID accepts numeric ids, @usernames, bare usernames and t.me links.
func NormalizeChatID(value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return ""
	}
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	cleaned := strings.TrimRight(raw, "/")
	candidate := cleaned
	if m := tMeLink.FindStringSubmatch(cleaned); m != nil {
		candidate = m[1]
	}
	if numericChatID.MatchString(candidate) {
		return candidate
	}
	if strings.HasPrefix(candidate, "@") {
		return candidate
	}
	return "@" + candidate
}

// OrderNotice is what a new-order message shows.
type OrderNotice struct {
	OrderID         int64
	RestaurantID    int64
	RestaurantName  string
	Status          models.OrderStatus
	ClientPhone     string
	DeliveryAddress string
	Comment         string
	Items           []models.OrderItem
	Fees            []models.Fee
	DeliveryPrice   float64
	Total           *float64
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatOrderMessage renders the plain-text notice, cut to MessageLimit characters.
func FormatOrderMessage(n OrderNotice) string {
	lines := []string{fmt.Sprintf("New order #%d", n.OrderID)}
	if n.RestaurantName != "" {
		lines = append(lines, "Restaurant: "+n.RestaurantName)
	}
	if n.Status != "" {
		lines = append(lines, "Status: "+string(n.Status))
	}
	if n.ClientPhone != "" {
		lines = append(lines, "Phone: "+n.ClientPhone)
	}
	if n.DeliveryAddress != "" {
		lines = append(lines, "Address: "+n.DeliveryAddress)
	}
	if comment := strings.TrimSpace(n.Comment); comment != "" {
		lines = append(lines, "Comment: "+comment)
	}

	lines = append(lines, "", "Items:")
	for _, item := range n.Items {
		lines = append(lines, fmt.Sprintf("- %s × %s = %s", item.Name, formatAmount(item.Qty), formatAmount(item.Price*item.Qty)))
	}

	if len(n.Fees) > 0 || n.DeliveryPrice > 0 {
		lines = append(lines, "")
		if n.DeliveryPrice > 0 {
			lines = append(lines, "Delivery: "+formatAmount(n.DeliveryPrice))
		}
		for _, fee := range n.Fees {
			lines = append(lines, fmt.Sprintf("%s: %s", fee.Title, formatAmount(fee.Price)))
		}
	}
	if n.Total != nil {
		lines = append(lines, "", "Total: "+formatAmount(*n.Total))
	}

	message := strings.Join(lines, "\n")
	if runes := []rune(message); len(runes) > MessageLimit {
		message = string(runes[:MessageLimit])
	}
	return message
}
