package order

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ms-restaurant/internal/models"
)

var deliveryKeywords = []string{"delivery", "yetkaz", "dostav", "достав"}

// ServiceModeDelivery is the POS service mode of delivered orders.
const ServiceModeDelivery = 3

// IsDeliveryFee matches delivery fee titles in any of the supported languages.
func IsDeliveryFee(title string) bool {
	normalized := strings.ToLower(strings.TrimSpace(title))
	for _, keyword := range deliveryKeywords {
		if strings.Contains(normalized, keyword) {
			return true
		}
	}
	return false
}

// SplitDeliveryFee removes delivery fees from fees and returns the first one's price.
func SplitDeliveryFee(fees []models.Fee) ([]models.Fee, *float64) {
	var delivery *float64
	rest := make([]models.Fee, 0, len(fees))
	for _, fee := range fees {
		if !IsDeliveryFee(fee.Title) {
			rest = append(rest, fee)
			continue
		}
		if delivery == nil {
			price := fee.Price
			delivery = &price
		}
	}
	return rest, delivery
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BuildFeesComment appends "Fees: title: price, ..." unless the comment already has one.
func BuildFeesComment(base string, fees []models.Fee) string {
	if len(fees) == 0 {
		return base
	}
	parts := make([]string, 0, len(fees))
	for _, fee := range fees {
		parts = append(parts, fmt.Sprintf("%s: %s", fee.Title, formatAmount(fee.Price)))
	}
	suffix := "Fees: " + strings.Join(parts, ", ")
	switch {
	case strings.TrimSpace(base) == "":
		return suffix
	case strings.Contains(base, "Fees:"):
		return base
	}
	return base + " | " + suffix
}

func isUzbek(lang string) bool {
	return strings.HasPrefix(lang, "uz")
}

func bonusSuffix(lang string, bonus float64) string {
	if isUzbek(lang) {
		return "Bonuslar ishlatildi: " + formatAmount(bonus)
	}
	return "Использовано бонусов: " + formatAmount(bonus)
}

func paidSuffix(lang string) string {
	if isUzbek(lang) {
		return "Karta bilan to'langan"
	}
	return "Оплачено картой"
}

// appendPart joins comment parts with " | ", skipping empty ones.
func appendPart(base, part string) string {
	switch {
	case part == "":
		return base
	case base == "":
		return part
	}
	return base + " | " + part
}

// OrderTotal sums items, fees and delivery.
func OrderTotal(items []models.OrderItem, fees []models.Fee, delivery *float64) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Price * item.Qty
	}
	for _, fee := range fees {
		total += fee.Price
	}
	if delivery != nil {
		total += *delivery
	}
	return total
}

// BonusDelta is the signed POS bonus change for consuming bonus points.
func BonusDelta(bonus float64) int64 {
	return -int64(math.Round(bonus))
}
