package order

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"ms-restaurant/internal/models"
)

// ItemInput is one requested line. Price 0 means the catalog price applies.
type ItemInput struct {
	ProductID int64
	// ValidID is false when productId was not numeric.
	ValidID bool
	Qty     float64
	Price   float64
}

// CreateInput is the canonical order creation request.
type CreateInput struct {
	RestaurantID    *int64
	PosterToken     string
	SpotID          *int64
	Items           []ItemInput
	Comment         string
	DeliveryPrice   *float64
	ServiceMode     *int
	Fees            []models.Fee
	PaymentMethod   string
	CardNumber      string
	ExpireDate      string
	TransactionData string
	Lang            string
	BonusUsed       float64
	DeliveryAddress string
}

// Normalize maps a decoded request body (json.Number for numbers) onto CreateInput.
// It is the only place that knows the field synonyms clients send.
func Normalize(body map[string]any) CreateInput {
	in := CreateInput{
		PosterToken:     strings.TrimSpace(firstString(body, "posterToken", "tokenPoster", "token")),
		Comment:         stringField(body, "comment"),
		PaymentMethod:   strings.ToLower(strings.TrimSpace(stringField(body, "paymentMethod"))),
		CardNumber:      strings.TrimSpace(stringField(body, "cardNumber")),
		ExpireDate:      strings.TrimSpace(stringField(body, "expireDate")),
		TransactionData: stringField(body, "transactionData"),
		Lang:            strings.ToLower(strings.TrimSpace(firstString(body, "lang", "locale"))),
		DeliveryAddress: strings.TrimSpace(firstString(body, "deliveryAddress", "delivery_address", "address")),
	}

	if id, ok := looseNumber(body["restaurantId"]); ok {
		v := int64(id)
		in.RestaurantID = &v
	}
	if spot, ok := strictNumber(body["spotId"]); ok {
		v := int64(spot)
		in.SpotID = &v
	}
	if price, ok := strictNumber(body["deliveryPrice"]); ok {
		in.DeliveryPrice = &price
	}
	if mode, ok := strictNumber(body["serviceMode"]); ok {
		v := int(mode)
		in.ServiceMode = &v
	}

	if list, ok := body["items"].([]any); ok {
		for _, raw := range list {
			record, _ := raw.(map[string]any)
			item := ItemInput{}
			if id, ok := looseNumber(record["productId"]); ok && id == math.Trunc(id) {
				item.ProductID, item.ValidID = int64(id), true
			}
			item.Qty, _ = looseNumber(record["qty"])
			if price, ok := strictNumber(record["price"]); ok {
				item.Price = price
			}
			in.Items = append(in.Items, item)
		}
	}

	if list, ok := body["fees"].([]any); ok {
		for _, raw := range list {
			record, _ := raw.(map[string]any)
			title := strings.TrimSpace(stringField(record, "title"))
			price := 0.0
			if record["price"] != nil {
				var ok bool
				if price, ok = looseNumber(record["price"]); !ok {
					continue
				}
			}
			if title == "" {
				continue
			}
			in.Fees = append(in.Fees, models.Fee{Title: title, Price: price})
		}
	}

	in.BonusUsed = bonusField(body)
	return in
}

// bonusField takes the first present synonym; a non-numeric or non-positive value means no bonus.
func bonusField(body map[string]any) float64 {
	var candidate any
	bonus := body["bonus"]
	bonusObject, _ := bonus.(map[string]any)
	candidates := []any{body["bonusUsed"], body["bonus_used"]}
	if bonusObject == nil {
		candidates = append(candidates, bonus)
	}
	candidates = append(candidates, body["bonusAmount"], body["bonus_amount"])
	if bonusObject != nil {
		candidates = append(candidates, bonusObject["used"], bonusObject["amount"])
	}
	for _, c := range candidates {
		if c != nil {
			candidate = c
			break
		}
	}
	v, ok := looseNumber(candidate)
	if !ok || v <= 0 {
		return 0
	}
	return v
}

func stringField(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return s
}

// firstString returns the first present string synonym, or "".
func firstString(body map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := body[key]; ok && v != nil {
			s, _ := v.(string)
			return s
		}
	}
	return ""
}

// strictNumber only accepts JSON numbers.
func strictNumber(v any) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// looseNumber also accepts numeric strings.
func looseNumber(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return strictNumber(v)
}
