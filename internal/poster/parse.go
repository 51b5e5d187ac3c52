package poster

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ImageHost prefixes relative POS image paths.
const ImageHost = "https://joinposter.com"

var (
	errorKeys      = []string{"error", "error_code", "error_message", "message"}
	imageKeys      = []string{"url", "original", "origin", "large", "big", "medium", "small", "thumbnail", "thumb"}
	imageFieldKeys = []string{"photo", "photo_original", "photo_origin", "photo_url", "image", "picture", "photos"}
)

func asRecord(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// scalarString renders JSON strings and numbers; anything else is "".
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// toNumber accepts JSON numbers and numeric strings.
func toNumber(v any) (float64, bool) {
	var f float64
	var err error
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case float64:
		f = t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err = strconv.ParseFloat(s, 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseError returns the provider error message of a reply, or "" when it carries none.
// The first present key of error, error_code, error_message, message decides:
// strings are trimmed, numbers are rendered, objects yield their "message".
func ParseError(data any) string {
	record, ok := asRecord(data)
	if !ok {
		return ""
	}
	for _, key := range errorKeys {
		value, present := record[key]
		if !present || value == nil {
			continue
		}
		switch t := value.(type) {
		case string:
			return strings.TrimSpace(t)
		case json.Number, float64:
			return scalarString(t)
		case map[string]any:
			if msg, ok := t["message"].(string); ok {
				return strings.TrimSpace(msg)
			}
		}
		return ""
	}
	return ""
}

// ExtractClientID finds the POS client id in a clients.create reply.
// Order: client_id, clientId, response.client_id, response.id, scalar response.
func ExtractClientID(data any) string {
	record, ok := asRecord(data)
	if !ok {
		return ""
	}
	candidates := []any{record["client_id"], record["clientId"]}
	if response, ok := asRecord(record["response"]); ok {
		candidates = append(candidates, response["client_id"], response["id"])
	} else {
		candidates = append(candidates, record["response"])
	}
	for _, candidate := range candidates {
		if id := scalarString(candidate); id != "" {
			return id
		}
	}
	return ""
}

// IncomingMeta is what an incoming order reply says about the POS-side order.
type IncomingMeta struct {
	IncomingID string
	Status     *int64
	UpdatedAt  string
}

func (m IncomingMeta) Empty() bool {
	return m.IncomingID == "" && m.Status == nil && m.UpdatedAt == ""
}

// ParseIncomingMeta reads response.incoming_order_id, response.status and response.updated_at.
func ParseIncomingMeta(data any) IncomingMeta {
	var meta IncomingMeta
	record, ok := asRecord(data)
	if !ok {
		return meta
	}
	response, ok := asRecord(record["response"])
	if !ok {
		return meta
	}
	meta.IncomingID = scalarString(response["incoming_order_id"])
	switch status := response["status"].(type) {
	case json.Number, float64:
		if f, ok := toNumber(status); ok {
			v := int64(f)
			meta.Status = &v
		}
	}
	if updatedAt, ok := response["updated_at"].(string); ok {
		meta.UpdatedAt = updatedAt
	}
	return meta
}

// ExtractArray returns the list of a catalog reply: the body itself, response,
// response[key] or key, whichever is an array first.
func ExtractArray(data any, key string) []any {
	if list, ok := data.([]any); ok {
		return list
	}
	record, ok := asRecord(data)
	if !ok {
		return nil
	}
	if list, ok := record["response"].([]any); ok {
		return list
	}
	if response, ok := asRecord(record["response"]); ok {
		if list, ok := response[key].([]any); ok {
			return list
		}
	}
	if list, ok := record[key].([]any); ok {
		return list
	}
	return nil
}

// NormalizeImageURL turns POS relative paths into absolute URLs.
func NormalizeImageURL(value string) string {
	trimmed := strings.TrimSpace(value)
	switch {
	case trimmed == "":
		return ""
	case strings.HasPrefix(trimmed, "http://"), strings.HasPrefix(trimmed, "https://"):
		return trimmed
	case strings.HasPrefix(trimmed, "/"):
		return ImageHost + trimmed
	case strings.HasPrefix(trimmed, "upload/"), strings.Contains(trimmed, "/upload/"):
		return ImageHost + "/" + strings.TrimLeft(trimmed, "/")
	}
	return trimmed
}

// PickImage resolves a string, an array of candidates or an object keyed by size.
func PickImage(value any) string {
	switch t := value.(type) {
	case string:
		return NormalizeImageURL(t)
	case []any:
		for _, item := range t {
			if url := PickImage(item); url != "" {
				return url
			}
		}
	case map[string]any:
		for _, key := range imageKeys {
			if url := PickImage(t[key]); url != "" {
				return url
			}
		}
	}
	return ""
}

// EntityImage picks the first usable image among the photo fields of a category or product.
func EntityImage(entity map[string]any) string {
	for _, key := range imageFieldKeys {
		if url := PickImage(entity[key]); url != "" {
			return url
		}
	}
	return ""
}

// minorToMajor divides POS minor units by 100.
func minorToMajor(v any) (float64, bool) {
	f, ok := toNumber(v)
	if !ok {
		return 0, false
	}
	return f / 100, true
}

func spotEntryPrice(entries []any, spotID string, keys ...string) (float64, bool) {
	for _, entry := range entries {
		record, ok := asRecord(entry)
		if !ok {
			continue
		}
		entrySpot := ""
		for _, key := range keys {
			if s := scalarString(record[key]); s != "" {
				entrySpot = s
				break
			}
		}
		if spotID != "" && entrySpot != spotID {
			continue
		}
		price := record["price"]
		if price == nil {
			price = record["product_price"]
		}
		if p, ok := minorToMajor(price); ok {
			return p, true
		}
	}
	return 0, false
}

// ProductPrice resolves a product price in major units: price, product_price,
// then per-spot maps or lists (price_by_spot, prices, price), then spots. Missing is 0.
func ProductPrice(product map[string]any, spotID string) float64 {
	if p, ok := minorToMajor(product["price"]); ok {
		return p
	}
	if p, ok := minorToMajor(product["product_price"]); ok {
		return p
	}
	for _, key := range []string{"price_by_spot", "prices", "price"} {
		switch candidate := product[key].(type) {
		case map[string]any:
			if p, ok := minorToMajor(candidate[spotID]); ok {
				return p
			}
		case []any:
			if p, ok := spotEntryPrice(candidate, spotID, "spot_id", "spotId", "id"); ok {
				return p
			}
		}
	}
	if spots, ok := product["spots"].([]any); ok {
		if p, ok := spotEntryPrice(spots, spotID, "spot_id", "spotId"); ok {
			return p
		}
	}
	return 0
}

// ClientBonus reads response[0].bonus of a clients.getClient reply, in major units.
func ClientBonus(data any) float64 {
	record, ok := asRecord(data)
	if !ok {
		return 0
	}
	list, ok := record["response"].([]any)
	if !ok || len(list) == 0 {
		return 0
	}
	first, ok := asRecord(list[0])
	if !ok {
		return 0
	}
	if bonus, ok := minorToMajor(first["bonus"]); ok {
		return bonus
	}
	return 0
}

// FirstClientID reads response[0].client_id of a clients.getClients reply.
func FirstClientID(data any) string {
	record, ok := asRecord(data)
	if !ok {
		return ""
	}
	list, ok := record["response"].([]any)
	if !ok || len(list) == 0 {
		return ""
	}
	first, ok := asRecord(list[0])
	if !ok {
		return ""
	}
	return scalarString(first["client_id"])
}

// BonusBalance reads the scalar response of clients.changeClientBonus.
func BonusBalance(data any) float64 {
	record, ok := asRecord(data)
	if !ok {
		return 0
	}
	if v, ok := toNumber(record["response"]); ok {
		return v
	}
	return 0
}
