package order

import (
	"testing"

	"ms-restaurant/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestIsDeliveryFee(t *testing.T) {
	for _, title := range []string{"Доставка", "  DELIVERY fee", "Yetkazib berish", "dostavka", "Стоимость доставки"} {
		assert.True(t, IsDeliveryFee(title), title)
	}
	for _, title := range []string{"Пакет", "Service", ""} {
		assert.False(t, IsDeliveryFee(title), title)
	}
}

func TestSplitDeliveryFee(t *testing.T) {
	rest, delivery := SplitDeliveryFee([]models.Fee{
		{Title: "Доставка", Price: 15000},
		{Title: "Пакет", Price: 2000},
		{Title: "Delivery night", Price: 30000},
	})
	assert.Equal(t, []models.Fee{{Title: "Пакет", Price: 2000}}, rest)
	if assert.NotNil(t, delivery) {
		assert.Equal(t, 15000.0, *delivery)
	}

	rest, delivery = SplitDeliveryFee(nil)
	assert.Empty(t, rest)
	assert.Nil(t, delivery)
}

func TestBuildFeesCommentIsIdempotent(t *testing.T) {
	fees := []models.Fee{{Title: "Пакет", Price: 2000}, {Title: "Сервис", Price: 1500.5}}

	once := BuildFeesComment("no onions", fees)
	assert.Equal(t, "no onions | Fees: Пакет: 2000, Сервис: 1500.5", once)
	assert.Equal(t, once, BuildFeesComment(once, fees))

	assert.Equal(t, "Fees: Пакет: 2000, Сервис: 1500.5", BuildFeesComment("  ", fees))
	assert.Equal(t, "plain", BuildFeesComment("plain", nil))
}

func TestCommentSuffixes(t *testing.T) {
	assert.Equal(t, "Использовано бонусов: 10", bonusSuffix("ru", 10))
	assert.Equal(t, "Bonuslar ishlatildi: 10", bonusSuffix("uz-cyrl", 10))
	assert.Equal(t, "Оплачено картой", paidSuffix(""))
	assert.Equal(t, "Karta bilan to'langan", paidSuffix("uz"))
	assert.Equal(t, "a | b", appendPart("a", "b"))
	assert.Equal(t, "b", appendPart("", "b"))
	assert.Equal(t, "a", appendPart("a", ""))
}

func TestOrderTotalAndBonusDelta(t *testing.T) {
	delivery := 15000.0
	total := OrderTotal(
		[]models.OrderItem{{Qty: 2, Price: 25000}, {Qty: 0.5, Price: 1000}},
		[]models.Fee{{Title: "Пакет", Price: 2000}},
		&delivery,
	)
	assert.Equal(t, 67500.0, total)
	assert.Equal(t, 67000.0, OrderTotal([]models.OrderItem{{Qty: 2, Price: 25000}}, []models.Fee{{Price: 2000}}, &delivery))
	assert.Equal(t, int64(-31), BonusDelta(30.5))
	assert.Equal(t, int64(0), BonusDelta(0.4))
}
