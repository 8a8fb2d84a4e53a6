package checkout

import (
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/payment"
)

// AddressMapping routes one cart product to a destination address in a
// multi-address checkout.
type AddressMapping struct {
	ProductID string `json:"productId"`
	AddressID string `json:"addressId"`
}

// Request is everything the settlement engine needs for one checkout call.
// The user id comes from the authenticated session, resolved upstream.
type Request struct {
	UserID          string           `json:"-"`
	IdempotencyKey  string           `json:"-"`
	MultiAddress    bool             `json:"multiAddress"`
	AddressID       string           `json:"addressId,omitempty"`
	AddressMappings []AddressMapping `json:"addressMappings,omitempty"`
	PaymentType     payment.Type     `json:"paymentType"`
	PaymentMethodID string           `json:"paymentMethodId,omitempty"`
	VoucherCode     string           `json:"voucherCode,omitempty"`
	UsePoints       bool             `json:"usePoints"`
	IsGift          bool             `json:"isGift"`
	GiftMessage     string           `json:"giftMessage,omitempty"`
	GiftWrapID      string           `json:"giftWrapOptionId,omitempty"`
}

// Response is the settlement summary returned on success.
type Response struct {
	OrdersCreated      int      `json:"ordersCreated"`
	GroupTransactionID string   `json:"groupTransactionId,omitempty"`
	OrderIDs           []string `json:"orderIds"`
	GrandTotal         float64  `json:"grandTotal"`
	PointsEarned       int64    `json:"pointsEarned"`
}
