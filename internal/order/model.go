package order

import (
	"time"

	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/address"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/payment"
)

type Item struct {
	ID          string            `json:"itemId"`
	ProductID   string            `json:"productId"`
	ProductName string            `json:"productName"`
	UnitPrice   float64           `json:"unitPrice"`
	Quantity    int               `json:"quantity"`
	Options     map[string]string `json:"options,omitempty"`
}

// LineTotal is the charge for this line.
func (it Item) LineTotal() float64 {
	return it.UnitPrice * float64(it.Quantity)
}

// AddressSnapshot is the shipping destination as it was at settlement time.
// It is stored on the order as a value, not a reference, so later edits to
// the address record never change order history.
type AddressSnapshot struct {
	AddressID  string `json:"addressId"`
	Recipient  string `json:"recipient"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// SnapshotAddress copies an address into its order-time snapshot form.
func SnapshotAddress(a address.Address) AddressSnapshot {
	return AddressSnapshot{
		AddressID:  a.ID,
		Recipient:  a.Recipient,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

// PaymentSnapshot mirrors the stored instrument at settlement time.
type PaymentSnapshot struct {
	MethodID string `json:"paymentMethodId"`
	Kind     string `json:"kind"`
	Brand    string `json:"brand,omitempty"`
	Last4    string `json:"last4,omitempty"`
}

// SnapshotPayment copies a payment method into its snapshot form.
func SnapshotPayment(m payment.Method) *PaymentSnapshot {
	return &PaymentSnapshot{
		MethodID: m.ID,
		Kind:     m.Kind,
		Brand:    m.Brand,
		Last4:    m.Last4,
	}
}

type Order struct {
	ID                 string           `json:"orderId"`
	UserID             string           `json:"userId"`
	GroupTransactionID string           `json:"groupTransactionId,omitempty"`
	Status             Status           `json:"status"`
	PaymentStatus      PaymentStatus    `json:"paymentStatus"`
	PaymentType        payment.Type     `json:"paymentType"`
	SubTotal           float64          `json:"subTotal"`
	MemberDiscount     float64          `json:"memberDiscount"`
	VoucherDiscount    float64          `json:"voucherDiscount"`
	PointsDiscount     float64          `json:"pointsDiscount"`
	PointsRedeemed     int64            `json:"pointsRedeemed"`
	GiftWrapPrice      float64          `json:"giftWrapPrice"`
	TotalAmount        float64          `json:"totalAmount"`
	IsGift             bool             `json:"isGift"`
	GiftMessage        string           `json:"giftMessage,omitempty"`
	Shipping           AddressSnapshot  `json:"shipping"`
	Payment            *PaymentSnapshot `json:"payment,omitempty"`
	Items              []Item           `json:"items"`
	CreatedAt          time.Time        `json:"createdAt"`
}
