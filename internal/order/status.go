package order

type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	// PaymentPaid is set at creation only when the final amount is zero,
	// e.g. fully covered by points. Otherwise capture happens downstream.
	PaymentPaid PaymentStatus = "paid"
)
