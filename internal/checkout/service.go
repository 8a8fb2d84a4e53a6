package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/account"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/address"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/cart"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/catalog"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/dedup"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/events"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/order"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/payment"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/settings"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/voucher"
)

// Phase names the settlement stages, mostly for log lines.
type Phase string

const (
	PhaseValidating  Phase = "validating"
	PhasePricing     Phase = "pricing"
	PhaseDiscounting Phase = "discounting"
	PhasePersisting  Phase = "persisting"
	PhaseCommitting  Phase = "committing"
)

// Beginner matches *pgxpool.Pool's transaction entry point.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// EventPublisher emits post-commit events. May be nil when messaging is off.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, o *order.Order, meta events.EnvelopeMetadata) error
}

// Stores bundles the collaborators the settlement transaction touches.
type Stores struct {
	Carts     cart.Repository
	Catalog   catalog.Repository
	Accounts  account.Repository
	Addresses address.Repository
	Payments  payment.Repository
	Vouchers  voucher.Repository
	Orders    order.Repository
	Settings  settings.Repository
	Attempts  dedup.Repository
}

// Service turns a cart into persisted orders inside one transaction. Commit
// and rollback are the only exits: a caller seeing an error can assume
// nothing happened.
type Service struct {
	pool      Beginner
	stores    Stores
	publisher EventPublisher
	logger    *log.Logger
	timeout   time.Duration
	now       func() time.Time
}

func NewService(pool Beginner, stores Stores, publisher EventPublisher, logger *log.Logger) *Service {
	return &Service{
		pool:      pool,
		stores:    stores,
		publisher: publisher,
		logger:    logger,
		timeout:   10 * time.Second,
		now:       time.Now,
	}
}

// Checkout runs one settlement end to end.
func (s *Service) Checkout(ctx context.Context, req Request) (*Response, error) {
	if req.UserID == "" {
		return nil, E(KindUnauthenticated, "no resolvable user")
	}
	if !req.PaymentType.Valid() {
		return nil, E(KindInvalidPaymentType, "unknown payment type %q", req.PaymentType)
	}
	if req.PaymentType.RequiresInstrument() && req.PaymentMethodID == "" {
		return nil, E(KindInvalidPaymentMethod, "payment type %q requires a stored payment method", req.PaymentType)
	}

	if req.IdempotencyKey != "" && s.stores.Attempts != nil {
		raw, found, err := s.stores.Attempts.Find(ctx, req.UserID, req.IdempotencyKey)
		if err != nil {
			return nil, wrapE(KindPersistenceFailure, err, "look up checkout attempt")
		}
		if found {
			var resp Response
			if err := json.Unmarshal(raw, &resp); err != nil {
				return nil, wrapE(KindPersistenceFailure, err, "decode recorded attempt")
			}
			s.logger.Printf("checkout replayed for user=%s key=%s", req.UserID, req.IdempotencyKey)
			return &resp, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, wrapE(KindPersistenceFailure, err, "begin settlement")
	}
	// Rollback is a no-op after a successful commit.
	defer func() { _ = tx.Rollback(ctx) }()

	resp, settled, err := s.settle(ctx, tx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Printf("checkout %s: user=%s orders=%d total=%.2f", PhaseCommitting, req.UserID, resp.OrdersCreated, resp.GrandTotal)
	if err := tx.Commit(ctx); err != nil {
		return nil, wrapE(KindPersistenceFailure, err, "commit settlement")
	}

	s.publishOrders(ctx, settled)

	return resp, nil
}

// settle does all reads and writes inside tx. Any error returned here leaves
// the transaction to the deferred rollback; reads before the first write make
// a rollback indistinguishable from never having started.
func (s *Service) settle(ctx context.Context, tx pgx.Tx, req Request) (*Response, []*order.Order, error) {
	now := s.now()

	// Validating
	cfg, err := s.stores.Settings.LoadWithTx(ctx, tx)
	if err != nil {
		return nil, nil, wrapE(KindPersistenceFailure, err, "load settings")
	}

	user, err := s.stores.Accounts.GetWithTx(ctx, tx, req.UserID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, nil, E(KindUnauthenticated, "user %s not found", req.UserID)
		}
		return nil, nil, wrapE(KindPersistenceFailure, err, "load user")
	}

	var method *payment.Method
	if req.PaymentType.RequiresInstrument() {
		m, err := s.stores.Payments.GetOwnedWithTx(ctx, tx, req.UserID, req.PaymentMethodID)
		if err != nil {
			if errors.Is(err, payment.ErrNotFound) {
				return nil, nil, E(KindInvalidPaymentMethod, "payment method %s not found", req.PaymentMethodID)
			}
			return nil, nil, wrapE(KindPersistenceFailure, err, "load payment method")
		}
		method = &m
	}

	snapshot, err := s.stores.Carts.SnapshotWithTx(ctx, tx, req.UserID)
	if err != nil {
		if errors.Is(err, cart.ErrEmptyCart) {
			return nil, nil, E(KindEmptyCart, "cart is empty")
		}
		return nil, nil, wrapE(KindPersistenceFailure, err, "load cart")
	}

	groups, err := BuildGroups(snapshot.Items, req, cfg.AllowPartialCheckout)
	if err != nil {
		return nil, nil, err
	}

	destinations := make(map[string]address.Address, len(groups))
	for _, g := range groups {
		if _, ok := destinations[g.AddressID]; ok {
			continue
		}
		a, err := s.stores.Addresses.GetOwnedWithTx(ctx, tx, req.UserID, g.AddressID)
		if err != nil {
			if errors.Is(err, address.ErrNotFound) {
				return nil, nil, E(KindInvalidAddress, "address %s not found for user", g.AddressID)
			}
			return nil, nil, wrapE(KindPersistenceFailure, err, "load address %s", g.AddressID)
		}
		destinations[g.AddressID] = a
	}

	// Pricing
	var wrap *catalog.GiftWrapOption
	if req.IsGift && req.GiftWrapID != "" {
		o, err := s.stores.Catalog.GetGiftWrapOptionWithTx(ctx, tx, req.GiftWrapID)
		if err != nil {
			if !errors.Is(err, catalog.ErrNotFound) {
				return nil, nil, wrapE(KindPersistenceFailure, err, "load gift wrap option")
			}
			// an unresolved option simply means no wrap charge
		} else {
			wrap = &o
		}
	}

	totals := PriceGroups(groups, user.LifetimeSpend, cfg, wrap)

	// Discounting
	var voucherDiscount float64
	var claim *voucher.Claim
	var firstClaim *voucher.Voucher
	if req.VoucherCode != "" {
		c, v, err := s.resolveVoucher(ctx, tx, req.UserID, req.VoucherCode, now)
		if err != nil {
			return nil, nil, err
		}
		claim, firstClaim = c, v
		applied := firstClaim
		if claim != nil {
			applied = &claim.Voucher
		}
		voucherDiscount = VoucherAmount(*applied, totals.GrandSubTotal, totals.GrandTotalAfterMember)
	}

	var redeemed int64
	var pointsDiscount float64
	if req.UsePoints {
		remaining := totals.GrandTotalAfterMember - voucherDiscount
		redeemed, pointsDiscount = PointsRedemption(user.PointsBalance, remaining, cfg.PointsRate)
	}

	d := Combine(totals.GrandTotalAfterMember, voucherDiscount, redeemed, pointsDiscount)
	earned := PointsEarned(d.FinalAmountToPay, cfg.PointsMultiplier)

	s.logger.Printf("checkout %s: user=%s groups=%d subtotal=%.2f final=%.2f", PhaseDiscounting, req.UserID, len(groups), totals.GrandSubTotal, d.FinalAmountToPay)

	// Persisting
	groupTxID := ""
	if req.MultiAddress {
		groupTxID = uuid.NewString()
	}

	paymentStatus := order.PaymentUnpaid
	if d.FinalAmountToPay == 0 {
		paymentStatus = order.PaymentPaid
	}

	settled := make([]*order.Order, 0, len(totals.Groups))
	for i, gp := range totals.Groups {
		for _, it := range gp.Group.Items {
			if err := s.stores.Catalog.DecrementStockWithTx(ctx, tx, it.ProductID, it.Quantity); err != nil {
				if errors.Is(err, catalog.ErrInsufficientStock) {
					return nil, nil, wrapE(KindInsufficientStock, err, "not enough stock for product %s", it.ProductID)
				}
				return nil, nil, wrapE(KindPersistenceFailure, err, "decrement stock")
			}
		}

		o := s.buildOrder(req, gp, destinations[gp.Group.AddressID], method, groupTxID, paymentStatus, now)
		if i == 0 {
			// The combined global discount lands on the first group; the
			// groups are sorted by address id so "first" is deterministic.
			o.VoucherDiscount = d.VoucherDiscount
			o.PointsDiscount = d.PointsDiscount
			o.PointsRedeemed = d.PointsRedeemed
			o.TotalAmount = gp.TotalAfterMember - d.VoucherDiscount - d.PointsDiscount
		}

		if err := s.stores.Orders.CreateWithTx(ctx, tx, o); err != nil {
			return nil, nil, wrapE(KindPersistenceFailure, err, "create order")
		}
		settled = append(settled, o)
	}

	if req.VoucherCode != "" {
		var err error
		if claim != nil {
			err = s.stores.Vouchers.RedeemClaimWithTx(ctx, tx, claim.ID, claim.Voucher.MaxUsesPerUser)
		} else {
			err = s.stores.Vouchers.ClaimAndRedeemWithTx(ctx, tx, req.UserID, *firstClaim)
		}
		if err != nil {
			if errors.Is(err, voucher.ErrUsageConflict) {
				return nil, nil, wrapE(KindConflict, err, "voucher %s was redeemed concurrently", req.VoucherCode)
			}
			return nil, nil, wrapE(KindPersistenceFailure, err, "redeem voucher")
		}
	}

	if d.PointsRedeemed > 0 {
		if err := s.stores.Accounts.AdjustPointsWithTx(ctx, tx, req.UserID, -d.PointsRedeemed); err != nil {
			return nil, nil, wrapE(KindPersistenceFailure, err, "deduct redeemed points")
		}
	}
	if earned > 0 {
		if err := s.stores.Accounts.AdjustPointsWithTx(ctx, tx, req.UserID, earned); err != nil {
			return nil, nil, wrapE(KindPersistenceFailure, err, "credit earned points")
		}
	}
	if d.FinalAmountToPay > 0 {
		if err := s.stores.Accounts.AddLifetimeSpendWithTx(ctx, tx, req.UserID, d.FinalAmountToPay); err != nil {
			return nil, nil, wrapE(KindPersistenceFailure, err, "add lifetime spend")
		}
	}

	if err := s.stores.Carts.ClearWithTx(ctx, tx, req.UserID); err != nil {
		return nil, nil, wrapE(KindPersistenceFailure, err, "clear cart")
	}

	resp := &Response{
		OrdersCreated:      len(settled),
		GroupTransactionID: groupTxID,
		GrandTotal:         d.FinalAmountToPay,
		PointsEarned:       earned,
	}
	for _, o := range settled {
		resp.OrderIDs = append(resp.OrderIDs, o.ID)
	}

	if req.IdempotencyKey != "" && s.stores.Attempts != nil {
		if err := s.stores.Attempts.RecordWithTx(ctx, tx, req.UserID, req.IdempotencyKey, resp); err != nil {
			return nil, nil, wrapE(KindPersistenceFailure, err, "record checkout attempt")
		}
	}

	return resp, settled, nil
}

// resolveVoucher applies the claim-first precedence: an existing claim is
// validated for expiry and remaining uses; otherwise a still-active voucher
// by that code is marked for a first-time claim.
func (s *Service) resolveVoucher(ctx context.Context, tx pgx.Tx, userID, code string, now time.Time) (*voucher.Claim, *voucher.Voucher, error) {
	c, err := s.stores.Vouchers.FindClaimWithTx(ctx, tx, userID, code)
	if err == nil {
		if c.Voucher.Expired(now) {
			return nil, nil, E(KindVoucherExpired, "voucher %s expired", code)
		}
		if c.Exhausted() {
			return nil, nil, E(KindVoucherExhausted, "voucher %s has no uses left", code)
		}
		return &c, nil, nil
	}
	if !errors.Is(err, voucher.ErrNotFound) {
		return nil, nil, wrapE(KindPersistenceFailure, err, "look up voucher claim")
	}

	v, err := s.stores.Vouchers.FindActiveByCodeWithTx(ctx, tx, code, now)
	if err != nil {
		if errors.Is(err, voucher.ErrNotFound) {
			return nil, nil, E(KindVoucherNotFound, "voucher %s not found", code)
		}
		return nil, nil, wrapE(KindPersistenceFailure, err, "look up voucher")
	}
	return nil, &v, nil
}

func (s *Service) buildOrder(req Request, gp GroupPricing, dest address.Address, method *payment.Method, groupTxID string, paymentStatus order.PaymentStatus, now time.Time) *order.Order {
	o := &order.Order{
		ID:                 uuid.NewString(),
		UserID:             req.UserID,
		GroupTransactionID: groupTxID,
		Status:             order.StatusPending,
		PaymentStatus:      paymentStatus,
		PaymentType:        req.PaymentType,
		SubTotal:           gp.SubTotal,
		MemberDiscount:     gp.MemberDiscount,
		GiftWrapPrice:      gp.GiftWrapPrice,
		TotalAmount:        gp.TotalAfterMember,
		IsGift:             req.IsGift,
		GiftMessage:        req.GiftMessage,
		Shipping:           order.SnapshotAddress(dest),
		CreatedAt:          now,
	}
	if method != nil {
		o.Payment = order.SnapshotPayment(*method)
	}
	for _, it := range gp.Group.Items {
		o.Items = append(o.Items, order.Item{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Options:     it.Options,
		})
	}
	return o
}

func (s *Service) publishOrders(ctx context.Context, settled []*order.Order) {
	if s.publisher == nil {
		return
	}
	meta := events.EnvelopeMetadata{CorrelationID: uuid.NewString()}
	for _, o := range settled {
		if err := s.publisher.PublishOrderCreated(ctx, o, meta); err != nil {
			// The settlement is committed; the event is best effort.
			s.logger.Printf("publish OrderCreated %s: %v", o.ID, err)
		}
	}
}
