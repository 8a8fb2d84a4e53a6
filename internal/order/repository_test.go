package order

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/payment"
)

func sampleOrder() *Order {
	return &Order{
		ID:            "o-1",
		UserID:        "u1",
		Status:        StatusPending,
		PaymentStatus: PaymentUnpaid,
		PaymentType:   payment.TypeCashOnDelivery,
		SubTotal:      100,
		TotalAmount:   100,
		Shipping:      AddressSnapshot{AddressID: "addr-a", Recipient: "A", Line1: "1 Main St", City: "Aarhus", PostalCode: "8000", Country: "DK"},
		Items: []Item{
			{ID: "oi-1", ProductID: "p1", ProductName: "widget", UnitPrice: 50, Quantity: 2},
		},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCreateWithTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	o := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(
			o.ID, o.UserID, (*string)(nil), o.Status, o.PaymentStatus, o.PaymentType,
			o.SubTotal, 0.0, 0.0, 0.0, int64(0),
			0.0, o.TotalAmount, false, "",
			pgxmock.AnyArg(), pgxmock.AnyArg(), o.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO order_items`).
		WithArgs("oi-1", "o-1", "p1", "widget", 50.0, 2, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	repo := NewPostgresRepository(mock)
	require.NoError(t, repo.CreateWithTx(context.Background(), tx, o))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithTx_AssignsIDs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	o := sampleOrder()
	o.ID = ""
	o.Items[0].ID = ""
	o.GroupTransactionID = "gtx-1"

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO orders`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO order_items`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	repo := NewPostgresRepository(mock)
	require.NoError(t, repo.CreateWithTx(context.Background(), tx, o))
	require.NotEmpty(t, o.ID)
	require.NotEmpty(t, o.Items[0].ID)
}

func TestCreateWithTx_ItemInsertFails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO orders`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO order_items`).
		WillReturnError(errors.New("constraint violation"))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	repo := NewPostgresRepository(mock)
	err = repo.CreateWithTx(context.Background(), tx, sampleOrder())
	require.Error(t, err)
	require.Contains(t, err.Error(), "insert order_item")
}

func TestGetByID_NoRowsIsNil(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM orders WHERE id`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	repo := NewPostgresRepository(mock)
	o, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, o)
}

func TestGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	gtx := "gtx-1"
	mock.ExpectQuery(`FROM orders WHERE id`).
		WithArgs("o-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "group_transaction_id", "status", "payment_status", "payment_type",
			"sub_total", "member_discount", "voucher_discount", "points_discount", "points_redeemed",
			"gift_wrap_price", "total_amount", "is_gift", "gift_message",
			"shipping_snapshot", "payment_snapshot", "created_at",
		}).AddRow(
			"o-1", "u1", &gtx, StatusPending, PaymentUnpaid, payment.TypeCashOnDelivery,
			100.0, 0.0, 10.0, 0.0, int64(0),
			0.0, 90.0, false, "",
			[]byte(`{"addressId":"addr-a","recipient":"A","line1":"1 Main St","city":"Aarhus","postalCode":"8000","country":"DK"}`),
			[]byte(`null`), created,
		))
	mock.ExpectQuery(`FROM order_items`).
		WithArgs("o-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "product_name", "unit_price", "quantity", "options"}).
			AddRow("oi-1", "p1", "widget", 50.0, 2, []byte(`{"color":"red"}`)))

	repo := NewPostgresRepository(mock)
	o, err := repo.GetByID(context.Background(), "o-1")
	require.NoError(t, err)
	require.Equal(t, "gtx-1", o.GroupTransactionID)
	require.Equal(t, 90.0, o.TotalAmount)
	require.Equal(t, "addr-a", o.Shipping.AddressID)
	require.Nil(t, o.Payment)
	require.Len(t, o.Items, 1)
	require.Equal(t, "red", o.Items[0].Options["color"])
	require.Equal(t, 100.0, o.Items[0].LineTotal())
}

func TestListByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cols := []string{
		"id", "user_id", "group_transaction_id", "status", "payment_status", "payment_type",
		"sub_total", "member_discount", "voucher_discount", "points_discount", "points_redeemed",
		"gift_wrap_price", "total_amount", "is_gift", "gift_message", "created_at",
	}
	mock.ExpectQuery(`FROM orders WHERE user_id`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("o-2", "u1", (*string)(nil), StatusPending, PaymentUnpaid, payment.TypeCashOnDelivery,
				40.0, 0.0, 0.0, 0.0, int64(0), 0.0, 40.0, false, "", created).
			AddRow("o-1", "u1", (*string)(nil), StatusCompleted, PaymentPaid, payment.TypeCreditCard,
				60.0, 0.0, 0.0, 0.0, int64(0), 0.0, 60.0, false, "", created))
	mock.ExpectQuery(`FROM order_items`).
		WithArgs("o-2").
		WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "product_name", "unit_price", "quantity", "options"}))
	mock.ExpectQuery(`FROM order_items`).
		WithArgs("o-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "product_name", "unit_price", "quantity", "options"}))

	repo := NewPostgresRepository(mock)
	orders, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, "o-2", orders[0].ID)
	require.Equal(t, StatusCompleted, orders[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
