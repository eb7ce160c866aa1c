package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/models"
	"github.com/chachabrian/mooveit-parcels/internal/repository"
	"github.com/chachabrian/mooveit-parcels/internal/testutil"
)

func newParcel(t *testing.T, store *repository.Store, trackingID string) *models.Parcel {
	t.Helper()
	p := &models.Parcel{
		TrackingID:       trackingID,
		ParcelName:       "Books",
		Cost:             decimal.NewFromInt(1000),
		CreatedBy:        "customer@example.com",
		SenderDistrict:   "Dhaka",
		ReceiverDistrict: "Dhaka",
		PaymentStatus:    models.PaymentUnpaid,
		DeliveryStatus:   models.DeliveryPending,
	}
	require.NoError(t, store.Parcels.Create(context.Background(), p))
	return p
}

func TestUsersUpsertKeepsInsertOnlyFields(t *testing.T) {
	store := repository.New(testutil.NewDB(t))
	ctx := context.Background()

	first := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	u, err := store.Users.Upsert(ctx, &models.User{Email: "a@example.com", Name: "Alice", Role: models.RoleUser}, first)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)

	second := first.Add(time.Hour)
	u, err = store.Users.Upsert(ctx, &models.User{Email: "a@example.com", Name: "Mallory", Role: models.RoleAdmin}, second)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, models.RoleUser, u.Role)
	require.NotNil(t, u.LastLoginAt)
	assert.True(t, second.Equal(u.LastLoginAt.UTC()))
}

func TestUsersRoleOfUnknownIsUser(t *testing.T) {
	store := repository.New(testutil.NewDB(t))
	role, err := store.Users.RoleOf(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, role)
}

func TestParcelTransitionIsConditional(t *testing.T) {
	store := repository.New(testutil.NewDB(t))
	ctx := context.Background()
	p := newParcel(t, store, "PRCL-1")

	// pending cannot jump straight to delivered
	ok, err := store.Parcels.Transition(ctx, p.ID, models.DeliveryDelivered, repository.Guard{}, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	riderID := uint(9)
	ok, err = store.Parcels.Transition(ctx, p.ID, models.DeliveryAssigned, repository.Guard{}, map[string]any{
		"rider_id":    riderID,
		"rider_email": "rider@example.com",
	})
	require.NoError(t, err)
	assert.True(t, ok)

	// wrong rider
	ok, err = store.Parcels.Transition(ctx, p.ID, models.DeliveryOnTheWay, repository.Guard{RiderEmail: "other@example.com"}, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Parcels.Transition(ctx, p.ID, models.DeliveryOnTheWay, repository.Guard{RiderEmail: "rider@example.com"}, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	// second pick loses
	ok, err = store.Parcels.Transition(ctx, p.ID, models.DeliveryOnTheWay, repository.Guard{RiderEmail: "rider@example.com"}, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Parcels.Transition(ctx, p.ID, models.DeliveryPending, repository.Guard{}, nil)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}

func TestParcelListFiltersNewestFirst(t *testing.T) {
	store := repository.New(testutil.NewDB(t))
	ctx := context.Background()
	older := newParcel(t, store, "PRCL-old")
	newer := newParcel(t, store, "PRCL-new")
	ok, err := store.Parcels.MarkPaid(ctx, newer.ID, time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	all, err := store.Parcels.List(ctx, models.ParcelFilter{CreatedBy: "customer@example.com"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)
	assert.Equal(t, older.ID, all[1].ID)

	paid, err := store.Parcels.List(ctx, models.ParcelFilter{PaymentStatus: models.PaymentPaid})
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, "PRCL-new", paid[0].TrackingID)
}

func TestMarkPaidOnce(t *testing.T) {
	store := repository.New(testutil.NewDB(t))
	ctx := context.Background()
	p := newParcel(t, store, "PRCL-2")

	ok, err := store.Parcels.MarkPaid(ctx, p.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Parcels.MarkPaid(ctx, p.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCashoutInsertOncePerParcel(t *testing.T) {
	store := repository.New(testutil.NewDB(t))
	ctx := context.Background()

	c := &models.Cashout{ParcelID: 1, RiderEmail: "r@example.com", Earning: decimal.NewFromInt(800), CashedOutAt: time.Now()}
	ok, err := store.Cashouts.Insert(ctx, c)
	require.NoError(t, err)
	assert.True(t, ok)

	dup := &models.Cashout{ParcelID: 1, RiderEmail: "r@example.com", Earning: decimal.NewFromInt(800), CashedOutAt: time.Now()}
	ok, err = store.Cashouts.Insert(ctx, dup)
	require.NoError(t, err)
	assert.False(t, ok)

	list, err := store.Cashouts.ListByRider(ctx, "r@example.com")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	total, err := store.Cashouts.Total(ctx, "r@example.com")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(800).Equal(total))
}

func TestPaymentInsertRejectsDuplicateTransaction(t *testing.T) {
	store := repository.New(testutil.NewDB(t))
	ctx := context.Background()

	p := &models.Payment{ParcelID: 1, Email: "c@example.com", TransactionID: "pi_123", Amount: decimal.NewFromInt(500), Currency: "usd", Method: "card", PaidAt: time.Now()}
	ok, err := store.Payments.Insert(ctx, p)
	require.NoError(t, err)
	assert.True(t, ok)

	again := &models.Payment{ParcelID: 2, Email: "c@example.com", TransactionID: "pi_123", Amount: decimal.NewFromInt(500), Currency: "usd", Method: "card", PaidAt: time.Now()}
	ok, err = store.Payments.Insert(ctx, again)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWithTxRollsBack(t *testing.T) {
	store := repository.New(testutil.NewDB(t))
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx *repository.Store) error {
		_, err := tx.Users.Upsert(ctx, &models.User{Email: "tx@example.com", Role: models.RoleUser}, time.Now())
		require.NoError(t, err)
		return apperr.Conflict("abort")
	})
	require.Error(t, err)

	_, err = store.Users.FindByEmail(ctx, "tx@example.com")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRidersChangeStatusAndList(t *testing.T) {
	store := repository.New(testutil.NewDB(t))
	ctx := context.Background()

	r := &models.Rider{Name: "Rafi", Email: "rafi@example.com", Phone: "017", District: "Dhaka", Status: models.RiderPending}
	ok, err := store.Riders.Create(ctx, r)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.Riders.Create(ctx, &models.Rider{Name: "Rafi 2", Email: "rafi@example.com", Phone: "018", District: "Dhaka", Status: models.RiderPending})
	require.NoError(t, err)
	assert.False(t, ok, "duplicate email")

	ok, err = store.Riders.ChangeStatus(ctx, r.ID, models.RiderPending, models.RiderApproved, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Riders.ChangeStatus(ctx, r.ID, models.RiderPending, models.RiderApproved, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	approved, err := store.Riders.List(ctx, models.RiderApproved, "dhaka")
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "rafi@example.com", approved[0].Email)
}
