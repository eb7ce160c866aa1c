package delivery_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/delivery"
	"github.com/chachabrian/mooveit-parcels/internal/events"
	"github.com/chachabrian/mooveit-parcels/internal/logging"
	"github.com/chachabrian/mooveit-parcels/internal/models"
	"github.com/chachabrian/mooveit-parcels/internal/payments"
	"github.com/chachabrian/mooveit-parcels/internal/repository"
	"github.com/chachabrian/mooveit-parcels/internal/testutil"
)

var (
	customer = models.Identity{Email: "customer@example.com", Name: "Carol", Role: models.RoleUser}
	admin    = models.Identity{Email: "admin@example.com", Name: "Ada", Role: models.RoleAdmin}
	riderID  = models.Identity{Email: "rider@example.com", Name: "Rafi", Role: models.RoleRider}
	other    = models.Identity{Email: "other@example.com", Name: "Omar", Role: models.RoleRider}
)

type fixture struct {
	store     *repository.Store
	fanout    *events.Fanout
	recorder  *events.Recorder
	lifecycle *delivery.Lifecycle
	riders    *delivery.Riders
	cashouts  *delivery.Cashouts
	tracking  *delivery.Tracking
}

func newFixture(t *testing.T, opts ...func(*delivery.Deps)) *fixture {
	t.Helper()
	store := repository.New(testutil.NewDB(t))
	rec := &events.Recorder{}
	log := logging.Discard()
	fanout := events.NewFanout(log, rec)
	t.Cleanup(fanout.Close)
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	deps := delivery.Deps{
		Store:     store,
		Publisher: fanout,
		Log:       log,
		Now: func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			clock = clock.Add(time.Minute)
			return clock
		},
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return &fixture{
		store:     store,
		fanout:    fanout,
		recorder:  rec,
		lifecycle: delivery.NewLifecycle(deps),
		riders:    delivery.NewRiders(deps),
		cashouts:  delivery.NewCashouts(deps),
		tracking:  delivery.NewTracking(deps),
	}
}

// approvedRider registers who as a user, files an application and approves it.
func (f *fixture) approvedRider(t *testing.T, who models.Identity, district string) *models.Rider {
	t.Helper()
	ctx := context.Background()
	_, err := f.store.Users.Upsert(ctx, &models.User{Email: who.Email, Name: who.Name, Role: models.RoleUser}, time.Now())
	require.NoError(t, err)
	r, err := f.riders.Apply(ctx, &models.Rider{Name: who.Name, Phone: "01700000000", District: district}, who)
	require.NoError(t, err)
	r, err = f.riders.SetStatus(ctx, r.ID, models.RiderApproved, who.Email, admin)
	require.NoError(t, err)
	return r
}

func (f *fixture) newParcel(t *testing.T, cost int64, from, to string) *models.Parcel {
	t.Helper()
	p, err := f.lifecycle.Create(context.Background(), &models.Parcel{
		ParcelName:       "Documents",
		ParcelType:       "document",
		Cost:             decimal.NewFromInt(cost),
		SenderName:       "Carol",
		SenderDistrict:   from,
		ReceiverName:     "Dan",
		ReceiverDistrict: to,
	}, customer)
	require.NoError(t, err)
	return p
}

// eventTypes waits for queued events and returns the published types.
func (f *fixture) eventTypes() []events.Type {
	f.fanout.Flush()
	return f.recorder.Types()
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err), "error: %v", err)
}

func TestEndToEndDeliveryAndCashout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.approvedRider(t, riderID, "Dhaka")

	p := f.newParcel(t, 1000, "Dhaka", " dhaka ")
	assert.Equal(t, models.DeliveryPending, p.DeliveryStatus)
	assert.Equal(t, models.PaymentUnpaid, p.PaymentStatus)
	assert.NotEmpty(t, p.TrackingID)

	payment, err := f.lifecycle.RecordPayment(ctx, delivery.PaymentInput{
		ParcelID:      p.ID,
		Email:         customer.Email,
		TransactionID: "pi_123",
		AmountMinor:   100000,
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(payment.Amount))

	p, err = f.lifecycle.Assign(ctx, p.ID, rider.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryAssigned, p.DeliveryStatus)

	p, err = f.lifecycle.UpdateRiderStatus(ctx, p.ID, riderID, models.DeliveryOnTheWay)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryOnTheWay, p.DeliveryStatus)
	require.NotNil(t, p.PickedAt)

	p, err = f.lifecycle.UpdateRiderStatus(ctx, p.ID, riderID, models.DeliveryDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryDelivered, p.DeliveryStatus)
	require.True(t, p.RiderEarning.Valid)
	assert.True(t, decimal.NewFromInt(800).Equal(p.RiderEarning.Decimal), "earning %s", p.RiderEarning.Decimal)

	c, err := f.cashouts.Cashout(ctx, p.ID, riderID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(800).Equal(c.Earning))
	assert.Equal(t, p.TrackingID, c.TrackingID)

	_, err = f.cashouts.Cashout(ctx, p.ID, riderID)
	requireKind(t, err, apperr.KindConflict)

	summary, err := f.cashouts.Summary(ctx, riderID.Email)
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.Delivered)
	assert.True(t, decimal.NewFromInt(800).Equal(summary.TotalEarned))
	assert.True(t, summary.Pending.IsZero())

	history, err := f.tracking.History(ctx, p.TrackingID)
	require.NoError(t, err)
	statuses := make([]string, len(history))
	for i, h := range history {
		statuses[i] = h.Status
	}
	assert.Equal(t, []string{"parcel_created", "paid", "assigned", "on_the_way", "delivered"}, statuses)

	assert.Equal(t, []events.Type{
		events.ParcelCreated,
		events.ParcelPaid,
		events.ParcelAssigned,
		events.ParcelPicked,
		events.ParcelDelivered,
		events.ParcelCashedOut,
	}, f.eventTypes())
}

func TestCrossDistrictEarning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.approvedRider(t, riderID, "Dhaka")
	p := f.newParcel(t, 1000, "Dhaka", "Chattogram")

	_, err := f.lifecycle.Assign(ctx, p.ID, rider.ID, admin)
	require.NoError(t, err)
	_, err = f.lifecycle.Pick(ctx, p.ID, riderID)
	require.NoError(t, err)
	p, err = f.lifecycle.Deliver(ctx, p.ID, riderID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(300).Equal(p.RiderEarning.Decimal))
}

func TestAssignCopiesRiderDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.approvedRider(t, riderID, "Dhaka")
	p := f.newParcel(t, 500, "Dhaka", "Dhaka")

	p, err := f.lifecycle.Assign(ctx, p.ID, rider.ID, admin)
	require.NoError(t, err)
	require.NotNil(t, p.RiderID)
	assert.Equal(t, rider.ID, *p.RiderID)
	assert.Equal(t, rider.Name, p.RiderName)
	assert.Equal(t, rider.Email, p.RiderEmail)
	assert.Equal(t, rider.Phone, p.RiderPhone)
	require.NotNil(t, p.AssignedAt)

	_, err = f.lifecycle.Assign(ctx, p.ID, rider.ID, admin)
	requireKind(t, err, apperr.KindConflict)
}

func TestAssignRequiresApprovedRider(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending, err := f.riders.Apply(ctx, &models.Rider{Name: "Pia", Phone: "1", District: "Dhaka"}, other)
	require.NoError(t, err)
	p := f.newParcel(t, 500, "Dhaka", "Dhaka")

	_, err = f.lifecycle.Assign(ctx, p.ID, pending.ID, admin)
	requireKind(t, err, apperr.KindConflict)

	_, err = f.lifecycle.Assign(ctx, p.ID, 9999, admin)
	requireKind(t, err, apperr.KindNotFound)
}

func TestPickTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.approvedRider(t, riderID, "Dhaka")
	p := f.newParcel(t, 500, "Dhaka", "Dhaka")
	_, err := f.lifecycle.Assign(ctx, p.ID, rider.ID, admin)
	require.NoError(t, err)

	_, err = f.lifecycle.Pick(ctx, p.ID, riderID)
	require.NoError(t, err)
	_, err = f.lifecycle.Pick(ctx, p.ID, riderID)
	requireKind(t, err, apperr.KindConflict)
}

func TestOnlyAssignedRiderMovesParcel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.approvedRider(t, riderID, "Dhaka")
	p := f.newParcel(t, 500, "Dhaka", "Dhaka")
	_, err := f.lifecycle.Assign(ctx, p.ID, rider.ID, admin)
	require.NoError(t, err)

	_, err = f.lifecycle.Pick(ctx, p.ID, other)
	requireKind(t, err, apperr.KindNotFound)
	_, err = f.lifecycle.Deliver(ctx, p.ID, other)
	requireKind(t, err, apperr.KindNotFound)

	// Skipping on_the_way is not an edge of the state machine.
	_, err = f.lifecycle.Deliver(ctx, p.ID, riderID)
	requireKind(t, err, apperr.KindConflict)

	_, err = f.lifecycle.UpdateRiderStatus(ctx, p.ID, riderID, models.DeliveryPending)
	requireKind(t, err, apperr.KindBadRequest)
}

func TestConcurrentDeliverSucceedsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.approvedRider(t, riderID, "Dhaka")
	p := f.newParcel(t, 500, "Dhaka", "Dhaka")
	_, err := f.lifecycle.Assign(ctx, p.ID, rider.ID, admin)
	require.NoError(t, err)
	_, err = f.lifecycle.Pick(ctx, p.ID, riderID)
	require.NoError(t, err)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.lifecycle.Deliver(ctx, p.ID, riderID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	}
	assert.Equal(t, 1, succeeded)
}

// stalledPublisher holds every event until released.
type stalledPublisher struct{ release chan struct{} }

func (s stalledPublisher) Name() string { return "stalled" }

func (s stalledPublisher) Publish(ctx context.Context, _ events.ParcelEvent) error {
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestDeliverDoesNotWaitForNotifications(t *testing.T) {
	stalled := stalledPublisher{release: make(chan struct{})}
	fanout := events.NewFanout(logging.Discard(), stalled)
	defer fanout.Close()
	defer close(stalled.release)

	f := newFixture(t, func(d *delivery.Deps) { d.Publisher = fanout })
	ctx := context.Background()
	rider := f.approvedRider(t, riderID, "Dhaka")
	p := f.newParcel(t, 500, "Dhaka", "Dhaka")
	_, err := f.lifecycle.Assign(ctx, p.ID, rider.ID, admin)
	require.NoError(t, err)
	_, err = f.lifecycle.Pick(ctx, p.ID, riderID)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := f.lifecycle.Deliver(ctx, p.ID, riderID)
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Deliver waited on a stalled publisher")
	}
}

func TestConcurrentCashoutSucceedsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.approvedRider(t, riderID, "Dhaka")
	p := f.newParcel(t, 500, "Dhaka", "Dhaka")
	_, err := f.lifecycle.Assign(ctx, p.ID, rider.ID, admin)
	require.NoError(t, err)
	_, err = f.lifecycle.Pick(ctx, p.ID, riderID)
	require.NoError(t, err)
	_, err = f.lifecycle.Deliver(ctx, p.ID, riderID)
	require.NoError(t, err)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.cashouts.Cashout(ctx, p.ID, riderID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	}
	assert.Equal(t, 1, succeeded)

	list, err := f.cashouts.List(ctx, riderID.Email)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCashoutRequiresDeliveredOwnParcel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.approvedRider(t, riderID, "Dhaka")
	p := f.newParcel(t, 500, "Dhaka", "Dhaka")
	_, err := f.lifecycle.Assign(ctx, p.ID, rider.ID, admin)
	require.NoError(t, err)

	_, err = f.cashouts.Cashout(ctx, p.ID, riderID)
	requireKind(t, err, apperr.KindNotFound)
	_, err = f.cashouts.Cashout(ctx, p.ID, other)
	requireKind(t, err, apperr.KindNotFound)
	_, err = f.cashouts.Cashout(ctx, 4242, riderID)
	requireKind(t, err, apperr.KindNotFound)
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newParcel(t, 500, "Dhaka", "Dhaka")

	_, err := f.lifecycle.RecordPayment(ctx, delivery.PaymentInput{ParcelID: p.ID, Email: customer.Email})
	requireKind(t, err, apperr.KindBadRequest)

	payment, err := f.lifecycle.RecordPayment(ctx, delivery.PaymentInput{
		ParcelID:      p.ID,
		Email:         customer.Email,
		TransactionID: "pi_1",
		AmountMinor:   50000,
	})
	require.NoError(t, err)
	assert.Equal(t, "500", payment.Amount.String())
	assert.Equal(t, "usd", payment.Currency)

	got, err := f.lifecycle.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, got.PaymentStatus)
	require.NotNil(t, got.PaidAt)

	_, err = f.lifecycle.RecordPayment(ctx, delivery.PaymentInput{
		ParcelID:      p.ID,
		Email:         customer.Email,
		TransactionID: "pi_2",
		AmountMinor:   50000,
	})
	requireKind(t, err, apperr.KindConflict)

	_, err = f.lifecycle.RecordPayment(ctx, delivery.PaymentInput{
		ParcelID:      9999,
		Email:         customer.Email,
		TransactionID: "pi_3",
		AmountMinor:   50000,
	})
	requireKind(t, err, apperr.KindNotFound)

	recorded, err := f.lifecycle.Payments(ctx, customer.Email)
	require.NoError(t, err)
	assert.Len(t, recorded, 1)
}

func TestDuplicateTransactionRollsBackPaidFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.newParcel(t, 500, "Dhaka", "Dhaka")
	second := f.newParcel(t, 500, "Dhaka", "Dhaka")

	_, err := f.lifecycle.RecordPayment(ctx, delivery.PaymentInput{ParcelID: first.ID, Email: customer.Email, TransactionID: "pi_same", AmountMinor: 50000})
	require.NoError(t, err)
	_, err = f.lifecycle.RecordPayment(ctx, delivery.PaymentInput{ParcelID: second.ID, Email: customer.Email, TransactionID: "pi_same", AmountMinor: 50000})
	requireKind(t, err, apperr.KindConflict)

	got, err := f.lifecycle.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentUnpaid, got.PaymentStatus)
}

func TestRecordPaymentMustMatchParcel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newParcel(t, 500, "Dhaka", "Dhaka")

	_, err := f.lifecycle.RecordPayment(ctx, delivery.PaymentInput{
		ParcelID:      p.ID,
		Email:         customer.Email,
		TransactionID: "pi_cheap",
		AmountMinor:   1,
	})
	requireKind(t, err, apperr.KindBadRequest)

	_, err = f.lifecycle.RecordPayment(ctx, delivery.PaymentInput{
		ParcelID:      p.ID,
		Email:         other.Email,
		TransactionID: "pi_stranger",
		AmountMinor:   50000,
	})
	requireKind(t, err, apperr.KindForbidden)

	got, err := f.lifecycle.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentUnpaid, got.PaymentStatus)
}

// gatewayLedger answers Confirm from a fixed set of intents.
type gatewayLedger map[string]payments.Confirmation

func (g gatewayLedger) Confirm(_ context.Context, id string) (*payments.Confirmation, error) {
	c, ok := g[id]
	if !ok {
		return nil, apperr.BadRequest("unknown transaction %s", id)
	}
	return &c, nil
}

func TestRecordPaymentConfirmsWithGateway(t *testing.T) {
	ledger := gatewayLedger{
		"pi_ok":      {TransactionID: "pi_ok", AmountMinor: 50000, Currency: "usd", Succeeded: true},
		"pi_pending": {TransactionID: "pi_pending", AmountMinor: 50000, Currency: "usd"},
		"pi_small":   {TransactionID: "pi_small", AmountMinor: 100, Currency: "usd", Succeeded: true},
		"pi_eur":     {TransactionID: "pi_eur", AmountMinor: 50000, Currency: "eur", Succeeded: true},
	}
	f := newFixture(t, func(d *delivery.Deps) { d.Confirmer = ledger })
	ctx := context.Background()
	p := f.newParcel(t, 500, "Dhaka", "Dhaka")

	pay := func(id string) error {
		_, err := f.lifecycle.RecordPayment(ctx, delivery.PaymentInput{
			ParcelID:      p.ID,
			Email:         customer.Email,
			TransactionID: id,
			AmountMinor:   50000,
		})
		return err
	}
	requireKind(t, pay("pi_forged"), apperr.KindBadRequest)
	requireKind(t, pay("pi_pending"), apperr.KindBadRequest)
	requireKind(t, pay("pi_small"), apperr.KindBadRequest)
	requireKind(t, pay("pi_eur"), apperr.KindBadRequest)
	require.NoError(t, pay("pi_ok"))

	got, err := f.lifecycle.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, got.PaymentStatus)
}

func TestMinorToMajor(t *testing.T) {
	assert.Equal(t, "500", delivery.MinorToMajor(50000).String())
	assert.Equal(t, "12.34", delivery.MinorToMajor(1234).String())
	assert.Equal(t, "0.05", delivery.MinorToMajor(5).String())
}

func TestRiderApprovalChangesRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.approvedRider(t, riderID, "Dhaka")
	assert.Equal(t, models.RiderApproved, rider.Status)
	require.NotNil(t, rider.ReviewedAt)

	role, err := f.store.Users.RoleOf(ctx, riderID.Email)
	require.NoError(t, err)
	assert.Equal(t, models.RoleRider, role)

	_, err = f.riders.SetStatus(ctx, rider.ID, models.RiderApproved, "", admin)
	requireKind(t, err, apperr.KindConflict)

	rider, err = f.riders.SetStatus(ctx, rider.ID, models.RiderRejected, "", admin)
	require.NoError(t, err)
	assert.Equal(t, models.RiderRejected, rider.Status)

	role, err = f.store.Users.RoleOf(ctx, riderID.Email)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, role)
}

func TestRiderApprovalKeepsAdminRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.Users.Upsert(ctx, &models.User{Email: admin.Email, Role: models.RoleAdmin}, time.Now())
	require.NoError(t, err)
	r, err := f.riders.Apply(ctx, &models.Rider{Name: "Ada", Phone: "1", District: "Dhaka"}, admin)
	require.NoError(t, err)

	_, err = f.riders.SetStatus(ctx, r.ID, models.RiderApproved, "", admin)
	require.NoError(t, err)
	_, err = f.riders.SetStatus(ctx, r.ID, models.RiderRejected, "", admin)
	require.NoError(t, err)

	role, err := f.store.Users.RoleOf(ctx, admin.Email)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)
}

func TestRiderApprovalWithoutAccountRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r, err := f.riders.Apply(ctx, &models.Rider{Name: "Omar", Phone: "1", District: "Dhaka"}, other)
	require.NoError(t, err)

	_, err = f.riders.SetStatus(ctx, r.ID, models.RiderApproved, "", admin)
	requireKind(t, err, apperr.KindNotFound)

	pending, err := f.riders.List(ctx, models.RiderPending, "")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, r.ID, pending[0].ID)
}

func TestRiderSetStatusValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r, err := f.riders.Apply(ctx, &models.Rider{Name: "Omar", Phone: "1", District: "Dhaka"}, other)
	require.NoError(t, err)

	_, err = f.riders.SetStatus(ctx, r.ID, models.RiderPending, "", admin)
	requireKind(t, err, apperr.KindBadRequest)
	_, err = f.riders.SetStatus(ctx, r.ID, models.RiderApproved, "someone@example.com", admin)
	requireKind(t, err, apperr.KindBadRequest)

	_, err = f.riders.Apply(ctx, &models.Rider{Name: "Omar", Phone: "1", District: "Dhaka"}, other)
	requireKind(t, err, apperr.KindConflict)
}

func TestTrackingAppendAndHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tracking.History(ctx, "PRCL-NOPE")
	requireKind(t, err, apperr.KindNotFound)

	_, err = f.tracking.Append(ctx, &models.TrackingLog{TrackingID: "PRCL-1"}, riderID)
	requireKind(t, err, apperr.KindBadRequest)

	_, err = f.tracking.Append(ctx, &models.TrackingLog{TrackingID: "PRCL-1", Status: "in_hub", Message: "At Dhaka hub"}, riderID)
	require.NoError(t, err)
	_, err = f.tracking.Append(ctx, &models.TrackingLog{TrackingID: "PRCL-1", Status: "out_for_delivery"}, riderID)
	require.NoError(t, err)

	history, err := f.tracking.History(ctx, "PRCL-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "in_hub", history[0].Status)
	assert.Equal(t, riderID.Email, history[0].UpdatedBy)
	assert.Equal(t, "out_for_delivery", history[1].Status)
}

func TestTrackingAppendAttributesCaller(t *testing.T) {
	f := newFixture(t)
	entry, err := f.tracking.Append(context.Background(), &models.TrackingLog{
		TrackingID: "PRCL-2",
		Status:     "in_hub",
		UpdatedBy:  "someone-else@example.com",
	}, riderID)
	require.NoError(t, err)
	assert.Equal(t, riderID.Email, entry.UpdatedBy)
}

func TestCreateValidatesAndResetsServerFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.lifecycle.Create(ctx, &models.Parcel{ParcelName: "x", SenderDistrict: "a", ReceiverDistrict: "b"}, customer)
	requireKind(t, err, apperr.KindBadRequest)

	p, err := f.lifecycle.Create(ctx, &models.Parcel{
		ParcelName:       "Laptop",
		Cost:             decimal.NewFromInt(200),
		SenderDistrict:   "Dhaka",
		ReceiverDistrict: "Sylhet",
		DeliveryStatus:   models.DeliveryDelivered,
		PaymentStatus:    models.PaymentPaid,
		RiderEmail:       "sneaky@example.com",
		CreatedBy:        "someone@example.com",
	}, customer)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryPending, p.DeliveryStatus)
	assert.Equal(t, models.PaymentUnpaid, p.PaymentStatus)
	assert.Empty(t, p.RiderEmail)
	assert.Equal(t, customer.Email, p.CreatedBy)

	mine, err := f.lifecycle.List(ctx, models.ParcelFilter{CreatedBy: customer.Email})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = f.lifecycle.List(ctx, models.ParcelFilter{DeliveryStatus: "lost"})
	requireKind(t, err, apperr.KindBadRequest)

	require.NoError(t, f.lifecycle.Delete(ctx, p.ID, admin))
	requireKind(t, f.lifecycle.Delete(ctx, p.ID, admin), apperr.KindNotFound)
}
