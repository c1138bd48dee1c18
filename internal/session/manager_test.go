package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/domain/checkout"
	"github.com/xenking/storefront-checkout/internal/domain/order"
	"github.com/xenking/storefront-checkout/internal/domain/payment"
	"github.com/xenking/storefront-checkout/internal/domain/profile"
)

// --- Mock implementations ---

type mockRepo struct {
	mu    sync.Mutex
	data  map[string][]byte
	saves int
}

func newMockRepo() *mockRepo {
	return &mockRepo{data: make(map[string][]byte)}
}

func (r *mockRepo) Save(_ context.Context, s *Snapshot) error {
	b, err := s.MarshalBinary()
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[s.ID] = b
	r.saves++
	return nil
}

func (r *mockRepo) Load(_ context.Context, id string) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	var s Snapshot
	if err := s.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *mockRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}

func (r *mockRepo) Ping(context.Context) error { return nil }

type mockCarts struct {
	cart   *cart.Cart
	getErr error
}

func (m *mockCarts) Get(context.Context, string) (*cart.Cart, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	c := m.cart.Clone()
	return &c, nil
}

func (m *mockCarts) AddItem(context.Context, string, cart.AddItemRequest) (*cart.Cart, error) {
	c := m.cart.Clone()
	return &c, nil
}

func (m *mockCarts) UpdateQuantity(context.Context, string, string, int) (*cart.Cart, error) {
	c := m.cart.Clone()
	return &c, nil
}

func (m *mockCarts) RemoveItem(context.Context, string, string) (*cart.Cart, error) {
	return &cart.Cart{}, nil
}

type mockProfiles struct {
	mu        sync.Mutex
	profile   *profile.Profile
	getErr    error
	updateErr error
}

func (m *mockProfiles) Get(context.Context, string) (*profile.Profile, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := *m.profile
	return &p, nil
}

func (m *mockProfiles) Update(_ context.Context, _ string, p *profile.Profile) (*profile.Profile, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.profile = &cp
	out := cp
	return &out, nil
}

type mockConfirmer struct {
	err error
}

func (m *mockConfirmer) Confirm(_ context.Context, req payment.Request) (*payment.Confirmation, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &payment.Confirmation{Token: "tok", Last4: "4242", Amount: req.Amount}, nil
}

type mockOrders struct {
	err error
}

func (m *mockOrders) Create(_ context.Context, req order.CreateRequest) (*order.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &order.Order{ID: "o1", UserID: req.UserID, TotalAmount: req.TotalAmount, Status: order.StatusNew}, nil
}

func (m *mockOrders) ListByUser(context.Context, string) ([]order.Order, error) { return nil, nil }

func (m *mockOrders) Get(context.Context, string) (*order.Order, error) { return nil, order.ErrNotFound }

// --- Helpers ---

func homeAddress(id string, def bool) profile.Address {
	return profile.Address{
		ID:        id,
		Name:      "Asha Rao",
		Street:    "12 MG Road",
		City:      "Pune",
		State:     "MH",
		Zip:       "411001",
		Country:   "IN",
		Mobile:    "9876543210",
		Type:      profile.AddressHome,
		IsDefault: def,
	}
}

type fixture struct {
	repo     *mockRepo
	carts    *mockCarts
	profiles *mockProfiles
	pay      *mockConfirmer
	orders   *mockOrders
	mgr      *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo: newMockRepo(),
		carts: &mockCarts{cart: &cart.Cart{Items: []cart.Item{{
			ProductID:    "kurta",
			Quantity:     1,
			UnitPrice:    decimal.NewFromInt(500),
			ShippingCost: decimal.NewFromInt(40),
		}}}},
		profiles: &mockProfiles{profile: &profile.Profile{
			UserID:    "u1",
			Addresses: profile.AddressBook{homeAddress("a1", true), homeAddress("a2", false)},
		}},
		pay:    &mockConfirmer{},
		orders: &mockOrders{},
	}
	f.mgr = NewManager(f.repo, Services{
		Carts:     f.carts,
		Profiles:  f.profiles,
		Payments:  f.pay,
		Submitter: order.NewSubmitter(f.orders, nil, order.SubmitterConfig{}),
	}, nil)
	f.mgr.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return f
}

func validCard() payment.Card {
	return payment.Card{Holder: "Asha Rao", Number: "4242424242424242", ExpiryMonth: "12", ExpiryYear: "2099", CVV: "123"}
}

// --- Tests ---

func TestManager_Create(t *testing.T) {
	f := newFixture(t)

	snap, err := f.mgr.Create(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.True(t, snap.CartLoaded)
	assert.Len(t, snap.Cart.Items, 1)
	assert.Len(t, snap.Profile.Addresses, 2)
	assert.Equal(t, checkout.StepBag, snap.Checkout.Step)

	loaded, err := f.mgr.Get(context.Background(), snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.UserID, loaded.UserID)
}

func TestManager_CreateUnknownUser(t *testing.T) {
	f := newFixture(t)
	f.carts.getErr = cart.ErrNotFound
	f.profiles.getErr = profile.ErrNotFound

	snap, err := f.mgr.Create(context.Background(), "u2")
	require.NoError(t, err)
	assert.Empty(t, snap.Cart.Items)
	assert.Equal(t, "u2", snap.Profile.UserID)
}

func TestManager_CreateFetchErrors(t *testing.T) {
	t.Run("cart", func(t *testing.T) {
		f := newFixture(t)
		f.carts.getErr = errors.New("boom")

		_, err := f.mgr.Create(context.Background(), "u1")
		var ferr *cart.FetchError
		require.ErrorAs(t, err, &ferr)
		assert.Zero(t, f.repo.saves)
	})
	t.Run("profile", func(t *testing.T) {
		f := newFixture(t)
		f.profiles.getErr = errors.New("boom")

		_, err := f.mgr.Create(context.Background(), "u1")
		var ferr *FetchError
		require.ErrorAs(t, err, &ferr)
		assert.Equal(t, "profile", ferr.Resource)
	})
}

func TestManager_DoUnknownSession(t *testing.T) {
	f := newFixture(t)
	err := f.mgr.Do(context.Background(), "missing", func(context.Context, *Session) error { return nil })
	require.ErrorIs(t, err, ErrNotFound)
}

func TestManager_DoPersistsOnError(t *testing.T) {
	f := newFixture(t)
	snap, err := f.mgr.Create(context.Background(), "u1")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = f.mgr.Do(context.Background(), snap.ID, func(_ context.Context, s *Session) error {
		s.Cart.ApplyCoupon("NEWUSER")
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := f.mgr.Get(context.Background(), snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "NEWUSER", got.Cart.CouponCode)
}

func TestManager_DoSerializesPerSession(t *testing.T) {
	f := newFixture(t)
	snap, err := f.mgr.Create(context.Background(), "u1")
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.mgr.Do(context.Background(), snap.ID, func(_ context.Context, s *Session) error {
				cur := s.Cart.Snapshot().DonationAmount
				return s.Cart.SetDonation(cur.Add(decimal.NewFromInt(1)))
			})
		}()
	}
	wg.Wait()

	got, err := f.mgr.Get(context.Background(), snap.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(n).Equal(got.Cart.DonationAmount), got.Cart.DonationAmount.String())
}

func TestManager_DoHonoursContext(t *testing.T) {
	f := newFixture(t)
	snap, err := f.mgr.Create(context.Background(), "u1")
	require.NoError(t, err)

	unlock, err := f.mgr.lock(context.Background(), snap.ID)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = f.mgr.Do(ctx, snap.ID, func(context.Context, *Session) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestManager_CheckoutEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	snap, err := f.mgr.Create(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, f.mgr.Do(ctx, snap.ID, func(_ context.Context, s *Session) error {
		s.Cart.ApplyCoupon("NEWUSER")
		if err := s.PlaceOrder(); err != nil {
			return err
		}
		return s.Flow.ContinueToPayment()
	}))

	o, err := f.mgr.ConfirmPayment(ctx, snap.ID, validCard())
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("490").Equal(o.TotalAmount))

	got, err := f.mgr.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Cart.Items)
	assert.Equal(t, checkout.State{Step: checkout.StepBag}, got.Checkout)
}

func TestManager_ConfirmPaymentOrderFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	snap, err := f.mgr.Create(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, f.mgr.Do(ctx, snap.ID, func(_ context.Context, s *Session) error {
		if err := s.PlaceOrder(); err != nil {
			return err
		}
		return s.Flow.ContinueToPayment()
	}))

	f.orders.err = errors.New("order service down")
	_, err = f.mgr.ConfirmPayment(ctx, snap.ID, validCard())
	var cerr *order.CreationError
	require.ErrorAs(t, err, &cerr)

	got, err := f.mgr.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Len(t, got.Cart.Items, 1)
	assert.Equal(t, checkout.StepPayment, got.Checkout.Step)
	assert.True(t, got.Checkout.PaymentConfirmed)
	require.NotNil(t, got.Checkout.Payment)
	assert.Equal(t, "tok", got.Checkout.Payment.Token)
}

func TestSession_AddressBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	snap, err := f.mgr.Create(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, f.mgr.Do(ctx, snap.ID, func(ctx context.Context, s *Session) error {
		require.NoError(t, s.PlaceOrder())
		require.Equal(t, "a1", s.Flow.State().SelectedAddress.ID)

		added, err := s.AddAddress(ctx, homeAddress("", true))
		require.NoError(t, err)
		assert.NotEmpty(t, added.ID)
		def, ok := s.Addresses().Default()
		require.True(t, ok)
		assert.Equal(t, added.ID, def.ID)

		require.NoError(t, s.SetDefaultAddress(ctx, "a2"))
		def, _ = s.Addresses().Default()
		assert.Equal(t, "a2", def.ID)

		require.NoError(t, s.RemoveAddress(ctx, "a1"))
		assert.Nil(t, s.Flow.State().SelectedAddress)
		return nil
	}))

	assert.Len(t, f.profiles.profile.Addresses, 2)
}

func TestSession_UpdateSelectedAddress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	snap, err := f.mgr.Create(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, f.mgr.Do(ctx, snap.ID, func(ctx context.Context, s *Session) error {
		require.NoError(t, s.SelectAddress("a2"))
		a := homeAddress("a2", false)
		a.City = "Mumbai"
		require.NoError(t, s.UpdateAddress(ctx, a))
		assert.Equal(t, "Mumbai", s.Flow.State().SelectedAddress.City)
		return nil
	}))
}

func TestSession_AddressWriteFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	snap, err := f.mgr.Create(ctx, "u1")
	require.NoError(t, err)
	f.profiles.updateErr = errors.New("profile service down")

	err = f.mgr.Do(ctx, snap.ID, func(ctx context.Context, s *Session) error {
		return s.RemoveAddress(ctx, "a1")
	})
	require.Error(t, err)

	got, err := f.mgr.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Len(t, got.Profile.Addresses, 2)
}

func TestSession_SelectUnknownAddress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	snap, err := f.mgr.Create(ctx, "u1")
	require.NoError(t, err)

	err = f.mgr.Do(ctx, snap.ID, func(_ context.Context, s *Session) error {
		return s.SelectAddress("nope")
	})
	require.ErrorIs(t, err, profile.ErrNotFound)
}

func TestManager_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	snap, err := f.mgr.Create(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, f.mgr.Delete(ctx, snap.ID))
	_, err = f.mgr.Get(ctx, snap.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func lockCount(m *Manager) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

func TestManager_LocksReleasedAfterExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ids := make([]string, 0, 50)
	for range 50 {
		snap, err := f.mgr.Create(ctx, "u1")
		require.NoError(t, err)
		require.NoError(t, f.mgr.Do(ctx, snap.ID, func(_ context.Context, s *Session) error {
			return s.PlaceOrder()
		}))
		ids = append(ids, snap.ID)
	}

	// Expiry removes sessions from the store without going through the
	// manager.
	for _, id := range ids {
		require.NoError(t, f.repo.Delete(ctx, id))
	}
	for _, id := range ids[:10] {
		err := f.mgr.Do(ctx, id, func(context.Context, *Session) error { return nil })
		require.ErrorIs(t, err, ErrNotFound)
	}

	assert.Zero(t, lockCount(f.mgr))
}

func TestManager_LockReleasedOnCancel(t *testing.T) {
	f := newFixture(t)
	unlock, err := f.mgr.lock(context.Background(), "s1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.mgr.lock(ctx, "s1")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, lockCount(f.mgr))

	unlock()
	assert.Zero(t, lockCount(f.mgr))
}

func TestManager_DeleteWaitsForRunningOperation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	snap, err := f.mgr.Create(ctx, "u1")
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	doErr := make(chan error, 1)
	go func() {
		doErr <- f.mgr.Do(ctx, snap.ID, func(_ context.Context, s *Session) error {
			close(entered)
			<-release
			s.Cart.ApplyCoupon("NEWUSER")
			return nil
		})
	}()
	<-entered

	deleted := make(chan error, 1)
	go func() { deleted <- f.mgr.Delete(ctx, snap.ID) }()

	select {
	case <-deleted:
		t.Fatal("delete finished while an operation held the session")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-doErr)
	require.NoError(t, <-deleted)

	_, err = f.mgr.Get(ctx, snap.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, lockCount(f.mgr))
}
