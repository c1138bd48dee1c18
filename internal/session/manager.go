package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/domain/checkout"
	"github.com/xenking/storefront-checkout/internal/domain/order"
	"github.com/xenking/storefront-checkout/internal/domain/payment"
	"github.com/xenking/storefront-checkout/internal/domain/profile"
)

// Services are the collaborators a session talks to.
type Services struct {
	Carts     cart.Service
	Profiles  profile.Service
	Payments  payment.Confirmer
	Submitter checkout.OrderSubmitter
}

// Manager creates, loads and persists sessions. Operations on one session
// run one at a time within this process.
type Manager struct {
	repo    Repository
	svc     Services
	metrics *Metrics

	mu    sync.Mutex
	locks map[string]*sessionLock
	now   func() time.Time
}

// NewManager creates a Manager. A nil metrics disables counters.
func NewManager(repo Repository, svc Services, metrics *Metrics) *Manager {
	if metrics == nil {
		metrics, _ = NewMetrics(nil)
	}
	return &Manager{
		repo:    repo,
		svc:     svc,
		metrics: metrics,
		locks:   make(map[string]*sessionLock),
		now:     time.Now,
	}
}

// Create starts a session for userID. The cart and profile are fetched
// concurrently; a user unknown to either service starts empty.
func (m *Manager) Create(ctx context.Context, userID string) (*Snapshot, error) {
	if userID == "" {
		return nil, errors.New("user id required")
	}

	var (
		c *cart.Cart
		p *profile.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		got, err := m.svc.Carts.Get(gctx, userID)
		switch {
		case errors.Is(err, cart.ErrNotFound):
			c = &cart.Cart{}
		case err != nil:
			return &cart.FetchError{UserID: userID, Err: err}
		default:
			c = got
		}
		return nil
	})
	g.Go(func() error {
		got, err := m.svc.Profiles.Get(gctx, userID)
		switch {
		case errors.Is(err, profile.ErrNotFound):
			p = &profile.Profile{UserID: userID}
		case err != nil:
			return &FetchError{Resource: "profile", UserID: userID, Err: err}
		default:
			p = got
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := m.now()
	snap := &Snapshot{
		ID:         uuid.NewString(),
		UserID:     userID,
		Cart:       *c,
		CartLoaded: true,
		Profile:    p,
		Checkout:   checkout.State{Step: checkout.StepBag},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := m.repo.Save(ctx, snap); err != nil {
		return nil, errors.Wrap(err, "save session")
	}
	m.metrics.sessionCreated(ctx)

	zctx.From(ctx).Info("Session created",
		zap.String("session_id", snap.ID),
		zap.String("user_id", userID),
		zap.Int("cart_items", len(c.Items)),
	)
	return snap, nil
}

// Get returns the persisted state of a session.
func (m *Manager) Get(ctx context.Context, id string) (*Snapshot, error) {
	return m.repo.Load(ctx, id)
}

// Delete destroys a session. It waits for a running operation on the
// session to finish so that operation cannot save the session back.
func (m *Manager) Delete(ctx context.Context, id string) error {
	unlock, err := m.lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	return m.repo.Delete(ctx, id)
}

// Do runs fn against the hydrated session and persists the result. The
// session is saved even when fn fails, so partial progress (such as a
// confirmed payment whose order failed) is kept for the retry.
func (m *Manager) Do(ctx context.Context, id string, fn func(ctx context.Context, s *Session) error) error {
	unlock, err := m.lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	snap, err := m.repo.Load(ctx, id)
	if err != nil {
		return err
	}
	s := m.hydrate(snap)

	fnErr := fn(ctx, s)

	out := s.Snapshot()
	out.UpdatedAt = m.now()
	if err := m.repo.Save(ctx, out); err != nil {
		if fnErr != nil {
			zctx.From(ctx).Error("Failed to save session after failed operation",
				zap.String("session_id", id),
				zap.Error(err),
			)
			return fnErr
		}
		return errors.Wrap(err, "save session")
	}
	return fnErr
}

// ConfirmPayment confirms the payment of the session's checkout and places
// the order.
func (m *Manager) ConfirmPayment(ctx context.Context, id string, card payment.Card) (*order.Order, error) {
	var placed *order.Order
	err := m.Do(ctx, id, func(ctx context.Context, s *Session) error {
		o, err := s.Flow.ConfirmPayment(ctx, card)
		if err != nil {
			return err
		}
		placed = o
		return nil
	})

	lg := zctx.From(ctx).With(zap.String("session_id", id))
	var (
		perr *checkout.PaymentError
		cerr *order.CreationError
	)
	switch {
	case err == nil:
		m.metrics.orderPlaced(ctx)
		lg.Info("Order placed", zap.String("order_id", placed.ID))
	case errors.As(err, &perr):
		m.metrics.paymentFailed(ctx)
		lg.Warn("Payment failed", zap.Error(err))
	case errors.As(err, &cerr):
		m.metrics.orderFailed(ctx)
		lg.Error("Order creation failed", zap.Error(err))
	}
	return placed, err
}

func (m *Manager) hydrate(snap *Snapshot) *Session {
	store := cart.Restore(m.svc.Carts, snap.Cart, snap.CartLoaded)
	return &Session{
		ID:        snap.ID,
		UserID:    snap.UserID,
		Cart:      store,
		Flow:      checkout.Resume(snap.Checkout, snap.UserID, store, m.svc.Payments, m.svc.Submitter),
		Profile:   snap.Profile,
		CreatedAt: snap.CreatedAt,
		profiles:  m.svc.Profiles,
	}
}

// sessionLock serializes operations on one session. refs counts holders
// and waiters; the entry is dropped when it reaches zero, so idle and
// expired sessions leave nothing behind.
type sessionLock struct {
	ch   chan struct{}
	refs int
}

func (m *Manager) lock(ctx context.Context, id string) (func(), error) {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{ch: make(chan struct{}, 1)}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return func() {
			<-l.ch
			m.release(id, l)
		}, nil
	case <-ctx.Done():
		m.release(id, l)
		return nil, ctx.Err()
	}
}

func (m *Manager) release(id string, l *sessionLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, id)
	}
}
