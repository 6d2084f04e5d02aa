// Package core wires the domain packages into the guest and staff flows the
// HTTP layer exposes. Handlers stay thin; every multi-step rule lives here.
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tableserve/api/internal/auth"
	"github.com/tableserve/api/internal/cart"
	"github.com/tableserve/api/internal/config"
	"github.com/tableserve/api/internal/hub"
	"github.com/tableserve/api/internal/logger"
	"github.com/tableserve/api/internal/menu"
	"github.com/tableserve/api/internal/order"
	"github.com/tableserve/api/internal/payment"
	"github.com/tableserve/api/internal/session"
	"github.com/tableserve/api/internal/staff"
	"github.com/tableserve/api/internal/token"
	"github.com/tableserve/api/internal/venue"
)

var (
	ErrUnauthorized = errors.New("invalid or missing session token")
	ErrBadRequest   = errors.New("invalid request")
)

type Service struct {
	Cfg      config.Config
	Log      *logger.Logger
	Venues   venue.Repository
	Sessions session.Repository
	Carts    cart.Repository
	Orders   order.Repository
	Payments payment.Repository
	Staff    staff.Repository
	Menu     *menu.Catalog
	Tokens   *token.Store
	StaffTok *auth.Tokens
	Hub      *hub.Hub
}

type JoinInput struct {
	VenueSlug   string
	TableCode   string
	PeopleCount *int
	DeviceHash  string // opaque client identifier, logged only
}

type JoinResult struct {
	Session *session.TableSession `json:"session"`
	Token   string                `json:"token"`
	Venue   *venue.Venue          `json:"venue"`
	Table   *venue.Table          `json:"table"`
}

// Join resolves the scanned QR (venue slug + table code) into the table's
// OPEN session, creating table and session on first use, and mints a fresh
// guest token for the joining device. Joining an already open session is how
// a second guest at the table gets in.
func (s *Service) Join(ctx context.Context, in JoinInput) (*JoinResult, error) {
	if in.VenueSlug == "" || in.TableCode == "" {
		return nil, ErrBadRequest
	}
	v, err := s.Venues.GetBySlug(ctx, in.VenueSlug)
	if err != nil {
		return nil, err
	}
	t, err := s.Venues.EnsureTable(ctx, v.ID, in.TableCode)
	if err != nil {
		return nil, err
	}
	sess, err := s.Sessions.EnsureOpen(ctx, v.ID, t.ID, in.PeopleCount)
	if err != nil {
		return nil, err
	}
	tok := s.Tokens.Issue(sess.ID)
	s.Log.Info("session.join", map[string]any{"sessionId": sess.ID, "table": t.Code, "deviceHash": in.DeviceHash})
	return &JoinResult{Session: sess, Token: tok, Venue: v, Table: t}, nil
}

// GuestSession authenticates a guest request: the token must belong to the
// session and the session must still be OPEN. Closing revokes every token,
// so requests against a closed session normally fail the token check; the
// closed check catches the window between close and revoke.
func (s *Service) GuestSession(ctx context.Context, sessionID, tok string) (*session.TableSession, error) {
	if !s.Tokens.IsValid(sessionID, tok) {
		return nil, ErrUnauthorized
	}
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != session.StatusOpen {
		return nil, session.ErrClosed
	}
	return sess, nil
}

// SessionState is the full snapshot a reconnecting device syncs from.
type SessionState struct {
	Session      *session.TableSession `json:"session"`
	Cart         []cart.Item           `json:"cart"`
	CartTotals   cart.Totals           `json:"cartTotals"`
	OrdersActive []order.Order         `json:"ordersActive"`
	Payments     []payment.Intent      `json:"payments"`
	MenuVersion  string                `json:"menuVersion"`
}

func (s *Service) State(ctx context.Context, sess *session.TableSession) (*SessionState, error) {
	items, err := s.Carts.ListBySession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	active, err := s.Orders.ListActiveBySession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	pays, err := s.Payments.ListBySession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	v, err := s.Venues.Get(ctx, sess.VenueID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []cart.Item{}
	}
	if active == nil {
		active = []order.Order{}
	}
	if pays == nil {
		pays = []payment.Intent{}
	}
	return &SessionState{
		Session:      sess,
		Cart:         items,
		CartTotals:   cart.CalcTotals(items),
		OrdersActive: active,
		Payments:     pays,
		MenuVersion:  s.Menu.Version(v.Slug),
	}, nil
}

// CloseSession closes the session, revokes every guest token, and tells the
// room why. Already closed sessions converge without a second broadcast.
func (s *Service) CloseSession(ctx context.Context, sessionID, reason string) error {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	alreadyClosed := sess.Status == session.StatusClosed
	if _, err := s.Sessions.Close(ctx, sessionID); err != nil {
		return err
	}
	s.Tokens.RevokeAll(sessionID)
	if !alreadyClosed {
		s.Hub.Publish(hub.SessionClosed(sessionID, reason), hub.SessionRoom(sessionID))
		s.Log.Info("session.closed", map[string]any{"sessionId": sessionID, "reason": reason})
	}
	return nil
}

type AddItemInput struct {
	MenuItemID string          `json:"menuItemId"`
	Qty        int             `json:"qty"`
	Note       string          `json:"note"`
	Modifiers  []cart.Modifier `json:"modifiers"`
}

// AddCartItem validates the item against the live menu, snapshots its price
// and name into the cart, and broadcasts the new cart to the table.
func (s *Service) AddCartItem(ctx context.Context, sess *session.TableSession, in AddItemInput) ([]cart.Item, error) {
	if in.MenuItemID == "" || in.Qty < 1 {
		return nil, ErrBadRequest
	}
	v, err := s.Venues.Get(ctx, sess.VenueID)
	if err != nil {
		return nil, err
	}
	mi := s.Menu.FindItem(v.Slug, in.MenuItemID)
	mods, err := cart.ValidateModifiers(mi, in.Modifiers)
	if err != nil {
		return nil, err
	}
	item := &cart.Item{
		ID:         uuid.NewString(),
		SessionID:  sess.ID,
		MenuItemID: mi.ID,
		Qty:        in.Qty,
		Note:       in.Note,
		UnitPrice:  mi.Price,
		ItemName:   mi.Name,
		Modifiers:  mods,
	}
	if err := s.Carts.Add(ctx, item); err != nil {
		return nil, err
	}
	return s.broadcastCart(ctx, sess.ID)
}

func (s *Service) SetCartQty(ctx context.Context, sess *session.TableSession, itemID string, qty int) ([]cart.Item, error) {
	if err := s.Carts.SetQty(ctx, sess.ID, itemID, qty); err != nil {
		return nil, err
	}
	return s.broadcastCart(ctx, sess.ID)
}

func (s *Service) RemoveCartItem(ctx context.Context, sess *session.TableSession, itemID string) ([]cart.Item, error) {
	if err := s.Carts.Remove(ctx, sess.ID, itemID); err != nil {
		return nil, err
	}
	return s.broadcastCart(ctx, sess.ID)
}

func (s *Service) broadcastCart(ctx context.Context, sessionID string) ([]cart.Item, error) {
	items, err := s.Carts.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []cart.Item{}
	}
	s.Hub.Publish(hub.CartUpdated(items, cart.CalcTotals(items)), hub.SessionRoom(sessionID))
	return items, nil
}

// SubmitOrder turns the shared cart into a new order and announces it to the
// table and the kitchen. The emptied cart is broadcast too, so every guest
// device clears at once.
func (s *Service) SubmitOrder(ctx context.Context, sess *session.TableSession, comment, idemKey string) (*order.Order, error) {
	o, err := s.Orders.SubmitFromCart(ctx, order.SubmitInput{
		SessionID:      sess.ID,
		VenueID:        sess.VenueID,
		TableID:        sess.TableID,
		Comment:        comment,
		IdempotencyKey: idemKey,
	})
	if err != nil {
		return nil, err
	}
	s.Hub.Publish(hub.CartUpdated([]cart.Item{}, cart.Totals{}), hub.SessionRoom(sess.ID))
	s.Hub.Publish(hub.OrderCreated(o), hub.SessionRoom(sess.ID), hub.KitchenRoom(sess.VenueID))
	s.Log.Info("order.created", map[string]any{"orderId": o.ID, "number": o.Number})
	return o, nil
}

// SetOrderStatus applies a staff status change and routes the update: the
// table and the kitchen always hear it, waiters only once food is READY or
// SERVED (their screens track the hand-off, not the cooking).
func (s *Service) SetOrderStatus(ctx context.Context, claims *auth.StaffClaims, orderID string, to order.Status) (*order.Order, error) {
	if !to.Valid() {
		return nil, ErrBadRequest
	}
	o, err := s.Orders.SetStatus(ctx, orderID, claims.Role, claims.VenueID, to)
	if err != nil {
		return nil, err
	}
	rooms := []hub.Room{hub.SessionRoom(o.SessionID), hub.KitchenRoom(o.VenueID)}
	if o.Status == order.StatusReady || o.Status == order.StatusServed {
		rooms = append(rooms, hub.WaitersRoom(o.VenueID))
	}
	s.Hub.Publish(hub.OrderUpdated(o), rooms...)
	s.Log.Info("order.status", map[string]any{"orderId": o.ID, "status": o.Status, "by": claims.Sub})
	return o, nil
}

type PaymentInput struct {
	Mode             payment.Mode `json:"mode"`
	OrderID          string       `json:"orderId"`
	Amount           int64        `json:"amount"`
	Items            []string     `json:"items"`
	SplitCount       *int         `json:"splitCount"`
	StateVersion     *int64       `json:"stateVersion"`
	PaidByDeviceHash string       `json:"paidByDeviceHash"`
	IdempotencyKey   string       `json:"idempotencyKey"`
}

// CreatePayment quotes and settles a payment in one call. The outstanding
// amount is computed from a snapshot of the session; the repository's version
// check then rejects the charge if the session moved on since the client's
// quote (stateVersion), so a guest never pays against a stale bill.
func (s *Service) CreatePayment(ctx context.Context, sess *session.TableSession, in PaymentInput) (*payment.Intent, error) {
	if !in.Mode.Valid() {
		return nil, ErrBadRequest
	}

	basis := payment.Basis{SelectedIDs: in.Items}
	if in.OrderID != "" {
		o, err := s.Orders.Get(ctx, in.OrderID)
		if err != nil {
			return nil, err
		}
		if o.SessionID != sess.ID {
			return nil, order.ErrNotFound
		}
		basis.Order = o
	} else {
		active, err := s.Orders.ListActiveBySession(ctx, sess.ID)
		if err != nil {
			return nil, err
		}
		basis.Active = active
		items, err := s.Carts.ListBySession(ctx, sess.ID)
		if err != nil {
			return nil, err
		}
		basis.Cart = items
	}
	paid, err := s.Payments.SumPaid(ctx, sess.ID, in.OrderID)
	if err != nil {
		return nil, err
	}
	basis.Paid = paid

	splitCount := 0
	if in.SplitCount != nil {
		splitCount = *in.SplitCount
	} else if sess.PeopleCount != nil {
		splitCount = *sess.PeopleCount
	}

	outstanding := payment.Outstanding(in.Mode, basis)
	amount, err := payment.ResolveAmount(in.Mode, in.Amount, basis, outstanding, splitCount)
	if err != nil {
		return nil, err
	}

	intent, err := s.Payments.CreateSettled(ctx, payment.CreateInput{
		VenueID:   sess.VenueID,
		SessionID: sess.ID,
		OrderID:   in.OrderID,
		Amount:    amount,
		Payload: payment.Payload{
			Mode:             in.Mode,
			Items:            in.Items,
			SplitCount:       in.SplitCount,
			PaidByDeviceHash: in.PaidByDeviceHash,
		},
		StateVersion:   in.StateVersion,
		IdempotencyKey: in.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	s.Hub.Publish(hub.PaymentUpdated(intent), hub.SessionRoom(sess.ID))
	s.Log.Info("payment.settled", map[string]any{"paymentId": intent.ID, "amount": intent.Amount, "mode": in.Mode})
	return intent, nil
}

// Assistance pings the venue's waiter screens with the table asking for help.
func (s *Service) Assistance(ctx context.Context, sess *session.TableSession, note string) error {
	t, err := s.Venues.GetTable(ctx, sess.TableID)
	if err != nil {
		return err
	}
	if err := s.Sessions.Touch(ctx, sess.ID, nil); err != nil {
		return err
	}
	s.Hub.Publish(hub.AssistanceRequested(sess.ID, t.Code, note), hub.WaitersRoom(sess.VenueID))
	return nil
}

// Ping records guest activity so the inactivity reaper leaves the session
// alone while someone is still looking at the menu.
func (s *Service) Ping(ctx context.Context, sess *session.TableSession, peopleCount *int) error {
	return s.Sessions.Touch(ctx, sess.ID, peopleCount)
}

// MenuFor returns the venue's published menu.
func (s *Service) MenuFor(slug string) *menu.Menu {
	return s.Menu.Get(slug)
}

// RefreshMenu bumps the venue's menu version and tells the staff screens to
// refetch. Guest devices pick the new version up from their next state
// snapshot.
func (s *Service) RefreshMenu(ctx context.Context, slug string) (string, error) {
	v, err := s.Venues.GetBySlug(ctx, slug)
	if err != nil {
		return "", err
	}
	next := s.Menu.BumpVersion(slug)
	s.Hub.Publish(hub.MenuUpdated(next), hub.KitchenRoom(v.ID), hub.WaitersRoom(v.ID))
	s.Log.Info("menu.refreshed", map[string]any{"venue": slug, "version": next})
	return next, nil
}

type LoginResult struct {
	Token string      `json:"token"`
	User  *staff.User `json:"user"`
}

// Login checks staff credentials and issues a short-lived access token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.Staff.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, staff.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !u.IsActive || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrUnauthorized
	}
	return &LoginResult{Token: s.StaffTok.Sign(u.ID, u.Role, u.VenueID), User: u}, nil
}

// SeedDemo provisions the demo venue and one staff account per role so a
// fresh install is usable without any back office.
func (s *Service) SeedDemo(ctx context.Context) error {
	dv := menu.DemoVenue
	if err := s.Venues.Upsert(ctx, &venue.Venue{
		ID: dv.ID, Name: dv.Name, Slug: dv.Slug, Currency: dv.Currency, Timezone: dv.Timezone,
	}); err != nil {
		return fmt.Errorf("seed venue: %w", err)
	}
	hash, err := auth.HashPassword(s.Cfg.StaffDemoPassword)
	if err != nil {
		return err
	}
	users := []staff.User{
		{ID: "staff-admin", Role: auth.RoleAdmin, Name: "Demo Admin", Email: "admin@example.com"},
		{ID: "staff-kitchen", Role: auth.RoleKitchen, Name: "Demo Kitchen", Email: "kitchen@example.com"},
		{ID: "staff-waiter", Role: auth.RoleWaiter, Name: "Demo Waiter", Email: "waiter@example.com"},
	}
	for i := range users {
		users[i].VenueID = dv.ID
		users[i].PasswordHash = hash
		users[i].IsActive = true
		if err := s.Staff.Upsert(ctx, &users[i]); err != nil {
			return fmt.Errorf("seed staff %s: %w", users[i].Email, err)
		}
	}
	return nil
}
