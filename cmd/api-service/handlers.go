package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tableserve/api/internal/cart"
	"github.com/tableserve/api/internal/core"
	"github.com/tableserve/api/internal/order"
	"github.com/tableserve/api/internal/payment"
	"github.com/tableserve/api/internal/session"
	"github.com/tableserve/api/internal/venue"
)

// fail maps domain sentinels onto HTTP status + stable error codes. Unknown
// errors become a 503 and are logged (suppressed, so a dying database does
// not flood the log with one line per request).
func fail(c *gin.Context, svc *core.Service, err error) {
	known := []struct {
		err    error
		status int
		code   string
	}{
		{core.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{core.ErrBadRequest, http.StatusBadRequest, "VALIDATION"},
		{session.ErrClosed, http.StatusForbidden, "SESSION_CLOSED"},
		{session.ErrNotFound, http.StatusNotFound, "SESSION_NOT_FOUND"},
		{venue.ErrNotFound, http.StatusNotFound, "VENUE_NOT_FOUND"},
		{cart.ErrItemNotFound, http.StatusNotFound, "CART_ITEM_NOT_FOUND"},
		{cart.ErrOutOfStock, http.StatusBadRequest, "OUT_OF_STOCK"},
		{cart.ErrModifierRequired, http.StatusBadRequest, "MODIFIER_REQUIRED"},
		{cart.ErrModifierMin, http.StatusBadRequest, "MODIFIER_MIN"},
		{cart.ErrModifierMax, http.StatusBadRequest, "MODIFIER_MAX"},
		{order.ErrNotFound, http.StatusNotFound, "ORDER_NOT_FOUND"},
		{order.ErrCartEmpty, http.StatusBadRequest, "CART_EMPTY"},
		{order.ErrVenueMismatch, http.StatusForbidden, "VENUE_MISMATCH"},
		{order.ErrTransition, http.StatusForbidden, "TRANSITION_NOT_ALLOWED"},
		{payment.ErrNotFound, http.StatusNotFound, "PAYMENT_NOT_FOUND"},
		{payment.ErrSessionNotFound, http.StatusNotFound, "SESSION_NOT_FOUND"},
		{payment.ErrStaleState, http.StatusConflict, "STALE_STATE"},
		{payment.ErrNothingToPay, http.StatusBadRequest, "NOTHING_TO_PAY"},
		{payment.ErrInvalidItems, http.StatusBadRequest, "INVALID_ITEMS"},
		{payment.ErrAmountExceeds, http.StatusBadRequest, "AMOUNT_EXCEEDS"},
	}
	for _, k := range known {
		if errors.Is(err, k.err) {
			c.JSON(k.status, gin.H{"error": k.code, "message": k.err.Error()})
			return
		}
	}
	svc.Log.ErrorSuppressed("http.internal", err, map[string]any{"path": c.Request.URL.Path})
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "SERVICE_UNAVAILABLE", "message": "service unavailable"})
}

// guestToken reads the guest session token. REST calls send it in the
// X-Session-Token header; EventSource cannot set headers, so SSE endpoints
// fall back to ?token=.
func guestToken(c *gin.Context) string {
	if t := c.GetHeader("X-Session-Token"); t != "" {
		return t
	}
	return c.Query("token")
}

// guestSession authenticates the request against the path session. On
// failure the response has already been written.
func guestSession(c *gin.Context, svc *core.Service) (*session.TableSession, bool) {
	sess, err := svc.GuestSession(c.Request.Context(), c.Param("sessionId"), guestToken(c))
	if err != nil {
		fail(c, svc, err)
		return nil, false
	}
	return sess, true
}

func getMenuHandler(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		m := svc.MenuFor(slug)
		if m == nil {
			fail(c, svc, venue.ErrNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"menu": m, "version": svc.Menu.Version(slug)})
	}
}

func joinHandler(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			VenueSlug   string `json:"venueSlug"`
			TableCode   string `json:"tableCode"`
			PeopleCount *int   `json:"peopleCount"`
			DeviceHash  string `json:"deviceHash"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, svc, core.ErrBadRequest)
			return
		}
		res, err := svc.Join(c.Request.Context(), core.JoinInput{
			VenueSlug:   req.VenueSlug,
			TableCode:   req.TableCode,
			PeopleCount: req.PeopleCount,
			DeviceHash:  req.DeviceHash,
		})
		if err != nil {
			fail(c, svc, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

func stateHandler(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := guestSession(c, svc)
		if !ok {
			return
		}
		state, err := svc.State(c.Request.Context(), sess)
		if err != nil {
			fail(c, svc, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

func addCartItemHandler(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := guestSession(c, svc)
		if !ok {
			return
		}
		var req core.AddItemInput
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, svc, core.ErrBadRequest)
			return
		}
		items, err := svc.AddCartItem(c.Request.Context(), sess, req)
		if err != nil {
			fail(c, svc, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"cart": items, "totals": cart.CalcTotals(items)})
	}
}

func setCartQtyHandler(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := guestSession(c, svc)
		if !ok {
			return
		}
		var req struct {
			Qty *int `json:"qty"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Qty == nil {
			fail(c, svc, core.ErrBadRequest)
			return
		}
		items, err := svc.SetCartQty(c.Request.Context(), sess, c.Param("itemId"), *req.Qty)
		if err != nil {
			fail(c, svc, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cart": items, "totals": cart.CalcTotals(items)})
	}
}

func removeCartItemHandler(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := guestSession(c, svc)
		if !ok {
			return
		}
		items, err := svc.RemoveCartItem(c.Request.Context(), sess, c.Param("itemId"))
		if err != nil {
			fail(c, svc, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cart": items, "totals": cart.CalcTotals(items)})
	}
}

func submitOrderHandler(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := guestSession(c, svc)
		if !ok {
			return
		}
		var req struct {
			Comment        string `json:"comment"`
			IdempotencyKey string `json:"idempotencyKey"`
		}
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			fail(c, svc, core.ErrBadRequest)
			return
		}
		o, err := svc.SubmitOrder(c.Request.Context(), sess, req.Comment, req.IdempotencyKey)
		if err != nil {
			fail(c, svc, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"order": o})
	}
}

func createPaymentHandler(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := guestSession(c, svc)
		if !ok {
			return
		}
		var req core.PaymentInput
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, svc, core.ErrBadRequest)
			return
		}
		intent, err := svc.CreatePayment(c.Request.Context(), sess, req)
		if err != nil {
			fail(c, svc, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"payment": intent})
	}
}

func getPaymentHandler(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := guestSession(c, svc)
		if !ok {
			return
		}
		intent, err := svc.Payments.Get(c.Request.Context(), c.Param("paymentId"))
		if err != nil {
			fail(c, svc, err)
			return
		}
		if intent.SessionID != sess.ID {
			fail(c, svc, payment.ErrNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"payment": intent})
	}
}

func assistanceHandler(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := guestSession(c, svc)
		if !ok {
			return
		}
		var req struct {
			Note string `json:"note"`
		}
		_ = c.ShouldBindJSON(&req) // note is optional
		if err := svc.Assistance(c.Request.Context(), sess, req.Note); err != nil {
			fail(c, svc, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
	}
}

func pingHandler(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := guestSession(c, svc)
		if !ok {
			return
		}
		var req struct {
			PeopleCount *int `json:"peopleCount"`
		}
		_ = c.ShouldBindJSON(&req)
		if err := svc.Ping(c.Request.Context(), sess, req.PeopleCount); err != nil {
			fail(c, svc, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
