package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tableserve/api/internal/auth"
	"github.com/tableserve/api/internal/core"
	"github.com/tableserve/api/internal/order"
)

const claimsKey = "staffClaims"

// requireStaff verifies the bearer token and gates the route on role.
// EventSource cannot set headers, so SSE routes also accept ?token=.
func requireStaff(svc *core.Service, roles ...auth.Role) gin.HandlerFunc {
	allowed := map[auth.Role]struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		tok := auth.ParseBearer(c.GetHeader("Authorization"))
		if tok == "" {
			tok = c.Query("token")
		}
		claims := svc.StaffTok.Verify(tok)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHORIZED", "message": "invalid or expired token"})
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "FORBIDDEN", "message": "role not allowed"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func staffClaims(c *gin.Context) *auth.StaffClaims {
	v, _ := c.Get(claimsKey)
	claims, _ := v.(*auth.StaffClaims)
	return claims
}

func loginHandler(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
			fail(c, svc, core.ErrBadRequest)
			return
		}
		res, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			fail(c, svc, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// listOrdersHandler returns the venue's orders, optionally filtered with
// ?status=NEW,ACCEPTED. An unknown status name is a bad request rather than
// a silent empty result.
func listOrdersHandler(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := staffClaims(c)
		var statuses []order.Status
		if q := c.Query("status"); q != "" {
			for _, s := range strings.Split(q, ",") {
				st := order.Status(strings.ToUpper(strings.TrimSpace(s)))
				if !st.Valid() {
					fail(c, svc, core.ErrBadRequest)
					return
				}
				statuses = append(statuses, st)
			}
		}
		orders, err := svc.Orders.ListByVenue(c.Request.Context(), claims.VenueID, statuses)
		if err != nil {
			fail(c, svc, err)
			return
		}
		if orders == nil {
			orders = []order.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

func setOrderStatusHandler(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := staffClaims(c)
		var req struct {
			Status order.Status `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, svc, core.ErrBadRequest)
			return
		}
		o, err := svc.SetOrderStatus(c.Request.Context(), claims, c.Param("orderId"), req.Status)
		if err != nil {
			fail(c, svc, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": o})
	}
}

// refreshMenuHandler bumps the menu version so connected screens refetch
// after an out-of-band menu edit.
func refreshMenuHandler(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		version, err := svc.RefreshMenu(c.Request.Context(), c.Param("slug"))
		if err != nil {
			fail(c, svc, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"version": version})
	}
}

func closeSessionHandler(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Reason string `json:"reason"`
		}
		_ = c.ShouldBindJSON(&req)
		if req.Reason == "" {
			req.Reason = "manual"
		}
		if err := svc.CloseSession(c.Request.Context(), c.Param("sessionId"), req.Reason); err != nil {
			fail(c, svc, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
