package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/bizhub/backend/internal/domain/billing"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/bizhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UsageGate is the part of the usage service the create gate needs
type UsageGate interface {
	EnsureCanCreate(ctx context.Context, userID uuid.UUID, resource billing.ResourceType) error
	RecordCreated(ctx context.Context, userID uuid.UUID, resource billing.ResourceType)
}

// RejectionObserver is told about every create blocked by a plan limit
type RejectionObserver interface {
	ObserveUsageRejection(resource string)
}

// ownerLocks hands out one mutex per owner and drops it once nobody holds
// or waits on it
type ownerLocks struct {
	mu   sync.Mutex
	held map[uuid.UUID]*ownerLock
}

type ownerLock struct {
	sync.Mutex
	refs int
}

func (l *ownerLocks) lock(id uuid.UUID) (unlock func()) {
	l.mu.Lock()
	if l.held == nil {
		l.held = make(map[uuid.UUID]*ownerLock)
	}
	ol, ok := l.held[id]
	if !ok {
		ol = &ownerLock{}
		l.held[id] = ol
	}
	ol.refs++
	l.mu.Unlock()

	ol.Lock()
	return func() {
		ol.Unlock()
		l.mu.Lock()
		if ol.refs--; ol.refs == 0 {
			delete(l.held, id)
		}
		l.mu.Unlock()
	}
}

// UsageLimit guards a create route. It rejects with 403
// ERR_USAGE_LIMIT_EXCEEDED once the resource is exhausted and, after a
// successful create, lets the tracker raise threshold events. Must run
// after JWTAuth.
//
// Creates by the same owner are serialized from the check through the
// handler, so parallel requests at limit-1 cannot all pass within one
// process.
func UsageLimit(gate UsageGate, resource billing.ResourceType, observer RejectionObserver, logger *zap.Logger) gin.HandlerFunc {
	locks := &ownerLocks{}
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			abortAuth(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		unlock := locks.lock(userID)
		defer unlock()

		ctx := c.Request.Context()
		if err := gate.EnsureCanCreate(ctx, userID, resource); err != nil {
			if errors.Is(err, shared.ErrUsageLimitExceeded) {
				if observer != nil {
					observer.ObserveUsageRejection(resource.String())
				}
				c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
					dto.ErrCodeUsageLimitExceeded, err.Error(), GetRequestID(c)))
				return
			}
			logger.Error("Usage check failed",
				zap.String("user_id", userID.String()),
				zap.String("resource", resource.String()),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeInternal, "An unexpected error occurred", GetRequestID(c)))
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusCreated {
			gate.RecordCreated(context.WithoutCancel(ctx), userID, resource)
		}
	}
}
