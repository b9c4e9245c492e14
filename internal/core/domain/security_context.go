package domain

import (
	"context"
	"sync"
)

// SecurityContext is the authentication state of a request. It is either
// Anonymous or Authenticated; callers switch on the concrete type.
type SecurityContext interface {
	securityContext()
}

// Anonymous means no principal has been established for the request.
type Anonymous struct{}

// Authenticated carries the principal established for the request.
type Authenticated struct {
	Principal Principal
}

func (Anonymous) securityContext()     {}
func (Authenticated) securityContext() {}

type securityHolderKey struct{}

// securityHolder is the request-scoped slot written by the request
// authenticator and by login, and read by the services.
type securityHolder struct {
	mu sync.RWMutex
	sc SecurityContext
}

// WithSecurityContext returns a child context carrying an empty (anonymous)
// security slot. Install it once per request before anything reads or writes.
func WithSecurityContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, securityHolderKey{}, &securityHolder{sc: Anonymous{}})
}

// SetSecurityContext replaces the request's security context. It reports
// false when ctx has no slot installed.
func SetSecurityContext(ctx context.Context, sc SecurityContext) bool {
	h, ok := ctx.Value(securityHolderKey{}).(*securityHolder)
	if !ok || h == nil {
		return false
	}
	if sc == nil {
		sc = Anonymous{}
	}
	h.mu.Lock()
	h.sc = sc
	h.mu.Unlock()
	return true
}

// CurrentSecurityContext returns the request's security context, or
// Anonymous when none was installed.
func CurrentSecurityContext(ctx context.Context) SecurityContext {
	h, ok := ctx.Value(securityHolderKey{}).(*securityHolder)
	if !ok || h == nil {
		return Anonymous{}
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sc
}

// CurrentPrincipal returns the authenticated principal of ctx, if any.
func CurrentPrincipal(ctx context.Context) (Principal, bool) {
	switch sc := CurrentSecurityContext(ctx).(type) {
	case Authenticated:
		return sc.Principal, true
	default:
		return Principal{}, false
	}
}
