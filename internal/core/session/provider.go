// Package session holds the authentication state of every active browser
// session and resolves it in the background.
//
// A session id seen for the first time starts out resolving. The provider
// schedules one resolution for it: the stored identity token is loaded and
// verified, and the session settles on either a user or no identity. After
// that the session never resolves again; SignIn and SignOut replace the
// identity directly.
//
// Settled sessions are re-checked against the store in the background once
// they are older than Options.RevalidateAfter, so a token deleted or expired
// elsewhere stops being honoured. The last known state keeps being served
// while the re-check runs. A signed-in identity past its token TTL is dropped
// on the spot.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/skillsphere/web/internal/core/domain"
	"github.com/skillsphere/web/internal/core/ports"
	"github.com/skillsphere/web/internal/pkg/metrics"
)

const (
	defaultTokenTTL       = 24 * time.Hour
	defaultResolveTimeout = 5 * time.Second
	defaultRevalidate     = time.Minute
	subscriberBuffer      = 4
)

// Options tunes a Provider. Zero values fall back to defaults.
type Options struct {
	// TokenTTL is how long a stored identity token stays valid.
	TokenTTL time.Duration
	// ResolveTimeout bounds one resolution (store read + token verification).
	ResolveTimeout time.Duration
	// RevalidateAfter is how old a settled session may get before it is
	// checked against the store again.
	RevalidateAfter time.Duration
}

type entry struct {
	state    domain.Session
	done     chan struct{}
	subs     map[int]chan domain.Session
	lastSeen time.Time

	// queued is set while the first resolution sits with the scheduler.
	queued bool
	// verifiedAt is when the identity was last confirmed by the store.
	verifiedAt time.Time
	// expiresAt is set by SignIn; zero when the token TTL is unknown.
	expiresAt    time.Time
	revalidating bool
	// version changes whenever state is replaced.
	version uint64
}

// Provider implements ports.SessionProvider.
type Provider struct {
	store     ports.SessionStore
	resolver  ports.IdentityResolver
	scheduler ports.Scheduler
	log       zerolog.Logger
	opts      Options
	now       func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	nextSub int
}

// NewProvider wires a Provider. Resolution work is handed to scheduler.
func NewProvider(store ports.SessionStore, resolver ports.IdentityResolver, scheduler ports.Scheduler, log zerolog.Logger, opts Options) *Provider {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	if opts.ResolveTimeout <= 0 {
		opts.ResolveTimeout = defaultResolveTimeout
	}
	if opts.RevalidateAfter <= 0 {
		opts.RevalidateAfter = defaultRevalidate
	}
	return &Provider{
		store:     store,
		resolver:  resolver,
		scheduler: scheduler,
		log:       log,
		opts:      opts,
		now:       time.Now,
		entries:   make(map[string]*entry),
	}
}

// Snapshot returns a copy of the session state for sid. The first call for a
// sid schedules its resolution and returns a resolving session.
func (p *Provider) Snapshot(sid string) domain.Session {
	e, pending := p.touch(sid)
	if pending {
		p.schedule(sid, e)
	}

	p.mu.Lock()
	version, stale := p.refreshLocked(e)
	s := e.state.Clone()
	p.mu.Unlock()

	if stale {
		p.scheduleRevalidation(sid, e, version)
	}
	return s
}

// Await is Snapshot followed by a wait for resolution to finish. It returns
// early, possibly still resolving, when ctx is done.
func (p *Provider) Await(ctx context.Context, sid string) domain.Session {
	s := p.Snapshot(sid)
	if !s.Resolving {
		return s
	}

	p.mu.Lock()
	e := p.entries[sid]
	if e == nil || !e.queued {
		// Either settled already or refused by the scheduler; in the latter
		// case nothing will close done and the next request schedules again.
		if e != nil {
			s = e.state.Clone()
		}
		p.mu.Unlock()
		return s
	}
	p.mu.Unlock()

	select {
	case <-e.done:
	case <-ctx.Done():
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return e.state.Clone()
}

// SignIn stores token for sid and makes user the session identity.
func (p *Provider) SignIn(ctx context.Context, sid, token string, user *domain.User) error {
	if err := p.store.Set(ctx, sid, token, p.opts.TokenTTL); err != nil {
		return err
	}
	p.settle(sid, user)
	return nil
}

// SignOut forgets the token for sid and clears the identity.
func (p *Provider) SignOut(ctx context.Context, sid string) error {
	if err := p.store.Delete(ctx, sid); err != nil {
		return err
	}
	p.settle(sid, nil)
	return nil
}

// Subscribe returns a channel that receives the session state after every
// change, and a function that ends the subscription. Slow subscribers miss
// intermediate states rather than block the provider.
func (p *Provider) Subscribe(sid string) (<-chan domain.Session, func()) {
	e, pending := p.touch(sid)
	if pending {
		p.schedule(sid, e)
	}

	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	ch := make(chan domain.Session, subscriberBuffer)
	e.subs[id] = ch
	p.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if sub, ok := e.subs[id]; ok {
				delete(e.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Len reports how many sessions are held in memory.
func (p *Provider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Sweep drops sessions not seen for maxIdle that have no subscribers.
// A dropped session resolves again from the store on its next request.
func (p *Provider) Sweep(maxIdle time.Duration) int {
	cutoff := p.now().Add(-maxIdle)

	p.mu.Lock()
	defer p.mu.Unlock()
	removed := 0
	for sid, e := range p.entries {
		if len(e.subs) > 0 || e.queued {
			continue
		}
		if e.lastSeen.Before(cutoff) {
			delete(p.entries, sid)
			removed++
		}
	}
	return removed
}

// Run sweeps idle sessions every interval until ctx is cancelled.
func (p *Provider) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := p.Sweep(maxIdle); n > 0 {
				p.log.Debug().Int("evicted", n).Int("active", p.Len()).Msg("idle sessions swept")
			}
		}
	}
}

// touch returns the entry for sid, creating a resolving one when absent. It
// reports whether the caller must schedule the first resolution.
func (p *Provider) touch(sid string) (*entry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[sid]
	if !ok {
		e = &entry{
			state: domain.Session{Resolving: true},
			done:  make(chan struct{}),
			subs:  make(map[int]chan domain.Session),
		}
		p.entries[sid] = e
	}
	e.lastSeen = p.now()
	if !e.state.Resolving || e.queued {
		return e, false
	}
	e.queued = true
	return e, true
}

// schedule hands the first resolution of e to the scheduler. A refused job
// leaves e resolving and unqueued so the next request tries again.
func (p *Provider) schedule(sid string, e *entry) {
	ok := p.scheduler.Schedule(sid, func(ctx context.Context) {
		p.resolve(ctx, sid)
	})
	if ok {
		return
	}
	p.log.Warn().Str("sid", sid).Msg("session resolution not scheduled")
	p.mu.Lock()
	e.queued = false
	p.mu.Unlock()
}

// refreshLocked drops a signed-in identity whose token TTL has passed and
// reports whether the settled state is old enough to re-check.
func (p *Provider) refreshLocked(e *entry) (uint64, bool) {
	if e.state.Resolving {
		return 0, false
	}
	now := p.now()
	if e.state.Identity != nil && !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
		metrics.SessionRevalidationsTotal.WithLabelValues("expired").Inc()
		p.replaceLocked(e, nil)
		p.notifyLocked(e)
		return 0, false
	}
	if e.revalidating || now.Sub(e.verifiedAt) < p.opts.RevalidateAfter {
		return 0, false
	}
	e.revalidating = true
	return e.version, true
}

func (p *Provider) scheduleRevalidation(sid string, e *entry, version uint64) {
	ok := p.scheduler.Schedule(sid, func(ctx context.Context) {
		p.revalidate(ctx, sid, e, version)
	})
	if ok {
		return
	}
	p.mu.Lock()
	if e.version == version {
		e.revalidating = false
	}
	p.mu.Unlock()
}

// revalidate re-reads the token for a settled session. The session never goes
// back to resolving; its identity is replaced only when the outcome differs,
// and not at all when SignIn or SignOut changed it in the meantime.
func (p *Provider) revalidate(ctx context.Context, sid string, e *entry, version uint64) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.ResolveTimeout)
	defer cancel()

	user, result := p.lookup(ctx, sid)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.entries[sid] != e || e.version != version {
		metrics.SessionRevalidationsTotal.WithLabelValues("superseded").Inc()
		return
	}
	metrics.SessionRevalidationsTotal.WithLabelValues(result).Inc()
	e.revalidating = false
	if result == "store_error" {
		// Keep serving the last known identity; try again after the interval.
		e.verifiedAt = p.now()
		return
	}
	if sameUser(e.state.Identity, user) {
		e.verifiedAt = p.now()
		return
	}
	expires := e.expiresAt
	p.replaceLocked(e, user)
	if user != nil {
		e.expiresAt = expires
	}
	p.notifyLocked(e)
}

func (p *Provider) resolve(ctx context.Context, sid string) {
	p.mu.Lock()
	e, ok := p.entries[sid]
	pending := ok && e.state.Resolving
	p.mu.Unlock()
	if !pending {
		// Already settled by SignIn/SignOut, or swept.
		return
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, p.opts.ResolveTimeout)
	defer cancel()

	user, result := p.lookup(ctx, sid)
	metrics.SessionResolutionsTotal.WithLabelValues(result).Inc()
	metrics.SessionResolutionDuration.Observe(time.Since(start).Seconds())

	p.finishResolving(sid, user)
}

// lookup loads and verifies the token for sid. Every failure is reported as
// no identity.
func (p *Provider) lookup(ctx context.Context, sid string) (*domain.User, string) {
	token, err := p.store.Get(ctx, sid)
	if err != nil {
		p.log.Warn().Err(err).Str("sid", sid).Msg("session token lookup failed")
		return nil, "store_error"
	}
	if token == "" {
		return nil, "anonymous"
	}

	user, err := p.resolver.Resolve(ctx, token)
	if err != nil {
		p.log.Warn().Err(err).Str("sid", sid).Msg("identity resolution failed")
		return nil, "rejected"
	}
	return user, "authenticated"
}

// finishResolving ends the resolving phase unless SignIn/SignOut got there
// first.
func (p *Provider) finishResolving(sid string, user *domain.User) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[sid]
	if !ok || !e.state.Resolving {
		return
	}
	e.queued = false
	p.replaceLocked(e, user)
	close(e.done)
	p.notifyLocked(e)
}

// settle replaces the identity for sid and ends resolving if still pending.
// A user settled here expires after the token TTL.
func (p *Provider) settle(sid string, user *domain.User) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[sid]
	if !ok {
		e = &entry{
			done: make(chan struct{}),
			subs: make(map[int]chan domain.Session),
		}
		close(e.done)
		p.entries[sid] = e
	} else if e.state.Resolving {
		close(e.done)
	}
	e.queued = false
	e.lastSeen = p.now()
	p.replaceLocked(e, user)
	if user != nil {
		e.expiresAt = e.verifiedAt.Add(p.opts.TokenTTL)
	}
	p.notifyLocked(e)
}

// replaceLocked installs a settled state and marks it freshly verified.
func (p *Provider) replaceLocked(e *entry, user *domain.User) {
	e.state = domain.Session{Identity: cloneUser(user)}
	e.verifiedAt = p.now()
	e.expiresAt = time.Time{}
	e.revalidating = false
	e.version++
}

func (p *Provider) notifyLocked(e *entry) {
	for _, ch := range e.subs {
		select {
		case ch <- e.state.Clone():
		default:
			// Drop the oldest pending state so the latest one is delivered.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- e.state.Clone():
			default:
			}
		}
	}
}

func sameUser(a, b *domain.User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
