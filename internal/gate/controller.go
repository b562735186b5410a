package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=controller_mocks_test.go -package=gate_test

var (
	ErrProfileFetchFailed = errors.New("profile fetch failed")
	ErrStopped            = errors.New("gate stopped")
)

const changesBufferSize = 16

type sessionSource interface {
	CurrentUser(ctx context.Context, token string) (uuid.UUID, bool, error)
}

type profileChecker interface {
	IsComplete(ctx context.Context, userID uuid.UUID) (bool, error)
}

type changesSubscriber interface {
	Subscribe(token string, bufSize int) *auth.Subscription
}

type checkKind int

const (
	sessionCheck checkKind = iota
	profileCheck
)

type checkResult struct {
	kind     checkKind
	seq      uint64
	hasUser  bool
	userID   uuid.UUID
	complete bool
	err      error
}

// Controller drives the Gate of one session token. The Gate is owned by the
// Run loop; lookups run on their own goroutines and post results back.
type Controller struct {
	token          string
	sessions       sessionSource
	profiles       profileChecker
	policy         *Policy
	metricsManager *metrics.Manager

	sub     *auth.Subscription
	results chan checkResult
	done    chan struct{}

	gate      *Gate
	userID    uuid.UUID
	mountedAt time.Time
	settled   bool

	mu       sync.RWMutex
	state    State
	changed  chan struct{}
	stopped  bool
	runCalls int
}

// NewController subscribes to the token's auth changes right away, so none
// published before Run starts are missed.
func NewController(
	token string,
	sessions sessionSource,
	profiles profileChecker,
	subscriber changesSubscriber,
	policy *Policy,
	metricsManager *metrics.Manager,
) *Controller {
	return &Controller{
		token:          token,
		sessions:       sessions,
		profiles:       profiles,
		policy:         policy,
		metricsManager: metricsManager,
		sub:            subscriber.Subscribe(token, changesBufferSize),
		results:        make(chan checkResult),
		done:           make(chan struct{}),
		gate:           New(),
		mountedAt:      time.Now(),
		state:          Loading,
		changed:        make(chan struct{}),
	}
}

// Run processes auth changes and lookup results until ctx is done.
// Results arriving after that are ignored.
func (c *Controller) Run(ctx context.Context) {
	c.mu.Lock()
	c.runCalls++
	first := c.runCalls == 1
	c.mu.Unlock()
	if !first {
		log.Warnf("gate controller for %s: Run called more than once", maskToken(c.token))
		return
	}

	lookupsCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		c.sub.Close()
		c.mu.Lock()
		c.stopped = true
		c.mu.Unlock()
		close(c.done)
	}()

	c.checkSession(lookupsCtx, &wg)

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-c.sub.Changes():
			if !ok {
				return
			}
			c.handleChange(lookupsCtx, &wg, change)
		case <-c.sub.Missed():
			log.Warnf("gate controller for %s: missed auth changes, rechecking session", maskToken(c.token))
			c.metricsManager.CounterGateResyncs.Inc()
			c.checkSession(lookupsCtx, &wg)
		case res := <-c.results:
			c.handleResult(lookupsCtx, &wg, res)
		}
	}
}

// Done is closed once Run has returned.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Controller) Allow(path string) Decision {
	return c.policy.Allow(c.State(), path)
}

// Await blocks until the gate leaves Loading, ctx is done or the controller
// stops. It returns the last known state in every case.
func (c *Controller) Await(ctx context.Context) (State, error) {
	for {
		c.mu.RLock()
		state, changed, stopped := c.state, c.changed, c.stopped
		c.mu.RUnlock()

		if state != Loading {
			return state, nil
		}
		if stopped {
			return state, ErrStopped
		}

		select {
		case <-changed:
		case <-c.done:
		case <-ctx.Done():
			return state, ctx.Err()
		}
	}
}

func (c *Controller) handleChange(ctx context.Context, wg *sync.WaitGroup, change auth.StateChange) {
	switch change.Kind {
	case auth.SignedIn:
		if change.Token != c.token {
			return
		}
		c.checkSession(ctx, wg)
	case auth.SignedOut:
		if change.Token != c.token {
			return
		}
		c.gate.SignedOut()
		c.follow(uuid.Nil)
		c.publish()
	case auth.ProfileUpdated:
		if !c.gate.Authenticated() || change.UserID != c.userID {
			return
		}
		c.checkProfile(ctx, wg, c.gate.Issue(), c.userID)
	}
}

func (c *Controller) handleResult(ctx context.Context, wg *sync.WaitGroup, res checkResult) {
	var err error
	switch res.kind {
	case sessionCheck:
		err = c.gate.SessionChecked(res.seq, res.hasUser)
		if err == nil {
			c.follow(res.userID)
			if res.hasUser {
				c.checkProfile(ctx, wg, res.seq, res.userID)
			}
		}
	case profileCheck:
		if res.err != nil {
			log.Errorf("gate controller for %s: %s", maskToken(c.token), res.err)
			c.metricsManager.CounterProfileFetchFailures.Inc()
		}
		err = c.gate.ProfileChecked(res.seq, res.complete)
	}

	if errors.Is(err, ErrStaleResult) {
		log.Tracef("gate controller for %s: dropping stale result %d, latest %d", maskToken(c.token), res.seq, c.gate.Seq())
		c.metricsManager.CounterGateStaleResults.Inc()
		return
	}

	c.publish()
}

func (c *Controller) follow(userID uuid.UUID) {
	c.userID = userID
	c.sub.Follow(userID)
}

// publish copies the gate state into the snapshot read by State and Await.
func (c *Controller) publish() {
	newState := c.gate.State()

	c.mu.Lock()
	prevState := c.state
	c.state = newState
	if prevState != newState {
		close(c.changed)
		c.changed = make(chan struct{})
	}
	c.mu.Unlock()

	if prevState == newState {
		return
	}

	c.metricsManager.CounterGateTransitions.WithLabelValues(newState.String()).Inc()
	if !c.settled && newState != Loading {
		c.settled = true
		c.metricsManager.HistGateSettleDuration.Observe(time.Since(c.mountedAt).Seconds())
	}
	log.Debugf("gate controller for %s: %s -> %s", maskToken(c.token), prevState, newState)
}

func (c *Controller) checkSession(ctx context.Context, wg *sync.WaitGroup) {
	seq := c.gate.Issue()
	wg.Add(1)
	go func() {
		defer wg.Done()

		ctx, span := tracing.GlobalTracer.Start(ctx, "gate.checkSession")
		span.SetAttributes(attribute.Int64("seq", int64(seq)))
		defer span.End()

		userID, hasUser, err := c.sessions.CurrentUser(ctx, c.token)
		if err != nil {
			// cannot tell who this is, so treat it as nobody
			log.Warnf("gate controller for %s: session lookup: %s", maskToken(c.token), err)
			span.RecordError(err)
			hasUser = false
			userID = uuid.Nil
		}

		c.post(ctx, checkResult{
			kind:    sessionCheck,
			seq:     seq,
			hasUser: hasUser,
			userID:  userID,
		})
	}()
}

func (c *Controller) checkProfile(ctx context.Context, wg *sync.WaitGroup, seq uint64, userID uuid.UUID) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		ctx, span := tracing.GlobalTracer.Start(ctx, "gate.checkProfile")
		span.SetAttributes(
			attribute.Int64("seq", int64(seq)),
			attribute.String("user", userID.String()),
		)
		defer span.End()

		complete, err := c.profiles.IsComplete(ctx, userID)
		if err != nil {
			span.RecordError(err)
			err = fmt.Errorf("%w: user %s: %w", ErrProfileFetchFailed, userID, err)
			complete = false
		}

		c.post(ctx, checkResult{
			kind:     profileCheck,
			seq:      seq,
			userID:   userID,
			complete: complete,
			err:      err,
		})
	}()
}

func (c *Controller) post(ctx context.Context, res checkResult) {
	select {
	case c.results <- res:
	case <-ctx.Done():
	}
}

func maskToken(token string) string {
	if len(token) <= 6 {
		return "***"
	}
	return token[:6] + "***"
}
