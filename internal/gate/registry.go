package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

var ErrRegistryClosed = errors.New("gate registry closed")

type mountedGate struct {
	controller *Controller
	cancel     context.CancelFunc
	lastUsed   time.Time
}

// Registry keeps one Controller per session token, mounted on first use.
type Registry struct {
	sessions       sessionSource
	profiles       profileChecker
	subscriber     changesSubscriber
	policy         *Policy
	settleTimeout  time.Duration
	idleTimeout    time.Duration
	metricsManager *metrics.Manager

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	gates  map[string]*mountedGate
	closed bool

	NowFunc func() time.Time
}

func NewRegistry(
	sessions sessionSource,
	profiles profileChecker,
	subscriber changesSubscriber,
	policy *Policy,
	settleTimeout time.Duration,
	idleTimeout time.Duration,
	metricsManager *metrics.Manager,
) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		sessions:       sessions,
		profiles:       profiles,
		subscriber:     subscriber,
		policy:         policy,
		settleTimeout:  settleTimeout,
		idleTimeout:    idleTimeout,
		metricsManager: metricsManager,
		ctx:            ctx,
		cancel:         cancel,
		gates:          make(map[string]*mountedGate),
		NowFunc:        time.Now,
	}
}

// Mount returns the controller for token, starting one if needed.
func (r *Registry) Mount(token string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRegistryClosed
	}

	if mounted, ok := r.gates[token]; ok {
		mounted.lastUsed = r.NowFunc()
		return mounted.controller, nil
	}

	controller := NewController(token, r.sessions, r.profiles, r.subscriber, r.policy, r.metricsManager)
	ctx, cancel := context.WithCancel(r.ctx)
	go controller.Run(ctx)

	r.gates[token] = &mountedGate{
		controller: controller,
		cancel:     cancel,
		lastUsed:   r.NowFunc(),
	}
	r.metricsManager.GaugeMountedGates.Set(float64(len(r.gates)))

	return controller, nil
}

// Unmount stops the controller for token and waits for it to exit.
func (r *Registry) Unmount(token string) bool {
	r.mu.Lock()
	mounted, ok := r.gates[token]
	if ok {
		delete(r.gates, token)
		r.metricsManager.GaugeMountedGates.Set(float64(len(r.gates)))
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	mounted.cancel()
	<-mounted.controller.Done()
	return true
}

// Sweep unmounts the controllers not used within the idle timeout.
func (r *Registry) Sweep() int {
	now := r.NowFunc()

	r.mu.Lock()
	var idle []*mountedGate
	for token, mounted := range r.gates {
		if now.Sub(mounted.lastUsed) > r.idleTimeout {
			idle = append(idle, mounted)
			delete(r.gates, token)
		}
	}
	r.metricsManager.GaugeMountedGates.Set(float64(len(r.gates)))
	r.mu.Unlock()

	for _, mounted := range idle {
		mounted.cancel()
		<-mounted.controller.Done()
	}

	if len(idle) > 0 {
		log.Debugf("gate registry: unmounted %d idle gates", len(idle))
	}
	return len(idle)
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.gates)
}

// Resolve reports the state of the token's gate and the decision for path.
// The session is looked up on every call: a token without a live session is
// anonymous, mounts nothing and unmounts a gate left over from an earlier
// session. A live session mounts the gate and waits up to the settle timeout
// for it to leave loading, answering pending otherwise.
func (r *Registry) Resolve(ctx context.Context, token, path string) (State, Decision, error) {
	if token == "" {
		return Anonymous, r.policy.Allow(Anonymous, path), nil
	}

	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return Loading, Decision{}, ErrRegistryClosed
	}

	settleCtx, cancel := context.WithTimeout(ctx, r.settleTimeout)
	defer cancel()

	_, hasUser, err := r.sessions.CurrentUser(settleCtx, token)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Loading, r.policy.Allow(Loading, path), nil
		}
		return Loading, Decision{}, fmt.Errorf("session lookup: %w", err)
	}

	if !hasUser {
		if r.Unmount(token) {
			log.Debugf("gate registry: session of %s is gone, gate unmounted", maskToken(token))
		}
		return Anonymous, r.policy.Allow(Anonymous, path), nil
	}

	controller, err := r.Mount(token)
	if err != nil {
		return Loading, Decision{}, err
	}

	state, err := controller.Await(settleCtx)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return state, Decision{}, err
	}

	return state, r.policy.Allow(state, path), nil
}

// Shutdown stops every controller. Mount fails afterwards.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	r.closed = true
	gates := r.gates
	r.gates = make(map[string]*mountedGate)
	r.mu.Unlock()

	r.cancel()
	for _, mounted := range gates {
		<-mounted.controller.Done()
	}
	r.metricsManager.GaugeMountedGates.Set(0)
	log.Debugf("gate registry: stopped %d gates", len(gates))
}
