package auth

import (
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type StateChangeKind int

const (
	SignedIn StateChangeKind = iota + 1
	SignedOut
	ProfileUpdated
)

func (k StateChangeKind) String() string {
	switch k {
	case SignedIn:
		return "signed-in"
	case SignedOut:
		return "signed-out"
	case ProfileUpdated:
		return "profile-updated"
	default:
		return "unknown"
	}
}

// StateChange is an auth-state event. Token is empty for ProfileUpdated.
type StateChange struct {
	Kind   StateChangeKind
	Token  string
	UserID uuid.UUID
}

// Notifier routes auth-state changes to the subscriptions they concern:
// sign in/out go to the subscriptions of that token, profile updates to the
// subscriptions following that user. Publish never blocks; a subscription
// whose buffer is full is flagged on Missed instead.
type Notifier struct {
	mu      sync.RWMutex
	nextID  int
	subs    map[int]*Subscription
	byToken map[string]map[int]*Subscription
	byUser  map[uuid.UUID]map[int]*Subscription
}

func NewNotifier() *Notifier {
	return &Notifier{
		subs:    make(map[int]*Subscription),
		byToken: make(map[string]map[int]*Subscription),
		byUser:  make(map[uuid.UUID]map[int]*Subscription),
	}
}

// Subscription receives the changes of one session token and, once Follow
// is called, the profile updates of one user.
type Subscription struct {
	notifier *Notifier
	id       int
	token    string
	userID   uuid.UUID // guarded by notifier.mu

	changes chan StateChange
	missed  chan struct{}
	once    sync.Once
}

// Subscribe opens a subscription for token with a change buffer of bufSize.
func (n *Notifier) Subscribe(token string, bufSize int) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	sub := &Subscription{
		notifier: n,
		id:       n.nextID,
		token:    token,
		changes:  make(chan StateChange, bufSize),
		missed:   make(chan struct{}, 1),
	}
	n.nextID++

	n.subs[sub.id] = sub
	addRoute(n.byToken, token, sub)

	return sub
}

func (n *Notifier) Publish(change StateChange) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	var routed map[int]*Subscription
	switch change.Kind {
	case SignedIn, SignedOut:
		routed = n.byToken[change.Token]
	case ProfileUpdated:
		routed = n.byUser[change.UserID]
	}

	for _, sub := range routed {
		sub.deliver(change)
	}
}

func (n *Notifier) SubscribersCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}

// Changes is closed by Close.
func (s *Subscription) Changes() <-chan StateChange {
	return s.changes
}

// Missed fires after at least one change could not be buffered. The holder
// should reload its state from the source, since the stream has a gap.
func (s *Subscription) Missed() <-chan struct{} {
	return s.missed
}

// Follow routes the profile updates of userID to this subscription, replacing
// the previously followed user. uuid.Nil follows nobody.
func (s *Subscription) Follow(userID uuid.UUID) {
	n := s.notifier
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, open := n.subs[s.id]; !open || s.userID == userID {
		return
	}
	if s.userID != uuid.Nil {
		removeRoute(n.byUser, s.userID, s.id)
	}
	s.userID = userID
	if userID != uuid.Nil {
		addRoute(n.byUser, userID, s)
	}
}

// Close unsubscribes and closes the changes channel. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		n := s.notifier
		n.mu.Lock()
		delete(n.subs, s.id)
		removeRoute(n.byToken, s.token, s.id)
		if s.userID != uuid.Nil {
			removeRoute(n.byUser, s.userID, s.id)
		}
		n.mu.Unlock()
		close(s.changes)
	})
}

// deliver is called with notifier.mu held for reading.
func (s *Subscription) deliver(change StateChange) {
	select {
	case s.changes <- change:
		return
	default:
	}

	log.Warnf("notifier: subscription %d is full, flagging missed %s for user %s", s.id, change.Kind, change.UserID)
	select {
	case s.missed <- struct{}{}:
	default:
		// already flagged
	}
}

func addRoute[K comparable](routes map[K]map[int]*Subscription, key K, sub *Subscription) {
	subs, ok := routes[key]
	if !ok {
		subs = make(map[int]*Subscription)
		routes[key] = subs
	}
	subs[sub.id] = sub
}

func removeRoute[K comparable](routes map[K]map[int]*Subscription, key K, id int) {
	subs, ok := routes[key]
	if !ok {
		return
	}
	delete(subs, id)
	if len(subs) == 0 {
		delete(routes, key)
	}
}
