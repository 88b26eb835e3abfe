// Package session owns the portal's authentication state: the stored
// credential and the resolved user. Views read it through Snapshot and
// Subscribe; only the Controller writes it.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/edulearn/lms/internal/core/domain"
	"github.com/edulearn/lms/internal/portal/form"
	"github.com/edulearn/lms/internal/portal/gateway"
	"github.com/edulearn/lms/internal/portal/tokenstore"
)

// AuthAPI is the slice of the gateway the controller drives.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*gateway.AuthResult, error)
	Register(ctx context.Context, in gateway.RegisterRequest) (*gateway.AuthResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*domain.User, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password string) (string, error)
	UpdateDetails(ctx context.Context, patch domain.UserPatch) (*domain.User, error)
	UpdatePassword(ctx context.Context, currentPassword, newPassword string) (string, error)
}

const (
	msgLoginFailed          = "Login failed"
	msgRegistrationFailed   = "Registration failed"
	msgForgotPasswordFailed = "Failed to send password reset email"
	msgResetPasswordFailed  = "Password reset failed"
	msgUpdateDetailsFailed  = "Failed to update details"
	msgUpdatePasswordFailed = "Failed to update password"
)

// Controller is the session state machine. It is safe for concurrent use;
// its lock guards memory only and is never held across a network call, so
// overlapping actions resolve in arrival order of their responses.
type Controller struct {
	api     AuthAPI
	store   tokenstore.Store
	nav     Navigator
	log     zerolog.Logger
	timeout time.Duration

	mu       sync.Mutex
	state    State
	user     *domain.User
	inFlight int
	subs     map[int]func(Snapshot)
	nextSub  int
}

type Option func(*Controller)

func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithActionTimeout bounds every remote call. Zero means no bound.
func WithActionTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// New builds an uninitialized Controller. Call Init before use.
func New(api AuthAPI, store tokenstore.Store, nav Navigator, opts ...Option) *Controller {
	if nav == nil {
		nav = NavigatorFunc(func(Destination) {})
	}
	c := &Controller{
		api:   api,
		store: store,
		nav:   nav,
		log:   zerolog.Nop(),
		state: StateUninitialized,
		subs:  make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:   c.state,
		User:    c.user.Clone(),
		Loading: c.state == StateUninitialized || c.state == StateResolving || c.inFlight > 0,
	}
}

// Subscribe registers fn to receive a Snapshot after every change. The
// returned func unregisters it.
func (c *Controller) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// update applies fn under the lock and then notifies subscribers outside it.
func (c *Controller) update(fn func()) {
	c.mu.Lock()
	fn()
	c.unlockAndNotify()
}

// unlockAndNotify releases c.mu and sends the new snapshot to subscribers.
func (c *Controller) unlockAndNotify() {
	snap := c.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, s := range c.subs {
		subs = append(subs, s)
	}
	c.mu.Unlock()

	for _, s := range subs {
		s(snap)
	}
}

func (c *Controller) begin() {
	c.update(func() { c.inFlight++ })
}

func (c *Controller) end() {
	c.update(func() { c.inFlight-- })
}

func (c *Controller) actionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

// Init resolves the stored credential into a session. A rejected or
// unreachable probe is expected on load and ends anonymous with the store
// cleared. Only the first call has an effect, also when calls overlap.
func (c *Controller) Init(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateUninitialized {
		c.mu.Unlock()
		return
	}
	c.state = StateResolving
	c.unlockAndNotify()

	_, ok, err := c.store.Load(ctx)
	if err != nil {
		c.log.Debug().Err(err).Msg("token store unavailable, starting anonymous")
	}
	if err != nil || !ok {
		c.update(func() { c.state, c.user = StateAnonymous, nil })
		return
	}

	actx, cancel := c.actionContext(ctx)
	defer cancel()

	user, err := c.api.Me(actx)
	if err != nil {
		c.log.Debug().Err(err).Msg("stored credential rejected")
		c.clearStore(ctx)
		c.update(func() { c.state, c.user = StateAnonymous, nil })
		return
	}

	c.update(func() { c.state, c.user = StateAuthenticated, user.Clone() })
}

// Login exchanges credentials for a session and navigates to the role's home.
// A failed login leaves the store and the session untouched.
func (c *Controller) Login(ctx context.Context, email, password string) Result {
	c.begin()
	defer c.end()

	actx, cancel := c.actionContext(ctx)
	defer cancel()

	res, err := c.api.Login(actx, email, password)
	if err != nil {
		return Result{Message: gateway.MessageOf(err, msgLoginFailed)}
	}
	if res == nil || res.User == nil {
		return Result{Message: msgLoginFailed}
	}

	c.establish(ctx, res)
	c.nav.Navigate(HomeFor(res.User.Role))
	return Result{OK: true}
}

// Register validates the form locally, creates a student account and
// navigates to the student home.
func (c *Controller) Register(ctx context.Context, in form.RegisterInput) Result {
	if err := form.Validate(in); err != nil {
		return Result{Message: err.Error()}
	}

	c.begin()
	defer c.end()

	actx, cancel := c.actionContext(ctx)
	defer cancel()

	res, err := c.api.Register(actx, gateway.RegisterRequest{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  in.Password,
		Role:      domain.RoleStudent,
	})
	if err != nil {
		return Result{Message: gateway.MessageOf(err, msgRegistrationFailed)}
	}
	if res == nil || res.User == nil {
		return Result{Message: msgRegistrationFailed}
	}

	c.establish(ctx, res)
	c.nav.Navigate(DestStudentHome)
	return Result{OK: true}
}

func (c *Controller) establish(ctx context.Context, res *gateway.AuthResult) {
	if err := c.store.Save(ctx, res.Token); err != nil {
		c.log.Warn().Err(err).Msg("could not persist credential, session lasts until exit")
	}
	c.update(func() { c.state, c.user = StateAuthenticated, res.User.Clone() })
}

// Logout always ends anonymous on the login view. The server is told when a
// credential exists, and its failure is ignored.
func (c *Controller) Logout(ctx context.Context) Result {
	c.begin()
	defer c.end()

	if _, ok, err := c.store.Load(ctx); err == nil && ok {
		actx, cancel := c.actionContext(ctx)
		if err := c.api.Logout(actx); err != nil {
			c.log.Debug().Err(err).Msg("remote logout failed")
		}
		cancel()
	}

	c.clearStore(ctx)
	c.update(func() { c.state, c.user = StateAnonymous, nil })
	c.nav.Navigate(DestLogin)
	return Result{OK: true}
}

func (c *Controller) clearStore(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.log.Warn().Err(err).Msg("could not clear stored credential")
	}
}

// ForgotPassword requests a reset e-mail. The session is not touched.
func (c *Controller) ForgotPassword(ctx context.Context, email string) Result {
	c.begin()
	defer c.end()

	actx, cancel := c.actionContext(ctx)
	defer cancel()

	msg, err := c.api.ForgotPassword(actx, email)
	if err != nil {
		return Result{Message: gateway.MessageOf(err, msgForgotPasswordFailed)}
	}
	return Result{OK: true, Message: msg}
}

// ResetPassword redeems a reset token and, on success only, navigates to
// the login view.
func (c *Controller) ResetPassword(ctx context.Context, token, password string) Result {
	c.begin()
	defer c.end()

	actx, cancel := c.actionContext(ctx)
	defer cancel()

	msg, err := c.api.ResetPassword(actx, token, password)
	if err != nil {
		return Result{Message: gateway.MessageOf(err, msgResetPasswordFailed)}
	}
	c.nav.Navigate(DestLogin)
	return Result{OK: true, Message: msg}
}

// UpdateDetails saves profile fields remotely and merges the server's copy
// of the user into the session.
func (c *Controller) UpdateDetails(ctx context.Context, patch domain.UserPatch) Result {
	c.begin()
	defer c.end()

	actx, cancel := c.actionContext(ctx)
	defer cancel()

	user, err := c.api.UpdateDetails(actx, patch)
	if err != nil {
		return Result{Message: gateway.MessageOf(err, msgUpdateDetailsFailed)}
	}

	c.update(func() {
		if c.user != nil {
			c.user = user.Clone()
		}
	})
	return Result{OK: true}
}

// UpdatePassword changes the password. The credential stays valid.
func (c *Controller) UpdatePassword(ctx context.Context, currentPassword, newPassword string) Result {
	c.begin()
	defer c.end()

	actx, cancel := c.actionContext(ctx)
	defer cancel()

	msg, err := c.api.UpdatePassword(actx, currentPassword, newPassword)
	if err != nil {
		return Result{Message: gateway.MessageOf(err, msgUpdatePasswordFailed)}
	}
	return Result{OK: true, Message: msg}
}

// UpdateUserData merges patch into the in-memory user after a mutation made
// elsewhere. It is a no-op while anonymous and never touches the credential.
func (c *Controller) UpdateUserData(patch domain.UserPatch) {
	c.update(func() {
		if c.user == nil {
			return
		}
		u := c.user.Clone()
		patch.Apply(u)
		c.user = u
	})
}
