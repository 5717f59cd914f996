package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bigode/bigode-booking/internal/domain"
	"github.com/bigode/bigode-booking/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrTokenInvalid      = errors.New("booking link is invalid or expired")
	ErrInvalidTransition = errors.New("invalid step transition")
	ErrUnknownBarber     = errors.New("unknown barber")
	ErrUnknownService    = errors.New("unknown service")
	ErrUnknownSlot       = errors.New("unknown time slot")
	ErrSlotBusy          = errors.New("time slot is busy")
	ErrDateUnavailable   = errors.New("date is not available")
	ErrQueueClosed       = errors.New("queue is closed")
	ErrInFlight          = errors.New("operation already in progress")
	ErrClosed            = errors.New("flow is closed")
)

// Backend is the data-access side of the wizard.
type Backend interface {
	ResolveBookingToken(ctx context.Context, token string) (domain.TokenInfo, error)
	ListBarbers(ctx context.Context, barbershopID string) ([]domain.Barber, error)
	ListServices(ctx context.Context, barbershopID string) ([]domain.Service, error)
	ListBarberAppointments(ctx context.Context, barberID string) ([]domain.BarberDay, error)
	GetAvailability(ctx context.Context, barberID string, date time.Time) ([]domain.TimeSlot, error)
	GetQueueStatus(ctx context.Context, barberID string) (domain.QueueStatus, error)
	JoinQueue(ctx context.Context, barberID string) (domain.QueueTicket, error)
	PollQueue(ctx context.Context, barberID string) (domain.QueueTicket, error)
	LeaveQueue(ctx context.Context, barberID string) error
	CreateAppointment(ctx context.Context, req domain.AppointmentRequest) (domain.Appointment, error)
}

// State is a copy of everything the presentation layer may render.
type State struct {
	Step        Step
	Info        *domain.TokenInfo
	Preselected bool

	Barbers   []domain.Barber
	Services  []domain.Service
	Selection Selection

	AvailableSlots []domain.TimeSlot
	LoadingSlots   bool
	SlotsErr       error

	BarberAppointments []domain.BarberDay
	QueueStatus        *domain.QueueStatus
	Ticket             *domain.QueueTicket

	Submitting  bool
	Appointment *domain.Appointment
	Booked      Selection // what was booked, kept for the success screen

	Err error // fatal, the flow cannot continue
}

type Option func(*Controller)

// WithPollInterval sets the queue polling period. Defaults to 5s.
func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithObserver registers a callback invoked with a fresh snapshot after
// every committed change.
func WithObserver(fn func(State)) Option {
	return func(c *Controller) { c.observer = fn }
}

// WithLocation sets the zone used to combine a date with a slot time.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) {
		if loc != nil {
			c.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

const DefaultPollInterval = 5 * time.Second

// Controller owns the wizard state. Every mutation happens under mu; network
// calls never do, and their results are only committed if the state they were
// issued for is still current.
type Controller struct {
	backend  Backend
	notifier Notifier
	observer func(State)
	interval time.Duration
	loc      *time.Location
	now      func() time.Time
	flowID   string

	mu      sync.Mutex
	st      State
	started bool
	closed  bool

	barberGen uint64
	slotsGen  uint64
	queueGen  uint64

	joining  bool
	leaving  bool
	poller   *poller
	pollSent uint64
	pollSeen uint64
	turnSent bool

	idemKey string
	idemSig string
}

func New(backend Backend, opts ...Option) *Controller {
	c := &Controller{
		backend:  backend,
		notifier: logNotifier{},
		interval: DefaultPollInterval,
		loc:      time.Local,
		now:      time.Now,
		flowID:   uuid.NewString(),
		st:       State{Step: StepLoading},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) FlowID() string {
	return c.flowID
}

func (c *Controller) withFlow(ctx context.Context) context.Context {
	return context.WithValue(ctx, logger.FlowIDKey, c.flowID)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	s := c.st
	s.Barbers = append([]domain.Barber(nil), c.st.Barbers...)
	s.Services = append([]domain.Service(nil), c.st.Services...)
	s.AvailableSlots = append([]domain.TimeSlot(nil), c.st.AvailableSlots...)
	s.BarberAppointments = append([]domain.BarberDay(nil), c.st.BarberAppointments...)
	s.Selection = c.st.Selection.clone()
	s.Booked = c.st.Booked.clone()
	if c.st.Info != nil {
		info := *c.st.Info
		s.Info = &info
	}
	if c.st.QueueStatus != nil {
		qs := *c.st.QueueStatus
		s.QueueStatus = &qs
	}
	if c.st.Ticket != nil {
		t := *c.st.Ticket
		s.Ticket = &t
	}
	if c.st.Appointment != nil {
		a := *c.st.Appointment
		s.Appointment = &a
	}
	return s
}

// update applies fn under the lock, then delivers the notifications it
// returned and the observer callback outside it.
func (c *Controller) update(fn func() []Notification) {
	c.mu.Lock()
	notes := fn()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	for _, n := range notes {
		c.notifier.Notify(n)
	}
	if c.observer != nil {
		c.observer(snap)
	}
}

// mutate is update for user intents: it refuses to run on a closed flow and
// passes fn's error through.
func (c *Controller) mutate(fn func() ([]Notification, error)) error {
	var err error
	c.update(func() []Notification {
		if c.closed {
			err = ErrClosed
			return nil
		}
		var notes []Notification
		notes, err = fn()
		return notes
	})
	return err
}

// Start resolves the booking token and loads the barbershop. A token that
// cannot be resolved is fatal: the flow stays in loading and State.Err is set.
func (c *Controller) Start(ctx context.Context, token string) error {
	err := c.mutate(func() ([]Notification, error) {
		if c.started || c.st.Step != StepLoading {
			return nil, fmt.Errorf("%w: flow already started", ErrInvalidTransition)
		}
		c.started = true
		return nil, nil
	})
	if err != nil {
		return err
	}
	ctx = c.withFlow(ctx)

	token = strings.TrimSpace(token)
	var info domain.TokenInfo
	if token == "" {
		err = errors.New("empty token")
	} else {
		info, err = c.backend.ResolveBookingToken(ctx, token)
	}
	if err != nil {
		fatal := fmt.Errorf("%w: %w", ErrTokenInvalid, err)
		logger.ErrorContext(ctx, "Booking token rejected", "error", err)
		c.update(func() []Notification {
			c.st.Err = fatal
			return []Notification{errorNote("Erro ao validar link", err, "O link pode estar expirado ou inválido.")}
		})
		return fatal
	}

	var (
		barbers     []domain.Barber
		services    []domain.Service
		barbersErr  error
		servicesErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		barbers, barbersErr = c.backend.ListBarbers(ctx, info.BarbershopID)
		return barbersErr
	})
	g.Go(func() error {
		services, servicesErr = c.backend.ListServices(ctx, info.BarbershopID)
		return servicesErr
	})
	if err := g.Wait(); err != nil {
		logger.WarnContext(ctx, "Failed to load barbershop data", "barbershop_id", info.BarbershopID, "error", err)
	}
	if barbersErr != nil {
		barbers = nil
	}
	if servicesErr != nil {
		services = nil
	}

	var preselected string
	err = c.mutate(func() ([]Notification, error) {
		var notes []Notification
		c.st.Info = &info
		c.st.Barbers = barbers
		c.st.Services = services
		if barbersErr != nil {
			notes = append(notes, errorNote("Erro ao carregar barbeiros", barbersErr, "Não foi possível carregar os barbeiros."))
		}
		if servicesErr != nil {
			notes = append(notes, errorNote("Erro ao carregar serviços", servicesErr, "Não foi possível carregar os serviços."))
		}

		event := EventTokenResolved
		if info.BarberID != nil {
			if b, ok := findBarber(barbers, *info.BarberID); ok {
				c.st.Selection.SetBarber(b)
				c.st.Preselected = true
				preselected = b.ID
				event = EventBarberPreselected
			} else {
				logger.WarnContext(ctx, "Pre-selected barber not found", "barber_id", *info.BarberID)
			}
		}
		next, err := Transition(c.st.Step, event)
		if err != nil {
			return notes, err
		}
		c.st.Step = next
		if info.Message != "" {
			notes = append(notes, Notification{Kind: NotifyInfo, Title: "Bem-vindo!", Message: info.Message})
		}
		return notes, nil
	})
	if err != nil {
		return err
	}

	if preselected != "" {
		c.loadBarberData(ctx, preselected)
	}
	return nil
}

func findBarber(barbers []domain.Barber, id string) (domain.Barber, bool) {
	for _, b := range barbers {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Barber{}, false
}

func findService(services []domain.Service, id string) (domain.Service, bool) {
	for _, s := range services {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Service{}, false
}

// SelectBarber picks a barber from the list and opens their detail screen.
func (c *Controller) SelectBarber(ctx context.Context, barberID string) error {
	err := c.mutate(func() ([]Notification, error) {
		next, err := Transition(c.st.Step, EventBarberChosen)
		if err != nil {
			return nil, err
		}
		b, ok := findBarber(c.st.Barbers, barberID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBarber, barberID)
		}
		c.st.Selection.SetBarber(b)
		c.st.Step = next
		return nil, nil
	})
	if err != nil {
		return err
	}
	c.loadBarberData(c.withFlow(ctx), barberID)
	return nil
}

// loadBarberData fetches the barber's upcoming appointments and queue status
// together. Failures leave them empty and notify.
func (c *Controller) loadBarberData(ctx context.Context, barberID string) {
	var gen uint64
	c.update(func() []Notification {
		c.barberGen++
		gen = c.barberGen
		c.st.BarberAppointments = nil
		c.st.QueueStatus = nil
		return nil
	})

	var (
		days     []domain.BarberDay
		status   domain.QueueStatus
		daysErr  error
		queueErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		days, daysErr = c.backend.ListBarberAppointments(ctx, barberID)
		return daysErr
	})
	g.Go(func() error {
		status, queueErr = c.backend.GetQueueStatus(ctx, barberID)
		return queueErr
	})
	firstErr := g.Wait()

	c.update(func() []Notification {
		if c.closed || gen != c.barberGen || c.st.Selection.Barber == nil || c.st.Selection.Barber.ID != barberID {
			logger.DebugContext(ctx, "Dropping stale barber data", "barber_id", barberID)
			return nil
		}
		if daysErr == nil {
			c.st.BarberAppointments = days
		}
		if queueErr == nil {
			qs := status
			c.st.QueueStatus = &qs
		}
		if firstErr != nil {
			return []Notification{errorNote("Erro ao carregar dados do barbeiro", firstErr, "Não foi possível carregar a agenda e a fila.")}
		}
		return nil
	})
}

// ChooseBooking starts the scheduled-booking branch.
func (c *Controller) ChooseBooking() error {
	return c.mutate(func() ([]Notification, error) {
		next, err := Transition(c.st.Step, EventBookChosen)
		if err != nil {
			return nil, err
		}
		c.st.Step = next
		return nil, nil
	})
}

// ViewAppointments shows the barber's upcoming agenda.
func (c *Controller) ViewAppointments() error {
	return c.mutate(func() ([]Notification, error) {
		next, err := Transition(c.st.Step, EventAppointmentsChosen)
		if err != nil {
			return nil, err
		}
		c.st.Step = next
		return nil, nil
	})
}

// GoBack moves to the previous step. Leaving the time step invalidates any
// availability request still in flight. Confirmation cannot be left while the
// booking is being submitted.
func (c *Controller) GoBack() error {
	return c.mutate(func() ([]Notification, error) {
		prev, err := Back(c.st.Step)
		if err != nil {
			return nil, err
		}
		if c.st.Submitting {
			return nil, ErrInFlight
		}
		if c.st.Step == StepTime {
			c.slotsGen++
			c.st.AvailableSlots = nil
			c.st.LoadingSlots = false
			c.st.SlotsErr = nil
		}
		c.st.Step = prev
		return nil, nil
	})
}

// Close leaves the flow: the poller is stopped and awaited, in-flight results
// are discarded and the selection is cleared.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	p := c.detachPollerLocked()
	c.barberGen++
	c.slotsGen++
	c.queueGen++
	c.st.Selection.Clear()
	c.mu.Unlock()

	p.wait()
}
