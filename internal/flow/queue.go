package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/bigode/bigode-booking/internal/domain"
	"github.com/bigode/bigode-booking/pkg/logger"
)

// ChooseQueue opens the walk-in queue screen and refreshes its status.
func (c *Controller) ChooseQueue(ctx context.Context) error {
	var barberID string
	err := c.mutate(func() ([]Notification, error) {
		next, err := Transition(c.st.Step, EventQueueChosen)
		if err != nil {
			return nil, err
		}
		c.st.Step = next
		barberID = c.st.Selection.Barber.ID
		return nil, nil
	})
	if err != nil {
		return err
	}

	ctx = c.withFlow(ctx)
	status, err := c.backend.GetQueueStatus(ctx, barberID)
	c.update(func() []Notification {
		if c.closed || c.st.Step != StepQueueJoin || c.st.Selection.Barber == nil || c.st.Selection.Barber.ID != barberID {
			return nil
		}
		if err != nil {
			logger.WarnContext(ctx, "Queue status fetch failed", "barber_id", barberID, "error", err)
			return []Notification{errorNote("Erro ao carregar fila", err, "Não foi possível carregar o status da fila.")}
		}
		qs := status
		c.st.QueueStatus = &qs
		return nil
	})
	return nil
}

func turnNote() Notification {
	return Notification{Kind: NotifyTurn, Title: "Sua vez chegou!", Message: "Você está na frente da fila."}
}

func closedNote() Notification {
	return Notification{Kind: NotifyError, Title: "Fila fechada", Message: "A fila deste barbeiro está fechada no momento."}
}

// JoinQueue enters the barber's walk-in queue. A queue known to be closed is
// refused locally; when the status is unknown it is fetched first and the
// join only goes out once the queue is confirmed open.
func (c *Controller) JoinQueue(ctx context.Context) error {
	var (
		barberID string
		known    bool
	)
	err := c.mutate(func() ([]Notification, error) {
		if _, err := Transition(c.st.Step, EventQueueJoined); err != nil {
			return nil, err
		}
		if c.joining {
			return nil, ErrInFlight
		}
		if c.st.QueueStatus != nil && !c.st.QueueStatus.IsOpen {
			return []Notification{closedNote()}, ErrQueueClosed
		}
		c.joining = true
		known = c.st.QueueStatus != nil
		barberID = c.st.Selection.Barber.ID
		return nil, nil
	})
	if err != nil {
		return err
	}

	ctx = c.withFlow(ctx)
	if !known {
		if err := c.confirmQueueOpen(ctx, barberID); err != nil {
			return err
		}
	}
	ticket, err := c.backend.JoinQueue(ctx, barberID)

	var (
		result error
		orphan bool
	)
	c.update(func() []Notification {
		c.joining = false
		if err != nil {
			result = fmt.Errorf("join queue: %w", err)
			return []Notification{errorNote("Erro ao entrar na fila", err, "Não foi possível entrar na fila.")}
		}
		if c.closed || c.st.Step != StepQueueJoin || c.st.Selection.Barber == nil || c.st.Selection.Barber.ID != barberID {
			orphan = true
			return nil
		}
		next, _ := Transition(c.st.Step, EventQueueJoined)
		c.st.Step = next
		t := ticket
		c.st.Ticket = &t
		c.queueGen++
		c.turnSent = false

		notes := []Notification{{
			Kind:    NotifySuccess,
			Title:   "Você entrou na fila!",
			Message: fmt.Sprintf("Sua posição: %dº", t.Position),
		}}
		if t.Served() {
			c.turnSent = true
			notes = append(notes, turnNote())
		} else {
			c.startPollerLocked(barberID, c.queueGen)
		}
		return notes
	})

	if orphan {
		logger.WarnContext(ctx, "Joined queue after the flow moved on, leaving again", "barber_id", barberID)
		if err := c.backend.LeaveQueue(ctx, barberID); err != nil {
			logger.WarnContext(ctx, "Failed to leave orphaned queue entry", "barber_id", barberID, "error", err)
		}
		return fmt.Errorf("%w: flow moved on while joining", ErrInvalidTransition)
	}
	return result
}

// confirmQueueOpen fetches the queue status for a join whose status was not
// loaded. On any refusal the joining flag is released.
func (c *Controller) confirmQueueOpen(ctx context.Context, barberID string) error {
	status, err := c.backend.GetQueueStatus(ctx, barberID)

	var result error
	c.update(func() []Notification {
		switch {
		case err != nil:
			c.joining = false
			logger.WarnContext(ctx, "Queue status fetch failed before join", "barber_id", barberID, "error", err)
			result = fmt.Errorf("queue status: %w", err)
			return []Notification{errorNote("Erro ao carregar fila", err, "Não foi possível confirmar se a fila está aberta.")}
		case c.closed || c.st.Step != StepQueueJoin || c.st.Selection.Barber == nil || c.st.Selection.Barber.ID != barberID:
			c.joining = false
			result = fmt.Errorf("%w: flow moved on while joining", ErrInvalidTransition)
			return nil
		}
		qs := status
		c.st.QueueStatus = &qs
		if !qs.IsOpen {
			c.joining = false
			result = ErrQueueClosed
			return []Notification{closedNote()}
		}
		return nil
	})
	return result
}

// LeaveQueue gives up the ticket and returns to the barber detail. The
// poller is stopped before the leave request goes out, so no poll follows it.
// If the request fails the flow stays put and polling resumes.
func (c *Controller) LeaveQueue(ctx context.Context) error {
	var (
		barberID string
		served   bool
		p        *poller
	)
	err := c.mutate(func() ([]Notification, error) {
		if _, err := Transition(c.st.Step, EventQueueLeft); err != nil {
			return nil, err
		}
		if c.leaving {
			return nil, ErrInFlight
		}
		c.leaving = true
		barberID = c.st.Selection.Barber.ID
		served = c.st.Ticket == nil || c.st.Ticket.Served()
		p = c.detachPollerLocked()
		return nil, nil
	})
	if err != nil {
		return err
	}
	p.wait()

	ctx = c.withFlow(ctx)
	var leaveErr error
	if !served {
		leaveErr = c.backend.LeaveQueue(ctx, barberID)
	}

	var result error
	c.update(func() []Notification {
		c.leaving = false
		if leaveErr != nil {
			result = fmt.Errorf("leave queue: %w", leaveErr)
			if !c.closed && c.st.Step == StepQueuePosition && c.st.Ticket != nil && !c.st.Ticket.Served() {
				c.startPollerLocked(barberID, c.queueGen)
			}
			return []Notification{errorNote("Erro ao sair da fila", leaveErr, "Não foi possível sair da fila.")}
		}
		if c.closed || c.st.Step != StepQueuePosition {
			return nil
		}
		next, _ := Transition(c.st.Step, EventQueueLeft)
		c.st.Step = next
		c.st.Ticket = nil
		c.queueGen++
		return []Notification{{Kind: NotifyInfo, Title: "Você saiu da fila", Message: "Você pode entrar novamente quando quiser."}}
	})
	return result
}

type poller struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (p *poller) wait() {
	if p != nil {
		<-p.done
	}
}

func (c *Controller) startPollerLocked(barberID string, gen uint64) {
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), logger.FlowIDKey, c.flowID))
	p := &poller{cancel: cancel, done: make(chan struct{})}
	c.poller = p
	go c.runPoller(ctx, p, barberID, gen)
}

// detachPollerLocked cancels the running poller, if any. The caller waits on
// it after releasing the lock.
func (c *Controller) detachPollerLocked() *poller {
	p := c.poller
	c.poller = nil
	if p != nil {
		p.cancel()
	}
	return p
}

func (c *Controller) runPoller(ctx context.Context, p *poller, barberID string, gen uint64) {
	defer close(p.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		seq, ok := c.nextPoll(gen)
		if !ok {
			return
		}
		ticket, err := c.backend.PollQueue(ctx, barberID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.WarnContext(ctx, "Queue poll failed", "barber_id", barberID, "error", err)
			continue
		}
		if !c.applyPoll(gen, seq, ticket) {
			return
		}
	}
}

// nextPoll re-checks, under the lock, that polling is still wanted and
// numbers the request.
func (c *Controller) nextPoll(gen uint64) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.st.Step != StepQueuePosition || c.queueGen != gen || c.st.Ticket == nil || c.st.Ticket.Served() {
		return 0, false
	}
	c.pollSent++
	return c.pollSent, true
}

// applyPoll commits a poll response and reports whether polling continues.
// Reaching position zero or below ends polling with a single notification.
func (c *Controller) applyPoll(gen, seq uint64, ticket domain.QueueTicket) bool {
	keep := false
	c.update(func() []Notification {
		if c.closed || c.st.Step != StepQueuePosition || c.queueGen != gen || c.st.Ticket == nil {
			return nil
		}
		if seq <= c.pollSeen {
			keep = true
			return nil
		}
		c.pollSeen = seq
		t := ticket
		c.st.Ticket = &t
		if !t.Served() {
			keep = true
			return nil
		}
		if c.turnSent {
			return nil
		}
		c.turnSent = true
		return []Notification{turnNote()}
	})
	return keep
}
