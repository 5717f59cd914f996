package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bigode/bigode-booking/internal/domain"
	"github.com/bigode/bigode-booking/internal/flow"
	"github.com/bigode/bigode-booking/internal/present"
)

var errUnknownOption = errors.New("unknown option")

// dateChoices is how many selectable days the date step offers.
const dateChoices = 7

// syncWriter serialises output from the prompt loop and the queue poller.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format, args...)
}

// wizard drives a flow.Controller from line-based terminal input.
type wizard struct {
	ctrl *flow.Controller
	in   *bufio.Scanner
	out  *syncWriter
	loc  *time.Location
	now  func() time.Time
}

// newWizard builds the controller too, so notifications land on out.
func newWizard(backend flow.Backend, in io.Reader, out io.Writer, loc *time.Location, opts ...flow.Option) *wizard {
	w := &wizard{
		in:  bufio.NewScanner(in),
		out: &syncWriter{w: out},
		loc: loc,
		now: time.Now,
	}
	opts = append([]flow.Option{
		flow.WithLocation(loc),
		flow.WithNotifier(flow.NotifierFunc(w.notify)),
	}, opts...)
	w.ctrl = flow.New(backend, opts...)
	return w
}

func (w *wizard) notify(n flow.Notification) {
	mark := "i"
	switch n.Kind {
	case flow.NotifySuccess:
		mark = "ok"
	case flow.NotifyError:
		mark = "!"
	case flow.NotifyTurn:
		mark = "***"
	}
	w.out.printf("\n[%s] %s %s\n", mark, n.Title, n.Message)
}

func (w *wizard) run(ctx context.Context, token string) error {
	defer w.ctrl.Close()
	if err := w.ctrl.Start(ctx, token); err != nil {
		return err
	}

	for {
		st := w.ctrl.Snapshot()
		if st.Err != nil {
			return st.Err
		}
		if st.Step == flow.StepSuccess {
			w.renderSuccess(st)
			return nil
		}
		w.render(st)

		w.out.printf("> ")
		if !w.in.Scan() {
			return w.in.Err()
		}
		line := strings.ToLower(strings.TrimSpace(w.in.Text()))
		if line == "q" {
			return nil
		}
		if err := w.handle(ctx, st, line); err != nil {
			if msg := describe(err); msg != "" {
				w.out.printf("%s\n", msg)
			}
		}
	}
}

func describe(err error) string {
	switch {
	case errors.Is(err, flow.ErrSlotBusy):
		return "Esse horário já está ocupado."
	case errors.Is(err, flow.ErrDateUnavailable):
		return "O barbeiro não atende nesse dia."
	case errors.Is(err, flow.ErrQueueClosed):
		return "A fila está fechada."
	case errors.Is(err, flow.ErrInFlight):
		return "Aguarde, ainda processando."
	case errors.Is(err, flow.ErrInvalidTransition), errors.Is(err, errUnknownOption):
		return "Opção inválida."
	}
	// Backend failures were already reported as notifications.
	return ""
}

// pick parses a 1-based menu choice.
func pick(line string, n int) (int, error) {
	i, err := strconv.Atoi(line)
	if err != nil || i < 1 || i > n {
		return 0, errUnknownOption
	}
	return i - 1, nil
}

func (w *wizard) handle(ctx context.Context, st flow.State, line string) error {
	if line == "v" {
		return w.ctrl.GoBack()
	}

	switch st.Step {
	case flow.StepBarber:
		i, err := pick(line, len(st.Barbers))
		if err != nil {
			return err
		}
		return w.ctrl.SelectBarber(ctx, st.Barbers[i].ID)

	case flow.StepBarberDetail:
		switch line {
		case "1":
			return w.ctrl.ChooseBooking()
		case "2":
			return w.ctrl.ChooseQueue(ctx)
		case "3":
			return w.ctrl.ViewAppointments()
		}

	case flow.StepQueueJoin:
		if line == "1" {
			return w.ctrl.JoinQueue(ctx)
		}

	case flow.StepQueuePosition:
		switch line {
		case "":
			return nil
		case "s":
			return w.ctrl.LeaveQueue(ctx)
		}

	case flow.StepService:
		i, err := pick(line, len(st.Services))
		if err != nil {
			return err
		}
		return w.ctrl.SelectService(st.Services[i].ID)

	case flow.StepDate:
		days := w.dateOptions()
		i, err := pick(line, len(days))
		if err != nil {
			return err
		}
		return w.ctrl.SelectDate(ctx, days[i])

	case flow.StepTime:
		if line == "r" {
			return w.ctrl.RefreshAvailability(ctx)
		}
		free := freeSlots(st.AvailableSlots)
		i, err := pick(line, len(free))
		if err != nil {
			return err
		}
		return w.ctrl.SelectTimeSlot(free[i].StartTime)

	case flow.StepConfirmation:
		if line == "s" {
			return w.ctrl.ConfirmBooking(ctx)
		}
	}
	return errUnknownOption
}

// dateOptions lists the next selectable days starting today.
func (w *wizard) dateOptions() []time.Time {
	y, m, d := w.now().In(w.loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, w.loc)

	var out []time.Time
	for i := 0; len(out) < dateChoices && i < 30; i++ {
		day := today.AddDate(0, 0, i)
		if w.ctrl.DateSelectable(day) {
			out = append(out, day)
		}
	}
	return out
}

// freeSlots keeps the selectable slots in display order.
func freeSlots(slots []domain.TimeSlot) []domain.TimeSlot {
	p := present.GroupSlotsByPeriod(slots)
	var out []domain.TimeSlot
	for _, group := range [][]domain.TimeSlot{p.Morning, p.Afternoon, p.Evening} {
		for _, s := range group {
			if !s.Busy() {
				out = append(out, s)
			}
		}
	}
	return out
}

func (w *wizard) render(st flow.State) {
	w.out.printf("\n== %s ==\n", present.ShopName)
	if flow.Ordinal(st.Step) >= 0 && st.Step != flow.StepQueuePosition {
		w.out.printf("%s\n", present.RenderStepper(present.Stepper(st.Step, st.Preselected)))
	}

	switch st.Step {
	case flow.StepBarber:
		w.out.printf("Escolha o barbeiro:\n")
		for i, b := range st.Barbers {
			w.out.printf("  %d) %s (%s)\n", i+1, b.Name, strings.Join(present.WorkingDays(b), ", "))
		}

	case flow.StepBarberDetail:
		w.out.printf("%s\n", st.Selection.Barber.Name)
		w.out.printf("  1) Agendar horário\n  2) Entrar na fila\n  3) Ver agenda\n  v) Voltar\n")

	case flow.StepAppointments:
		w.out.printf("Agenda de %s:\n", st.Selection.Barber.Name)
		if len(st.BarberAppointments) == 0 {
			w.out.printf("  Nenhum agendamento nos próximos dias.\n")
		}
		for _, day := range st.BarberAppointments {
			label := day.Date
			if d, err := time.ParseInLocation(domain.DateLayout, day.Date, w.loc); err == nil {
				label = present.LongDate(d)
			}
			w.out.printf("  %s\n", label)
			for _, a := range day.Appointments {
				w.out.printf("    %s-%s %s\n", a.StartTime.In(w.loc).Format("15:04"), a.EndTime.In(w.loc).Format("15:04"), a.ServiceName)
			}
		}
		w.out.printf("  v) Voltar\n")

	case flow.StepQueueJoin:
		switch qs := st.QueueStatus; {
		case qs == nil:
			w.out.printf("Carregando fila...\n")
		case !qs.IsOpen:
			w.out.printf("Fila fechada no momento.\n")
		default:
			w.out.printf("%d na fila, espera estimada %s\n", qs.QueueLength, present.FormatWait(qs.EstimatedWaitTime))
		}
		w.out.printf("  1) Entrar na fila\n  v) Voltar\n")

	case flow.StepQueuePosition:
		if t := st.Ticket; t != nil {
			progress := present.QueueProgress(t.Position)
			bar := strings.Repeat("#", progress/10) + strings.Repeat(".", 10-progress/10)
			w.out.printf("%s\n[%s] %d%%\n", present.QueueHeadline(*t), bar, progress)
			if !t.Served() {
				w.out.printf("Espera estimada: %s\n", present.FormatWait(t.EstimatedWaitTime))
			}
		}
		w.out.printf("  Enter) Atualizar\n  s) Sair da fila\n  q) Encerrar\n")

	case flow.StepService:
		w.out.printf("Escolha o serviço:\n")
		for i, s := range st.Services {
			w.out.printf("  %d) %s, %d min, %s\n", i+1, s.Name, s.Duration, present.FormatBRL(s.Price))
		}
		w.out.printf("  v) Voltar\n")

	case flow.StepDate:
		w.out.printf("Escolha a data:\n")
		for i, d := range w.dateOptions() {
			w.out.printf("  %d) %s\n", i+1, present.LongDate(d))
		}
		w.out.printf("  v) Voltar\n")

	case flow.StepTime:
		w.renderSlots(st)

	case flow.StepConfirmation:
		sel := st.Selection
		w.out.printf("Confira seu agendamento:\n")
		w.out.printf("  Barbeiro: %s\n  Serviço:  %s\n  Data:     %s\n  Horário:  %s\n  Valor:    %s\n",
			sel.Barber.Name, sel.Service.Name, present.LongDate(*sel.Date), sel.TimeSlot.StartTime, present.FormatBRL(sel.Service.Price))
		w.out.printf("  s) Confirmar\n  v) Voltar\n")
	}
}

func (w *wizard) renderSlots(st flow.State) {
	switch {
	case st.LoadingSlots:
		w.out.printf("Carregando horários...\n")
		return
	case st.SlotsErr != nil:
		w.out.printf("Não foi possível carregar os horários.\n  r) Tentar novamente\n  v) Voltar\n")
		return
	}

	free := freeSlots(st.AvailableSlots)
	if len(free) == 0 {
		w.out.printf("Nenhum horário disponível nesse dia.\n  r) Atualizar\n  v) Voltar\n")
		return
	}
	p := present.GroupSlotsByPeriod(free)
	n := 0
	for _, g := range []struct {
		label string
		slots []domain.TimeSlot
	}{{"Manhã", p.Morning}, {"Tarde", p.Afternoon}, {"Noite", p.Evening}} {
		if len(g.slots) == 0 {
			continue
		}
		parts := make([]string, 0, len(g.slots))
		for _, s := range g.slots {
			n++
			parts = append(parts, fmt.Sprintf("%d) %s", n, s.StartTime))
		}
		w.out.printf("%s: %s\n", g.label, strings.Join(parts, "  "))
	}
	w.out.printf("  r) Atualizar\n  v) Voltar\n")
}

func (w *wizard) renderSuccess(st flow.State) {
	sel := st.Booked
	w.out.printf("\nAgendamento confirmado!\n")
	if sel.Complete() {
		w.out.printf("  %s com %s\n  %s às %s\n", sel.Service.Name, sel.Barber.Name, present.LongDate(*sel.Date), sel.TimeSlot.StartTime)
		if link := present.CalendarLink(sel, w.loc); link != "" {
			w.out.printf("  Adicionar ao calendário: %s\n", link)
		}
	}
}
