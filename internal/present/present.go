// Package present turns flow state into display text for the terminal driver.
package present

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bigode/bigode-booking/internal/domain"
	"github.com/bigode/bigode-booking/internal/flow"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const ShopName = "Barbearia do Bigode"

type StepperItem struct {
	Step      flow.Step
	Label     string
	Active    bool
	Completed bool
}

var stepperSteps = []struct {
	step  flow.Step
	label string
}{
	{flow.StepBarber, "Barbeiro"},
	{flow.StepService, "Serviço"},
	{flow.StepDate, "Data"},
	{flow.StepTime, "Horário"},
	{flow.StepConfirmation, "Confirmar"},
}

// Stepper lists the progress items for the current step. The barber item is
// hidden when the booking link already chose the barber.
func Stepper(current flow.Step, preselected bool) []StepperItem {
	cur := flow.Ordinal(current)
	items := make([]StepperItem, 0, len(stepperSteps))
	for _, s := range stepperSteps {
		if preselected && s.step == flow.StepBarber {
			continue
		}
		own := flow.Ordinal(s.step)
		items = append(items, StepperItem{
			Step:      s.step,
			Label:     s.label,
			Active:    cur >= own,
			Completed: cur > own,
		})
	}
	return items
}

// RenderStepper draws the stepper on one line, e.g. "[x] Barbeiro > [*] Serviço > [ ] Data".
func RenderStepper(items []StepperItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		mark := "[ ]"
		switch {
		case it.Completed:
			mark = "[x]"
		case it.Active:
			mark = "[*]"
		}
		parts = append(parts, mark+" "+it.Label)
	}
	return strings.Join(parts, " > ")
}

type SlotPeriods struct {
	Morning   []domain.TimeSlot
	Afternoon []domain.TimeSlot
	Evening   []domain.TimeSlot
}

// GroupSlotsByPeriod splits slots by start hour: before 12, before 18, rest.
// Slots with an unparsable start time are dropped.
func GroupSlotsByPeriod(slots []domain.TimeSlot) SlotPeriods {
	var p SlotPeriods
	for _, s := range slots {
		mins, err := domain.ClockMinutes(s.StartTime)
		if err != nil {
			continue
		}
		switch hour := mins / 60; {
		case hour < 12:
			p.Morning = append(p.Morning, s)
		case hour < 18:
			p.Afternoon = append(p.Afternoon, s)
		default:
			p.Evening = append(p.Evening, s)
		}
	}
	return p
}

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders a price the way Brazilian storefronts do: "R$ 1.234,50".
func FormatBRL(v float64) string {
	amount := brPrinter.Sprint(number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	return "R$ " + amount
}

// FormatWait renders minutes as "1h 05min", or "25min" under an hour.
func FormatWait(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	if minutes < 60 {
		return fmt.Sprintf("%dmin", minutes)
	}
	return fmt.Sprintf("%dh %02dmin", minutes/60, minutes%60)
}

// QueueProgress is the fill percentage of the queue bar.
func QueueProgress(position int) int {
	return max(10, min(100, 100-10*position))
}

func QueueHeadline(t domain.QueueTicket) string {
	switch {
	case t.Served():
		return "Sua vez chegou!"
	case t.Next():
		return "Você é o próximo!"
	default:
		return fmt.Sprintf("Você é o %dº da fila", t.Position)
	}
}

var weekdayLabels = [7]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

func WeekdayLabel(d time.Weekday) string {
	return weekdayLabels[d%7]
}

// WorkingDays lists the labels of the weekdays the barber has an active
// schedule on, Sunday first.
func WorkingDays(b domain.Barber) []string {
	var out []string
	for d := time.Sunday; d <= time.Saturday; d++ {
		if b.WorksOn(d) {
			out = append(out, weekdayLabels[d])
		}
	}
	return out
}

var monthLabels = [12]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro"}

// LongDate renders "quinta, 5 de março".
func LongDate(d time.Time) string {
	return fmt.Sprintf("%s, %d de %s", strings.ToLower(weekdayLabels[d.Weekday()]), d.Day(), monthLabels[d.Month()-1])
}

const calendarTimeLayout = "20060102T150405Z"

// CalendarLink builds a Google Calendar "add event" link for a booked
// selection. It returns "" for an incomplete selection.
func CalendarLink(sel flow.Selection, loc *time.Location) string {
	if !sel.Complete() {
		return ""
	}
	start, err := domain.At(*sel.Date, sel.TimeSlot.StartTime, loc)
	if err != nil {
		return ""
	}
	end := start.Add(time.Duration(sel.Service.Duration) * time.Minute)

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", sel.Service.Name+" - "+sel.Barber.Name)
	q.Set("dates", start.UTC().Format(calendarTimeLayout)+"/"+end.UTC().Format(calendarTimeLayout))
	q.Set("details", "Agendamento na "+ShopName)
	q.Set("location", ShopName)
	return "https://calendar.google.com/calendar/render?" + q.Encode()
}
