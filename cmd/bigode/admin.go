package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bigode/bigode-booking/internal/client"
	"github.com/bigode/bigode-booking/internal/domain"
	"github.com/bigode/bigode-booking/internal/present"
	"github.com/bigode/bigode-booking/internal/session"
)

func newAdminCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Barbershop admin commands",
	}

	cmd.AddCommand(
		newLoginCommand(o),
		newLogoutCommand(o),
		newPlansCommand(o),
		newDashboardCommand(o),
		newAgendaCommand(o),
		newAdminBarbersCommand(o),
		newAdminServicesCommand(o),
		newLinkCommand(o),
		newQueueNextCommand(o),
		newQueueOpenCommand(o, true),
		newQueueOpenCommand(o, false),
	)
	return cmd
}

// authed loads the stored session and returns a client that sends its token.
func (o *rootOptions) authed() (*client.Client, session.Session, error) {
	store := o.store()
	sess, err := store.Require()
	if err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			return nil, sess, errors.New("faça login com `bigode admin login --phone <telefone>`")
		}
		return nil, sess, err
	}
	return o.client(client.WithTokenSource(store.TokenSource())), sess, nil
}

func newLoginCommand(o *rootOptions) *cobra.Command {
	var phone, code string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a one-time code sent to the admin phone",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()
			c := o.client()

			challenge, err := c.RequestOTP(ctx, phone)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, challenge.Message)
			if challenge.DevCode != "" {
				fmt.Fprintf(out, "Código de desenvolvimento: %s\n", challenge.DevCode)
			}

			if code == "" {
				fmt.Fprint(out, "Código: ")
				code, err = readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			login, err := c.VerifyOTP(ctx, phone, code)
			if err != nil {
				return err
			}
			sess, err := o.store().Login(login)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Bem-vindo, %s (%s)\n", sess.Admin.Name, sess.Admin.BarbershopName)
			if !sess.HasSelectedPlan {
				fmt.Fprintln(out, "Escolha um plano com `bigode admin plans select <id>`.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "admin phone number")
	cmd.Flags().StringVar(&code, "code", "", "one-time code; prompted when empty")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}

func readLine(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(sc.Text()), nil
}

func newLogoutCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored admin session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.store().Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sessão encerrada.")
			return nil
		},
	}
}

func newPlansCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List subscription plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			current := ""
			if sess, err := o.store().Load(); err == nil {
				current = sess.PlanID
			}
			for _, p := range domain.Plans() {
				mark := " "
				if p.ID == current {
					mark = "*"
				}
				tag := ""
				if p.Recommended {
					tag = " (recomendado)"
				}
				fmt.Fprintf(out, "%s %s: %s %s %s%s\n", mark, p.ID, p.Name, present.FormatBRL(p.Price), p.Period, tag)
				fmt.Fprintf(out, "    %s\n", p.Description)
				for _, f := range p.Features {
					check := "-"
					if f.Included {
						check = "+"
					}
					fmt.Fprintf(out, "    %s %s\n", check, f.Text)
				}
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "select <plan>",
		Short: "Choose the plan for the logged-in barbershop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.store().SelectPlan(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Plano %s selecionado.\n", args[0])
			return nil
		},
	})
	return cmd
}

func newDashboardCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the last four weeks of appointments and revenue",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := o.authed()
			if err != nil {
				return err
			}
			stats, err := c.Dashboard(context.Background())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Agendamentos: %d (concluídos %d, cancelados %d, faltas %d)\n",
				stats.TotalAppointments, stats.Completed, stats.Canceled, stats.NoShow)
			fmt.Fprintf(out, "Faturamento:  %s\n", present.FormatBRL(stats.TotalRevenue))
			fmt.Fprintln(out, "Por dia:")
			for _, d := range stats.AppointmentsByDay {
				fmt.Fprintf(out, "  %-4s %3d %s\n", d.Day, d.Count, strings.Repeat("#", d.Count))
			}
			fmt.Fprintln(out, "Por semana:")
			for _, wk := range stats.RevenueByWeek {
				fmt.Fprintf(out, "  %-6s %s\n", wk.Week, present.FormatBRL(wk.Revenue))
			}
			fmt.Fprintln(out, "Por barbeiro:")
			for _, b := range stats.AppointmentsByBarber {
				fmt.Fprintf(out, "  %-10s %3d\n", b.Name, b.Count)
			}
			return nil
		},
	}
}

func newAgendaCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "agenda",
		Short: "List today's appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := o.authed()
			if err != nil {
				return err
			}
			entries, err := c.Agenda(context.Background())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Nenhum agendamento hoje.")
				return nil
			}
			loc := o.cfg.Flow.Location()
			for _, e := range entries {
				fmt.Fprintf(out, "%s-%s  %-18s %-22s %-20s %s  [%s]\n",
					e.StartTime.In(loc).Format("15:04"), e.EndTime.In(loc).Format("15:04"),
					e.ClientName, e.ServiceName, e.BarberName, present.FormatBRL(e.ServicePrice), e.Status)
			}
			return nil
		},
	}
}

func newAdminBarbersCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "barbers",
		Short: "List the barbershop's barbers",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := o.authed()
			if err != nil {
				return err
			}
			barbers, err := c.AdminBarbers(context.Background())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, b := range barbers {
				status := "ativo"
				if !b.IsActive {
					status = "inativo"
				}
				fmt.Fprintf(out, "%s  %-20s %-8s %s\n", b.ID, b.Name, status, strings.Join(present.WorkingDays(b), ", "))
			}
			return nil
		},
	}
}

func newAdminServicesCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List the barbershop's services",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := o.authed()
			if err != nil {
				return err
			}
			services, err := c.AdminServices(context.Background())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range services {
				fmt.Fprintf(out, "%s  %-22s %3d min  %s\n", s.ID, s.Name, s.Duration, present.FormatBRL(s.Price))
			}
			return nil
		},
	}
}

func newLinkCommand(o *rootOptions) *cobra.Command {
	var phone, barberID string

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Create a booking link for a customer",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, sess, err := o.authed()
			if err != nil {
				return err
			}
			req := domain.BookingLinkRequest{
				BarbershopID:  sess.Admin.BarbershopID,
				CustomerPhone: phone,
			}
			if barberID != "" {
				req.BarberID = &barberID
			}
			link, err := c.CreateBookingLink(context.Background(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\nválido até %s\n", link.BookingURL, link.ExpiresAt.In(o.cfg.Flow.Location()).Format("02/01 15:04"))
			return nil
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "customer phone number")
	cmd.Flags().StringVar(&barberID, "barber", "", "pre-select this barber")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}

func newQueueNextCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "queue-next <barber-id>",
		Short: "Call the next client in a barber's queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := o.authed()
			if err != nil {
				return err
			}
			status, err := c.CallNext(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Próximo chamado. %d na fila, espera estimada %s\n",
				status.QueueLength, present.FormatWait(status.EstimatedWaitTime))
			return nil
		},
	}
}

func newQueueOpenCommand(o *rootOptions, open bool) *cobra.Command {
	use, short, done := "queue-close <barber-id>", "Stop accepting walk-ins for a barber", "Fila fechada."
	if open {
		use, short, done = "queue-open <barber-id>", "Accept walk-ins for a barber again", "Fila aberta."
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := o.authed()
			if err != nil {
				return err
			}
			status, err := c.SetQueueOpen(context.Background(), args[0], open)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d na fila\n", done, status.QueueLength)
			return nil
		},
	}
}
