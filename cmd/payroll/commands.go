package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/fixtures"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "migrate":
		return a.migrate(ctx)
	case "seed":
		_, err := fixtures.SeedPayComponents(ctx, a.components)
		return err
	case "generate":
		return a.generate(ctx, args)
	case "close-event":
		return a.closeEvent(ctx, args)
	case "summary":
		return a.summary(ctx, args)
	case "schedule":
		return a.schedule(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) migrate(ctx context.Context) error {
	if a.db == nil {
		return errors.New("migrate needs a database; drop -memory")
	}
	if err := database.Migrate(ctx, a.db); err != nil {
		return err
	}
	slog.Info("Migrations applied")
	return nil
}

func (a *app) generate(ctx context.Context, args []string) error {
	now := time.Now()
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	month := fs.Int("month", int(now.Month()), "competence month (1-12)")
	year := fs.Int("year", now.Year(), "competence year")
	skipEvent := fs.Bool("skip-default-event", false, "only create the competence and its eligible set")
	notes := fs.String("notes", "", "free notes stored on the competence")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := payroll.GeneratePayrollRequest{Month: *month, Year: *year, CreateDefaultEvent: !*skipEvent}
	if *notes != "" {
		req.Notes = notes
	}

	competence, err := a.payroll.GeneratePayroll(ctx, req)
	if err != nil {
		return err
	}
	return a.printOverview(ctx, competence.ID)
}

func (a *app) closeEvent(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("close-event", flag.ContinueOnError)
	id := fs.String("id", "", "event id")
	sweep := fs.Bool("sweep", false, "deduct pending advances before closing a final payment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !validator.IsValidUUID(*id) {
		return validator.Field("id", "must be a valid UUID")
	}

	event, err := a.payroll.CloseEvent(ctx, payroll.CloseEventRequest{ID: *id, SweepAdvances: *sweep})
	if err != nil {
		return err
	}
	fmt.Printf("%s\t%s\t%s\t%s\n", event.ID, event.Description, event.Status, event.TotalAmount.StringFixed(2))
	return nil
}

func (a *app) summary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	id := fs.String("competence", "", "competence id")
	month := fs.Int("month", 0, "competence month, used with -year instead of -competence")
	year := fs.Int("year", 0, "competence year")
	if err := fs.Parse(args); err != nil {
		return err
	}

	competenceID := *id
	if competenceID != "" && !validator.IsValidUUID(competenceID) {
		return validator.Field("competence", "must be a valid UUID")
	}
	if competenceID == "" {
		competence, err := a.payroll.GetCompetenceByPeriod(ctx, *month, *year)
		if err != nil {
			return err
		}
		competenceID = competence.ID
	}
	return a.printOverview(ctx, competenceID)
}

// schedule keeps generating the current month until interrupted.
func (a *app) schedule(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ContinueOnError)
	interval := fs.Duration("interval", time.Hour, "how often to check for a missing competence")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *interval <= 0 {
		return errors.New("-interval must be positive")
	}

	scheduler := cron.NewScheduler()
	cron.NewPayrollJobs(a.payroll).RegisterJobs(scheduler, *interval)
	scheduler.Run(ctx)
	return nil
}

func (a *app) printOverview(ctx context.Context, competenceID string) error {
	overview, err := a.payroll.GetOverview(ctx, competenceID)
	if err != nil {
		return err
	}
	summaries, err := a.payroll.ListSummaries(ctx, competenceID)
	if err != nil {
		return err
	}
	events, err := a.payroll.ListEvents(ctx, competenceID)
	if err != nil {
		return err
	}

	c := overview.Competence
	fmt.Printf("Competence %s (%s) %s\n", c.Period(), c.ID, c.Status)
	fmt.Printf("Employees %d  Events %d  Paid %s  Pending %s\n\n",
		overview.EmployeeCount, overview.EventCount,
		overview.PaidTotal.StringFixed(2), overview.PendingTotal.StringFixed(2))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "EVENT\tTYPE\tSTATUS\tTOTAL\t")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", e.Description, e.Type, e.Status, e.TotalAmount.StringFixed(2))
	}
	fmt.Fprintln(w, "\t\t\t\t")
	fmt.Fprintln(w, "EMPLOYEE\tCREDITS\tDEBITS\tNET\t")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", s.EmployeeName,
			s.TotalCredits.StringFixed(2), s.TotalDebits.StringFixed(2), s.Net.StringFixed(2))
	}
	fmt.Fprintf(w, "TOTAL\t%s\t%s\t%s\t\n",
		overview.Totals.Credits.StringFixed(2), overview.Totals.Debits.StringFixed(2), overview.Totals.Net.StringFixed(2))
	return w.Flush()
}
