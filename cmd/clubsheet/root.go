package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.alis.build/alog"

	"clubsheet/internal/club"
	"clubsheet/internal/config"
	"clubsheet/internal/notify"
	"clubsheet/internal/observability"
	"clubsheet/internal/sheet"
	"clubsheet/internal/storage"
	"clubsheet/pkg/domain"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	cfg     config.Config
	trace   bool
	wb      sheet.Workbook
	svc     *club.Service
	metrics *observability.PrometheusRecorder
}

// run executes one command line. The workbook is closed and the metrics
// textfile written whether or not the command succeeds; cobra skips post-run
// hooks after a failed RunE.
func run(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	a := &app{cfg: cfg}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(out)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.close(ctx))
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "clubsheet",
		Short:         "Track club members, dues and money in a workbook",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.Storage.Driver, "driver", a.cfg.Storage.Driver, "workbook backend: memory, sqlite or postgres")
	flags.StringVar(&a.cfg.Storage.SQLitePath, "sqlite-path", a.cfg.Storage.SQLitePath, "sqlite database file")
	flags.StringVar(&a.cfg.Storage.PostgresDSN, "postgres-dsn", a.cfg.Storage.PostgresDSN, "postgres connection string")
	flags.StringVar(&a.cfg.MetricsFile, "metrics-file", a.cfg.MetricsFile, "write prometheus metrics to this textfile on exit")
	flags.BoolVar(&a.trace, "trace", false, "write operation spans as JSON lines to stderr")

	root.AddCommand(
		a.initCmd(),
		a.memberCmd(),
		a.incomeCmd(),
		a.expenseCmd(),
		a.duesCmd(),
		a.iouCmd(),
		a.attendanceCmd(),
		a.quarterCmd(),
		a.transferCmd(),
		a.namesCmd("paymenttype", "payment type"),
		a.namesCmd("recipient", "recipient"),
		a.tableCmd(),
		a.refreshCmd(),
		a.archiveCmd(),
	)
	return root
}

// open connects to the workbook and builds the service. Subcommands call it
// from PreRunE so flag values are already parsed.
func (a *app) open(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	alog.SetLevel(a.cfg.Level())
	wb, err := storage.OpenWorkbook(ctx, a.cfg.Storage)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	a.wb = wb
	a.metrics = observability.NewPrometheusRecorder()
	opts := []club.Option{club.WithMetricsRecorder(a.metrics)}
	if a.trace {
		opts = append(opts, club.WithTracer(observability.NewJSONTracer(os.Stderr)))
	}
	if a.cfg.SendGrid.Enabled() {
		opts = append(opts, club.WithNotifier(notify.NewSendGrid(a.cfg.SendGrid.APIKey, a.cfg.SendGrid.From)))
	}
	svc, err := club.NewService(wb, opts...)
	if err != nil {
		return err
	}
	a.svc = svc
	return nil
}

func (a *app) close(ctx context.Context) error {
	if a.metrics != nil && a.cfg.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
			alog.Warnf(ctx, "write metrics file: %v", err)
		}
	}
	if a.wb == nil {
		return nil
	}
	wb := a.wb
	a.wb, a.svc = nil, nil
	if err := wb.Close(); err != nil {
		return fmt.Errorf("close workbook: %w", err)
	}
	return nil
}

// parseMoney reads a decimal dollar amount into cents.
func parseMoney(s string) (int64, error) {
	f, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(s), "$"), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, domain.IllegalArgumentf("%q is not an amount", s)
	}
	return int64(math.Round(f * 100)), nil
}

// parseDate reads month/day/year; empty means today.
func parseDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(domain.DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, domain.IllegalArgumentf("%q is not a date (mm/dd/yyyy)", s)
	}
	return t, nil
}

func splitNames(args []string) []string {
	var out []string
	for _, a := range args {
		for _, n := range strings.Split(a, ",") {
			if n = strings.TrimSpace(n); n != "" {
				out = append(out, n)
			}
		}
	}
	return out
}

func parseIDs(args []string) ([]int64, error) {
	var out []int64
	for _, s := range splitNames(args) {
		n, err := domain.ParseInt(s)
		if err != nil {
			return nil, err
		}
		out = append(out, n.Int())
	}
	return out, nil
}
