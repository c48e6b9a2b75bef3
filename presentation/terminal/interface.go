package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ui_automation/application/pageobject"
	"ui_automation/application/scenario"
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
	"ui_automation/infrastructure/browser"
	"ui_automation/infrastructure/config"
	"ui_automation/infrastructure/memdom"
	"ui_automation/infrastructure/memdom/policyconsole"
	"ui_automation/infrastructure/storage"
)

// DriverMemory runs the suite against the in-process console simulation.
const DriverMemory = "memory"

type TerminalInterface struct {
	cfg     *config.Config
	logger  *logrus.Logger
	root    *cobra.Command
	session interfaces.Session
}

func NewTerminalInterface() (*TerminalInterface, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// Setup logger
	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	t := &TerminalInterface{cfg: cfg, logger: logger}
	t.root = t.rootCommand()
	return t, nil
}

// Run executes the command line given in args (os.Args[1:] when nil).
func (t *TerminalInterface) Run(args ...string) error {
	if args != nil {
		t.root.SetArgs(args)
	}
	return t.root.Execute()
}

// SetOutput redirects command output.
func (t *TerminalInterface) SetOutput(w io.Writer) {
	t.root.SetOut(w)
	t.root.SetErr(w)
}

func (t *TerminalInterface) Close() error {
	if t.session == nil {
		return nil
	}
	err := t.session.Close()
	t.session = nil
	return err
}

func (t *TerminalInterface) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ui_automation",
		Short:         "Synchronized UI test suite for the policy admin console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(t.runCommand(), t.screensCommand(), t.reportCommand())
	return root
}

func (t *TerminalInterface) runCommand() *cobra.Command {
	var (
		driver    string
		cases     []string
		reportDir string
		deadline  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scenario suite",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if deadline > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, deadline)
				defer cancel()
			}
			return t.runSuite(ctx, cmd.OutOrStdout(), driver, cases, reportDir)
		},
	}
	cmd.Flags().StringVar(&driver, "driver", t.cfg.Driver, "browser driver: selenium, playwright, cdp or memory")
	cmd.Flags().StringSliceVar(&cases, "case", nil, "case name or name prefix to run (repeatable)")
	cmd.Flags().StringVar(&reportDir, "report-dir", t.cfg.ReportDir, "directory for JSON run reports")
	cmd.Flags().DurationVar(&deadline, "deadline", 0, "abort the run after this long (0 for no limit)")
	return cmd
}

func (t *TerminalInterface) runSuite(ctx context.Context, out io.Writer, driver string, names []string, reportDir string) error {
	store, err := storage.NewReportStore(reportDir)
	if err != nil {
		return err
	}

	session, err := t.openSession(driver)
	if err != nil {
		return fmt.Errorf("failed to initialize browser: %w", err)
	}
	t.session = session
	defer t.Close()

	harness := scenario.NewHarness(session, t.logger, t.cfg.Suite)
	suite := scenario.NewSuite(harness, driver, scenario.DefaultCases(t.cfg.Suite.MainCategories))
	if len(names) > 0 {
		if suite, err = suite.Select(names); err != nil {
			return err
		}
	}

	report, runErr := suite.Run(ctx)
	if err := store.SaveReport(report); err != nil {
		t.logger.Warnf("Failed to save report: %v", err)
	} else {
		t.logger.Infof("Report %s saved to %s", report.ID, store.Dir())
	}
	printReport(out, report)

	if runErr != nil {
		return runErr
	}
	if total, _, failed := report.Totals(); failed > 0 {
		return fmt.Errorf("%d of %d cases failed", failed, total)
	}
	return nil
}

func (t *TerminalInterface) openSession(driver string) (interfaces.Session, error) {
	if strings.EqualFold(driver, DriverMemory) {
		console := policyconsole.New(policyconsole.Options{
			Username: t.cfg.Suite.Credentials.Username,
			Password: t.cfg.Suite.Credentials.Password,
		})
		return memdom.NewSession(console, t.logger), nil
	}
	return browser.Open(driver, t.cfg.Browser, t.logger)
}

func (t *TerminalInterface) screensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "screens",
		Short: "Print the selector map of every screen",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			screens := pageobject.Screens()
			for name, p := range t.cfg.Suite.Screens {
				screens[name] = p
			}
			out := cmd.OutOrStdout()
			for _, name := range []string{pageobject.ScreenLogin, pageobject.ScreenMenu, pageobject.ScreenAuthorize, pageobject.ScreenCreate} {
				p := screens[name]
				fmt.Fprintf(out, "%s\n", name)
				for _, field := range p.Names() {
					fmt.Fprintf(out, "  %-24s %s\n", field, p.MustField(field))
				}
			}
		},
	}
}

func (t *TerminalInterface) reportCommand() *cobra.Command {
	var reportDir string
	cmd := &cobra.Command{
		Use:   "report [id]",
		Short: "Print a saved run report (the latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewReportStore(reportDir)
			if err != nil {
				return err
			}
			var report *entities.RunReport
			if len(args) == 1 {
				report, err = store.LoadReport(args[0])
			} else {
				report, err = store.LoadLatest()
			}
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringVar(&reportDir, "report-dir", t.cfg.ReportDir, "directory for JSON run reports")
	return cmd
}

func printReport(out io.Writer, report *entities.RunReport) {
	fmt.Fprintf(out, "\nRun %s (%s)\n", report.ID, report.Driver)
	for _, r := range report.Results {
		fmt.Fprintf(out, "  %-8s %-60s %s", strings.ToUpper(string(r.Status)), r.Name, r.Duration.Round(time.Millisecond))
		if r.Message != "" {
			fmt.Fprintf(out, "\n           %s", r.Message)
		}
		fmt.Fprintln(out)
	}
	total, passed, failed := report.Totals()
	fmt.Fprintf(out, "\n%d cases: %d passed, %d failed\n", total, passed, failed)
}
