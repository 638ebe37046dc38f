package cmd

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-extras/cobraflags"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	v1 "github.com/votingworks/paper-handler/api/v1"
	"github.com/votingworks/paper-handler/internal/audit"
	"github.com/votingworks/paper-handler/internal/config"
	"github.com/votingworks/paper-handler/internal/handlers"
	"github.com/votingworks/paper-handler/internal/server"
	"github.com/votingworks/paper-handler/internal/services"
	"github.com/votingworks/paper-handler/internal/store"
	"github.com/votingworks/paper-handler/internal/store/migrations"
	"github.com/votingworks/paper-handler/pkg/driver"
	"github.com/votingworks/paper-handler/pkg/interpreter"
	"github.com/votingworks/paper-handler/pkg/scheduler"
)

const shutdownTimeout = 10 * time.Second

func NewRunCommand(cfg *config.Configuration) *cobra.Command {
	requiredFlags := make(map[*pflag.Flag]bool)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the paper handler and its HTTP API",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			viper.AutomaticEnv()
			viper.SetEnvPrefix(envPrefix)
			viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			cobraflags.PresetRequiredFlags(envPrefix, requiredFlags, cmd)

			return validateConfiguration(cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	registerFlags(cmd.Flags(), cfg)

	return cmd
}

func registerFlags(flags *pflag.FlagSet, cfg *config.Configuration) {
	flags.IntVar(&cfg.Server.HTTPPort, "server-http-port", cfg.Server.HTTPPort, "Port of the HTTP API")
	flags.StringVar(&cfg.Server.ServerMode, "server-mode", cfg.Server.ServerMode, "Server mode: dev or prod (TLS)")

	flags.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level: debug, info, warn or error")
	flags.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "Log format: console or json")
	flags.StringVar(&cfg.Log.File, "log-file", cfg.Log.File, "Also write logs to this rotated file")
	flags.IntVar(&cfg.Log.MaxSizeMB, "log-max-size", cfg.Log.MaxSizeMB, "Size in MB of a log file before rotation")
	flags.IntVar(&cfg.Log.MaxBackups, "log-max-backups", cfg.Log.MaxBackups, "Number of rotated log files to keep")

	flags.StringVar(&cfg.Storage.DatabasePath, "storage-db-path", cfg.Storage.DatabasePath, "Path of the DuckDB workspace, or :memory:")

	flags.StringVar(&cfg.Scanner.Driver, "scanner-driver", cfg.Scanner.Driver, "Driver: mock or file")
	flags.StringVar(&cfg.Scanner.Workflow, "scanner-workflow", cfg.Scanner.Workflow, "Workflow: scan or print")
	flags.StringVar(&cfg.Scanner.AcceptPolicy, "scanner-accept-policy", cfg.Scanner.AcceptPolicy, "Accept policy: review or auto")
	flags.IntVar(&cfg.Scanner.MaxInterpretationRetries, "scanner-max-interpretation-retries", cfg.Scanner.MaxInterpretationRetries, "Rescans of an unreadable sheet before asking an operator")
	flags.IntVar(&cfg.Scanner.MaxPrintAttempts, "scanner-max-print-attempts", cfg.Scanner.MaxPrintAttempts, "Print attempts of one ballot before reporting a jam")
	flags.StringVar(&cfg.Scanner.Inbox, "scanner-inbox", cfg.Scanner.Inbox, "Inbox folder of the file driver")
	flags.StringVar(&cfg.Scanner.ImagesFolder, "scanner-images-folder", cfg.Scanner.ImagesFolder, "Folder receiving scanned images")

	flags.DurationVar(&cfg.Scanner.Delays.Reconnect, "scanner-reconnect-delay", cfg.Scanner.Delays.Reconnect, "Wait between reconnect rounds")
	flags.DurationVar(&cfg.Scanner.Delays.AcceptedReady, "scanner-accepted-ready-delay", cfg.Scanner.Delays.AcceptedReady, "Wait after an accept before accepting paper again")
	flags.DurationVar(&cfg.Scanner.Delays.AcceptedResetToNoPaper, "scanner-accepted-reset-delay", cfg.Scanner.Delays.AcceptedResetToNoPaper, "Wait after an accept before the print workflow resets")
	flags.DurationVar(&cfg.Scanner.Delays.PollingInterval, "scanner-polling-interval", cfg.Scanner.Delays.PollingInterval, "Paper status polling period")
	flags.DurationVar(&cfg.Scanner.Delays.EjectTimeout, "scanner-eject-timeout", cfg.Scanner.Delays.EjectTimeout, "Time a sheet may stay in the paper path after an eject")
	flags.DurationVar(&cfg.Scanner.Delays.PaperReloaded, "scanner-paper-reloaded-delay", cfg.Scanner.Delays.PaperReloaded, "Settle time after a blank sheet was replaced")
	flags.DurationVar(&cfg.Scanner.Delays.DriverTimeout, "scanner-driver-timeout", cfg.Scanner.Delays.DriverTimeout, "Upper bound of a single driver call")

	flags.IntVar(&cfg.Audit.BufferSize, "audit-buffer-size", cfg.Audit.BufferSize, "Audit entries queued before new ones are dropped")
}

func validateConfiguration(cfg *config.Configuration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := cfg.Policy(); err != nil {
		return err
	}
	if cfg.Scanner.Driver == string(driver.KindFile) && cfg.Scanner.Inbox == cfg.Scanner.ImagesFolder {
		return errors.New("scanner-inbox and scanner-images-folder must differ")
	}
	return nil
}

func run(ctx context.Context, cfg *config.Configuration) error {
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	undo := zap.ReplaceGlobals(logger)
	defer undo()
	defer func() { _ = logger.Sync() }()

	log := zap.S().Named("run")

	db, err := store.NewDB(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	if err := migrations.Run(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	s := store.NewStore(db)
	defer func() {
		if err := s.Close(); err != nil {
			log.Errorw("failed to close store", "error", err)
		}
	}()

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	d, interp, err := newDevice(cfg.Scanner)
	if err != nil {
		return err
	}

	auditLogger := audit.NewAsyncLogger(logger.Named("audit"), cfg.Audit.BufferSize, audit.WithEventSink(s))
	defer auditLogger.Close()

	sched := scheduler.NewScheduler(1)
	defer sched.Close()

	paperHandler := services.NewPaperHandlerService(policy, d, interp, s, auditLogger, sched)
	h := handlers.New(paperHandler, s.Sheets(), s.Events())

	srv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
		v1.RegisterHandlers(router, h)
	})
	if err != nil {
		return err
	}

	log.Infow("starting", "http_port", cfg.Server.HTTPPort, "driver", cfg.Scanner.Driver, "workflow", cfg.Scanner.Workflow, "db", cfg.Storage.DatabasePath)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		if err := paperHandler.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()

		paperHandler.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.Stop(shutdownCtx)
		return nil
	})

	err = g.Wait()
	log.Infow("stopped", "error", err)
	return err
}

func newDevice(cfg config.Scanner) (driver.Driver, interpreter.Interpreter, error) {
	kind, err := driver.ParseKind(cfg.Driver)
	if err != nil {
		return nil, nil, err
	}

	switch kind {
	case driver.KindFile:
		fs := afero.NewOsFs()
		return driver.NewFileDriver(fs, cfg.Inbox, cfg.ImagesFolder), interpreter.NewSidecarInterpreter(fs), nil
	default:
		return driver.NewMockDriver(), interpreter.NewValidBallotInterpreter(), nil
	}
}
