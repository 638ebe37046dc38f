package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"github.com/votingworks/paper-handler/internal/machine"
	"github.com/votingworks/paper-handler/internal/models"
)

type Configuration struct {
	Server  Server
	Log     Log
	Storage Storage
	Scanner Scanner
	Audit   Audit
}

type Server struct {
	HTTPPort   int    `default:"3002" validate:"min=1,max=65535" flag:"server-http-port"`
	ServerMode string `default:"dev" validate:"oneof=dev prod" flag:"server-mode"`
}

type Log struct {
	Level  string `default:"info" validate:"oneof=debug info warn error" flag:"log-level"`
	Format string `default:"console" validate:"oneof=console json" flag:"log-format"`
	// File tees the log into a rotated file when set.
	File       string `flag:"log-file"`
	MaxSizeMB  int    `default:"100" validate:"min=1" flag:"log-max-size"`
	MaxBackups int    `default:"5" validate:"min=0" flag:"log-max-backups"`
}

type Storage struct {
	// DatabasePath is the DuckDB file. ":memory:" keeps everything in memory.
	DatabasePath string `default:"/var/lib/paper-handler/paper-handler.duckdb" validate:"required" flag:"storage-db-path"`
}

type Scanner struct {
	Driver                   string `default:"mock" validate:"oneof=mock file" flag:"scanner-driver"`
	Workflow                 string `default:"scan" validate:"oneof=scan print" flag:"scanner-workflow"`
	AcceptPolicy             string `default:"review" validate:"oneof=review auto" flag:"scanner-accept-policy"`
	MaxInterpretationRetries int    `default:"2" validate:"min=0" flag:"scanner-max-interpretation-retries"`
	MaxPrintAttempts         int    `default:"3" validate:"min=1" flag:"scanner-max-print-attempts"`
	Inbox                    string `default:"/var/lib/paper-handler/inbox" validate:"required_if=Driver file" flag:"scanner-inbox"`
	ImagesFolder             string `default:"/var/lib/paper-handler/images" validate:"required_if=Driver file" flag:"scanner-images-folder"`
	Delays                   Delays
}

type Delays struct {
	Reconnect              time.Duration `default:"3s" validate:"gt=0" flag:"scanner-reconnect-delay"`
	AcceptedReady          time.Duration `default:"2500ms" validate:"gt=0" flag:"scanner-accepted-ready-delay"`
	AcceptedResetToNoPaper time.Duration `default:"2s" validate:"gt=0" flag:"scanner-accepted-reset-delay"`
	PollingInterval        time.Duration `default:"200ms" validate:"gt=0" flag:"scanner-polling-interval"`
	EjectTimeout           time.Duration `default:"10s" validate:"gt=0" flag:"scanner-eject-timeout"`
	PaperReloaded          time.Duration `default:"1s" validate:"gt=0" flag:"scanner-paper-reloaded-delay"`
	DriverTimeout          time.Duration `default:"30s" validate:"gt=0" flag:"scanner-driver-timeout"`
}

type Audit struct {
	BufferSize int `default:"256" validate:"min=1" flag:"audit-buffer-size"`
}

type ConfigurationOption func(*Configuration)

func WithDatabasePath(path string) ConfigurationOption {
	return func(c *Configuration) {
		c.Storage.DatabasePath = path
	}
}

func WithHTTPPort(port int) ConfigurationOption {
	return func(c *Configuration) {
		c.Server.HTTPPort = port
	}
}

func NewConfigurationWithOptionsAndDefaults(opts ...ConfigurationOption) *Configuration {
	c := &Configuration{}
	if err := defaults.Set(c); err != nil {
		panic(fmt.Sprintf("invalid configuration defaults: %v", err))
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate checks every field against its validate tag. Errors name the flag of
// the first invalid field.
func (c *Configuration) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("flag"); name != "" {
			return name
		}
		return f.Name
	})

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			if fe.Param() != "" {
				return fmt.Errorf("invalid %s: %v must satisfy %s=%s", fe.Field(), fe.Value(), fe.Tag(), fe.Param())
			}
			return fmt.Errorf("invalid %s: %s", fe.Field(), fe.Tag())
		}
		return err
	}
	return nil
}

// Policy builds the state machine policy of the scanner section.
func (c *Configuration) Policy() (machine.Policy, error) {
	workflow, err := machine.ParseWorkflow(c.Scanner.Workflow)
	if err != nil {
		return machine.Policy{}, err
	}
	acceptPolicy, err := machine.ParseAcceptPolicy(c.Scanner.AcceptPolicy)
	if err != nil {
		return machine.Policy{}, err
	}

	p := machine.Policy{
		Workflow:                 workflow,
		AcceptPolicy:             acceptPolicy,
		MaxInterpretationRetries: c.Scanner.MaxInterpretationRetries,
		MaxPrintAttempts:         c.Scanner.MaxPrintAttempts,
		Delays: models.Delays{
			Reconnect:              c.Scanner.Delays.Reconnect,
			AcceptedReady:          c.Scanner.Delays.AcceptedReady,
			AcceptedResetToNoPaper: c.Scanner.Delays.AcceptedResetToNoPaper,
			PollingInterval:        c.Scanner.Delays.PollingInterval,
			EjectTimeout:           c.Scanner.Delays.EjectTimeout,
			PaperReloaded:          c.Scanner.Delays.PaperReloaded,
			DriverTimeout:          c.Scanner.Delays.DriverTimeout,
		},
	}
	return p, p.Validate()
}
