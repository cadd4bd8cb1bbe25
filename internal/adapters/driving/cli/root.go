package cli

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driving"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/logger"
)

// version is set at build time.
var version = "dev"

var verbose bool

// logLevelVar set to "debug" has the same effect as --verbose.
const logLevelVar = "LOG_LEVEL"

// Services holds the driving ports the commands run against.
// Any field may be nil; commands that need a missing port fail with an error.
type Services struct {
	Assistant driving.Assistant
	Retriever driving.Retriever
	Ingest    driving.IngestService
	Support   driving.SupportService
	Query     driving.QueryRunner
}

// Bootstrap opens stores and model clients on first use.
type Bootstrap func(ctx context.Context) (*Services, error)

var (
	settingsService driving.SettingsService

	bootstrap Bootstrap
	bootOnce  sync.Once
	booted    *Services
	bootErr   error
)

var rootCmd = &cobra.Command{
	Use:   "supportdesk",
	Short: "Multi-agent customer support assistant",
	Long: `supportdesk answers customer support questions by routing each message
to a specialist agent: a SQL agent over the support database, a policy agent
over the ingested policy documents, or a general conversational agent.

Threads keep conversation memory so follow-up questions resolve against
earlier turns.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose || strings.EqualFold(os.Getenv(logLevelVar), "debug"))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetSettingsService sets the settings port. Settings commands work without
// opening any store.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetBootstrap sets the function used to build services on first use.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
	bootOnce = sync.Once{}
	booted, bootErr = nil, nil
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadServices runs the bootstrap once and returns its result.
func loadServices(ctx context.Context) (*Services, error) {
	bootOnce.Do(func() {
		if bootstrap == nil {
			bootErr = errors.New("services not configured")
			return
		}
		booted, bootErr = bootstrap(ctx)
	})
	return booted, bootErr
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func assistantPort(cmd *cobra.Command) (driving.Assistant, error) {
	s, err := loadServices(commandContext(cmd))
	if err != nil {
		return nil, err
	}
	if s.Assistant == nil {
		return nil, errors.New("assistant not configured")
	}
	return s.Assistant, nil
}

func retrieverPort(cmd *cobra.Command) (driving.Retriever, error) {
	s, err := loadServices(commandContext(cmd))
	if err != nil {
		return nil, err
	}
	if s.Retriever == nil {
		return nil, errors.New("retriever not configured")
	}
	return s.Retriever, nil
}

func ingestPort(cmd *cobra.Command) (driving.IngestService, error) {
	s, err := loadServices(commandContext(cmd))
	if err != nil {
		return nil, err
	}
	if s.Ingest == nil {
		return nil, errors.New("ingest service not configured")
	}
	return s.Ingest, nil
}

func supportPort(cmd *cobra.Command) (driving.SupportService, error) {
	s, err := loadServices(commandContext(cmd))
	if err != nil {
		return nil, err
	}
	if s.Support == nil {
		return nil, errors.New("support service not configured")
	}
	return s.Support, nil
}

func queryPort(cmd *cobra.Command) (driving.QueryRunner, error) {
	s, err := loadServices(commandContext(cmd))
	if err != nil {
		return nil, err
	}
	if s.Query == nil {
		return nil, errors.New("query runner not configured")
	}
	return s.Query, nil
}
