package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/code-payments/message-compiler/pkg/compiler"
	"github.com/code-payments/message-compiler/pkg/metrics"
)

var (
	rootCmd = &cobra.Command{
		Use:               "msgtool",
		Short:             "msgtool compiles, encodes and inspects transaction messages",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: teardown,
	}

	metricsProvider *newrelic.Application
	commandTxn      *newrelic.Transaction
)

func main() {
	defer shutdown()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to execute command: %+v\n", err)
		shutdown()
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)

	if len(config.NewRelicLicenseKey) > 0 {
		nr, err := newrelic.NewApplication(
			newrelic.ConfigFromEnvironment(),
			newrelic.ConfigAppName(config.AppName),
			newrelic.ConfigLicense(config.NewRelicLicenseKey),
		)
		if err != nil {
			return errors.Wrap(err, "error connecting to new relic")
		}
		metricsProvider = nr
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = metrics.WithApplication(ctx, metricsProvider)
	ctx, commandTxn = startCommandTransaction(ctx, metricsProvider, cmd.Name())
	cmd.SetContext(ctx)
	return nil
}

func teardown(_ *cobra.Command, _ []string) {
	endCommandTransaction()
}

// startCommandTransaction attaches a transaction named after the command to
// ctx, so method tracing in the compiler records segments under it.
func startCommandTransaction(ctx context.Context, app *newrelic.Application, name string) (context.Context, *newrelic.Transaction) {
	if app == nil {
		return ctx, nil
	}

	txn := app.StartTransaction(name)
	return newrelic.NewContext(ctx, txn), txn
}

func endCommandTransaction() {
	if commandTxn != nil {
		commandTxn.End()
		commandTxn = nil
	}
}

func shutdown() {
	// A failed command skips PersistentPostRun.
	endCommandTransaction()

	if metricsProvider != nil {
		metricsProvider.Shutdown(5 * time.Second)
		metricsProvider = nil
	}
}

// newCompiler returns a compiler configured from the environment, with any
// values passed on the command line taking precedence.
func newCompiler() (*compiler.Compiler, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}

	overrides := compiler.NewOverrides()
	if len(config.Policy) > 0 {
		overrides.Policy.SetValue(config.Policy)
	}
	if len(config.KeyOrder) > 0 {
		overrides.KeyOrder.SetValue(config.KeyOrder)
	}
	if config.MaxMessageSize > 0 {
		overrides.MaxMessageSize.SetValue(config.MaxMessageSize)
	}
	overrides.PartialHeader.SetValue(config.PartialHeader)

	return compiler.New(compiler.WithOverrides(overrides)), nil
}
