package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/multiversx/mx-chain-core-go/core/check"
	"github.com/urfave/cli"
	"github.com/wealthrate/wealthrate-analytics/common"
	"github.com/wealthrate/wealthrate-analytics/config"
	"github.com/wealthrate/wealthrate-analytics/factory"
)

const (
	defaultLogsPath      = "logs"
	logFilePrefix        = "analytics"
	logFileLifeSpanInSec = 86400 // 24h
	logFileLifeSpanInMB  = 1024  // 1GB
	configFile           = "./config.toml"
	envFile              = "./.env"
	envServiceKey        = "SERVICE_KEY"
)

// apiKeyEnvVars are the environment variables holding the upstream API credentials; at
// least one must be set
var apiKeyEnvVars = []string{"WEALTHRATE1", "WEALTHRATE2", "WEALTHRATE3"}

// appVersion should be populated at build time using ldflags
// Usage examples:
// Linux/macOS:
//
//	go build -v -ldflags="-X main.appVersion=$(git describe --all | cut -c7-32)
var appVersion = "undefined"
var fileLogging common.FileLoggingHandler

var (
	helpTemplate = `NAME:
   {{.Name}} - {{.Usage}}
USAGE:
   {{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}
   {{if len .Authors}}
AUTHOR:
   {{range .Authors}}{{ . }}{{end}}
   {{end}}{{if .Commands}}
GLOBAL OPTIONS:
   {{range .VisibleFlags}}{{.}}
   {{end}}
VERSION:
   {{.Version}}
   {{end}}
`

	log = logger.GetOrCreate("main")

	// logLevel defines the logger level
	logLevel = cli.StringFlag{
		Name: "log-level",
		Usage: "This flag specifies the logger `level(s)`. It can contain multiple comma-separated value. For example" +
			", if set to *:INFO the logs for all packages will have the INFO level. However, if set to *:INFO,api:DEBUG" +
			" the logs for all packages will have the INFO level, excepting the api package which will receive a DEBUG" +
			" log level.",
		Value: "*:" + logger.LogInfo.String(),
	}
	// logSaveFile is used when the log output needs to be logged in a file
	logSaveFile = cli.BoolFlag{
		Name:  "log-save",
		Usage: "Boolean option for enabling log saving. If set, it will automatically save all the logs into a file.",
	}
	// workingDirectory defines a flag for the path for the working directory.
	workingDirectory = cli.StringFlag{
		Name:  "working-directory",
		Usage: "This flag specifies the `directory` where the service will store databases and logs.",
		Value: "",
	}
	// runOnce makes the service perform a single update run and exit
	runOnce = cli.BoolFlag{
		Name:  "run-once",
		Usage: "Boolean option for performing a single analytics update run and exiting instead of running periodically.",
	}
)

func main() {
	app := cli.NewApp()
	cli.AppHelpTemplate = helpTemplate
	app.Name = "Wealthrate analytics service"
	app.Version = fmt.Sprintf("%s/%s/%s-%s", appVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	app.Usage = "This is the entry point for the market analytics service: it scrapes the game API, maintains the " +
		"profitability histories and renders the report"
	app.Flags = []cli.Flag{
		logLevel,
		logSaveFile,
		workingDirectory,
		runOnce,
	}

	app.Action = run

	defer func() {
		if fileLogging != nil {
			_ = fileLogging.Close()
		}
	}()

	err := app.Run(os.Args)
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	saveLogFile := ctx.GlobalBool(logSaveFile.Name)
	workingDir := ctx.GlobalString(workingDirectory.Name)

	err := logger.SetLogLevel(ctx.GlobalString(logLevel.Name))
	if err != nil {
		return err
	}

	fileLogging, err = common.AttachFileLogger(log, defaultLogsPath, logFilePrefix, saveLogFile, workingDir)
	if err != nil {
		return err
	}

	if !check.IfNil(fileLogging) {
		timeLogLifeSpan := time.Second * time.Duration(logFileLifeSpanInSec)
		sizeLogLifeSpanInMB := uint64(logFileLifeSpanInMB)
		err = fileLogging.ChangeFileLifeSpan(timeLogLifeSpan, sizeLogLifeSpanInMB)
		if err != nil {
			return err
		}
	}

	log.Info("Starting analytics service", "version", appVersion, "pid", os.Getpid())

	apiKeys, err := common.ReadApiKeys(envFile, apiKeyEnvVars)
	if err != nil {
		return err
	}
	log.Info("Loaded API credentials", "count", len(apiKeys))

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}

	handler, err := factory.NewComponentsHandler(factory.ArgsComponentsHandler{
		Config:        cfg,
		ApiKeys:       apiKeys,
		ServiceKeyApi: os.Getenv(envServiceKey),
	})
	if err != nil {
		return err
	}

	if ctx.GlobalBool(runOnce.Name) {
		defer func() {
			_ = handler.Close()
		}()

		runCtx, cancel := signalContext()
		defer cancel()

		return handler.RunOnce(runCtx)
	}

	handler.Start()
	log.Info("Analytics service started")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	<-sigs

	log.Info("Application closing, calling Close on all subcomponents...")

	return handler.Close()
}

// signalContext returns a context cancelled on SIGINT/SIGTERM so a long crawl can be
// aborted cleanly in run-once mode
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
