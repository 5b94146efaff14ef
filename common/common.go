package common

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/multiversx/mx-chain-logger-go/file"
)

// FileLoggingHandler defines the file logging component behavior
type FileLoggingHandler interface {
	ChangeFileLifeSpan(newDuration time.Duration, newSizeInMB uint64) error
	Close() error
	IsInterfaceNil() bool
}

// AttachFileLogger attaches, if required, a log file
func AttachFileLogger(
	log logger.Logger,
	defaultLogsPath string,
	logFilePrefix string,
	saveLogFile bool,
	workingDir string) (FileLoggingHandler, error) {
	var err error
	var logFile FileLoggingHandler
	if saveLogFile {
		argsFileLogging := file.ArgsFileLogging{
			WorkingDir:      workingDir,
			DefaultLogsPath: defaultLogsPath,
			LogFilePrefix:   logFilePrefix,
		}
		logFile, err = file.NewFileLogging(argsFileLogging)
		if err != nil {
			return nil, fmt.Errorf("%w creating a log file", err)
		}
	}

	err = logger.SetDisplayByteSlice(logger.ToHex)
	log.LogIfError(err)

	return logFile, nil
}

// ReadApiKeys loads the .env file (if present) and collects the values of the provided
// variables, in order, skipping the unset ones. At least one key must be set.
func ReadApiKeys(envFile string, varNames []string) ([]string, error) {
	_ = godotenv.Load(envFile)

	keys := make([]string, 0, len(varNames))
	for _, name := range varNames {
		val := os.Getenv(name)
		if len(val) > 0 {
			keys = append(keys, val)
		}
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("no API keys found, at least one of %v must be set", varNames)
	}

	return keys, nil
}

// CronJobStarter is able to start a go routine that periodically calls the provided handler. The time between calls is
// provided as timeToCall
func CronJobStarter(ctx context.Context, handler func(ctx context.Context), timeToCall time.Duration) {
	go func() {
		timer := time.NewTimer(timeToCall)
		defer timer.Stop()

		handler(ctx)

		for {
			select {
			case <-timer.C:
				handler(ctx)
				timer.Reset(timeToCall)
			case <-ctx.Done():
				return
			}
		}
	}()
}
