package utils

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/alantheprice/pagewright/pkg/ui"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the session logger. Everything goes to a rotating file under the
// project dotdir; user-facing lines additionally go through ui.Out().
type Logger struct {
	logger                 *log.Logger
	userInteractionEnabled bool
}

var (
	globalLogger *Logger
	once         sync.Once
)

// GetLogger returns the singleton Logger, initializing it on first use with a
// rotating file handler. skipPrompts disables interactive confirmations for
// non-interactive runs; the flag may be overridden on subsequent calls.
func GetLogger(skipPrompts bool) *Logger {
	once.Do(func() {
		logFile := &lumberjack.Logger{
			Filename:   ".pagewright/session.log",
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		globalLogger = &Logger{
			logger: log.New(logFile, "", log.LstdFlags),
		}
	})
	globalLogger.userInteractionEnabled = !skipPrompts
	return globalLogger
}

// Close closes the logger resources.
func (w *Logger) Close() error {
	if logFile, ok := w.logger.Writer().(*lumberjack.Logger); ok {
		return logFile.Close()
	}
	return nil
}

// Log logs a general message only to the log file.
func (w *Logger) Log(message string) {
	w.logger.Print(message)
}

// Logf logs a formatted general message only to the log file.
func (w *Logger) Logf(format string, v ...interface{}) {
	w.logger.Printf(format, v...)
}

// LogError logs an error only to the log file.
func (w *Logger) LogError(err error) {
	w.logger.Printf("Error: %s", err)
}

// LogProcessStep logs the current step in a pipeline and echoes it to the user.
func (w *Logger) LogProcessStep(step string) {
	w.logger.Printf("Process Step: %s", step)
	ui.Out().Print(step + "\n")
}

// LogUserInteraction logs user interactions that require a response, and prints them.
func (w *Logger) LogUserInteraction(message string) {
	w.logger.Printf("User Interaction: %s", message)
	ui.Out().Print(message)
}

// AskForConfirmation prompts the user with a message and waits for a yes/no
// response. In non-interactive mode the default is returned without prompting.
func (w *Logger) AskForConfirmation(prompt string, defaultResponse bool) bool {
	if !w.userInteractionEnabled {
		w.Logf("Skipping confirmation in non-interactive mode: %s", prompt)
		return defaultResponse
	}
	reader := bufio.NewReader(os.Stdin)
	for {
		w.LogUserInteraction(fmt.Sprintf("%s (yes/no): ", prompt))
		response, _ := reader.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(response)) {
		case "yes", "y":
			return true
		case "no", "n":
			return false
		default:
			w.LogUserInteraction("Invalid input. Please type 'yes' or 'no'.\n")
		}
	}
}
