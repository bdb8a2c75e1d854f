package shovill

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strings"

	logging "github.com/op/go-logging"
)

var (
	// stderr is for logging to Stderr (without an annoying timestamp)
	stderr = log.New(os.Stderr, "", 0)
)

// RunLog is the append-only progress log handed to every component. Messages
// are echoed as they arrive and accumulated in order so the whole history can
// be persisted to the output directory, on failures included.
type RunLog struct {
	log      *logging.Logger
	path     string
	messages []string
}

// NewRunLog returns a RunLog that echoes to stderr and persists to path.
func NewRunLog(path string) *RunLog {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	format := logging.MustStringFormatter(`%{color}[shovill] %{time:15:04:05}%{color:reset} %{message}`)
	logging.SetBackend(logging.NewBackendFormatter(backend, format))

	return &RunLog{
		log:  logging.MustGetLogger("shovill"),
		path: path,
	}
}

// Printf records and echoes one progress message. Informational only,
// never aborts.
func (r *RunLog) Printf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.messages = append(r.messages, msg)
	r.log.Info(msg)
}

// Fatalf records the message, flushes the accumulated log to disk and
// terminates the process with exit status 1. Every error kind funnels
// through here.
func (r *RunLog) Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.messages = append(r.messages, msg)
	r.Flush()
	r.log.Critical(msg)
	os.Exit(1)
}

// Flush writes every message logged so far to the run's log file.
func (r *RunLog) Flush() error {
	if r.path == "" {
		return nil
	}

	contents := strings.Join(r.messages, "\n") + "\n"
	return ioutil.WriteFile(r.path, []byte(contents), 0644)
}
