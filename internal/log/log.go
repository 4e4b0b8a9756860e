// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// InitLogger sets up Apex with a custom handler and a log level from the
// FXCTL_LOG env variable. Logs go to stderr so command output on stdout
// stays parseable.
func InitLogger() {
	level, err := log.ParseLevel(strings.ToLower(os.Getenv("FXCTL_LOG")))
	if err != nil {
		level = log.ErrorLevel
	}
	log.SetHandler(NewCustomHandler(os.Stderr))
	log.SetLevel(level)
}

// CustomHandler formats log messages as "timestamp L message key=value".
type CustomHandler struct {
	mu sync.Mutex
	w  io.Writer
}

func NewCustomHandler(w io.Writer) *CustomHandler {
	return &CustomHandler{w: w}
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	timestamp := e.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	level := strings.ToUpper(e.Level.String())

	var fields strings.Builder
	for _, name := range e.Fields.Names() {
		fmt.Fprintf(&fields, " %s=%v", name, e.Fields.Get(name))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	w := h.w
	if w == nil {
		w = os.Stderr
	}
	_, err := fmt.Fprintf(w, "%s %.1s %s%s\n",
		timestamp.Format("2006-01-02 15:04:05"), level, e.Message, fields.String())
	return err
}
