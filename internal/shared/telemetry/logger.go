package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu  sync.Mutex
	out io.Writer = os.Stdout
)

// SetOutput redirects log lines and returns a func restoring the previous writer.
func SetOutput(w io.Writer) func() {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return func() {
		mu.Lock()
		defer mu.Unlock()
		out = prev
	}
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	write("info", msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	write("warn", msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	write("error", msg, fields)
}

func write(level, msg string, fields map[string]any) {
	ts := time.Now().UTC().Format(time.RFC3339)
	entry := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		if err, ok := v.(error); ok && err != nil {
			v = err.Error()
		}
		entry[k] = v
	}
	entry["ts"] = ts
	entry["level"] = level
	entry["msg"] = msg

	data, err := json.Marshal(entry)

	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		fmt.Fprintf(out, `{"ts":"%s","level":"error","msg":"logger marshal failed","err":%q}`+"\n", ts, err.Error())
		return
	}
	fmt.Fprintln(out, string(data))
}
