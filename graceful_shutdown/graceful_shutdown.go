package graceful_shutdown

import (
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// drainPeriod is how long in-flight requests get to finish after the
// listeners have stopped accepting new ones.
const drainPeriod = 5 * time.Second

var mu sync.Mutex
var inputShutdownFuncs []func()
var outputShutdownFuncs []func()

// AddInputShutdownFunc registers a hook that stops accepting new work
// (e.g. closing the HTTP listener). Input hooks run first.
func AddInputShutdownFunc(f func()) {
	mu.Lock()
	defer mu.Unlock()
	inputShutdownFuncs = append(inputShutdownFuncs, f)
}

// AddOutputShutdownFunc registers a hook that releases outbound
// resources (e.g. client connection pools). Output hooks run after the
// drain period.
func AddOutputShutdownFunc(f func()) {
	mu.Lock()
	defer mu.Unlock()
	outputShutdownFuncs = append(outputShutdownFuncs, f)
}

func WaitForSignals() {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	<-signalChan

	slog.Info("Received shutdown signal, shutting down...")

	mu.Lock()
	inputs := inputShutdownFuncs
	outputs := outputShutdownFuncs
	mu.Unlock()

	for _, f := range inputs {
		f()
	}

	time.Sleep(drainPeriod)

	for _, f := range outputs {
		f()
	}
}
