package sandbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/leafbridge/leafbridge/internal/assets"
	"github.com/leafbridge/leafbridge/internal/logging"
)

// Config defines engine runtime limits.
type Config struct {
	Timeout       time.Duration // per-script execution timeout
	MaxCallStack  int           // goja call stack bound
	EnableConsole bool          // capture console.log/warn/error
}

// DefaultConfig returns the limits used when the host supplies none.
func DefaultConfig() Config {
	return Config{
		Timeout:       5 * time.Second,
		MaxCallStack:  1024,
		EnableConsole: true,
	}
}

// EmitFunc receives raw JSON event text emitted by the engine document.
type EmitFunc func(raw string)

// LogEntry captures engine-side console output.
type LogEntry struct {
	Level   string
	Message string
	Time    time.Time
}

// Engine wraps a goja VM running the embedded engine document.
type Engine struct {
	cfg Config
	log *logging.Logger

	mu     sync.Mutex
	vm     *goja.Runtime
	loaded bool

	// Events queued by emitEvent during script execution; drained and
	// delivered once the VM call returns.
	pending []string

	emit    EmitFunc
	onError func(error)

	consoleMu sync.Mutex
	console   []LogEntry
}

// New creates an engine runtime. Call Load before injecting scripts.
func New(cfg Config, log *logging.Logger) *Engine {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.MaxCallStack <= 0 {
		cfg.MaxCallStack = DefaultConfig().MaxCallStack
	}
	if log == nil {
		log = logging.NewNop()
	}

	e := &Engine{
		cfg: cfg,
		log: log,
		vm:  goja.New(),
	}
	e.vm.SetMaxCallStackSize(cfg.MaxCallStack)
	e.setupGlobals()
	return e
}

// SetEmitFunc registers the reverse channel for engine events.
func (e *Engine) SetEmitFunc(fn EmitFunc) {
	e.mu.Lock()
	e.emit = fn
	e.mu.Unlock()
}

// SetOnError registers the load-failure passthrough callback.
func (e *Engine) SetOnError(fn func(error)) {
	e.mu.Lock()
	e.onError = fn
	e.mu.Unlock()
}

// Load evaluates the embedded engine document and then fires its mount
// hook, which emits the readiness event through the emit channel. Load
// failures are reported through the OnError callback and returned; the
// engine stays unloaded and inert.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	if e.loaded {
		e.mu.Unlock()
		return nil
	}
	pending, err := e.runLocked(ctx, assets.EngineScript())
	if err != nil {
		onError := e.onError
		e.mu.Unlock()
		err = fmt.Errorf("engine document failed to load: %w", err)
		if onError != nil {
			onError(err)
		}
		return err
	}
	e.loaded = true
	e.mu.Unlock()
	e.deliver(pending)

	// The document's mount hook runs after load completes, so the ready
	// event can never outrun the document itself.
	return e.InjectScript("mounted();")
}

// Loaded reports whether the engine document evaluated successfully.
func (e *Engine) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// InjectScript runs a script inside the engine context. Injection into an
// unloaded or closed engine is a silent no-op. Events emitted by the script
// are delivered to the emit function after it returns.
func (e *Engine) InjectScript(script string) error {
	e.mu.Lock()
	if !e.loaded || e.vm == nil {
		e.mu.Unlock()
		return nil
	}
	pending, err := e.runLocked(context.Background(), script)
	e.mu.Unlock()
	e.deliver(pending)
	if err != nil {
		return fmt.Errorf("script execution failed: %w", err)
	}
	return nil
}

// State returns the engine's own view of the map state as JSON. Debug
// surface only; the bridge never reads engine state.
func (e *Engine) State() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded || e.vm == nil {
		return "", fmt.Errorf("engine not loaded")
	}
	val, err := e.vm.RunString("engineState();")
	if err != nil {
		return "", fmt.Errorf("engine state read failed: %w", err)
	}
	return val.String(), nil
}

// Console returns captured engine console output.
func (e *Engine) Console() []LogEntry {
	e.consoleMu.Lock()
	defer e.consoleMu.Unlock()
	return append([]LogEntry{}, e.console...)
}

// Close tears the runtime down. Pending engine-side work is discarded.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm = nil
	e.loaded = false
	e.pending = nil
	return nil
}

// runLocked executes a script under the engine lock with timeout and
// interrupt handling, returning any events the script emitted.
func (e *Engine) runLocked(ctx context.Context, script string) ([]string, error) {
	timer := time.NewTimer(e.cfg.Timeout)
	defer timer.Stop()
	done := make(chan struct{})
	go func() {
		select {
		case <-timer.C:
			e.vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			e.vm.Interrupt("context cancelled")
		case <-done:
		}
	}()

	_, err := e.vm.RunString(script)
	close(done)

	pending := e.pending
	e.pending = nil
	return pending, err
}

// deliver hands queued events to the emit function outside the engine
// lock, so an emit handler may inject scripts without deadlocking.
func (e *Engine) deliver(pending []string) {
	if len(pending) == 0 {
		return
	}
	e.mu.Lock()
	emit := e.emit
	e.mu.Unlock()
	if emit == nil {
		return
	}
	for _, raw := range pending {
		emit(raw)
	}
}

// setupGlobals installs the host functions the document needs and removes
// everything it must not have.
func (e *Engine) setupGlobals() {
	e.vm.Set("require", goja.Undefined())
	e.vm.Set("process", goja.Undefined())
	e.vm.Set("module", goja.Undefined())
	e.vm.Set("exports", goja.Undefined())

	// Timers are no-ops; the document has no event loop.
	noop := func(call goja.FunctionCall) goja.Value { return goja.Undefined() }
	e.vm.Set("setTimeout", noop)
	e.vm.Set("setInterval", noop)

	e.vm.Set("emitEvent", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Undefined()
		}
		e.pending = append(e.pending, call.Arguments[0].String())
		return goja.Undefined()
	})

	if e.cfg.EnableConsole {
		console := e.vm.NewObject()
		console.Set("log", e.makeConsoleFunc("log"))
		console.Set("warn", e.makeConsoleFunc("warn"))
		console.Set("error", e.makeConsoleFunc("error"))
		e.vm.Set("console", console)
	}
}

func (e *Engine) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var msg string
		for i, arg := range call.Arguments {
			if i > 0 {
				msg += " "
			}
			msg += arg.String()
		}
		e.consoleMu.Lock()
		e.console = append(e.console, LogEntry{Level: level, Message: msg, Time: time.Now()})
		e.consoleMu.Unlock()
		e.log.Debug("engine console", zap.String("level", level), zap.String("message", msg))
		return goja.Undefined()
	}
}
