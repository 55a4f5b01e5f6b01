package shell

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/abiosoft/ishell/v2"
	"github.com/charmbracelet/log"
	"github.com/chzyer/readline"

	"gonsole/internal/logger"
	"gonsole/internal/render"
	"gonsole/pkg/consoletypes"
)

// Options configures a Shell.
type Options struct {
	Prompt      string
	HistoryFile string
	// Suggestions caps the did-you-mean list for unknown commands.
	Suggestions int
	Banner      string
}

// Shell hosts a console interactively.
type Shell struct {
	engine   Engine
	handler  *Handler
	renderer *render.Renderer
	opts     Options
	logger   *log.Logger

	mu      sync.Mutex
	stop    func()
	stopped atomic.Bool
}

// New creates a shell over engine. A nil logger selects the styled "Shell" logger.
func New(engine Engine, renderer *render.Renderer, opts Options, l *log.Logger) *Shell {
	if l == nil {
		l = logger.NewStyledLogger("Shell")
	}
	if opts.Prompt == "" {
		opts.Prompt = "gonsole> "
	}
	return &Shell{
		engine:   engine,
		handler:  NewHandler(engine, opts.Suggestions, l),
		renderer: renderer,
		opts:     opts,
		logger:   l,
	}
}

// Handler returns the line handler used by the shell.
func (s *Shell) Handler() *Handler {
	return s.handler
}

// Stop ends the running loop. It is safe to call from a command handler and
// before the loop starts.
func (s *Shell) Stop() {
	s.stopped.Store(true)
	s.mu.Lock()
	stop := s.stop
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Run starts the ishell loop and blocks until it exits. Lines that are not
// ishell built-ins go to the console; TAB completion uses Propose.
func (s *Shell) Run() {
	sh := ishell.New()
	sh.SetPrompt(s.opts.Prompt)
	if s.opts.HistoryFile != "" {
		sh.SetHistoryPath(s.opts.HistoryFile)
	}
	sh.CustomCompleter(completer{engine: s.engine})
	sh.DeleteCmd("help")

	sh.NotFound(func(c *ishell.Context) {
		if out := s.handler.Handle(LineFromArgs(c.RawArgs)); out != "" {
			c.Print(out)
		}
	})

	s.mu.Lock()
	s.stop = sh.Stop
	s.mu.Unlock()
	if s.stopped.Load() {
		return
	}

	if s.opts.Banner != "" {
		sh.Println(s.opts.Banner)
	}
	s.logger.Debug("Shell started", "mode", "ishell")
	sh.Run()
}

// RunLive starts a readline loop that re-evaluates the line on every
// keystroke and paints it in the colour of its validation state.
func (s *Shell) RunLive() error {
	view := &liveView{engine: s.engine, renderer: s.renderer}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.opts.Prompt,
		HistoryFile:     s.opts.HistoryFile,
		AutoComplete:    completer{engine: s.engine},
		Listener:        view,
		Painter:         view,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to start readline: %w", err)
	}
	defer rl.Close()

	s.mu.Lock()
	s.stop = func() { _ = rl.Close() }
	s.mu.Unlock()

	if s.opts.Banner != "" {
		fmt.Fprintln(rl.Stdout(), s.opts.Banner)
	}
	s.logger.Debug("Shell started", "mode", "live")

	for !s.stopped.Load() {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if s.stopped.Load() {
				return nil
			}
			return fmt.Errorf("failed to read line: %w", err)
		}
		if strings.TrimSpace(line) == "exit" {
			return nil
		}
		if out := s.handler.Handle(line); out != "" {
			fmt.Fprint(rl.Stdout(), out)
		}
	}
	return nil
}

// completer adapts the engine to the readline auto-completer contract.
type completer struct {
	engine Engine
}

var _ readline.AutoCompleter = completer{}

func (c completer) Do(line []rune, pos int) ([][]rune, int) {
	return c.engine.Complete(line, pos)
}

// liveView proposes on every change and paints the line by the result.
type liveView struct {
	engine   Engine
	renderer *render.Renderer
	state    atomic.Int32
}

var (
	_ readline.Listener = (*liveView)(nil)
	_ readline.Painter  = (*liveView)(nil)
)

func (v *liveView) OnChange(line []rune, _ int, _ rune) ([]rune, int, bool) {
	p := v.engine.Propose(string(line))
	v.state.Store(int32(p.State))
	return nil, 0, false
}

func (v *liveView) Paint(line []rune, _ int) []rune {
	if v.renderer == nil || len(line) == 0 {
		return line
	}
	state := consoletypes.ValidationState(v.state.Load())
	return []rune(v.renderer.Paint(string(line), state))
}
