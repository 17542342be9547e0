package tui

import (
	"context"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/quartz"
	"github.com/lox/tilematch/internal/sched"
)

// programPost delivers continuations to a running program as messages, so
// they run on the Bubble Tea update goroutine.
type programPost struct {
	program atomic.Pointer[tea.Program]
	done    atomic.Bool
}

func (p *programPost) post(fn func()) bool {
	prog := p.program.Load()
	if prog == nil || p.done.Load() {
		return false
	}
	prog.Send(continuationMsg{fn: fn})
	return true
}

// Run plays the game in the terminal until the player quits or ctx is
// cancelled.
func Run(ctx context.Context, cfg Config, opts ...tea.ProgramOption) error {
	p := &programPost{}
	model := NewModel(cfg, sched.NewClocked(quartz.NewReal(), p.post))

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	program := tea.NewProgram(model, opts...)
	p.program.Store(program)
	defer p.done.Store(true)

	model.logger.Debug("Starting TUI", "level", cfg.Level)
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	model.session.Close()
	return nil
}
