package client

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const panelTimeFormat = "15:04:05"

// Panel is an append-only list of timestamped lines, echoed to out as they
// are added.
type Panel struct {
	prefix string
	out    io.Writer
	now    func() time.Time
	mu     sync.Mutex
	lines  []string
}

func NewPanel(prefix string, out io.Writer) *Panel {
	return &Panel{prefix: prefix, out: out, now: time.Now}
}

func (p *Panel) AddLog(message string) {
	line := fmt.Sprintf("%s: %s", p.now().Format(panelTimeFormat), message)
	if p.prefix != "" {
		line = "[" + p.prefix + "] " + line
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = append(p.lines, line)
	if p.out != nil {
		_, _ = fmt.Fprintln(p.out, line)
	}
}

func (p *Panel) Lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.lines...)
}

func (p *Panel) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = nil
}
