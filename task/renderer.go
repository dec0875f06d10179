package task

import (
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/dianlight/tconsole/emoji"
	"github.com/dianlight/tconsole/format"
	"github.com/dianlight/tconsole/style"
)

// Mode is how a Renderer draws.
type Mode int

const (
	// ModeStatic writes one line per completed task.
	ModeStatic Mode = iota
	// ModeAnimated redraws the whole tree in place on every tick.
	ModeAnimated
	// ModeJSON writes one JSON record per transition.
	ModeJSON
)

func (m Mode) String() string {
	switch m {
	case ModeAnimated:
		return "animated"
	case ModeJSON:
		return "json"
	}
	return "static"
}

// DefaultInterval is the animation frame interval.
const DefaultInterval = 80 * time.Millisecond

var (
	brailleFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	asciiFrames   = []string{"-", "\\", "|", "/"}
)

const (
	cursorUp       = "\033[A"
	clearLine      = "\r\033[K"
	clearToEnd     = "\033[J"
	failureJoiner  = " › "
	asciiFailJoint = " > "
)

type glyph struct {
	unicode, ascii, color string
}

var (
	glyphPending     = glyph{"○", "o", "gray"}
	glyphSucceeded   = glyph{"✔", "+", "green"}
	glyphFailed      = glyph{"✖", "x", "red"}
	glyphSkipped     = glyph{"↓", "-", "gray"}
	glyphInterrupted = glyph{"…", "~", "yellow"}
	glyphWarn        = glyph{"⚠", "!", "yellow"}
	glyphInfo        = glyph{"ℹ", "i", "blue"}
)

// RenderOptions configure a Renderer.
type RenderOptions struct {
	Flags       format.Flags
	Interactive bool
	JSON        bool
	// Interval between animation frames. Defaults to DefaultInterval.
	Interval time.Duration
	// Width returns the terminal width used to truncate animated lines.
	// Defaults to the size of the output when it is a terminal; 0 disables
	// truncation.
	Width func() int
	// Prefix is written as the logger name of JSON records.
	Prefix string
	// OnWriteError receives write failures. Rendering continues regardless.
	OnWriteError func(error)
}

// ChooseMode picks the rendering mode for opts.
func ChooseMode(opts RenderOptions) Mode {
	switch {
	case opts.JSON:
		return ModeJSON
	case opts.Interactive && opts.Flags.Colors:
		return ModeAnimated
	}
	return ModeStatic
}

// Renderer draws a forest of nodes to a writer. It is the only writer of
// cursor control sequences and serializes all of its writes.
type Renderer struct {
	mu     sync.Mutex
	w      io.Writer
	opts   RenderOptions
	mode   Mode
	frames []string

	roots    []*Node
	frame    int
	lines    int
	sched    *scheduler
	started  bool
	finished bool
}

// NewRenderer returns a Renderer writing to w. The mode is fixed here.
func NewRenderer(w io.Writer, opts RenderOptions) *Renderer {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Width == nil {
		opts.Width = TerminalWidth(w)
	}
	frames := brailleFrames
	if !opts.Flags.Unicode {
		frames = asciiFrames
	}
	return &Renderer{
		w:      w,
		opts:   opts,
		mode:   ChooseMode(opts),
		frames: frames,
	}
}

// TerminalWidth returns a probe of w's terminal width, or a probe that
// always reports 0 when w is not a terminal.
func TerminalWidth(w io.Writer) func() int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return func() int { return 0 }
	}
	return func() int {
		width, _, err := term.GetSize(int(f.Fd()))
		if err != nil {
			return 0
		}
		return width
	}
}

func (r *Renderer) Mode() Mode { return r.mode }

// Attach adds root nodes to the display and subscribes to them.
func (r *Renderer) Attach(nodes ...*Node) {
	r.mu.Lock()
	r.roots = append(r.roots, nodes...)
	r.mu.Unlock()
	for _, n := range nodes {
		n.SetObserver(r)
	}
}

// Remove takes a root node off the display without writing anything for it.
func (r *Renderer) Remove(n *Node) {
	r.mu.Lock()
	r.roots = slices.DeleteFunc(r.roots, func(x *Node) bool { return x == n })
	r.mu.Unlock()
	n.SetObserver(nil)
}

// Start begins rendering. In animated mode it draws the first frame and
// starts the frame timer.
func (r *Renderer) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.finished {
		return
	}
	r.started = true
	if r.mode != ModeAnimated {
		return
	}
	r.paint(false)
	r.sched = startScheduler(r.opts.Interval, r.tick)
}

func (r *Renderer) tick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return
	}
	r.frame = (r.frame + 1) % len(r.frames)
	r.paint(false)
}

// Refresh redraws the animated block immediately.
func (r *Renderer) Refresh() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode == ModeAnimated && r.started && !r.finished {
		r.paint(false)
	}
}

// Finish stops the timer and writes the final state. Nodes still running
// are shown as interrupted. Calling Finish more than once is a no-op.
func (r *Renderer) Finish() {
	s, ok := r.end()
	if !ok {
		return
	}
	if s != nil {
		s.stop()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.mode {
	case ModeAnimated:
		r.paint(true)
	case ModeStatic:
		walk(r.roots, func(n *Node) {
			if v := n.view(); v.state == StateRunning {
				r.write(r.line(v, true) + "\n")
			}
		})
	case ModeJSON:
		walk(r.roots, func(n *Node) {
			if v := n.view(); v.state == StateRunning {
				r.write(r.record(v, "interrupted") + "\n")
			}
		})
	}
}

// Stop halts the timer and, in animated mode, erases the block with one
// write. Failed lines are written again so failure text stays visible.
func (r *Renderer) Stop() {
	s, ok := r.end()
	if !ok {
		return
	}
	if s != nil {
		s.stop()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode != ModeAnimated {
		return
	}
	var sb strings.Builder
	sb.WriteString(strings.Repeat(cursorUp, r.lines))
	sb.WriteString("\r" + clearToEnd)
	walk(r.roots, func(n *Node) {
		if v := n.view(); v.state == StateFailed {
			sb.WriteString(r.line(v, true) + "\n")
		}
	})
	r.lines = 0
	r.write(sb.String())
}

func (r *Renderer) end() (*scheduler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return nil, false
	}
	r.finished = true
	s := r.sched
	r.sched = nil
	return s, true
}

// StateChanged implements Observer.
func (r *Renderer) StateChanged(n *Node, _, to State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return
	}
	switch r.mode {
	case ModeStatic:
		if to.Terminal() {
			r.write(r.line(n.view(), true) + "\n")
		}
	case ModeJSON:
		if to == StateRunning || to.Terminal() {
			v := n.view()
			r.write(r.record(v, v.state.String()) + "\n")
		}
	}
}

// OutputAppended implements Observer. Output is drawn by the next frame.
func (r *Renderer) OutputAppended(*Node, string) {}

// TitleChanged implements Observer. Titles are drawn by the next frame.
func (r *Renderer) TitleChanged(*Node) {}

// Println writes line above the animated block and redraws the block
// below it. Outside a live animated block line is written as is.
func (r *Renderer) Println(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode != ModeAnimated || !r.started || r.finished {
		r.write(line + "\n")
		return
	}
	var sb strings.Builder
	sb.WriteString(strings.Repeat(cursorUp, r.lines))
	sb.WriteString("\r" + clearToEnd)
	sb.WriteString(line)
	sb.WriteByte('\n')
	r.lines = 0
	r.frameTo(&sb, false)
	r.write(sb.String())
}

// paint redraws the animated block over the previous one.
func (r *Renderer) paint(final bool) {
	var sb strings.Builder
	sb.WriteString(strings.Repeat(cursorUp, r.lines))
	r.frameTo(&sb, final)
	r.write(sb.String())
}

// frameTo appends the block lines to sb with the cursor already at the
// top of the previous block.
func (r *Renderer) frameTo(sb *strings.Builder, final bool) {
	var lines []string
	walk(r.roots, func(n *Node) {
		lines = append(lines, r.nodeLines(n.view(), final)...)
	})

	for _, l := range lines {
		sb.WriteString(clearLine)
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	if len(lines) < r.lines {
		sb.WriteString(clearToEnd)
	}
	r.lines = len(lines)
}

// nodeLines returns the title line of v followed by its output lines.
func (r *Renderer) nodeLines(v view, final bool) []string {
	lines := []string{r.line(v, final)}
	if v.state != StateRunning && v.state != StateFailed {
		return lines
	}
	indent := strings.Repeat("  ", v.depth+1)
	dim := style.Dim(r.opts.Flags.Colors)
	for _, out := range v.output {
		lines = append(lines, indent+dim(r.fit(r.clean(out), runewidth.StringWidth(indent))))
	}
	return lines
}

// line renders the single line for v. In final form a running node shows
// as interrupted instead of with a spinner frame.
func (r *Renderer) line(v view, final bool) string {
	g := r.glyphFor(v, final)
	icon := g.ascii
	if r.opts.Flags.Unicode {
		icon = g.unicode
	}
	indent := strings.Repeat("  ", v.depth)

	text := r.clean(v.title)
	switch v.state {
	case StateSkipped:
		if v.skipReason != "" {
			text += " [SKIPPED: " + r.clean(v.skipReason) + "]"
		} else {
			text += " [SKIPPED]"
		}
	case StateFailed:
		if v.err != nil {
			joiner := failureJoiner
			if !r.opts.Flags.Unicode {
				joiner = asciiFailJoint
			}
			text += joiner + r.clean(v.err.Error())
		}
	}
	if r.mode == ModeAnimated {
		text = r.fit(text, runewidth.StringWidth(indent+icon+" "))
	}
	return indent + style.Named(g.color, r.opts.Flags.Colors)(icon) + " " + text
}

func (r *Renderer) glyphFor(v view, final bool) glyph {
	switch v.state {
	case StatePending:
		return glyphPending
	case StateRunning:
		if final {
			return glyphInterrupted
		}
		f := r.frames[r.frame%len(r.frames)]
		return glyph{f, f, "cyan"}
	case StateFailed:
		return glyphFailed
	case StateSkipped:
		return glyphSkipped
	}
	switch v.mark {
	case MarkWarn:
		return glyphWarn
	case MarkInfo:
		return glyphInfo
	}
	return glyphSucceeded
}

// fit truncates s so that used+width(s) stays inside the terminal.
func (r *Renderer) fit(s string, used int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	width := r.opts.Width()
	if width <= 0 {
		return s
	}
	avail := width - used - 1
	if avail <= 0 {
		return ""
	}
	tail := "…"
	if !r.opts.Flags.Unicode {
		tail = "."
	}
	return runewidth.Truncate(s, avail, tail)
}

func (r *Renderer) clean(s string) string {
	if !r.opts.Flags.Emoji {
		return emoji.Strip(s)
	}
	return s
}

func (r *Renderer) record(v view, status string) string {
	kind := format.KindTask
	rec := &format.TaskRecord{
		Title:  v.title,
		Status: status,
		Level:  v.depth,
	}
	switch v.state {
	case StateSucceeded:
		kind = format.KindSuccess
		ms := v.duration.Milliseconds()
		rec.Duration = &ms
	case StateFailed:
		kind = format.KindError
		rec.Output = v.output
		if v.err != nil {
			rec.Output = append(slices.Clone(v.output), v.err.Error())
		}
	case StateSkipped:
		kind = format.KindWarn
		if v.skipReason != "" {
			rec.Output = []string{v.skipReason}
		}
	case StateRunning:
		if status == "interrupted" {
			kind = format.KindWarn
			rec.Output = v.output
		}
	}
	return format.JSON(format.Request{
		Kind:    kind,
		Prefix:  r.opts.Prefix,
		Message: v.title,
		Time:    now(),
		Flags:   r.opts.Flags,
		Task:    rec,
	})
}

// write must be called with r.mu held.
func (r *Renderer) write(s string) {
	if s == "" {
		return
	}
	if _, err := io.WriteString(r.w, s); err != nil && r.opts.OnWriteError != nil {
		r.opts.OnWriteError(err)
	}
}
