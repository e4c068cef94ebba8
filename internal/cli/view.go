package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/floorview/pkg/floorplan"
	"github.com/matzehuels/floorview/pkg/floorplan/geom"
	"github.com/matzehuels/floorview/pkg/floorplan/gesture"
	"github.com/matzehuels/floorview/pkg/floorplan/realtime"
	"github.com/matzehuels/floorview/pkg/floorplan/render"
	"github.com/matzehuels/floorview/pkg/floorplan/viewer"
	"github.com/matzehuels/floorview/pkg/source"
)

// keyPanStep is how far, in screen pixels, an arrow key pans.
const keyPanStep = 20

// statusLines is the number of rows below the plan.
const statusLines = 2

type viewOptions struct {
	floorID    string
	cellWidth  float64
	cellHeight float64
	plain      bool
	selectRoom bool
	noLive     bool
}

func (c *CLI) viewCommand() *cobra.Command {
	opts := viewOptions{cellWidth: render.DefaultCellWidth, cellHeight: render.DefaultCellHeight}

	cmd := &cobra.Command{
		Use:   "view [floor-id]",
		Short: "Browse a floor interactively in the terminal",
		Long: `Browse a floor interactively in the terminal.

Drag with the mouse to pan, scroll to zoom, click a room to open it.
Keys: arrows pan, +/- zoom, r resets the view, q quits.

Light changes published on the floor's realtime channel appear live.`,
		Example: `  floorview view ground
  floorview view ground --transport redis
  floorview view ground --select   # print the clicked room id and exit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.floorID = args[0]
			}
			return c.runView(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.floorID, "floor", "f", "", "floor id")
	cmd.Flags().Float64Var(&opts.cellWidth, "cell-width", opts.cellWidth, "screen pixels per character column")
	cmd.Flags().Float64Var(&opts.cellHeight, "cell-height", opts.cellHeight, "screen pixels per character row")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "disable colors")
	cmd.Flags().BoolVar(&opts.selectRoom, "select", false, "exit on the first room click and print its id")
	cmd.Flags().BoolVar(&opts.noLive, "no-live", false, "do not subscribe to realtime updates")

	return cmd
}

func (c *CLI) runView(ctx context.Context, cmd *cobra.Command, opts viewOptions) error {
	if opts.floorID == "" {
		return fmt.Errorf("floor id required: floorview view <floor-id>")
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	src, err := c.openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	floor, err := c.loadFloor(ctx, cmd, src, opts.floorID)
	if err != nil {
		return err
	}

	intents := &viewer.Intents{Max: 16}
	model := viewer.NewModel(floor, geom.Size{},
		viewer.WithRouter(intents),
		viewer.WithLogger(c.Logger),
		viewer.WithDefaults(cfg.Viewer.Defaults()),
		viewer.WithDragThreshold(cfg.Viewer.DragThreshold),
	)
	vm := newViewModel(model, intents, opts, cfg.Viewer.ZoomStep)

	// Logging would corrupt the alternate screen; it resumes after Run.
	level := c.Logger.GetLevel()
	c.Logger.SetLevel(log.ErrorLevel)
	defer c.Logger.SetLevel(level)

	p := tea.NewProgram(vm,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithOutput(cmd.OutOrStdout()),
	)

	var sub realtime.Subscription
	if !opts.noLive {
		t, err := c.openTransport(ctx, cfg)
		if err != nil {
			return err
		}
		defer t.Close()
		sub, err = t.Subscribe(ctx, floor.ID, func(payload []byte) {
			p.Send(patchMsg(payload))
		})
		if err != nil {
			return err
		}
	}

	final, err := p.Run()
	if sub != nil {
		_ = sub.Close()
	}
	model.Close()
	if err != nil {
		return err
	}

	if fm, ok := final.(viewModel); ok && fm.selected != "" {
		fmt.Fprintln(cmd.OutOrStdout(), fm.selected)
	}
	return nil
}

// loadFloor fetches a floor behind a spinner.
func (c *CLI) loadFloor(ctx context.Context, cmd *cobra.Command, src source.Source, id string) (*floorplan.Floor, error) {
	sp := newSpinner(ctx, cmd.ErrOrStderr(), "Loading floor "+id)
	sp.Start()
	prog := newProgress(c.Logger)
	f, err := source.Load(ctx, src, id, c.Logger)
	sp.Stop()
	if err != nil {
		return nil, err
	}
	prog.done("Loaded floor", "floor", f.ID, "rooms", len(f.Blocks))
	return f, nil
}

// =============================================================================
// viewModel - bubbletea program around viewer.Model
// =============================================================================

// patchMsg carries a raw realtime message into the update loop.
type patchMsg []byte

// viewModel adapts terminal events to viewer events. The viewer model is
// only touched from Update, which bubbletea runs on a single goroutine.
type viewModel struct {
	model    *viewer.Model
	intents  *viewer.Intents
	opts     viewOptions
	zoomStep float64

	notice   string
	selected string
}

func newViewModel(m *viewer.Model, intents *viewer.Intents, opts viewOptions, zoomStep float64) viewModel {
	return viewModel{model: m, intents: intents, opts: opts, zoomStep: zoomStep}
}

func (m viewModel) Init() tea.Cmd { return nil }

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rows := max(msg.Height-statusLines, 1)
		m.model.Handle(viewer.ResizeEvent{Size: geom.Size{
			Width:  float64(msg.Width) * m.opts.cellWidth,
			Height: float64(rows) * m.opts.cellHeight,
		}})

	case patchMsg:
		m.model.Handle(viewer.MessageEvent{Payload: msg})

	case tea.MouseMsg:
		m.mouse(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "+", "=":
			m.model.Handle(viewer.ZoomIn(m.zoomStep))
		case "-", "_":
			m.model.Handle(viewer.ZoomOut(m.zoomStep))
		case "left", "h":
			m.model.Handle(viewer.PanEvent{Delta: geom.Point{X: -keyPanStep}})
		case "right", "l":
			m.model.Handle(viewer.PanEvent{Delta: geom.Point{X: keyPanStep}})
		case "up", "k":
			m.model.Handle(viewer.PanEvent{Delta: geom.Point{Y: -keyPanStep}})
		case "down", "j":
			m.model.Handle(viewer.PanEvent{Delta: geom.Point{Y: keyPanStep}})
		case "r", "0":
			m.model.Handle(viewer.ResetEvent{})
		case "enter", "e":
			if st := m.model.State(); st.Empty() {
				m.intents.OpenEditor(st.FloorID)
			}
		}
	}

	for _, in := range m.intents.Drain() {
		switch in.Kind {
		case viewer.IntentRoom:
			m.notice = iconArrow + " open room " + in.Target
			if m.opts.selectRoom {
				m.selected = in.Target
				return m, tea.Quit
			}
		case viewer.IntentEditor:
			m.notice = iconArrow + " open editor for " + in.Target
		}
	}
	return m, nil
}

func (m viewModel) mouse(msg tea.MouseMsg) {
	p := render.CellToScreen(msg.X, msg.Y, m.opts.cellWidth, m.opts.cellHeight)
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.model.Handle(viewer.ZoomIn(m.zoomStep))
	case msg.Button == tea.MouseButtonWheelDown:
		m.model.Handle(viewer.ZoomOut(m.zoomStep))
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.model.Handle(viewer.InputEvent{Input: gesture.Input{Phase: gesture.Start, Contacts: []geom.Point{p}}})
	case msg.Action == tea.MouseActionMotion:
		m.model.Handle(viewer.InputEvent{Input: gesture.Input{Phase: gesture.Move, Contacts: []geom.Point{p}}})
	case msg.Action == tea.MouseActionRelease:
		m.model.Handle(viewer.InputEvent{Input: gesture.Input{Phase: gesture.End}})
	}
}

func (m viewModel) View() string {
	st := m.model.State()
	f := render.NewFrame(st)

	var opts []render.TermOption
	opts = append(opts, render.WithCellSize(m.opts.cellWidth, m.opts.cellHeight))
	if m.opts.plain {
		opts = append(opts, render.WithPlain())
	}

	var b strings.Builder
	b.WriteString(render.RenderTerminal(f, opts...))
	b.WriteString("\n")
	b.WriteString(m.statusLine(f))
	return b.String()
}

func (m viewModel) statusLine(f render.Frame) string {
	name := f.FloorName
	if name == "" {
		name = f.FloorID
	}
	parts := []string{
		StyleTitle.Render(name),
		StyleValue.Render(fmt.Sprintf("%d%%", f.ZoomPercent)),
	}
	if !f.Empty {
		lit := fmt.Sprintf("%s %d/%d lit", iconLit, f.LitCount(), len(f.Blocks))
		if f.LitCount() == 0 {
			lit = fmt.Sprintf("%s 0/%d lit", iconDark, len(f.Blocks))
		}
		parts = append(parts, StyleWarning.Render(lit))
	}
	if f.ShowReset {
		parts = append(parts, StyleHighlight.Render("r reset view"))
	}
	if m.notice != "" {
		parts = append(parts, StyleSuccess.Render(m.notice))
	}
	parts = append(parts, StyleDim.Render("q quit"))
	return strings.Join(parts, StyleDim.Render(" · "))
}
