package ui

import (
	"context"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"cratedig/internal/config"
	"cratedig/internal/domain"
	"cratedig/internal/eventbus"
	"cratedig/internal/library"
	"cratedig/internal/query"
	"cratedig/internal/ui/services/events"
	"cratedig/internal/ui/services/navigation"
	"cratedig/internal/ui/services/selection"
	"cratedig/internal/ui/views"
)

// keyMap defines the key bindings for the item list
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Isolate  key.Binding
	Add      key.Binding
	Remove   key.Binding
	ExtendTo key.Binding
	AddTo    key.Binding
	Clear    key.Binding
	Query    key.Binding
	Rescan   key.Binding
	Tags     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Top:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "bottom")),
		Isolate:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		Add:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "add")),
		Remove:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "deselect")),
		ExtendTo: key.NewBinding(key.WithKeys("V"), key.WithHelp("V", "extend")),
		AddTo:    key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "add span")),
		Clear:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Query:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "query")),
		Rescan:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
		Tags:     key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "tags")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Isolate, k.Add, k.ExtendTo, k.AddTo, k.Query, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Isolate, k.Add, k.Remove, k.ExtendTo, k.AddTo, k.Clear},
		{k.Query, k.Rescan, k.Tags, k.Help, k.Quit},
	}
}

// Model is the top-level Bubble Tea model. It owns the item list the rest of
// the UI addresses by position: selection and navigation both read it through
// injected functions, so replacing it resets them.
type Model struct {
	bus     eventbus.EventBus
	cfg     *config.Config
	library *library.Service

	uiBus      *events.Bus
	selection  *selection.Service
	navigation *navigation.Service

	renderer     *views.Renderer
	helpRenderer *HelpRenderer
	helpOps      *HelpOps
	keys         keyMap
	help         help.Model

	items []domain.Item

	queryInput  textinput.Model
	queryActive bool
	queryString string
	queryExpr   query.Expr

	statusLine    string
	statusMessage string
	showTags      bool
	scanning      bool
	width         int
	height        int
}

// NewModel creates the UI model and wires its services together
func NewModel(cfg *config.Config, lib *library.Service, bus eventbus.EventBus) *Model {
	uiBus := events.NewBus()

	selectionSvc := selection.NewService(uiBus)
	navigationSvc := navigation.NewService(uiBus)

	ti := textinput.New()
	ti.Prompt = "query: "
	ti.Placeholder = "kick ~loop inpath:drums/ | pad"
	ti.CharLimit = 200

	m := &Model{
		bus:          bus,
		cfg:          cfg,
		library:      lib,
		uiBus:        uiBus,
		selection:    selectionSvc,
		navigation:   navigationSvc,
		renderer:     views.NewRenderer(),
		helpRenderer: NewHelpRenderer(),
		keys:         defaultKeyMap(),
		help:         help.New(),
		queryInput:   ti,
		statusLine:   lib.StatusLine(),
		showTags:     cfg.UISettings.ShowTags,
	}

	selectionSvc.SetItemsFunction(func() []int64 {
		ids := make([]int64, len(m.items))
		for i, item := range m.items {
			ids[i] = item.ID
		}
		return ids
	})
	navigationSvc.SetCountFunction(func() int {
		return len(m.items)
	})

	return m
}

// SetHelpOps attaches the pager once the Bubble Tea program exists
func (m *Model) SetHelpOps(ops *HelpOps) {
	m.helpOps = ops
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return m.loadItemsCmd()
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.navigation.SetViewportHeight(msg.Height)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.queryActive {
			return m.updateQueryInput(msg)
		}
		return m.handleKey(msg)

	case itemsLoadedMsg:
		if msg.err != nil {
			log.Printf("Failed to load items: %v", msg.err)
			m.statusMessage = "load failed: " + msg.err.Error()
			return m, nil
		}
		m.items = msg.items
		m.statusMessage = ""
		// Positions are meaningless across a list swap
		m.selection.Clear()
		m.navigation.MoveToIndex(m.navigation.Cursor())
		return m, nil

	case helpPagerMsg:
		if msg.err != nil {
			log.Printf("Help pager failed: %v", msg.err)
			m.statusMessage = "help pager failed: " + msg.err.Error()
		}
		return m, nil

	case tickMsg:
		if m.scanning {
			return m, tickCmd()
		}
		return m, nil

	case EventMsg:
		return m.handleEvent(msg.Event)
	}

	return m, nil
}

func (m *Model) handleEvent(event eventbus.DomainEvent) (tea.Model, tea.Cmd) {
	switch ev := event.(type) {
	case eventbus.LibraryOpenedEvent:
		m.statusLine = m.library.StatusLine()
		return m, m.loadItemsCmd()

	case eventbus.IndexUpdatedEvent:
		m.statusLine = m.library.StatusLine()
		return m, m.loadItemsCmd()

	case eventbus.StatusUpdatedEvent:
		m.statusLine = m.library.StatusLine()
		var cmd tea.Cmd
		if ev.Status.Scanning && !m.scanning {
			cmd = tickCmd()
		}
		m.scanning = ev.Status.Scanning
		return m, cmd

	case eventbus.ErrorEvent:
		m.statusMessage = ev.Message
		if ev.Err != nil {
			m.statusMessage += ": " + ev.Err.Error()
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys
	cursor := m.navigation.Cursor()

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		m.navigation.Navigate(navigation.DirectionUp)
	case key.Matches(msg, keys.Down):
		m.navigation.Navigate(navigation.DirectionDown)
	case key.Matches(msg, keys.PageUp):
		m.navigation.Navigate(navigation.DirectionPageUp)
	case key.Matches(msg, keys.PageDown):
		m.navigation.Navigate(navigation.DirectionPageDown)
	case key.Matches(msg, keys.Top):
		m.navigation.Navigate(navigation.DirectionHome)
	case key.Matches(msg, keys.Bottom):
		m.navigation.Navigate(navigation.DirectionEnd)

	case key.Matches(msg, keys.Isolate):
		if len(m.items) > 0 {
			m.selection.Isolate(cursor)
		}
	case key.Matches(msg, keys.Add):
		if len(m.items) > 0 {
			if err := m.selection.Add(cursor); err != nil {
				m.statusMessage = err.Error()
			} else {
				m.statusMessage = ""
			}
		}
	case key.Matches(msg, keys.Remove):
		if len(m.items) > 0 {
			if err := m.selection.Remove(cursor); err != nil {
				m.statusMessage = err.Error()
			} else {
				m.statusMessage = ""
			}
		}
	case key.Matches(msg, keys.ExtendTo):
		if len(m.items) > 0 {
			m.selection.ExtendTo(cursor)
		}
	case key.Matches(msg, keys.AddTo):
		if len(m.items) > 0 {
			m.selection.AddTo(cursor)
		}
	case key.Matches(msg, keys.Clear):
		m.selection.Clear()
		m.statusMessage = ""

	case key.Matches(msg, keys.Query):
		m.queryActive = true
		m.queryInput.SetValue(m.queryString)
		return m, m.queryInput.Focus()

	case key.Matches(msg, keys.Rescan):
		if lib := m.library.Library(); lib != nil {
			m.bus.Publish(eventbus.ScanRequestedEvent{Roots: []string{lib.Root}})
		}

	case key.Matches(msg, keys.Tags):
		m.showTags = !m.showTags

	case key.Matches(msg, keys.Help):
		return m, m.showHelpCmd()
	}

	return m, nil
}

func (m *Model) updateQueryInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		raw := m.queryInput.Value()
		expr, err := query.Parse(raw)
		if err != nil {
			m.statusMessage = "bad query: " + err.Error()
			return m, nil
		}
		m.queryActive = false
		m.queryInput.Blur()
		m.queryString = raw
		m.queryExpr = expr
		m.statusMessage = ""
		return m, m.loadItemsCmd()

	case "esc":
		m.queryActive = false
		m.queryInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.queryInput, cmd = m.queryInput.Update(msg)
	return m, cmd
}

func (m *Model) loadItemsCmd() tea.Cmd {
	expr := m.queryExpr
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		items, err := m.library.Search(ctx, expr)
		return itemsLoadedMsg{items: items, err: err}
	}
}

func (m *Model) showHelpCmd() tea.Cmd {
	ops := m.helpOps
	content := m.helpRenderer.RenderHelpContent()
	return func() tea.Msg {
		if ops == nil {
			return helpPagerMsg{}
		}
		return helpPagerMsg{err: ops.ShowHelpInPager(content)}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// View implements tea.Model
func (m *Model) View() string {
	cursor := m.navigation.Cursor()

	rows := make([]views.ItemRow, len(m.items))
	for i, item := range m.items {
		rows[i] = views.ItemRow{
			Name:     item.Name,
			Path:     item.Path,
			Tags:     item.Tags,
			Selected: m.selection.Contains(i),
			IsCursor: i == cursor,
		}
	}

	state := views.ViewState{
		Width:          m.width,
		Height:         m.height,
		Items:          rows,
		ViewportOffset: m.navigation.ViewportOffset(),
		ViewportHeight: m.navigation.ViewportHeight(),
		Scanning:       m.scanning,
		StatusLine:     m.statusLine,
		StatusMessage:  m.statusMessage,
		QueryActive:    m.queryActive,
		QueryView:      m.queryInput.View(),
		QueryString:    m.queryString,
		SelectedCount:  len(m.selection.Selected()),
		ShowTags:       m.showTags,
		HelpLine:       m.help.View(m.keys),
	}

	return m.renderer.Render(state)
}
