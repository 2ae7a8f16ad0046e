// Package app provides the main TUI application that wires all views together.
package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gm-tools/gmtools/internal/chat"
	"github.com/gm-tools/gmtools/internal/config"
	"github.com/gm-tools/gmtools/internal/events"
	"github.com/gm-tools/gmtools/internal/ingest"
	"github.com/gm-tools/gmtools/internal/sentiment"
	"github.com/gm-tools/gmtools/internal/tui"
	"github.com/gm-tools/gmtools/internal/tui/commands"
	"github.com/gm-tools/gmtools/internal/tui/views"
	"github.com/gm-tools/gmtools/internal/video"
)

const maxBoxWidth = 100

// Backend is everything the three sessions need from the backend client.
type Backend interface {
	ingest.Backend
	chat.Asker
	video.Analyzer
}

// Deps are the collaborators the App builds its sessions from.
type Deps struct {
	Config     *config.Config
	Client     Backend
	BackendURL string
	Sink       events.Sink
	Logger     *slog.Logger
}

// App is the main TUI application.
type App struct {
	model  *tui.Model
	probe  bool
	bridge *commands.Bridge
	ctx    context.Context
	cancel context.CancelFunc

	ingest *ingest.Session
	chat   *chat.Session
	video  *video.Session

	homeView   views.HomeModel
	ingestView views.IngestModel
	chatView   views.ChatModel
	videoView  views.VideoModel
}

// New creates an App and its sessions.
func New(deps Deps) *App {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	bridge := commands.NewBridge(128)
	model := tui.NewModel(deps.BackendURL, cfg.MediaBase())

	polarity, err := sentiment.ParsePolarity(cfg.Sentiment.Polarity)
	if err != nil {
		polarity = sentiment.PolarityScore
	}
	classifier := sentiment.NewClassifier(polarity, cfg.Sentiment.HighlightLow, cfg.Sentiment.HighlightHigh)

	a := &App{
		model:  model,
		probe:  cfg.Ingest.ProbeExisting,
		bridge: bridge,
		ctx:    ctx,
		cancel: cancel,
	}
	a.ingest = ingest.New(deps.Client, ingest.Options{
		Interval: cfg.PollInterval(),
		Timeout:  cfg.PollTimeout(),
		Sink:     deps.Sink,
		Logger:   logger,
		OnUpdate: func(st ingest.Status) { bridge.Send(tui.IngestUpdateMsg{Status: st}) },
	})
	a.chat = chat.New(deps.Client, chat.Options{
		Greeting: cfg.Chat.Greeting,
		Sink:     deps.Sink,
		Logger:   logger,
	})
	a.video = video.New(deps.Client, video.Options{
		IncludeNeutral: cfg.Video.IncludeNeutral,
		Classifier:     classifier,
		Sink:           deps.Sink,
		Logger:         logger,
		OnUpdate:       func(st video.Status) { bridge.Send(tui.VideoUpdateMsg{Status: st}) },
	})

	a.homeView = views.NewHomeModel(deps.BackendURL, model.Width)
	a.ingestView = views.NewIngestModel(model.Width)
	a.chatView = views.NewChatModel(model.MediaBase, model.Width, model.Height)
	a.videoView = views.NewVideoModel(cfg.Video.IncludeNeutral, model.Width)
	a.chatView = a.chatView.Sync(a.chat.Transcript(), false)
	return a
}

// Init probes for an existing corpus and starts the background listeners.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		a.bridge.Listen(),
		a.ingestView.Init(),
		a.chatView.Init(),
		a.videoView.Init(),
	}
	if a.probe {
		cmds = append(cmds, commands.ProbeCmd(a.ctx, a.ingest))
	}
	return tea.Batch(cmds...)
}

// Close stops polling and releases background work. Safe to call twice.
func (a *App) Close() {
	a.ingest.Stop()
	a.cancel()
	a.bridge.Close()
}

// Update handles messages and updates the application state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.model.Width = msg.Width
		a.model.Height = msg.Height
		var c1, c2, c3, c4 tea.Cmd
		a.homeView, c1 = a.homeView.Update(msg)
		a.ingestView, c2 = a.ingestView.Update(msg)
		a.chatView, c3 = a.chatView.Update(msg)
		a.videoView, c4 = a.videoView.Update(msg)
		return a, tea.Batch(c1, c2, c3, c4)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, tui.DefaultKeyMap.CtrlC):
			if a.model.CtrlCPending {
				a.Close()
				return a, tea.Quit
			}
			a.model.CtrlCPending = true
			return a, tea.Tick(time.Second, func(time.Time) tea.Msg {
				return tui.CtrlCResetMsg{}
			})
		case key.Matches(msg, tui.DefaultKeyMap.Tab):
			a.model.State = a.model.NextScreen()
			return a, nil
		case key.Matches(msg, tui.DefaultKeyMap.Escape):
			if a.model.State != tui.StateHome {
				a.model.State = tui.StateHome
				return a, nil
			}
		}

	case tui.CtrlCResetMsg:
		a.model.CtrlCPending = false
		return a, nil

	case spinner.TickMsg:
		// Each spinner only accepts its own ticks.
		var c1, c2, c3 tea.Cmd
		a.ingestView, c1 = a.ingestView.Update(msg)
		a.chatView, c2 = a.chatView.Update(msg)
		a.videoView, c3 = a.videoView.Update(msg)
		return a, tea.Batch(c1, c2, c3)

	case tui.NavigateMsg:
		if a.model.Available(msg.State) {
			a.model.State = msg.State
		}
		return a, nil

	// Ingestion
	case tui.ProbeResultMsg:
		a.syncIngest()
		return a, nil

	case tui.SubmitPathMsg:
		return a, commands.StartIngestCmd(a.ctx, a.ingest, msg.Path)

	case tui.IngestStartedMsg:
		a.syncIngest()
		return a, nil

	case tui.IngestUpdateMsg:
		a.syncIngest()
		return a, a.bridge.Listen()

	case tui.StopIngestMsg:
		a.ingest.Stop()
		a.syncIngest()
		return a, nil

	case tui.UseExistingMsg:
		if err := a.ingest.UseExisting(); err == nil {
			a.syncIngest()
			a.model.State = tui.StateChat
		}
		return a, nil

	// Chat
	case tui.SendQuestionMsg:
		ch, err := a.chat.Send(a.ctx, msg.Question)
		if err != nil {
			return a, nil
		}
		a.chatView = a.chatView.Sync(a.chat.Transcript(), true)
		return a, commands.WaitTurnCmd(ch)

	case tui.ChatTurnMsg:
		a.chatView = a.chatView.Sync(a.chat.Transcript(), a.chat.Busy())
		return a, nil

	// Video
	case tui.AnalyzeVideoMsg:
		a.videoView = a.videoView.Sync(a.video.Status(), a.video.IncludeNeutral())
		return a, commands.AnalyzeVideoCmd(a.ctx, a.video, msg.URL)

	case tui.VideoUpdateMsg:
		a.videoView = a.videoView.Sync(msg.Status, a.video.IncludeNeutral())
		return a, a.bridge.Listen()

	case tui.VideoResultMsg:
		a.videoView = a.videoView.Sync(a.video.Status(), a.video.IncludeNeutral())
		return a, nil

	case tui.ToggleNeutralMsg:
		a.video.SetIncludeNeutral(!a.video.IncludeNeutral())
		a.videoView = a.videoView.Sync(a.video.Status(), a.video.IncludeNeutral())
		return a, nil

	case tui.ResetVideoMsg:
		a.video.Reset()
		a.videoView = a.videoView.Sync(a.video.Status(), a.video.IncludeNeutral())
		return a, nil
	}

	return a.updateActive(msg)
}

// updateActive routes remaining input to the current screen.
func (a *App) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.model.State {
	case tui.StateHome:
		a.homeView, cmd = a.homeView.Update(msg)
	case tui.StateIngest:
		a.ingestView, cmd = a.ingestView.Update(msg)
	case tui.StateChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case tui.StateVideo:
		a.videoView, cmd = a.videoView.Update(msg)
	}
	return a, cmd
}

// syncIngest copies ingestion state into the views and unlocks chat once the
// corpus is ready. A fresh run locks chat again until it completes.
func (a *App) syncIngest() {
	st := a.ingest.Status()
	a.model.CorpusReady = st.Ready
	a.ingestView = a.ingestView.Sync(st)
	a.homeView = a.homeView.Sync(st.Ready, st.CanSkip)
	if !st.Ready && a.model.State == tui.StateChat {
		a.model.State = tui.StateIngest
	}
}

// View renders the tab bar and the active screen.
func (a *App) View() string {
	var content string
	switch a.model.State {
	case tui.StateIngest:
		content = a.ingestView.View()
	case tui.StateChat:
		content = a.chatView.View()
	case tui.StateVideo:
		content = a.videoView.View()
	default:
		content = a.homeView.View()
	}

	boxed := tui.BoxStyle.Width(a.model.BoxWidth(maxBoxWidth)).Render(content)

	var b strings.Builder
	b.WriteString(a.renderTabBar())
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(a.model.Width, lipgloss.Center, boxed))
	if a.model.CtrlCPending {
		b.WriteString("\n")
		b.WriteString(tui.WarningStyle.Render("Press Ctrl+C again to exit"))
	}
	return b.String()
}

// renderTabBar renders the tab bar with the active screen highlighted.
func (a *App) renderTabBar() string {
	var rendered []string
	for _, s := range tui.Screens {
		switch {
		case s == a.model.State:
			rendered = append(rendered, tui.ActiveTabStyle.Render(s.Title()))
		case !a.model.Available(s):
			rendered = append(rendered, tui.DisabledTabStyle.Render(s.Title()))
		default:
			rendered = append(rendered, tui.InactiveTabStyle.Render(s.Title()))
		}
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	return lipgloss.NewStyle().
		Width(a.model.Width).
		Align(lipgloss.Center).
		Render(tabBar)
}
