package tui

// ViewState is the screen currently shown.
type ViewState int

const (
	StateHome ViewState = iota
	StateIngest
	StateChat
	StateVideo
)

// Title is the tab label of a screen.
func (s ViewState) Title() string {
	switch s {
	case StateIngest:
		return "Documents"
	case StateChat:
		return "Chat"
	case StateVideo:
		return "Video"
	default:
		return "Home"
	}
}

// Screens lists the screens in tab order.
var Screens = []ViewState{StateHome, StateIngest, StateChat, StateVideo}

// Model holds state shared across screens.
type Model struct {
	Width        int
	Height       int
	State        ViewState
	CtrlCPending bool
	CorpusReady  bool // chat unlocks once documents are ingested or reused
	BackendURL   string
	MediaBase    string
}

// NewModel creates the shared model with terminal defaults.
func NewModel(backendURL, mediaBase string) *Model {
	return &Model{
		Width:      80,
		Height:     24,
		State:      StateHome,
		BackendURL: backendURL,
		MediaBase:  mediaBase,
	}
}

// Available reports whether a screen can be entered now.
func (m *Model) Available(s ViewState) bool {
	if s == StateChat {
		return m.CorpusReady
	}
	return true
}

// NextScreen returns the next available screen after the current one.
func (m *Model) NextScreen() ViewState {
	idx := 0
	for i, s := range Screens {
		if s == m.State {
			idx = i
			break
		}
	}
	for step := 1; step <= len(Screens); step++ {
		next := Screens[(idx+step)%len(Screens)]
		if m.Available(next) {
			return next
		}
	}
	return m.State
}

// BoxWidth returns the content box width, capped at max.
func (m *Model) BoxWidth(max int) int {
	w := max
	if m.Width-4 < w {
		w = m.Width - 4
	}
	if w < 20 {
		w = 20
	}
	return w
}
