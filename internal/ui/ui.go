package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lunchroulette/lunchd/internal/models"
	"github.com/lunchroulette/lunchd/internal/session"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	FavoritesView
)

// authMode selects between logging into an existing account and creating one.
type authMode int

const (
	modeLogin authMode = iota
	modeSignup
)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	manager  *session.Manager
	width    int
	height   int
	mode     authMode
	username textinput.Model
	password textinput.Model
	focused  int
	favList  list.Model
	status   string
	warn     string
	err      error
	help     help.Model
	keys     keyMap
}

type authDoneMsg struct {
	err error
}

type toggleDoneMsg struct {
	id      string
	applied bool
	err     error
}

// NewModel creates a new TUI model over the given session manager. When the
// manager already holds a restored identity the model starts on the
// favorites view.
func NewModel(ctx context.Context, manager *session.Manager) *Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword

	m := &Model{
		ctx:      ctx,
		view:     LoginView,
		manager:  manager,
		mode:     modeLogin,
		username: username,
		password: password,
		help:     help.New(),
		keys:     newKeyMap(),
	}

	if identity, ok := manager.Current(); ok {
		m.view = FavoritesView
		m.rebuildFavorites(identity)
	}

	return m
}

// Init starts the cursor blink on the login form.
func (m *Model) Init() tea.Cmd {
	if m.view == LoginView {
		return textinput.Blink
	}
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.favList.Width() == 0 {
			m.favList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LoginView:
			return m.handleLoginKeys(msg)
		case FavoritesView:
			return m.handleFavoritesKeys(msg)
		}

	case authDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status, m.warn = "", ""
		if identity, ok := m.manager.Current(); ok {
			m.rebuildFavorites(identity)
			m.view = FavoritesView
		}
		return m, nil

	case toggleDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status, m.warn = "", ""
		switch {
		case !msg.applied:
			m.warn = "nothing saved, the account record is gone"
		case m.manager.IsFavorite(msg.id):
			m.status = "added " + msg.id
		default:
			m.status = "removed " + msg.id
		}
		if identity, ok := m.manager.Current(); ok {
			m.rebuildFavorites(identity)
		}
		return m, nil
	}

	return m.updateChildren(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoginView:
		return m.renderLogin()
	case FavoritesView:
		return m.renderFavorites()
	default:
		return ""
	}
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	// Plain "q" must stay typeable in the form fields.
	case msg.String() == "ctrl+c":
		return m, tea.Quit

	case key.Matches(msg, m.keys.mode):
		if m.mode == modeLogin {
			m.mode = modeSignup
		} else {
			m.mode = modeLogin
		}
		return m, nil

	case msg.String() == "tab", msg.String() == "shift+tab":
		m.focused = (m.focused + 1) % 2
		if m.focused == 0 {
			m.password.Blur()
			return m, m.username.Focus()
		}
		m.username.Blur()
		return m, m.password.Focus()

	case key.Matches(msg, m.keys.enter):
		username, password := m.username.Value(), m.password.Value()
		if username == "" {
			m.err = fmt.Errorf("username must not be empty")
			return m, nil
		}
		m.status = "authenticating..."
		return m, m.submitAuth(username, password)
	}

	return m.updateChildren(msg)
}

func (m *Model) handleFavoritesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.logout):
		if err := m.manager.Logout(); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.view = LoginView
		m.username.SetValue("")
		m.password.SetValue("")
		m.focused = 0
		m.password.Blur()
		return m, m.username.Focus()

	case key.Matches(msg, m.keys.toggle):
		selected := m.favList.SelectedItem()
		if selected != nil {
			if fav, ok := selected.(favoriteItem); ok {
				return m, m.toggleFavorite(fav.entry)
			}
		}
		return m, nil
	}

	return m.updateChildren(msg)
}

func (m *Model) updateChildren(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch m.view {
	case LoginView:
		m.username, cmd = m.username.Update(msg)
		cmds = append(cmds, cmd)
		m.password, cmd = m.password.Update(msg)
		cmds = append(cmds, cmd)
	case FavoritesView:
		m.favList, cmd = m.favList.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) submitAuth(username, password string) tea.Cmd {
	return func() tea.Msg {
		var err error
		if m.mode == modeSignup {
			err = m.manager.Signup(m.ctx, username, password)
		} else {
			err = m.manager.Login(m.ctx, username, password)
		}
		return authDoneMsg{err: err}
	}
}

func (m *Model) toggleFavorite(entry models.FavoriteEntry) tea.Cmd {
	return func() tea.Msg {
		applied, err := m.manager.ToggleFavorite(m.ctx, entry)
		return toggleDoneMsg{id: entry.ID(), applied: applied, err: err}
	}
}

func (m *Model) rebuildFavorites(identity models.UserRecord) {
	items := make([]list.Item, len(identity.Favorites))
	for i, entry := range identity.Favorites {
		items[i] = favoriteItem{entry: entry}
	}

	m.favList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.favList.Title = fmt.Sprintf("Favorites of %s", identity.Username)
	m.favList.SetSize(m.width-4, m.height-8)
}

func (m *Model) renderLogin() string {
	mode := "Log in"
	if m.mode == modeSignup {
		mode = "Sign up"
	}
	title := styles.title.Render(fmt.Sprintf("%s to Lunch Roulette", mode))

	form := fmt.Sprintf("%s\n%s\n", m.username.View(), m.password.View())

	var status string
	if m.err != nil {
		status = styles.err.Render(m.err.Error())
	} else if m.status != "" {
		status = styles.help.Render(m.status)
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.mode, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, form, status, helpView)
}

func (m *Model) renderFavorites() string {
	var status string
	switch {
	case m.err != nil:
		status = "\n" + styles.err.Render(m.err.Error())
	case m.warn != "":
		status = "\n" + styles.warn.Render(m.warn)
	case m.status != "":
		status = "\n" + styles.ok.Render(m.status)
	}

	helpKeys := []key.Binding{m.keys.toggle, m.keys.logout, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s%s\n\n%s", m.favList.View(), status, helpView)
}
