package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/coursedeck/internal/catalog"
	"github.com/desertthunder/coursedeck/internal/models"
	"github.com/desertthunder/coursedeck/internal/repositories"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	TopicListView ViewState = iota
	VideoListView
)

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	loader    *catalog.Loader
	syncer    *catalog.Syncer
	watched   *repositories.WatchedRepository
	userEmail string
	width     int
	height    int
	topicList list.Model
	videoList list.Model
	topics    []models.Topic
	selected  int
	pending   bool
	status    string
	err       error
	help      help.Model
	keys      keyMap
}

type catalogFetchedMsg struct {
	topics []models.Topic
	err    error
}

type toggleDoneMsg struct {
	topic     string
	videoID   string
	completed bool
	err       error
}

// NewModel creates a new TUI model with the provided dependencies.
//
// watched may be nil, in which case toggles only write to the spreadsheet.
func NewModel(ctx context.Context, loader *catalog.Loader, syncer *catalog.Syncer, watched *repositories.WatchedRepository, userEmail string) *Model {
	return &Model{
		ctx:       ctx,
		view:      TopicListView,
		loader:    loader,
		syncer:    syncer,
		watched:   watched,
		userEmail: userEmail,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init initializes the TUI by fetching the catalog.
func (m *Model) Init() tea.Cmd {
	return m.fetchCatalog()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.topicList.Width() == 0 {
			m.topicList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.videoList.Width() == 0 {
			m.videoList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case TopicListView:
			return m.handleTopicListKeys(msg)
		case VideoListView:
			return m.handleVideoListKeys(msg)
		}

	case catalogFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.topics = msg.topics
		items := make([]list.Item, len(msg.topics))
		for i, topic := range msg.topics {
			items[i] = topicItem{topic: topic}
		}
		m.topicList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.topicList.Title = "Course Topics"
		m.topicList.SetSize(m.width-4, m.height-8)
		m.status = ""
		return m, nil

	case toggleDoneMsg:
		m.pending = false
		if msg.err != nil {
			m.status = fmt.Sprintf("sync failed: %v", msg.err)
			return m, nil
		}

		topic := &m.topics[m.selected]
		video := topic.Find(msg.videoID)
		if video == nil {
			return m, nil
		}
		video.Completed = msg.completed

		m.status = ""
		cmds := []tea.Cmd{
			m.videoList.SetItem(m.videoList.Index(), videoItem{video: *video}),
			m.topicList.SetItem(m.selected, topicItem{topic: *topic}),
		}
		return m, tea.Batch(cmds...)
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case TopicListView:
		return m.renderTopicList()
	case VideoListView:
		return m.renderVideoList()
	default:
		return ""
	}
}

func (m *Model) handleTopicListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.status = "refreshing..."
		return m, m.fetchCatalog()
	case "enter":
		selected := m.topicList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(topicItem); ok {
				m.openTopic(item.topic.Name)
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.topicList, cmd = m.topicList.Update(msg)
	return m, cmd
}

func (m *Model) handleVideoListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = TopicListView
		m.status = ""
		return m, nil
	case " ", "enter":
		if m.pending {
			return m, nil
		}
		selected := m.videoList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(videoItem); ok {
				m.pending = true
				m.status = "syncing..."
				return m, m.toggleVideo(m.topics[m.selected].Name, item.video)
			}
		}
	}

	var cmd tea.Cmd
	m.videoList, cmd = m.videoList.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case TopicListView:
		m.topicList, cmd = m.topicList.Update(msg)
	case VideoListView:
		m.videoList, cmd = m.videoList.Update(msg)
	}
	return m, cmd
}

// openTopic switches to the video list for the named topic.
func (m *Model) openTopic(name string) {
	for i := range m.topics {
		if m.topics[i].Name == name {
			m.selected = i
			break
		}
	}

	topic := m.topics[m.selected]
	items := make([]list.Item, len(topic.Videos))
	for i, video := range topic.Videos {
		items[i] = videoItem{video: video}
	}
	m.videoList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.videoList.Title = topic.Name
	m.videoList.SetSize(m.width-4, m.height-8)
	m.view = VideoListView
}

func (m *Model) fetchCatalog() tea.Cmd {
	return func() tea.Msg {
		topics, err := m.loader.Load(m.ctx, m.userEmail)
		if err == nil && m.watched != nil {
			if watched, mapErr := m.watched.WatchedMap(); mapErr == nil {
				catalog.ApplyWatched(topics, watched)
			}
		}
		return catalogFetchedMsg{topics: topics, err: err}
	}
}

func (m *Model) toggleVideo(topicName string, video models.Video) tea.Cmd {
	return func() tea.Msg {
		completed, err := m.syncer.Toggle(m.ctx, m.userEmail, topicName, video.VideoID, video.Completed)
		if err == nil && m.watched != nil {
			if completed {
				if repoErr := m.watched.Create(models.NewWatchedVideo(0, topicName, video.VideoID)); repoErr != nil {
					err = repoErr
				}
			} else {
				// Tolerate records that never made it into the local store.
				_ = m.watched.Delete(video.VideoID)
			}
		}
		return toggleDoneMsg{topic: topicName, videoID: video.VideoID, completed: completed, err: err}
	}
}

func (m *Model) renderTopicList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s%s", m.topicList.View(), m.statusLine(), helpView)
}

func (m *Model) renderVideoList() string {
	helpKeys := []key.Binding{m.keys.toggle, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s%s", m.videoList.View(), m.statusLine(), helpView)
}

func (m *Model) statusLine() string {
	if m.status == "" {
		return ""
	}
	return styles.warn.Render(m.status) + "\n"
}
