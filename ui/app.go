package ui

import (
	"sync"
	"time"

	"fanhub/engine"
	"fanhub/identity"
	"fanhub/models"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// App is the main application. It renders one surface per access mode
// and leaves all synchronization state to the engine; every update
// arrives through the engine subscription and is applied on the UI
// event loop via QueueUpdateDraw.
type App struct {
	app     *tview.Application
	pages   *tview.Pages
	access  *engine.AccessSynchronizer
	stream  *engine.MessageStream
	session *identity.Session
	groupID models.GroupID
	log     *zap.Logger

	mu          sync.Mutex
	mode        engine.Mode
	started     bool
	msgCount    int
	noticeSeq   int
	membersList *tview.List
	pendingList *tview.List

	chatView      *tview.TextView
	messageInput  *tview.InputField
	statusBar     *tview.TextView
	requestButton *tview.Button
	accessText    *tview.TextView
}

// NewApp creates the application for one group session. The app itself
// is the engine's Notifier, so it is built first and bound to the
// synchronizer and stream afterwards.
func NewApp(session *identity.Session, groupID models.GroupID, log *zap.Logger) *App {
	return &App{
		session: session,
		groupID: groupID,
		log:     log,
		mode:    engine.Mode(-1),
	}
}

// Bind attaches the synchronization core. Must be called before Run.
func (a *App) Bind(access *engine.AccessSynchronizer, stream *engine.MessageStream) {
	a.access = access
	a.stream = stream
}

// Run starts the application and blocks until quit.
func (a *App) Run() error {
	a.app = tview.NewApplication()
	a.pages = tview.NewPages()

	a.statusBar = tview.NewTextView()
	a.statusBar.SetBackgroundColor(ColorButton)
	a.statusBar.SetTextColor(ColorTitle)
	a.statusBar.SetTextAlign(tview.AlignCenter)
	a.statusBar.SetDynamicColors(true)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)
	root.SetBackgroundColor(ColorBg)

	a.pages.AddPage("blank", tview.NewBox().SetBackgroundColor(ColorBg), true, true)

	a.access.Engine().Subscribe(func() {
		a.app.QueueUpdateDraw(a.render)
	})

	a.mu.Lock()
	a.started = true
	a.mu.Unlock()
	a.render()

	return a.app.SetRoot(root, true).EnableMouse(false).Run()
}

// render recomputes the gate and switches or refreshes the visible
// surface. Always called on the UI event loop.
func (a *App) render() {
	snap := a.access.Snapshot()
	mode := engine.Gate(snap)

	a.stream.SetActive(mode == engine.ModeMember)

	a.mu.Lock()
	modeChanged := mode != a.mode
	a.mode = mode
	a.mu.Unlock()

	if modeChanged {
		a.switchPage(mode, snap)
	}

	switch mode {
	case engine.ModeNoAccess, engine.ModePending:
		a.updateAccessPage(snap)
	case engine.ModeMember:
		a.refreshChatView()
		a.refreshAdminPanel(snap)
	}
	a.updateStatusBar(snap)
}

func (a *App) switchPage(mode engine.Mode, snap engine.Snapshot) {
	switch mode {
	case engine.ModeResolving:
		a.pages.SwitchToPage("blank")
	case engine.ModeLoading:
		a.showLoadingPage()
	case engine.ModeNoAccess, engine.ModePending:
		a.showAccessPage(snap)
	case engine.ModeMember:
		a.showChatPage()
	}
}

func (a *App) updateStatusBar(snap engine.Snapshot) {
	a.mu.Lock()
	seq := a.noticeSeq
	a.mu.Unlock()
	if seq > 0 {
		return // a notice is on display, leave it until it expires
	}
	text := " F1:Admin | Enter:Send | F9:Disconnect | F10:Quit "
	if snap.Degraded {
		text += "[orange]○ reads degraded[-] "
	}
	a.statusBar.SetText(text)
}

// Success implements engine.Notifier.
func (a *App) Success(text string) {
	a.showNotice("[green]" + tview.Escape(text) + "[-]")
}

// Error implements engine.Notifier.
func (a *App) Error(text string) {
	a.showNotice("[red]" + tview.Escape(text) + "[-]")
}

// showNotice displays a toast-like message on the status bar for a few
// seconds. Mutations call this from their own goroutines, possibly
// before the UI loop is running.
func (a *App) showNotice(text string) {
	a.mu.Lock()
	if !a.started {
		a.mu.Unlock()
		return
	}
	a.noticeSeq++
	seq := a.noticeSeq
	a.mu.Unlock()

	a.app.QueueUpdateDraw(func() {
		a.statusBar.SetText(" " + text + " ")
	})

	time.AfterFunc(4*time.Second, func() {
		a.mu.Lock()
		if a.noticeSeq != seq {
			a.mu.Unlock()
			return // a newer notice replaced this one
		}
		a.noticeSeq = 0
		a.mu.Unlock()
		a.app.QueueUpdateDraw(func() {
			a.updateStatusBar(a.access.Snapshot())
		})
	})
}

func (a *App) showLoadingPage() {
	loading := tview.NewTextView()
	loading.SetBackgroundColor(ColorBg)
	loading.SetTextColor(ColorFg)
	loading.SetTextAlign(tview.AlignCenter)
	loading.SetText("\n\nLoading...")

	a.pages.AddAndSwitchToPage("loading", loading, true)
}

// disconnect clears the durable sign-in marker and quits.
func (a *App) disconnect() {
	if err := a.session.Disconnect(); err != nil {
		a.log.Error("disconnect failed", zap.Error(err))
	}
	a.quit()
}

// quit exits the application
func (a *App) quit() {
	a.app.Stop()
}

func (a *App) globalKeys(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyF9:
		a.disconnect()
		return nil
	case tcell.KeyF10:
		a.quit()
		return nil
	}
	return event
}
