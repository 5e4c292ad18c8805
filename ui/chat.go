package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

func (a *App) showChatPage() {
	// Message history view
	a.chatView = tview.NewTextView()
	a.chatView.SetBorder(true)
	a.chatView.SetBorderColor(ColorBorder)
	a.chatView.SetBackgroundColor(ColorBg)
	a.chatView.SetTitle(fmt.Sprintf(" Group %d ", a.groupID))
	a.chatView.SetTitleColor(ColorTitle)
	a.chatView.SetTextColor(ColorFg)
	a.chatView.SetDynamicColors(true)
	a.chatView.SetScrollable(true)

	// Composer input
	a.messageInput = tview.NewInputField()
	a.messageInput.SetLabel("> ")
	a.messageInput.SetFieldWidth(0)
	a.messageInput.SetBackgroundColor(ColorBg)
	a.messageInput.SetFieldBackgroundColor(tcell.NewRGBColor(0, 0, 64))
	a.messageInput.SetFieldTextColor(ColorFg)
	a.messageInput.SetLabelColor(ColorHighlight)
	a.messageInput.SetBorder(true)
	a.messageInput.SetBorderColor(ColorBorder)
	a.messageInput.SetTitle(" Message ")
	a.messageInput.SetTitleColor(ColorTitle)

	a.messageInput.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			a.submitMessage()
		}
	})

	mainFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.chatView, 0, 1, false).
		AddItem(a.messageInput, 3, 0, true)
	mainFlex.SetBackgroundColor(ColorBg)

	chatViewFocused := false
	mainFlex.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			a.showAdminPanel()
			return nil
		case tcell.KeyTab:
			chatViewFocused = !chatViewFocused
			if chatViewFocused {
				a.app.SetFocus(a.chatView)
			} else {
				a.app.SetFocus(a.messageInput)
			}
			return nil
		case tcell.KeyPgUp:
			row, col := a.chatView.GetScrollOffset()
			a.chatView.ScrollTo(row-10, col)
			return nil
		case tcell.KeyPgDn:
			row, col := a.chatView.GetScrollOffset()
			a.chatView.ScrollTo(row+10, col)
			return nil
		case tcell.KeyEnd:
			a.chatView.ScrollToEnd()
			return nil
		}
		return a.globalKeys(event)
	})

	a.mu.Lock()
	a.msgCount = 0
	a.mu.Unlock()

	a.refreshChatView()
	a.pages.AddAndSwitchToPage("chat", mainFlex, true)
	a.app.SetFocus(a.messageInput)
}

// submitMessage validates locally and hands off to the stream. The
// input is cleared only on success; a failed send keeps the content so
// the user can retry.
func (a *App) submitMessage() {
	text := a.messageInput.GetText()
	if strings.TrimSpace(text) == "" {
		return // send stays inert on whitespace-only content
	}
	if a.stream.Sending() {
		return
	}
	a.messageInput.SetTitle(" Sending... ")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := a.stream.Send(ctx, text)
		a.app.QueueUpdateDraw(func() {
			a.messageInput.SetTitle(" Message ")
			if err == nil {
				a.messageInput.SetText("")
				a.refreshChatView()
			}
		})
	}()
}

// refreshChatView rebuilds the message view. The view is pinned to the
// newest message whenever the list grows, including the first
// population.
func (a *App) refreshChatView() {
	if a.chatView == nil {
		return
	}

	entries := a.stream.Entries()

	a.mu.Lock()
	grew := len(entries) > a.msgCount
	a.msgCount = len(entries)
	a.mu.Unlock()

	_, _, width, _ := a.chatView.GetInnerRect()
	if width < 10 {
		width = 80 // Default width
	}

	a.chatView.Clear()
	var sb strings.Builder

	if len(entries) == 0 {
		sb.WriteString("\n[gray]      No Threads yet[-]\n")
	}

	for _, e := range entries {
		if e.ShowDate {
			dateLabel := formatDateSeparator(e.Timestamp)
			padding := (width - len(dateLabel)) / 2
			if padding < 0 {
				padding = 0
			}
			sb.WriteString(fmt.Sprintf("[gray]%s%s[-]\n", strings.Repeat(" ", padding), dateLabel))
		}

		sender := e.Sender.Short()
		color := colorTag(ColorOther)
		if e.Own {
			sender = "Me"
			color = colorTag(ColorOwn)
		}
		sb.WriteString(fmt.Sprintf("[%s]%s[-] [gray]%s[-]\n", color, tview.Escape(sender), formatMessageTime(e.Timestamp)))
		sb.WriteString(fmt.Sprintf("  %s\n", tview.Escape(e.Content)))
	}

	fmt.Fprint(a.chatView, sb.String())
	if grew {
		a.chatView.ScrollToEnd()
	}
}
