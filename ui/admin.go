package ui

import (
	"context"
	"fmt"
	"time"

	"fanhub/engine"
	"fanhub/models"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// showAdminPanel opens the Group Setting overlay: the member roster and
// the pending requests, with remove/accept actions. Only reachable from
// the member surface; hidden entirely unless the caller owns the group
// or requests are pending.
func (a *App) showAdminPanel() {
	snap := a.access.Snapshot()
	if !engine.ShowAdminPanel(snap) {
		return
	}

	a.membersList = tview.NewList()
	styleAdminList(a.membersList)
	a.membersList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		a.confirmRemove(index)
	})

	a.pendingList = tview.NewList()
	styleAdminList(a.pendingList)
	a.pendingList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		a.acceptPending(index)
	})

	columns := tview.NewFlex().
		AddItem(a.membersList, 0, 1, true).
		AddItem(a.pendingList, 0, 1, false)

	help := tview.NewTextView()
	help.SetBackgroundColor(ColorButton)
	help.SetTextColor(ColorTitle)
	help.SetTextAlign(tview.AlignCenter)
	help.SetText(" Enter:Accept/Remove | Tab:Switch list | Esc:Close ")

	panel := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(columns, 0, 1, true).
		AddItem(help, 1, 0, false)
	panel.SetBackgroundColor(ColorBg)

	membersFocused := true
	panel.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc:
			a.closeAdminPanel()
			return nil
		case tcell.KeyTab:
			membersFocused = !membersFocused
			if membersFocused {
				a.app.SetFocus(a.membersList)
			} else {
				a.app.SetFocus(a.pendingList)
			}
			return nil
		}
		return event
	})

	a.refreshAdminPanel(snap)
	a.pages.AddPage("admin", panel, true, true)
	a.app.SetFocus(a.membersList)
}

func (a *App) closeAdminPanel() {
	a.pages.RemovePage("admin")
	a.membersList = nil
	a.pendingList = nil
	if a.messageInput != nil {
		a.app.SetFocus(a.messageInput)
	}
}

func styleAdminList(list *tview.List) {
	list.SetBorder(true)
	list.SetBorderColor(ColorBorder)
	list.SetBackgroundColor(ColorBg)
	list.SetTitleColor(ColorTitle)
	list.SetMainTextColor(ColorFg)
	list.SetSelectedTextColor(ColorTitle)
	list.SetSelectedBackgroundColor(ColorButton)
	list.SetHighlightFullLine(true)
	list.ShowSecondaryText(false)
}

// refreshAdminPanel refills both lists from the snapshot. Selection is
// preserved across refills where possible.
func (a *App) refreshAdminPanel(snap engine.Snapshot) {
	if a.membersList == nil || a.pendingList == nil {
		return
	}

	fillAddressList(a.membersList, snap.Members)
	a.membersList.SetTitle(fmt.Sprintf(" Members (%d) ", len(snap.Members)))

	fillAddressList(a.pendingList, snap.PendingMembers)
	a.pendingList.SetTitle(fmt.Sprintf(" Pending (%d) ", len(snap.PendingMembers)))
}

func fillAddressList(list *tview.List, addresses []models.Address) {
	selected := list.GetCurrentItem()
	list.Clear()
	for _, addr := range addresses {
		list.AddItem(addr.Short(), "", 0, nil)
	}
	if selected >= 0 && selected < list.GetItemCount() {
		list.SetCurrentItem(selected)
	}
}

// acceptPending approves the selected pending request. The engine
// refetches the pending list and roster on success, which lands back
// here through the subscription.
func (a *App) acceptPending(index int) {
	snap := a.access.Snapshot()
	if index < 0 || index >= len(snap.PendingMembers) || snap.AcceptInFlight {
		return
	}
	member := snap.PendingMembers[index]

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = a.access.AcceptMember(ctx, member)
	}()
}

func (a *App) confirmRemove(index int) {
	snap := a.access.Snapshot()
	if index < 0 || index >= len(snap.Members) || snap.RemoveInFlight {
		return
	}
	member := snap.Members[index]

	modal := tview.NewModal()
	modal.SetText(fmt.Sprintf("Remove member %s?", member.Checksum()))
	modal.SetBackgroundColor(ColorBg)
	modal.SetTextColor(ColorFg)
	modal.SetButtonBackgroundColor(ColorButton)
	modal.SetButtonTextColor(ColorTitle)
	modal.AddButtons([]string{"Remove", "Cancel"})
	modal.SetDoneFunc(func(buttonIndex int, buttonLabel string) {
		a.pages.RemovePage("confirm")
		if buttonLabel == "Remove" {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				_ = a.access.RemoveMember(ctx, member)
			}()
		}
		if a.membersList != nil {
			a.app.SetFocus(a.membersList)
		}
	})

	a.pages.AddPage("confirm", modal, true, true)
}
