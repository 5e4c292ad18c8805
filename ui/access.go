package ui

import (
	"context"
	"time"

	"fanhub/engine"

	"github.com/rivo/tview"
)

const (
	pendingText  = "Your access request is pending approval... Check back later"
	noAccessText = "You need to be a member of this group to view messages"
)

// showAccessPage builds the "Access Required" surface: the pending
// notice suppresses the request trigger, otherwise the trigger is shown
// and disabled only while the request mutation is in flight.
func (a *App) showAccessPage(snap engine.Snapshot) {
	title := tview.NewTextView()
	title.SetBackgroundColor(ColorBg)
	title.SetTextColor(ColorTitle)
	title.SetTextAlign(tview.AlignCenter)
	title.SetText("! Access Required")

	a.accessText = tview.NewTextView()
	a.accessText.SetBackgroundColor(ColorBg)
	a.accessText.SetTextColor(ColorFg)
	a.accessText.SetTextAlign(tview.AlignCenter)

	a.requestButton = tview.NewButton("Request Access")
	a.requestButton.SetBackgroundColor(ColorButton)
	a.requestButton.SetLabelColor(ColorTitle)
	a.requestButton.SetSelectedFunc(func() {
		if a.access.Snapshot().RequestInFlight {
			return
		}
		a.requestButton.SetDisabled(true)
		a.requestButton.SetLabel("Requesting...")
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			// Outcome lands on the status bar via the notifier; the
			// poll moves the gate once the contract reflects it.
			_ = a.access.RequestAccess(ctx)
			// Re-enable the trigger; success does not invalidate any
			// read, so no engine update would redraw this page.
			a.app.QueueUpdateDraw(a.render)
		}()
	})

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(title, 1, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(a.accessText, 1, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(tview.NewFlex().
			AddItem(nil, 0, 1, false).
			AddItem(a.requestButton, 24, 0, true).
			AddItem(nil, 0, 1, false), 1, 0, true).
		AddItem(nil, 0, 1, false)
	flex.SetBackgroundColor(ColorBg)
	flex.SetInputCapture(a.globalKeys)

	a.updateAccessPage(snap)
	a.pages.AddAndSwitchToPage("access", flex, true)
	a.app.SetFocus(a.requestButton)
}

func (a *App) updateAccessPage(snap engine.Snapshot) {
	if a.accessText == nil || a.requestButton == nil {
		return
	}
	if snap.IsPending {
		a.accessText.SetTextColor(ColorPending)
		a.accessText.SetText(pendingText)
		a.requestButton.SetDisabled(true)
		a.requestButton.SetLabel("Pending...")
		return
	}
	a.accessText.SetTextColor(ColorFg)
	a.accessText.SetText(noAccessText)
	a.requestButton.SetDisabled(snap.RequestInFlight)
	if snap.RequestInFlight {
		a.requestButton.SetLabel("Requesting...")
	} else {
		a.requestButton.SetLabel("Request Access")
	}
}
