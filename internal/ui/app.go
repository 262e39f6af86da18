package ui

import (
	"context"
	"fmt"

	"github.com/dastanaron/barswitch/internal/logger"
	"github.com/dastanaron/barswitch/internal/models"
	"github.com/dastanaron/barswitch/internal/store"
	"github.com/dastanaron/barswitch/internal/switcher"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	ModeNormal = 1
	ModeForm   = 2
)

// App represents the TUI application
type App struct {
	app      *tview.Application
	list     *tview.List
	detail   *tview.TextView
	status   *tview.TextView
	pages    *tview.Pages
	mode     uint8
	store    store.Store
	switcher *switcher.Switcher

	// folder the list currently shows; store.BarID at the top level
	currentFolder int
	// path of folder ids above currentFolder, for Backspace navigation
	parents []int
	items   []models.Node
}

// NewApp creates a new application instance
func NewApp(st store.Store, sw *switcher.Switcher) *App {
	return &App{
		app:           tview.NewApplication(),
		list:          tview.NewList(),
		detail:        tview.NewTextView().SetDynamicColors(true).SetWrap(true),
		status:        tview.NewTextView().SetDynamicColors(true),
		pages:         tview.NewPages(),
		mode:          ModeNormal,
		store:         st,
		switcher:      sw,
		currentFolder: store.BarID,
	}
}

// Run starts the application. It returns when the user quits; ctx cancels
// the store-event subscription.
func (a *App) Run(ctx context.Context) error {
	a.list.SetBorder(true)
	a.detail.SetBorder(true).SetTitle("Details")

	cols := tview.NewFlex().
		AddItem(a.list, 0, 3, true).
		AddItem(a.detail, 0, 1, false)

	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(cols, 0, 1, true).
		AddItem(a.status, 1, 0, false)

	a.pages.AddPage("main", main, true, true)

	if err := a.reload(ctx); err != nil {
		return err
	}

	a.list.SetChangedFunc(a.onSelect)
	a.app.SetRoot(a.pages, true)
	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		return a.globalInput(ctx, event)
	})
	a.updateStatus(ctx)

	// Redraw whenever the store changes underneath us (auto-save, toggle,
	// another process).
	events := a.store.Subscribe(ctx)
	go func() {
		for range events {
			a.app.QueueUpdateDraw(func() {
				a.reload(ctx)
				a.updateStatus(ctx)
			})
		}
	}()

	return a.app.Run()
}

func (a *App) updateStatus(ctx context.Context) {
	mode, err := a.switcher.Mode(ctx)
	if err != nil {
		mode = models.ModePrivate
	}
	statusText := fmt.Sprintf(
		"[::b]Ctrl+T/F2[::r] toggle  [::b]Enter[::r] open  [::b]Backspace[::r] back  [::b]a[::r] add  [::b]d[::r] del  [::b]q[::r] quit  mode: [::b]%s[::r]  %d items",
		mode, len(a.items),
	)
	if err := a.switcher.LastError(); err != nil {
		statusText = fmt.Sprintf("[red]last error: %v", err)
	}
	a.status.SetText(statusText)
}

func (a *App) reload(ctx context.Context) error {
	items, err := a.store.Children(ctx, a.currentFolder)
	if err != nil {
		// The folder we were looking at may have been swapped away by a
		// toggle; fall back to the bar.
		a.currentFolder = store.BarID
		a.parents = nil
		items, err = a.store.Children(ctx, store.BarID)
		if err != nil {
			return err
		}
	}
	a.items = items
	a.fillList(ctx)
	return nil
}

func (a *App) fillList(ctx context.Context) {
	selected := a.list.GetCurrentItem()
	a.list.Clear()
	for _, item := range a.items {
		if item.IsFolder() {
			a.list.AddItem("[yellow]"+tview.Escape(item.Title)+"/", "", 0, nil)
		} else {
			a.list.AddItem(tview.Escape(item.Title), "", 0, nil)
		}
	}
	if selected < a.list.GetItemCount() {
		a.list.SetCurrentItem(selected)
	}

	if a.currentFolder == store.BarID {
		mode, _ := a.switcher.Mode(ctx)
		a.list.SetTitle(fmt.Sprintf("Bookmarks Bar (%s)", mode))
	} else if node, err := a.store.Get(ctx, a.currentFolder); err == nil {
		a.list.SetTitle(tview.Escape(node.Title))
	}
	a.onSelect(a.list.GetCurrentItem(), "", "", 0)
}

func (a *App) onSelect(index int, _ string, _ string, _ rune) {
	if index < 0 || index >= len(a.items) {
		a.detail.SetText("")
		return
	}
	item := a.items[index]
	if item.IsFolder() {
		a.detail.SetText(fmt.Sprintf("[yellow]Folder[white]\n\n%s", tview.Escape(item.Title)))
		return
	}
	a.detail.SetText(fmt.Sprintf("[::b]%s[::-]\n\n[blue]%s", tview.Escape(item.Title), tview.Escape(*item.URL)))
}

func (a *App) globalInput(ctx context.Context, event *tcell.EventKey) *tcell.EventKey {
	if a.mode != ModeNormal {
		return event
	}

	switch event.Key() {
	case tcell.KeyCtrlT, tcell.KeyF2:
		// Toggle runs off the UI goroutine; the event feed redraws when
		// the bar changes.
		go a.switcher.Toggle(ctx)
		return nil
	case tcell.KeyEnter:
		a.enterSelected(ctx)
		return nil
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.goUp(ctx)
		return nil
	}

	switch event.Rune() {
	case 'q':
		a.app.Stop()
		return nil
	case 'a':
		a.showAddForm(ctx)
		return nil
	case 'd':
		a.deleteSelected(ctx)
		return nil
	}
	return event
}

func (a *App) enterSelected(ctx context.Context) {
	index := a.list.GetCurrentItem()
	if index < 0 || index >= len(a.items) {
		return
	}
	item := a.items[index]
	if !item.IsFolder() {
		return
	}
	a.parents = append(a.parents, a.currentFolder)
	a.currentFolder = item.ID
	a.reload(ctx)
	a.updateStatus(ctx)
}

func (a *App) goUp(ctx context.Context) {
	if len(a.parents) == 0 {
		return
	}
	a.currentFolder = a.parents[len(a.parents)-1]
	a.parents = a.parents[:len(a.parents)-1]
	a.reload(ctx)
	a.updateStatus(ctx)
}

func (a *App) deleteSelected(ctx context.Context) {
	index := a.list.GetCurrentItem()
	if index < 0 || index >= len(a.items) {
		return
	}
	if err := a.store.Remove(ctx, a.items[index].ID); err != nil {
		logger.Warn("failed to delete bookmark", map[string]interface{}{
			"title": a.items[index].Title,
			"error": err,
		})
	}
	a.reload(ctx)
	a.updateStatus(ctx)
}

func (a *App) showAddForm(ctx context.Context) {
	a.mode = ModeForm

	form := tview.NewForm()
	form.AddInputField("Title", "", 40, nil, nil)
	form.AddInputField("URL (empty for folder)", "", 40, nil, nil)
	form.AddButton("Save", func() {
		title := form.GetFormItem(0).(*tview.InputField).GetText()
		urlText := form.GetFormItem(1).(*tview.InputField).GetText()
		var url *string
		if urlText != "" {
			url = &urlText
		}
		if title != "" {
			if _, err := a.store.Create(ctx, a.currentFolder, title, url); err != nil {
				logger.Warn("failed to add bookmark", map[string]interface{}{
					"title": title,
					"error": err,
				})
			}
		}
		a.closeForm(ctx)
	})
	form.AddButton("Cancel", func() {
		a.closeForm(ctx)
	})
	form.SetBorder(true).SetTitle("Add bookmark")

	a.pages.AddPage("form", modal(form, 60, 9), true, true)
	a.app.SetFocus(form)
}

func (a *App) closeForm(ctx context.Context) {
	a.pages.RemovePage("form")
	a.mode = ModeNormal
	a.reload(ctx)
	a.updateStatus(ctx)
	a.app.SetFocus(a.list)
}

// modal centers p in a fixed-size box
func modal(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}
