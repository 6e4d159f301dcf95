package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"

	"trxr/internal/domain"
	"trxr/internal/storage"
)

// maxStackLines bounds the stack trace shown in the details pane
const maxStackLines = 15

// FailureViewer browses failed results and lets the user mark them resolved
type FailureViewer struct {
	log     logrus.FieldLogger
	storage storage.Storage
}

var _ Viewer = (*FailureViewer)(nil)

// NewFailureViewer creates a new FailureViewer
func NewFailureViewer(log logrus.FieldLogger, st storage.Storage) *FailureViewer {
	return &FailureViewer{
		log:     log.WithField("component", "viewer"),
		storage: st,
	}
}

// View opens the TUI. Resolution toggles are written back to the summary file.
func (fv *FailureViewer) View(summary *domain.RunSummary) error {
	failures := summary.Failures
	if len(failures) == 0 {
		color.Green("✓ No test failures found!")
		return nil
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	for i := range failures {
		list.AddItem(listItemText(failures[i], i), "", 0, nil)
	}
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	updateHeader := func() {
		headerView.SetText(fmt.Sprintf(
			" %s | %d failed, %d unresolved | ↑↓ navigate, [yellow]R[white] resolve, → details, ← back, Ctrl+C exit ",
			tview.Escape(summary.Run.Name), len(failures), unresolved(failures),
		))
	}

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(failures) {
			return
		}
		statsView.SetText(formatFailureStats(failures[index], index+1))
		detailsView.SetText(formatFailureDetails(failures[index]))
		detailsView.ScrollToBeginning()
	}

	toggle := func(index int) {
		failures[index].Resolved = !failures[index].Resolved
		list.SetItemText(index, listItemText(failures[index], index), "")
		updateHeader()
		updateDetails()
		if err := fv.storage.Save(summary); err != nil {
			fv.log.WithError(err).Warn("Failed to save resolved status")
		}
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				if index := list.GetCurrentItem(); index >= 0 && index < len(failures) {
					toggle(index)
				}
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})

	updateHeader()
	updateDetails()

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(tview.NewFlex().
			AddItem(detailsView, 0, 1, false).
			AddItem(tview.NewBox(), 2, 0, false), 0, 1, false)

	body := tview.NewFlex().
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(body, 0, 1, true)

	if err := app.SetRoot(layout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func unresolved(failures []domain.FailedEntry) int {
	count := 0
	for _, f := range failures {
		if !f.Resolved {
			count++
		}
	}
	return count
}

func listItemText(f domain.FailedEntry, index int) string {
	name := f.TestName
	if name == "" {
		name = fmt.Sprintf("Test %d", index+1)
	}
	name = tview.Escape(name)
	if f.Resolved {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, name)
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", index+1, name)
}

// formatFailureDetails renders a failure using tview color tags
func formatFailureDetails(f domain.FailedEntry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[red]✗ %s: %s[white]\n\n", f.Outcome, tview.Escape(f.TestName))

	if f.Artifact != "" {
		fmt.Fprintf(&b, "[cyan]Screenshot: %s[white]\n\n", tview.Escape(f.Artifact))
	}

	if f.Message != "" {
		fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n\n", tview.Escape(f.Message))
	}

	if f.Stack != "" {
		lines := strings.Split(strings.TrimRight(f.Stack, "\n"), "\n")
		b.WriteString("[yellow]Stack Trace:[white]\n")
		for i, line := range lines {
			if i == maxStackLines {
				fmt.Fprintf(&b, "  [gray]... and %d more lines[white]\n", len(lines)-maxStackLines)
				break
			}
			fmt.Fprintf(&b, "  %s\n", tview.Escape(strings.TrimSpace(line)))
		}
	}

	return b.String()
}

// formatFailureStats renders the header line above the details pane
func formatFailureStats(f domain.FailedEntry, number int) string {
	path := f.CodeBase
	if path == "" || path == "none" {
		path = "Unknown path"
	}

	name := f.TestName
	if name == "" {
		name = fmt.Sprintf("Test %d", number)
	}

	return fmt.Sprintf("[cyan]file:[white] [yellow]%s[white] :: [yellow]%s[white]\n", tview.Escape(path), tview.Escape(name))
}
