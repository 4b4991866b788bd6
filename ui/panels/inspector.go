// Package panels provides UI panels for the application.
package panels

import (
	"fmt"
	"image/color"

	"signflow/internal/annotation"
	"signflow/internal/app"
	"signflow/pkg/colorutil"
	"signflow/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

var dateFormats = []string{
	"MM/DD/YYYY",
	"DD/MM/YYYY",
	"YYYY-MM-DD",
	"DD.MM.YY",
}

// Inspector edits the properties of the currently selected item.
type Inspector struct {
	state     *app.State
	canvas    *canvas.PageCanvas
	window    fyne.Window
	container fyne.CanvasObject

	header       *widget.Label
	contentEntry *commitEntry
	familySelect *widget.Select
	boldCheck    *widget.Check
	italicCheck  *widget.Check
	sizeSlider   *widget.Slider
	sizeLabel    *widget.Label
	colorEntry   *widget.Entry
	colorButton  *widget.Button
	dateSelect   *widget.Select
	opacity      *widget.Slider
	rotation     *widget.Slider

	textCard *widget.Card
	dateCard *widget.Card

	// Suppresses widget callbacks while refresh() pushes model
	// values into the widgets.
	updating bool

	// True while the content entry holds keystrokes not yet
	// recorded in history.
	contentDirty bool
}

// commitEntry is a multi-line entry that reports focus loss, so a
// coalesced content edit is committed when the user clicks away.
type commitEntry struct {
	widget.Entry
	onFocusLost func()
}

func newCommitEntry() *commitEntry {
	e := &commitEntry{}
	e.MultiLine = true
	e.Wrapping = fyne.TextWrapWord
	e.ExtendBaseWidget(e)
	return e
}

func (e *commitEntry) FocusLost() {
	e.Entry.FocusLost()
	if e.onFocusLost != nil {
		e.onFocusLost()
	}
}

// NewInspector creates the item property inspector.
func NewInspector(state *app.State, cvs *canvas.PageCanvas) *Inspector {
	ip := &Inspector{
		state:  state,
		canvas: cvs,
	}

	ip.header = widget.NewLabel("No selection")
	ip.header.Wrapping = fyne.TextWrapWord

	ip.contentEntry = newCommitEntry()
	ip.contentEntry.OnChanged = func(text string) {
		if ip.updating {
			return
		}
		it := ip.selected()
		if it == nil || !it.Kind.IsText() || it.Kind == annotation.KindDateStamp {
			return
		}
		if err := state.Model.SetContent(it.ID, text); err != nil {
			return
		}
		ip.contentDirty = true
		ip.canvas.ModelChanged()
	}
	ip.contentEntry.OnSubmitted = func(string) {
		ip.commitContent()
	}
	ip.contentEntry.onFocusLost = ip.commitContent

	ip.familySelect = widget.NewSelect(state.Fonts.Families(), func(family string) {
		if ip.updating {
			return
		}
		if it := ip.selected(); it != nil {
			if state.Model.SetFontFamily(it.ID, family) == nil {
				ip.commit()
			}
		}
	})

	ip.boldCheck = widget.NewCheck("Bold", func(checked bool) {
		if ip.updating {
			return
		}
		if it := ip.selected(); it != nil {
			if state.Model.SetBold(it.ID, checked) == nil {
				ip.commit()
			}
		}
	})
	ip.italicCheck = widget.NewCheck("Italic", func(checked bool) {
		if ip.updating {
			return
		}
		if it := ip.selected(); it != nil {
			if state.Model.SetItalic(it.ID, checked) == nil {
				ip.commit()
			}
		}
	})

	ip.sizeLabel = widget.NewLabel("")
	ip.sizeSlider = widget.NewSlider(annotation.MinFontSize, annotation.MaxFontSize)
	ip.sizeSlider.OnChanged = func(val float64) {
		if ip.updating {
			return
		}
		if it := ip.selected(); it != nil {
			if state.Model.SetFontSize(it.ID, val) == nil {
				ip.sizeLabel.SetText(fmt.Sprintf("%.0f pt", val))
				ip.canvas.ModelChanged()
			}
		}
	}
	ip.sizeSlider.OnChangeEnded = func(val float64) {
		if ip.updating {
			return
		}
		if ip.selected() != nil {
			ip.commit()
		}
	}

	ip.colorEntry = widget.NewEntry()
	ip.colorEntry.OnSubmitted = func(hex string) {
		if ip.updating {
			return
		}
		if it := ip.selected(); it != nil {
			if state.Model.SetColor(it.ID, hex) == nil {
				ip.commit()
			}
		}
	}
	ip.colorButton = widget.NewButton("Pick...", func() {
		ip.showColorPicker()
	})

	ip.dateSelect = widget.NewSelect(dateFormats, func(format string) {
		if ip.updating {
			return
		}
		if it := ip.selected(); it != nil && it.Kind == annotation.KindDateStamp {
			if state.Model.SetDateFormat(it.ID, format) == nil {
				ip.commit()
			}
		}
	})

	ip.opacity = widget.NewSlider(0, 100)
	ip.opacity.SetValue(100)
	ip.opacity.OnChanged = func(val float64) {
		if ip.updating {
			return
		}
		if it := ip.selected(); it != nil {
			if state.Model.SetOpacity(it.ID, val/100.0) == nil {
				ip.canvas.ModelChanged()
			}
		}
	}
	ip.opacity.OnChangeEnded = func(float64) {
		if ip.updating {
			return
		}
		if ip.selected() != nil {
			ip.commit()
		}
	}

	ip.rotation = widget.NewSlider(0, 359)
	ip.rotation.OnChanged = func(val float64) {
		if ip.updating {
			return
		}
		if it := ip.selected(); it != nil {
			if state.Model.Rotate(it.ID, val-it.RotationDegrees) == nil {
				ip.canvas.ModelChanged()
			}
		}
	}
	ip.rotation.OnChangeEnded = func(float64) {
		if ip.updating {
			return
		}
		if ip.selected() != nil {
			ip.commit()
		}
	}

	ip.textCard = widget.NewCard("Text", "", container.NewVBox(
		ip.contentEntry,
		ip.familySelect,
		container.NewHBox(ip.boldCheck, ip.italicCheck),
		container.NewHBox(widget.NewLabel("Size:"), ip.sizeLabel),
		ip.sizeSlider,
	))

	ip.dateCard = widget.NewCard("Date Format", "", ip.dateSelect)

	ip.container = container.NewVScroll(container.NewVBox(
		widget.NewCard("Selection", "", ip.header),
		ip.textCard,
		ip.dateCard,
		widget.NewCard("Appearance", "", container.NewVBox(
			container.NewBorder(nil, nil, widget.NewLabel("Color:"), ip.colorButton, ip.colorEntry),
			widget.NewLabel("Opacity:"),
			ip.opacity,
			widget.NewLabel("Rotation:"),
			ip.rotation,
		)),
	))

	state.On(app.EventModelChanged, func(_ interface{}) { ip.Refresh() })
	state.On(app.EventSessionLoaded, func(_ interface{}) { ip.Refresh() })
	state.On(app.EventSelectionChanged, func(_ interface{}) { ip.Refresh() })

	ip.Refresh()
	return ip
}

// Container returns the panel container.
func (ip *Inspector) Container() fyne.CanvasObject {
	return ip.container
}

// SetWindow sets the parent window for dialogs.
func (ip *Inspector) SetWindow(w fyne.Window) {
	ip.window = w
}

// Refresh pushes the selected item's properties into the widgets.
func (ip *Inspector) Refresh() {
	ip.updating = true
	defer func() { ip.updating = false }()

	it := ip.selected()
	if it == nil {
		ip.header.SetText("No selection")
		ip.textCard.Hide()
		ip.dateCard.Hide()
		ip.contentEntry.SetText("")
		ip.colorEntry.SetText("")
		return
	}

	ip.header.SetText(fmt.Sprintf("%s on page %d\n%.0f x %.0f at (%.0f, %.0f)",
		kindLabel(it.Kind), it.PageIndex+1, it.Width, it.Height, it.X, it.Y))

	if it.Kind.IsText() {
		ip.textCard.Show()
		ip.contentEntry.SetText(it.Content)
		if it.Kind == annotation.KindDateStamp {
			ip.contentEntry.Disable()
		} else {
			ip.contentEntry.Enable()
		}
		ip.familySelect.SetSelected(it.FontFamily)
		ip.boldCheck.SetChecked(it.Bold)
		ip.italicCheck.SetChecked(it.Italic)
		ip.sizeSlider.SetValue(it.FontSize)
		ip.sizeLabel.SetText(fmt.Sprintf("%.0f pt", it.FontSize))
	} else {
		ip.textCard.Hide()
	}

	if it.Kind == annotation.KindDateStamp {
		ip.dateCard.Show()
		ip.dateSelect.SetSelected(it.DateFormat)
	} else {
		ip.dateCard.Hide()
	}

	ip.colorEntry.SetText(it.Color)
	ip.opacity.SetValue(it.Opacity * 100)
	ip.rotation.SetValue(it.RotationDegrees)
}

func (ip *Inspector) selected() *annotation.Item {
	return ip.state.Controller.Selected()
}

// commit records the current model in history after an inspector edit.
func (ip *Inspector) commit() {
	ip.state.History.Commit(ip.state.Model.Snapshot())
	ip.state.SetModified(true)
	ip.canvas.ModelChanged()
}

// commitContent pushes one history entry covering all keystrokes since
// the last commit. Fired on submit and on focus loss.
func (ip *Inspector) commitContent() {
	if !ip.contentDirty {
		return
	}
	ip.contentDirty = false
	ip.commit()
}

func (ip *Inspector) showColorPicker() {
	it := ip.selected()
	if it == nil || ip.window == nil {
		return
	}
	picker := dialog.NewColorPicker("Item Color", "", func(c color.Color) {
		r, g, b, _ := c.RGBA()
		hex := colorutil.FormatHex(color.RGBA{
			R: uint8(r >> 8),
			G: uint8(g >> 8),
			B: uint8(b >> 8),
			A: 0xff,
		})
		if ip.state.Model.SetColor(it.ID, hex) == nil {
			ip.colorEntry.SetText(hex)
			ip.commit()
		}
	}, ip.window)
	picker.Advanced = true
	picker.Show()
}

func kindLabel(k annotation.Kind) string {
	switch k {
	case annotation.KindFreehandImage:
		return "Drawn signature"
	case annotation.KindUploadedImage:
		return "Image"
	case annotation.KindStyledText:
		return "Styled text"
	case annotation.KindPlainText:
		return "Text"
	case annotation.KindDateStamp:
		return "Date stamp"
	case annotation.KindLabelStamp:
		return "Stamp"
	case annotation.KindSymbol:
		return "Symbol"
	}
	return string(k)
}
