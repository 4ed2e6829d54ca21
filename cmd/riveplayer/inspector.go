package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

// inspectorLines describes what each sprite's file offers.
func inspectorLines(entries []*entry) []string {
	var lines []string
	for _, e := range entries {
		s := e.sprite
		if err := s.Err(); err != nil {
			lines = append(lines, fmt.Sprintf("%s: %v", e.spec.Name, err))
			continue
		}
		if s.File() == nil {
			lines = append(lines, fmt.Sprintf("%s: loading", e.spec.Name))
			continue
		}
		lines = append(lines,
			fmt.Sprintf("%s: %s", e.spec.Name, s.ArtboardName()),
			"  artboards: "+list(s.AvailableArtboards()),
			"  state machines: "+list(s.AvailableStateMachines()),
			"  animations: "+list(s.AvailableAnimations()),
		)
	}
	return lines
}

func list(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}

// NewInspectorUI builds a panel in the top right corner listing lines. It
// uses the built-in basic font so no theme fonts are needed.
func NewInspectorUI(lines []string) *ebitenui.UI {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{A: 200})

	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	textColor := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(4),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 10, Bottom: 10, Left: 12, Right: 12}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionEnd,
				VerticalPosition:   widget.AnchorLayoutPositionStart,
			}),
		),
	)
	if len(lines) == 0 {
		lines = []string{"no sprites"}
	}
	for _, l := range lines {
		panel.AddChild(widget.NewText(widget.TextOpts.Text(l, &face, textColor)))
	}

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	return &ebitenui.UI{Container: root}
}
