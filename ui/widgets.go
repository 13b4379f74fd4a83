package ui

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rect := rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(width), Height: float32(height)}
	rl.DrawRectangleRounded(rect, 0.12, 8, r.Theme.PanelBg)
	rl.DrawRectangleRoundedLines(rect, 0.12, 8, r.Theme.PanelBorder)
}

// DrawCentered draws text horizontally centered on screenW and returns the next Y.
func (r *Renderer) DrawCentered(text string, screenW, y, size int32, color rl.Color) int32 {
	w := rl.MeasureText(text, size)
	rl.DrawText(text, (screenW-w)/2, y, size, color)
	return y + size + size/3
}

// DrawLabelValue draws "label" left and value right inside width, returning the next Y.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string, width int32) int32 {
	rl.DrawText(label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
	vw := rl.MeasureText(value, r.Theme.FontSize)
	rl.DrawText(value, x+width-vw, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// Button draws a raygui button centered on screenW and reports a click.
// Disabled buttons are drawn greyed out and never report clicks.
func (r *Renderer) Button(text string, screenW int32, y, width float32, enabled bool) bool {
	bounds := rl.Rectangle{
		X:      (float32(screenW) - width) / 2,
		Y:      y,
		Width:  width,
		Height: r.Theme.ButtonHeight,
	}
	if !enabled {
		gui.Disable()
		gui.Button(bounds, text)
		gui.Enable()
		return false
	}
	return gui.Button(bounds, text)
}
