// Package ui draws the home, game and game-over screens with raylib and raygui.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	SkyTop       rl.Color
	SkyBottom    rl.Color
	PanelBg      rl.Color
	PanelBorder  rl.Color
	Title        rl.Color
	LabelColor   rl.Color
	ValueColor   rl.Color
	Accent       rl.Color
	Player       rl.Color
	PlayerShade  rl.Color
	Hazard       rl.Color
	HazardShade  rl.Color
	Coin         rl.Color
	CoinShade    rl.Color
	LifeOn       rl.Color
	LifeOff      rl.Color
	ToastBg      rl.Color
	ToastError   rl.Color
	Padding      int32
	LineHeight   int32
	FontSize     int32
	TitleSize    int32
	HeadlineSize int32
	ButtonHeight float32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		SkyTop:       rl.Color{R: 135, G: 206, B: 235, A: 255},
		SkyBottom:    rl.Color{R: 224, G: 246, B: 255, A: 255},
		PanelBg:      rl.Color{R: 255, G: 255, B: 255, A: 220},
		PanelBorder:  rl.Color{R: 120, G: 90, B: 60, A: 255},
		Title:        rl.Color{R: 101, G: 67, B: 33, A: 255},
		LabelColor:   rl.Color{R: 90, G: 90, B: 90, A: 255},
		ValueColor:   rl.Color{R: 30, G: 30, B: 30, A: 255},
		Accent:       rl.Color{R: 255, G: 140, B: 0, A: 255},
		Player:       rl.Color{R: 65, G: 105, B: 225, A: 255},
		PlayerShade:  rl.Color{R: 40, G: 70, B: 160, A: 255},
		Hazard:       rl.Color{R: 121, G: 85, B: 61, A: 255},
		HazardShade:  rl.Color{R: 84, G: 56, B: 38, A: 255},
		Coin:         rl.Color{R: 255, G: 215, B: 0, A: 255},
		CoinShade:    rl.Color{R: 218, G: 165, B: 32, A: 255},
		LifeOn:       rl.Color{R: 230, G: 57, B: 70, A: 255},
		LifeOff:      rl.Color{R: 200, G: 200, B: 200, A: 255},
		ToastBg:      rl.Color{R: 33, G: 37, B: 41, A: 235},
		ToastError:   rl.Color{R: 176, G: 42, B: 55, A: 235},
		Padding:      12,
		LineHeight:   22,
		FontSize:     18,
		TitleSize:    44,
		HeadlineSize: 28,
		ButtonHeight: 44,
	}
}
