package ui

import "github.com/gdamore/tcell/v2"

// theme holds the styles for one colour scheme
type theme struct {
	base      tcell.Style
	title     tcell.Style
	dim       tcell.Style
	selected  tcell.Style
	banner    tcell.Style
	white     tcell.Style
	black     tcell.Style
	pressed   tcell.Style
	correct   tcell.Style
	incorrect tcell.Style
	expected  tcell.Style
	border    tcell.Style
}

func darkTheme() theme {
	base := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	return theme{
		base:      base,
		title:     base.Foreground(tcell.ColorGold).Bold(true),
		dim:       base.Foreground(tcell.ColorGray),
		selected:  base.Foreground(tcell.ColorBlack).Background(tcell.ColorLightSkyBlue),
		banner:    base.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkRed),
		white:     tcell.StyleDefault.Background(tcell.ColorWhiteSmoke).Foreground(tcell.ColorBlack),
		black:     tcell.StyleDefault.Background(tcell.ColorDarkSlateGray).Foreground(tcell.ColorWhite),
		pressed:   tcell.StyleDefault.Background(tcell.ColorLightSkyBlue).Foreground(tcell.ColorBlack),
		correct:   tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack),
		incorrect: tcell.StyleDefault.Background(tcell.ColorRed).Foreground(tcell.ColorWhite),
		expected:  tcell.StyleDefault.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack),
		border:    tcell.StyleDefault.Background(tcell.ColorGray).Foreground(tcell.ColorBlack),
	}
}

func lightTheme() theme {
	t := darkTheme()
	base := tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack)
	t.base = base
	t.title = base.Foreground(tcell.ColorNavy).Bold(true)
	t.dim = base.Foreground(tcell.ColorGray)
	t.selected = base.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	t.white = tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack)
	t.black = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	return t
}
