// Package console renders chat components and legacy formatted option values
// for terminal output.
package console

import (
	"strings"

	"github.com/gookit/color"
	"go.minekube.com/common/minecraft/component"
	"go.minekube.com/common/minecraft/component/codec/legacy"
)

// Ansi renders the text of a component tree with ANSI colors.
// Children inherit the color of their parent unless they set their own.
func Ansi(c component.Component) string {
	b := new(strings.Builder)
	ansi(c, b, plain)
	return b.String()
}

func plain(s string) string { return s }

func ansi(c component.Component, b *strings.Builder, style func(string) string) {
	t, ok := c.(*component.Text)
	if !ok {
		return
	}
	if t.S.Color != nil {
		r, g, bl, _ := t.S.Color.RGBA()
		rgb := color.RGB(uint8(r>>8), uint8(g>>8), uint8(bl>>8))
		style = func(s string) string { return rgb.Sprint(s) }
	}
	if t.Content != "" {
		b.WriteString(style(t.Content))
	}
	for _, e := range t.Extra {
		ansi(e, b, style)
	}
}

// AnsiFromLegacy converts &-formatted text, as used in prefix and suffix
// options, to ANSI colors.
func AnsiFromLegacy(s string) string {
	b := new(strings.Builder)
	var x bool
	c := plain
	for _, r := range s {
		if r == legacy.DefaultChar && !x {
			x = true
			continue
		}
		if x {
			x = false
			if r == 'r' {
				c = plain
				continue
			}
			wrap := c
			conv := convert(r)
			c = func(s string) string { return wrap(conv.Sprint(s)) }
			continue
		}
		b.WriteString(c(string(r)))
	}
	return b.String()
}

func convert(r rune) color.Color {
	switch r {
	case 'a':
		return color.LightGreen
	case 'b':
		return color.LightBlue
	case 'c':
		return color.LightRed
	case 'd':
		return color.LightMagenta
	case 'e':
		return color.LightYellow
	case 'f':
		return color.LightWhite
	case 'k':
		return color.OpConcealed
	case 'l':
		return color.OpBold
	case 'm':
		return color.OpStrikethrough
	case 'n':
		return color.OpUnderscore
	case 'o':
		return color.OpItalic
	case '0':
		return color.Black
	case '1':
		return color.Blue
	case '2':
		return color.Green
	case '3':
		return color.Cyan
	case '4':
		return color.Red
	case '5':
		return color.Magenta
	case '6':
		return color.Yellow
	case '7':
		return color.White
	case '8':
		return color.Gray
	case '9':
		return color.LightCyan
	default:
		return color.OpReset
	}
}

// Value renders a permission value: granted green, denied red, unset gray.
func Value(v int) string {
	switch {
	case v > 0:
		return color.Green.Sprintf("%d", v)
	case v < 0:
		return color.Red.Sprintf("%d", v)
	}
	return color.Gray.Sprint("0")
}
