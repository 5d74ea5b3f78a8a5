package console

import (
	"testing"

	"github.com/gookit/color"
	"github.com/stretchr/testify/assert"
	mcolor "go.minekube.com/common/minecraft/color"
	"go.minekube.com/common/minecraft/component"
)

func TestAnsi(t *testing.T) {
	c := &component.Text{Content: "Data of ", S: component.Style{Color: mcolor.Yellow}, Extra: []component.Component{
		&component.Text{Content: "user:alice"},
		&component.Text{Content: " [world=world]", S: component.Style{Color: mcolor.Aqua}},
	}}
	assert.Equal(t, "Data of user:alice [world=world]", color.ClearCode(Ansi(c)))
	assert.Empty(t, Ansi(nil))
}

func TestAnsiFromLegacy(t *testing.T) {
	assert.Equal(t, "[Admin] ", color.ClearCode(AnsiFromLegacy("&c[Admin]&r ")))
	assert.Equal(t, "plain", AnsiFromLegacy("plain"))
}

func TestValue(t *testing.T) {
	assert.Equal(t, "1", color.ClearCode(Value(1)))
	assert.Equal(t, "-1", color.ClearCode(Value(-1)))
	assert.Equal(t, "0", color.ClearCode(Value(0)))
}
