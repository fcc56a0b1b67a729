package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"
)

func TestTranslate(t *testing.T) {
	in := New()

	in.translate(&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: sdl.K_w}})
	in.translate(&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1, Keysym: sdl.Keysym{Sym: sdl.K_w}})
	in.translate(&sdl.MouseMotionEvent{XRel: 5, YRel: 5})
	in.translate(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_LEFT})
	in.translate(&sdl.MouseMotionEvent{XRel: 3, YRel: -2})
	in.translate(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, Button: sdl.BUTTON_LEFT})
	in.translate(&sdl.MouseMotionEvent{XRel: 9, YRel: 9})
	in.translate(&sdl.MouseWheelEvent{Y: -1})
	in.translate(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_RESIZED, Data1: 640, Data2: 480})

	assert.Equal(t, []Event{
		{Type: EventKeyDown, Key: sdl.K_w},
		{Type: EventDrag, DX: 3, DY: -2},
		{Type: EventWheel, DY: -1},
		{Type: EventWindowResize, Width: 640, Height: 480},
	}, in.Events())

	assert.True(t, in.IsKeyPressed(sdl.K_w))
	assert.False(t, in.IsKeyPressed(sdl.K_s))
	assert.True(t, in.translate(&sdl.QuitEvent{}))
}
