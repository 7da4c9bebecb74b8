package x11

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
)

// EWMH state atoms used by client-side decorated windows.
const (
	StateMaximizedVert = "_NET_WM_STATE_MAXIMIZED_VERT"
	StateMaximizedHorz = "_NET_WM_STATE_MAXIMIZED_HORZ"
	StateFullscreen    = "_NET_WM_STATE_FULLSCREEN"
	StateFocused       = "_NET_WM_STATE_FOCUSED"
)

// WM_PROTOCOLS messages understood by decorated windows.
const (
	ProtocolDelete = "WM_DELETE_WINDOW"
	ProtocolPing   = "_NET_WM_PING"
)

// SupportsMoveResize reports whether the window manager advertises
// _NET_WM_MOVERESIZE, which interactive moves and resizes rely on.
func (c *Connection) SupportsMoveResize() bool {
	supported, err := ewmh.SupportedGet(c.XUtil)
	if err != nil {
		return false
	}
	return slices.Contains(supported, "_NET_WM_MOVERESIZE")
}

// ClaimDecorations asks the window manager not to decorate win and
// subscribes it to the close and ping protocols.
func (c *Connection) ClaimDecorations(win xproto.Window) error {
	err := motif.WmHintsSet(c.XUtil, win, &motif.Hints{
		Flags:      motif.HintDecorations,
		Decoration: motif.DecorationNone,
	})
	if err != nil {
		return fmt.Errorf("set motif hints: %w", err)
	}
	if err := icccm.WmProtocolsSet(c.XUtil, win, []string{ProtocolDelete, ProtocolPing}); err != nil {
		return fmt.Errorf("set WM_PROTOCOLS: %w", err)
	}
	return nil
}

// SetTitle sets both the EWMH and the ICCCM window name.
func (c *Connection) SetTitle(win xproto.Window, title string) error {
	if err := ewmh.WmNameSet(c.XUtil, win, title); err != nil {
		return err
	}
	return icccm.WmNameSet(c.XUtil, win, title)
}

// SetClass sets WM_CLASS, which window managers use to group windows.
func (c *Connection) SetClass(win xproto.Window, class string) error {
	return icccm.WmClassSet(c.XUtil, win, &icccm.WmClass{Instance: class, Class: class})
}

// SetSizeHints publishes the size limits of win. A zero dimension leaves
// that limit unset.
func (c *Connection) SetSizeHints(win xproto.Window, minW, minH, maxW, maxH int) error {
	hints := &icccm.NormalHints{}
	if minW > 0 || minH > 0 {
		hints.Flags |= icccm.SizeHintPMinSize
		hints.MinWidth, hints.MinHeight = uint(max(minW, 0)), uint(max(minH, 0))
	}
	if maxW > 0 || maxH > 0 {
		hints.Flags |= icccm.SizeHintPMaxSize
		hints.MaxWidth, hints.MaxHeight = uint(maxW), uint(maxH)
		if maxW <= 0 {
			hints.MaxWidth = 1<<15 - 1
		}
		if maxH <= 0 {
			hints.MaxHeight = 1<<15 - 1
		}
	}
	return icccm.WmNormalHintsSet(c.XUtil, win, hints)
}

// RequestStates asks the window manager to add or remove up to two
// _NET_WM_STATE atoms.
func (c *Connection) RequestStates(win xproto.Window, add bool, first, second string) error {
	action := ewmh.StateRemove
	if add {
		action = ewmh.StateAdd
	}
	return ewmh.WmStateReqExtra(c.XUtil, win, action, first, second, 1)
}

// States returns the current _NET_WM_STATE atoms of win.
func (c *Connection) States(win xproto.Window) ([]string, error) {
	return ewmh.WmStateGet(c.XUtil, win)
}

// IsStateProperty reports whether a property change concerns _NET_WM_STATE.
func (c *Connection) IsStateProperty(atom xproto.Atom) bool {
	name, err := xprop.AtomName(c.XUtil, atom)
	return err == nil && name == "_NET_WM_STATE"
}

// Minimize iconifies a window via WM_CHANGE_STATE.
func (c *Connection) Minimize(win xproto.Window) error {
	changeState, err := xprop.Atm(c.XUtil, "WM_CHANGE_STATE")
	if err != nil {
		return err
	}

	const iconicState = 3
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   changeState,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{iconicState, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// StartMoveResize hands an interactive move or resize over to the window
// manager. direction is one of the ewmh.Size* constants or ewmh.Move.
// The implicit pointer grab of the button press is released first so the
// window manager can take its own.
func (c *Connection) StartMoveResize(win xproto.Window, direction int) error {
	x, y, err := c.PointerPosition()
	if err != nil {
		return fmt.Errorf("query pointer: %w", err)
	}
	xproto.UngrabPointer(c.XUtil.Conn(), xproto.TimeCurrentTime)
	return ewmh.WmMoveresizeExtra(c.XUtil, win, direction, x, y, int(xproto.ButtonIndex1), 1)
}

// FullscreenOn restricts fullscreen to monitor m.
func (c *Connection) FullscreenOn(win xproto.Window, m Monitor) error {
	id := uint(m.ID)
	return ewmh.WmFullscreenMonitorsReq(c.XUtil, win, &ewmh.WmFullscreenMonitors{
		Top: id, Bottom: id, Left: id, Right: id,
	})
}

// Pong answers a _NET_WM_PING for win.
func (c *Connection) Pong(win xproto.Window, timestamp uint32) error {
	return ewmh.WmPingExtra(c.XUtil, win, true, xproto.Timestamp(timestamp))
}

// Protocol decodes a WM_PROTOCOLS client message into the protocol name
// and its timestamp.
func (c *Connection) Protocol(ev xevent.ClientMessageEvent) (name string, timestamp uint32, ok bool) {
	if ev.Format != 32 {
		return "", 0, false
	}
	typeName, err := xprop.AtomName(c.XUtil, ev.Type)
	if err != nil || typeName != "WM_PROTOCOLS" {
		return "", 0, false
	}
	data := ev.Data.Data32
	name, err = xprop.AtomName(c.XUtil, xproto.Atom(data[0]))
	if err != nil {
		return "", 0, false
	}
	return name, data[1], true
}
