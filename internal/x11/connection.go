package x11

import (
	"context"
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Connection manages the X11 connection and its event loop.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	// wake is a hidden window used to interrupt a blocked event read.
	wake *xwindow.Window

	mu     sync.Mutex
	posted []func()
	signal chan struct{}
}

// NewConnection establishes a connection to the X11 server.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	wake, err := xwindow.Generate(xu)
	if err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("generate wakeup window: %w", err)
	}
	if err := wake.CreateChecked(xu.RootWin(), -1, -1, 1, 1, 0); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("create wakeup window: %w", err)
	}

	return &Connection{
		XUtil:  xu,
		Root:   xu.RootWin(),
		wake:   wake,
		signal: make(chan struct{}, 1),
	}, nil
}

// Post queues fn to run on the event loop goroutine. Work posted from an
// event callback runs after that callback returns.
func (c *Connection) Post(fn func()) {
	c.mu.Lock()
	c.posted = append(c.posted, fn)
	c.mu.Unlock()

	select {
	case c.signal <- struct{}{}:
	default:
	}
}

func (c *Connection) runPosted() {
	for {
		c.mu.Lock()
		fns := c.posted
		c.posted = nil
		c.mu.Unlock()
		if len(fns) == 0 {
			return
		}
		for _, fn := range fns {
			fn()
		}
	}
}

// Run dispatches X events to the callbacks connected through xevent and
// runs posted work in between, until ctx is done or Quit is called. Only
// one Run may be active per connection.
func (c *Connection) Run(ctx context.Context) error {
	before, after, quit := xevent.MainPing(c.XUtil)
	c.runPosted()
	for {
		select {
		case <-before:
			<-after
			c.runPosted()
		case <-c.signal:
			c.runPosted()
		case <-quit:
			return nil
		case <-ctx.Done():
			c.Quit()
			for {
				select {
				case <-before:
					<-after
				case <-quit:
					return ctx.Err()
				}
			}
		}
	}
}

// Quit stops Run.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
	c.nudge()
}

// nudge sends a client message to the wakeup window so the event reader
// returns from its blocking read.
func (c *Connection) nudge() {
	atom, err := xprop.Atm(c.XUtil, "_CSDFRAME_WAKEUP")
	if err != nil {
		return
	}
	ev, err := xevent.NewClientMessage(32, c.wake.Id, atom, 0)
	if err != nil {
		return
	}
	xproto.SendEvent(c.XUtil.Conn(), false, c.wake.Id, xproto.EventMaskNoEvent, string(ev.Bytes()))
}

// Close cleanly disconnects from the X11 server. Run must have returned.
func (c *Connection) Close() {
	c.wake.Destroy()
	c.XUtil.Conn().Close()
}
