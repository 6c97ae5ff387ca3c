package live

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/legodom/lego/pkg/dom"
)

// Message types.
const (
	TypeHello    = "hello"
	TypeHTML     = "html"
	TypeError    = "error"
	TypeEvent    = "event"
	TypeNavigate = "navigate"
	TypeBack     = "back"
	TypeForward  = "forward"
)

// ShadowStep is the path entry that steps into a shadow root.
const ShadowStep = "s"

// ErrBadPath is returned when a path does not locate an element.
var ErrBadPath = errors.New("live: path does not locate an element")

// ClientMessage is sent by the browser.
type ClientMessage struct {
	Type  string   `json:"type"`
	Event string   `json:"event,omitempty"`
	Path  []string `json:"path,omitempty"`
	Value string   `json:"value,omitempty"`
	URL   string   `json:"url,omitempty"`
}

// ServerMessage is sent to the browser.
type ServerMessage struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`
	HTML    string `json:"html,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Resolve follows path from root.
func Resolve(root *dom.Node, path []string) (*dom.Node, error) {
	cur := root
	for i, step := range path {
		if step == ShadowStep {
			sh := cur.ShadowRoot()
			if sh == nil {
				return nil, fmt.Errorf("%w: step %d: no shadow root", ErrBadPath, i)
			}
			cur = sh
			continue
		}
		idx, err := strconv.Atoi(step)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d: %q", ErrBadPath, i, step)
		}
		kids := cur.ElementChildren()
		if idx < 0 || idx >= len(kids) {
			return nil, fmt.Errorf("%w: step %d: index %d of %d", ErrBadPath, i, idx, len(kids))
		}
		cur = kids[idx]
	}
	if cur.Type != dom.ElementNode {
		return nil, fmt.Errorf("%w: path ends on a shadow root", ErrBadPath)
	}
	return cur, nil
}

// Path returns the path of el from root, the inverse of Resolve.
func Path(root, el *dom.Node) ([]string, bool) {
	var rev []string
	cur := el
	for cur != root {
		parent := cur.Parent()
		if parent == nil {
			return nil, false
		}
		idx := -1
		for i, k := range parent.ElementChildren() {
			if k == cur {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, false
		}
		rev = append(rev, strconv.Itoa(idx))
		if parent.IsShadowRoot() {
			rev = append(rev, ShadowStep)
			parent = parent.Host()
		}
		cur = parent
	}
	out := make([]string, len(rev))
	for i, s := range rev {
		out[len(rev)-1-i] = s
	}
	return out, true
}
