package component

import (
	"maps"

	"github.com/legodom/lego/internal/errors"
	"github.com/legodom/lego/pkg/dom"
	"github.com/legodom/lego/pkg/expr"
	"github.com/legodom/lego/pkg/reactive"
)

// AttrData holds instance-level state on a component element.
const AttrData = "b-data"

// initialState merges the three state tiers in increasing precedence:
// script defaults, the template's b-data and the element's b-data. Methods
// are bound to self, which the caller sets once the state is wrapped. A
// tier that fails to parse is skipped.
func (m *Manager) initialState(def *Definition, el *dom.Node, self **reactive.Object) map[string]any {
	state, _ := reactive.Clone(def.Script.Data).(map[string]any)
	if state == nil {
		state = make(map[string]any)
	}
	for name, fn := range def.Script.Methods {
		state[name] = expr.Func(func(_ any, args ...any) (any, error) {
			return fn(*self, args...)
		})
	}
	maps.Copy(state, m.literal(def.Data, def.Tag, "template"))
	maps.Copy(state, m.literal(el.Attr(AttrData), def.Tag, "instance"))
	return state
}

func (m *Manager) literal(src, tag, tier string) map[string]any {
	data, err := expr.ParseData(src)
	if err != nil {
		m.logger.Warn("malformed state literal",
			"tag", tag,
			"tier", tier,
			"error", errors.New("L003").Wrap(err))
		return nil
	}
	return data
}
