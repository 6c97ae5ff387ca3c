package expr

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/legodom/lego/pkg/reactive"
)

var (
	// ErrType reports an operation applied to a value of the wrong type.
	ErrType = errors.New("expr: type error")

	// ErrRange reports an argument outside its accepted range.
	ErrRange = errors.New("expr: range error")

	// ErrAssign reports an assignment the scope refused.
	ErrAssign = errors.New("expr: invalid assignment")
)

// Run evaluates a parsed expression against scope.
func Run(n Node, scope Scope) (any, error) {
	return (&evaluator{scope: scope}).eval(n)
}

type evaluator struct {
	scope Scope
}

func (e *evaluator) eval(n Node) (any, error) {
	switch n := n.(type) {
	case *Literal:
		return n.Value, nil

	case *Ident:
		v, _ := e.scope.Lookup(n.Name)
		return Normalize(v), nil

	case *Member:
		obj, err := e.eval(n.Object)
		if err != nil {
			return nil, err
		}
		if obj == nil && n.Optional {
			return nil, nil
		}
		key, err := e.eval(n.Property)
		if err != nil {
			return nil, err
		}
		v, err := member(obj, key)
		return Normalize(v), err

	case *Call:
		return e.call(n)

	case *Unary:
		v, err := e.eval(n.Operand)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case "!":
			return !Truthy(v), nil
		case "-":
			return -ToNumber(v), nil
		case "+":
			return ToNumber(v), nil
		case "typeof":
			return typeOf(v), nil
		}
		return nil, fmt.Errorf("%w: unknown unary operator %s", ErrType, n.Op)

	case *Binary:
		l, err := e.eval(n.Left)
		if err != nil {
			return nil, err
		}
		r, err := e.eval(n.Right)
		if err != nil {
			return nil, err
		}
		return binary(n.Op, l, r)

	case *Logical:
		l, err := e.eval(n.Left)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case "&&":
			if !Truthy(l) {
				return l, nil
			}
		case "||":
			if Truthy(l) {
				return l, nil
			}
		case "??":
			if l != nil {
				return l, nil
			}
		}
		return e.eval(n.Right)

	case *Conditional:
		t, err := e.eval(n.Test)
		if err != nil {
			return nil, err
		}
		if Truthy(t) {
			return e.eval(n.Then)
		}
		return e.eval(n.Else)

	case *Assign:
		v, err := e.eval(n.Value)
		if err != nil {
			return nil, err
		}
		if n.Op != "=" {
			old, err := e.eval(n.Target)
			if err != nil {
				return nil, err
			}
			if v, err = binary(strings.TrimSuffix(n.Op, "="), old, v); err != nil {
				return nil, err
			}
		}
		return v, e.assign(n.Target, v)

	case *Update:
		old, err := e.eval(n.Target)
		if err != nil {
			return nil, err
		}
		before := ToNumber(old)
		after := before + 1
		if n.Op == "--" {
			after = before - 1
		}
		if err := e.assign(n.Target, after); err != nil {
			return nil, err
		}
		if n.Prefix {
			return after, nil
		}
		return before, nil

	case *ArrayLit:
		out := make([]any, len(n.Elems))
		for i, el := range n.Elems {
			v, err := e.eval(el)
			if err != nil {
				return nil, err
			}
			out[i] = reactive.Unwrap(v)
		}
		return out, nil

	case *ObjectLit:
		out := make(map[string]any, len(n.Keys))
		for i, k := range n.Keys {
			v, err := e.eval(n.Values[i])
			if err != nil {
				return nil, err
			}
			out[k] = reactive.Unwrap(v)
		}
		return out, nil

	case *Sequence:
		var last any
		for _, x := range n.Exprs {
			v, err := e.eval(x)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil
	}
	return nil, fmt.Errorf("%w: unsupported node %T", ErrType, n)
}

func (e *evaluator) call(n *Call) (any, error) {
	var fn, this any
	switch c := n.Callee.(type) {
	case *Member:
		obj, err := e.eval(c.Object)
		if err != nil {
			return nil, err
		}
		if obj == nil && c.Optional {
			return nil, nil
		}
		key, err := e.eval(c.Property)
		if err != nil {
			return nil, err
		}
		if fn, err = member(obj, key); err != nil {
			return nil, err
		}
		if fn == nil {
			return nil, fmt.Errorf("%w: %s is not a function", ErrType, ToString(key))
		}
		this = obj
	default:
		var err error
		if fn, err = e.eval(c); err != nil {
			return nil, err
		}
		if fn == nil {
			if id, ok := c.(*Ident); ok {
				return nil, fmt.Errorf("%w: %s is not a function", ErrType, id.Name)
			}
		}
		this, _ = e.scope.Lookup("this")
	}

	args := make([]any, len(n.Args))
	for i, a := range n.Args {
		v, err := e.eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	v, err := call(fn, this, args)
	return Normalize(v), err
}

func (e *evaluator) assign(target Node, v any) error {
	switch t := target.(type) {
	case *Ident:
		if !e.scope.Assign(t.Name, v) {
			return fmt.Errorf("%w: %s is read-only", ErrAssign, t.Name)
		}
		return nil
	case *Member:
		obj, err := e.eval(t.Object)
		if err != nil {
			return err
		}
		key, err := e.eval(t.Property)
		if err != nil {
			return err
		}
		return setMember(obj, key, v)
	}
	return ErrAssign
}

func binary(op string, l, r any) (any, error) {
	switch op {
	case "+":
		if isPrimitiveNumber(l) && isPrimitiveNumber(r) {
			return ToNumber(l) + ToNumber(r), nil
		}
		return ToString(l) + ToString(r), nil
	case "-":
		return ToNumber(l) - ToNumber(r), nil
	case "*":
		return ToNumber(l) * ToNumber(r), nil
	case "/":
		return ToNumber(l) / ToNumber(r), nil
	case "%":
		return math.Mod(ToNumber(l), ToNumber(r)), nil
	case "==":
		return looseEqual(l, r), nil
	case "!=":
		return !looseEqual(l, r), nil
	case "===":
		return strictEqual(l, r), nil
	case "!==":
		return !strictEqual(l, r), nil
	case "<", "<=", ">", ">=":
		return compare(op, l, r), nil
	}
	return nil, fmt.Errorf("%w: unknown operator %s", ErrType, op)
}

// isPrimitiveNumber reports whether v takes part in numeric addition.
func isPrimitiveNumber(v any) bool {
	switch v.(type) {
	case float64, bool, nil:
		return true
	}
	_, ok := numeric(v)
	return ok
}

func compare(op string, l, r any) bool {
	ls, lok := l.(string)
	rs, rok := r.(string)
	if lok && rok {
		c := strings.Compare(ls, rs)
		switch op {
		case "<":
			return c < 0
		case "<=":
			return c <= 0
		case ">":
			return c > 0
		}
		return c >= 0
	}
	a, b := ToNumber(l), ToNumber(r)
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	}
	return a >= b
}
