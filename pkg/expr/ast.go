package expr

// Node is a parsed expression.
type Node interface{ node() }

type (
	// Literal is a number, string, boolean or null/undefined (nil).
	Literal struct{ Value any }

	// Ident is a bare identifier resolved against the scope.
	Ident struct{ Name string }

	// Member is obj.name, obj[expr] or obj?.name.
	Member struct {
		Object   Node
		Property Node // Literal string for dot access
		Computed bool
		Optional bool
	}

	Call struct {
		Callee Node
		Args   []Node
	}

	Unary struct {
		Op      string
		Operand Node
	}

	Binary struct {
		Op          string
		Left, Right Node
	}

	// Logical covers the short-circuit operators &&, || and ??.
	Logical struct {
		Op          string
		Left, Right Node
	}

	Conditional struct {
		Test, Then, Else Node
	}

	Assign struct {
		Op     string // "=", "+=", ...
		Target Node
		Value  Node
	}

	// Update is ++ or -- in prefix or postfix position.
	Update struct {
		Op     string
		Prefix bool
		Target Node
	}

	ArrayLit struct{ Elems []Node }

	ObjectLit struct {
		Keys   []string
		Values []Node
	}

	// Sequence evaluates each expression and yields the last.
	Sequence struct{ Exprs []Node }
)

func (*Literal) node()     {}
func (*Ident) node()       {}
func (*Member) node()      {}
func (*Call) node()        {}
func (*Unary) node()       {}
func (*Binary) node()      {}
func (*Logical) node()     {}
func (*Conditional) node() {}
func (*Assign) node()      {}
func (*Update) node()      {}
func (*ArrayLit) node()    {}
func (*ObjectLit) node()   {}
func (*Sequence) node()    {}
