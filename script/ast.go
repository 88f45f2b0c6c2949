package script

// program is a parsed routine: an ordered statement list.
type program struct {
	stmts []stmt
}

type stmt interface {
	stmtLine() int
}

type letStmt struct {
	line  int
	name  string
	value expr
}

type assignStmt struct {
	line  int
	name  string
	value expr
}

type exprStmt struct {
	line int
	e    expr
}

type ifStmt struct {
	line int
	cond expr
	then []stmt
	els  []stmt
}

type whileStmt struct {
	line int
	cond expr
	body []stmt
}

type forStmt struct {
	line int
	name string
	from expr
	to   expr
	body []stmt
}

func (s *letStmt) stmtLine() int    { return s.line }
func (s *assignStmt) stmtLine() int { return s.line }
func (s *exprStmt) stmtLine() int   { return s.line }
func (s *ifStmt) stmtLine() int     { return s.line }
func (s *whileStmt) stmtLine() int  { return s.line }
func (s *forStmt) stmtLine() int    { return s.line }

type expr interface {
	exprLine() int
}

type numberLit struct {
	line int
	v    float64
}

type stringLit struct {
	line int
	v    string
}

type boolLit struct {
	line int
	v    bool
}

type varRef struct {
	line int
	name string
}

type callExpr struct {
	line int
	name string
	args []expr
}

type binaryExpr struct {
	line int
	op   tokenKind
	lhs  expr
	rhs  expr
}

type unaryExpr struct {
	line int
	op   tokenKind
	x    expr
}

type indexExpr struct {
	line   int
	target expr
	key    expr
}

func (e *numberLit) exprLine() int  { return e.line }
func (e *stringLit) exprLine() int  { return e.line }
func (e *boolLit) exprLine() int    { return e.line }
func (e *varRef) exprLine() int     { return e.line }
func (e *callExpr) exprLine() int   { return e.line }
func (e *binaryExpr) exprLine() int { return e.line }
func (e *unaryExpr) exprLine() int  { return e.line }
func (e *indexExpr) exprLine() int  { return e.line }

// callNames walks the program and collects every function symbol it
// references, in source order. Symbol gating runs over this set before any
// statement executes.
func (p *program) callNames() []string {
	var names []string
	seen := map[string]bool{}

	var walkExpr func(e expr)
	var walkStmts func(ss []stmt)

	walkExpr = func(e expr) {
		switch n := e.(type) {
		case *callExpr:
			if !seen[n.name] {
				seen[n.name] = true
				names = append(names, n.name)
			}
			for _, a := range n.args {
				walkExpr(a)
			}
		case *binaryExpr:
			walkExpr(n.lhs)
			walkExpr(n.rhs)
		case *unaryExpr:
			walkExpr(n.x)
		case *indexExpr:
			walkExpr(n.target)
			walkExpr(n.key)
		}
	}

	walkStmts = func(ss []stmt) {
		for _, s := range ss {
			switch n := s.(type) {
			case *letStmt:
				walkExpr(n.value)
			case *assignStmt:
				walkExpr(n.value)
			case *exprStmt:
				walkExpr(n.e)
			case *ifStmt:
				walkExpr(n.cond)
				walkStmts(n.then)
				walkStmts(n.els)
			case *whileStmt:
				walkExpr(n.cond)
				walkStmts(n.body)
			case *forStmt:
				walkExpr(n.from)
				walkExpr(n.to)
				walkStmts(n.body)
			}
		}
	}

	walkStmts(p.stmts)

	return names
}
