package script

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// callable is a function reachable from a routine: either a tier builtin or
// a capability method. Resolution happens against an explicit table; there
// is no path from a routine to arbitrary host symbols.
type callable func(args []any) (any, error)

// interp walks a parsed routine. The wall-clock deadline is checked before
// every statement and every call, so a routine that overruns its budget is
// cut off at the next step regardless of loop structure.
type interp struct {
	sess  *Session
	calls map[string]callable
	env   map[string]any
}

func (it *interp) run(p *program) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: internal fault: %v", ErrScript, r)
		}
	}()

	return it.execBlock(p.stmts)
}

func (it *interp) execBlock(stmts []stmt) error {
	for _, s := range stmts {
		if it.sess.Expired() {
			return ErrTimeout
		}
		if err := it.execStmt(s); err != nil {
			return err
		}
	}

	return nil
}

func (it *interp) execStmt(s stmt) error {
	switch n := s.(type) {
	case *letStmt:
		v, err := it.eval(n.value)
		if err != nil {
			return err
		}
		it.env[n.name] = v

	case *assignStmt:
		if _, ok := it.env[n.name]; !ok {
			return fmt.Errorf("%w: line %d: assignment to undeclared variable %q", ErrScript, n.line, n.name)
		}
		v, err := it.eval(n.value)
		if err != nil {
			return err
		}
		it.env[n.name] = v

	case *exprStmt:
		if _, err := it.eval(n.e); err != nil {
			return err
		}

	case *ifStmt:
		cond, err := it.eval(n.cond)
		if err != nil {
			return err
		}
		if truthy(cond) {
			return it.execBlock(n.then)
		}

		return it.execBlock(n.els)

	case *whileStmt:
		for {
			if it.sess.Expired() {
				return ErrTimeout
			}
			cond, err := it.eval(n.cond)
			if err != nil {
				return err
			}
			if !truthy(cond) {
				return nil
			}
			if err := it.execBlock(n.body); err != nil {
				return err
			}
		}

	case *forStmt:
		from, err := it.evalNum(n.from)
		if err != nil {
			return err
		}
		to, err := it.evalNum(n.to)
		if err != nil {
			return err
		}
		for v := from; v <= to; v++ {
			if it.sess.Expired() {
				return ErrTimeout
			}
			it.env[n.name] = v
			if err := it.execBlock(n.body); err != nil {
				return err
			}
		}

	default:
		return fmt.Errorf("%w: unknown statement %T", ErrScript, s)
	}

	return nil
}

func (it *interp) eval(e expr) (any, error) {
	switch n := e.(type) {
	case *numberLit:
		return n.v, nil
	case *stringLit:
		return n.v, nil
	case *boolLit:
		return n.v, nil

	case *varRef:
		v, ok := it.env[n.name]
		if !ok {
			return nil, fmt.Errorf("%w: line %d: undefined variable %q", ErrScript, n.line, n.name)
		}

		return v, nil

	case *callExpr:
		fn, ok := it.calls[n.name]
		if !ok {
			// Symbol gating runs before execution, so this only triggers for
			// programs executed without validation.
			return nil, fmt.Errorf("%w: symbol %q is not allowed", ErrSecurityViolation, n.name)
		}
		if it.sess.Expired() {
			return nil, ErrTimeout
		}

		args := make([]any, 0, len(n.args))
		for _, a := range n.args {
			v, err := it.eval(a)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}

		out, err := fn(args)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s: %v", errRoot(err), n.line, n.name, errMsg(err))
		}

		return out, nil

	case *binaryExpr:
		return it.evalBinary(n)

	case *unaryExpr:
		v, err := it.eval(n.x)
		if err != nil {
			return nil, err
		}
		switch n.op {
		case tokMinus:
			f, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("%w: line %d: unary minus on non-number", ErrScript, n.line)
			}

			return -f, nil
		case tokNot:
			return !truthy(v), nil
		}

		return nil, fmt.Errorf("%w: line %d: unknown unary operator", ErrScript, n.line)

	case *indexExpr:
		target, err := it.eval(n.target)
		if err != nil {
			return nil, err
		}
		key, err := it.eval(n.key)
		if err != nil {
			return nil, err
		}
		m, ok := target.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: line %d: indexing a non-record value", ErrScript, n.line)
		}
		ks, ok := key.(string)
		if !ok {
			return nil, fmt.Errorf("%w: line %d: record index must be a string", ErrScript, n.line)
		}
		v, ok := m[ks]
		if !ok {
			return nil, fmt.Errorf("%w: line %d: record has no field %q", ErrScript, n.line, ks)
		}

		return v, nil
	}

	return nil, fmt.Errorf("%w: unknown expression %T", ErrScript, e)
}

func (it *interp) evalNum(e expr) (float64, error) {
	v, err := it.eval(e)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: line %d: expected a number", ErrScript, e.exprLine())
	}

	return f, nil
}

func (it *interp) evalBinary(n *binaryExpr) (any, error) {
	// Short-circuit logic operators.
	if n.op == tokAnd || n.op == tokOr {
		lhs, err := it.eval(n.lhs)
		if err != nil {
			return nil, err
		}
		if n.op == tokAnd && !truthy(lhs) {
			return false, nil
		}
		if n.op == tokOr && truthy(lhs) {
			return true, nil
		}
		rhs, err := it.eval(n.rhs)
		if err != nil {
			return nil, err
		}

		return truthy(rhs), nil
	}

	lhs, err := it.eval(n.lhs)
	if err != nil {
		return nil, err
	}
	rhs, err := it.eval(n.rhs)
	if err != nil {
		return nil, err
	}

	lf, lNum := lhs.(float64)
	rf, rNum := rhs.(float64)

	switch n.op {
	case tokPlus:
		if lNum && rNum {
			return lf + rf, nil
		}
		// String concatenation; numbers are formatted compactly.
		ls, lStr := lhs.(string)
		rs, rStr := rhs.(string)
		if lStr || rStr {
			if !lStr {
				ls = format(lhs)
			}
			if !rStr {
				rs = format(rhs)
			}

			return ls + rs, nil
		}

		return nil, fmt.Errorf("%w: line %d: invalid operands for +", ErrScript, n.line)

	case tokMinus, tokStar, tokSlash, tokPercent:
		if !lNum || !rNum {
			return nil, fmt.Errorf("%w: line %d: arithmetic on non-numbers", ErrScript, n.line)
		}
		switch n.op {
		case tokMinus:
			return lf - rf, nil
		case tokStar:
			return lf * rf, nil
		case tokSlash:
			if rf == 0 {
				return nil, fmt.Errorf("%w: line %d: division by zero", ErrScript, n.line)
			}

			return lf / rf, nil
		default:
			if rf == 0 {
				return nil, fmt.Errorf("%w: line %d: modulo by zero", ErrScript, n.line)
			}

			return math.Mod(lf, rf), nil
		}

	case tokEq:
		return lhs == rhs, nil
	case tokNe:
		return lhs != rhs, nil

	case tokLt, tokLe, tokGt, tokGe:
		if lNum && rNum {
			switch n.op {
			case tokLt:
				return lf < rf, nil
			case tokLe:
				return lf <= rf, nil
			case tokGt:
				return lf > rf, nil
			default:
				return lf >= rf, nil
			}
		}

		return nil, fmt.Errorf("%w: line %d: ordered comparison on non-numbers", ErrScript, n.line)
	}

	return nil, fmt.Errorf("%w: line %d: unknown operator", ErrScript, n.line)
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case map[string]any:
		return len(x) > 0
	default:
		return v != nil
	}
}

// format renders a value for string concatenation and log lines.
func format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		if x {
			return "true"
		}

		return "false"
	case nil:
		return "none"
	default:
		return fmt.Sprintf("%v", x)
	}
}

// errRoot preserves the sandbox error class when wrapping call failures with
// source position context.
func errRoot(err error) error {
	switch {
	case errors.Is(err, ErrTimeout):
		return ErrTimeout
	case errors.Is(err, ErrSecurityViolation):
		return ErrSecurityViolation
	default:
		return ErrScript
	}
}

func errMsg(err error) string {
	return err.Error()
}
