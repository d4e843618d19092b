package oleauto

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// Op is the kind of IDispatch invocation a Step performs.
type Op int

const (
	OpGet Op = iota
	OpCall
)

// Arg is a step argument: either a literal or a reference to a variable
// bound when the path is walked.
type Arg struct {
	Var   string
	Value any
}

// Step is one member access along a Path.
type Step struct {
	Op     Op
	Member string
	Args   []Arg
}

// Vars binds the variables referenced by a Path.
type Vars map[string]any

// bind resolves the step's arguments against vars.
func (s Step) bind(vars Vars) ([]any, error) {
	if len(s.Args) == 0 {
		return nil, nil
	}
	out := make([]any, len(s.Args))
	for i, a := range s.Args {
		if a.Var == "" {
			out[i] = a.Value
			continue
		}
		v, ok := vars[a.Var]
		if !ok {
			return nil, fmt.Errorf("%s: unbound variable %q", s.Member, a.Var)
		}
		out[i] = v
	}
	return out, nil
}

// Path is a compiled member path such as "Workbooks.Open(path)" or
// "UsedRange.Rows.Count". Property access compiles to a get, a call
// expression to a method invocation. Bare identifiers in argument position
// are variables.
type Path struct {
	src   string
	steps []Step
}

// Compile parses src into a Path.
func Compile(src string) (Path, error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return Path{}, err
	}
	var steps []Step
	if err := compile(tree.Node, &steps); err != nil {
		return Path{}, fmt.Errorf("%s: %w", src, err)
	}
	return Path{src: src, steps: steps}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string) Path {
	p, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Path) String() string { return p.src }

// Steps returns the compiled steps in invocation order.
func (p Path) Steps() []Step { return p.steps }

func compile(node ast.Node, steps *[]Step) error {
	switch n := node.(type) {
	case *ast.IdentifierNode:
		*steps = append(*steps, Step{Op: OpGet, Member: n.Value})
		return nil

	case *ast.MemberNode:
		if err := compile(n.Node, steps); err != nil {
			return err
		}
		name, err := memberName(n.Property)
		if err != nil {
			return err
		}
		*steps = append(*steps, Step{Op: OpGet, Member: name})
		return nil

	case *ast.CallNode:
		args := make([]Arg, len(n.Arguments))
		for i, a := range n.Arguments {
			arg, err := argument(a)
			if err != nil {
				return fmt.Errorf("argument %d: %w", i, err)
			}
			args[i] = arg
		}
		switch callee := n.Callee.(type) {
		case *ast.IdentifierNode:
			*steps = append(*steps, Step{Op: OpCall, Member: callee.Value, Args: args})
			return nil
		case *ast.MemberNode:
			if err := compile(callee.Node, steps); err != nil {
				return err
			}
			name, err := memberName(callee.Property)
			if err != nil {
				return err
			}
			*steps = append(*steps, Step{Op: OpCall, Member: name, Args: args})
			return nil
		default:
			return fmt.Errorf("unsupported call on %T", callee)
		}

	default:
		return fmt.Errorf("unsupported node %T", n)
	}
}

// memberName accepts only dotted access; computed members have no
// IDispatch equivalent.
func memberName(node ast.Node) (string, error) {
	s, ok := node.(*ast.StringNode)
	if !ok || strings.TrimSpace(s.Value) == "" {
		return "", fmt.Errorf("unsupported member %T", node)
	}
	return s.Value, nil
}

func argument(node ast.Node) (Arg, error) {
	switch n := node.(type) {
	case *ast.IdentifierNode:
		return Arg{Var: n.Value}, nil
	case *ast.IntegerNode:
		return Arg{Value: n.Value}, nil
	case *ast.FloatNode:
		return Arg{Value: n.Value}, nil
	case *ast.StringNode:
		return Arg{Value: n.Value}, nil
	case *ast.BoolNode:
		return Arg{Value: n.Value}, nil
	case *ast.NilNode:
		return Arg{}, nil
	case *ast.UnaryNode:
		if n.Operator == "-" {
			switch v := n.Node.(type) {
			case *ast.IntegerNode:
				return Arg{Value: -v.Value}, nil
			case *ast.FloatNode:
				return Arg{Value: -v.Value}, nil
			}
		}
		return Arg{}, fmt.Errorf("unsupported unary %q", n.Operator)
	default:
		return Arg{}, fmt.Errorf("unsupported argument %T", n)
	}
}
