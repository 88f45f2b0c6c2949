package script

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// builtinTable returns the pure builtin functions reachable at the given
// tier. Restricted carries only a minimal arithmetic/string vocabulary;
// Trusted and Developer add pure numeric utilities. Nothing here touches the
// filesystem, the network, or the instrument.
func builtinTable(tier Tier) map[string]callable {
	table := map[string]callable{
		"abs": numeric1("abs", math.Abs),
		"min": numeric2("min", math.Min),
		"max": numeric2("max", math.Max),
		"len": func(args []any) (any, error) {
			if err := arity("len", args, 1); err != nil {
				return nil, err
			}
			switch x := args[0].(type) {
			case string:
				return float64(len(x)), nil
			case map[string]any:
				return float64(len(x)), nil
			default:
				return nil, fmt.Errorf("len of non-string value")
			}
		},
		"str": func(args []any) (any, error) {
			if err := arity("str", args, 1); err != nil {
				return nil, err
			}

			return format(args[0]), nil
		},
		"num": func(args []any) (any, error) {
			if err := arity("num", args, 1); err != nil {
				return nil, err
			}
			switch x := args[0].(type) {
			case float64:
				return x, nil
			case string:
				f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
				if err != nil {
					return nil, fmt.Errorf("cannot convert %q to a number", x)
				}

				return f, nil
			default:
				return nil, fmt.Errorf("cannot convert value to a number")
			}
		},
	}

	if tier >= Trusted {
		table["sqrt"] = numeric1("sqrt", math.Sqrt)
		table["floor"] = numeric1("floor", math.Floor)
		table["ceil"] = numeric1("ceil", math.Ceil)
		table["round"] = numeric1("round", math.Round)
		table["pow"] = numeric2("pow", math.Pow)
	}

	return table
}

func numeric1(name string, fn func(float64) float64) callable {
	return func(args []any) (any, error) {
		if err := arity(name, args, 1); err != nil {
			return nil, err
		}
		f, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("%s expects a number", name)
		}

		return fn(f), nil
	}
}

func numeric2(name string, fn func(float64, float64) float64) callable {
	return func(args []any) (any, error) {
		if err := arity(name, args, 2); err != nil {
			return nil, err
		}
		a, aok := args[0].(float64)
		b, bok := args[1].(float64)
		if !aok || !bok {
			return nil, fmt.Errorf("%s expects numbers", name)
		}

		return fn(a, b), nil
	}
}

func arity(name string, args []any, want int) error {
	if len(args) != want {
		return fmt.Errorf("%s expects %d argument(s), got %d", name, want, len(args))
	}

	return nil
}
