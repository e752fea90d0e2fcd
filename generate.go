/*
Copyright © 2026 the WV-LUT authors.
This file is part of WV-LUT.

WV-LUT is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

WV-LUT is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with WV-LUT.  If not, see <http://www.gnu.org/licenses/>.
*/

package wvlut

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/sparse"
)

func oneArg(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("wvlut: got %d arguments for function '%s', but needs 1", len(arg), name)
		}
		x, ok := arg[0].(float64)
		if !ok {
			return nil, fmt.Errorf("wvlut: argument of function '%s' has type %T; needs a number", name, arg[0])
		}
		return f(x), nil
	}
}

// DefaultFunctions returns the functions that are available in Generate
// expressions: exp, log, sqrt, sin, cos, tan, abs and pow(x, y).
func DefaultFunctions() map[string]govaluate.ExpressionFunction {
	return map[string]govaluate.ExpressionFunction{
		"exp":  oneArg("exp", math.Exp),
		"log":  oneArg("log", math.Log),
		"sqrt": oneArg("sqrt", math.Sqrt),
		"sin":  oneArg("sin", math.Sin),
		"cos":  oneArg("cos", math.Cos),
		"tan":  oneArg("tan", math.Tan),
		"abs":  oneArg("abs", math.Abs),
		"pow": func(args ...interface{}) (interface{}, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("wvlut: got %d arguments for function 'pow', but needs 2", len(args))
			}
			x, ok1 := args[0].(float64)
			y, ok2 := args[1].(float64)
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("wvlut: arguments of function 'pow' must be numbers")
			}
			return math.Pow(x, y), nil
		},
	}
}

// Generate creates a lookup table by evaluating each expression at every
// grid point of axes. The table has one output channel per expression, in
// order. Within the expressions the coordinate along axis i is available
// as the variable names[i]. funcs are added to the default functions,
// replacing any with the same name.
func Generate(axes []*Axis, names []string, expressions []string, funcs map[string]govaluate.ExpressionFunction) (*Interpolator, error) {
	if len(names) != len(axes) {
		return nil, &ShapeError{What: "axis name list", Want: len(axes), Got: len(names)}
	}
	if len(expressions) == 0 {
		return nil, &ShapeError{What: "expression list", Want: 1, Got: 0}
	}
	allFuncs := DefaultFunctions()
	for k, f := range funcs {
		allFuncs[k] = f
	}
	known := make(map[string]bool)
	for _, n := range names {
		if known[n] {
			return nil, fmt.Errorf("wvlut: axis name %q used more than once", n)
		}
		known[n] = true
	}

	exprs := make([]*govaluate.EvaluableExpression, len(expressions))
	for i, e := range expressions {
		expression, err := govaluate.NewEvaluableExpressionWithFunctions(e, allFuncs)
		if err != nil {
			return nil, fmt.Errorf("wvlut: parsing expression %q: %v", e, err)
		}
		for _, v := range expression.Vars() {
			if !known[v] {
				return nil, fmt.Errorf("wvlut: undefined variable name '%s' in expression %q", v, e)
			}
		}
		exprs[i] = expression
	}

	shape := make([]int, len(axes)+1)
	for i, a := range axes {
		if a == nil {
			return nil, &AxisError{Axis: i, Reason: "axis is nil"}
		}
		shape[i] = a.Len()
	}
	nch := len(exprs)
	shape[len(axes)] = nch
	lut := sparse.ZerosDense(shape...)

	index := make([]int, len(axes))
	params := make(map[string]interface{}, len(axes))
	for ii := 0; ii < len(lut.Elements)/nch; ii++ {
		unravel(ii, shape[:len(axes)], index)
		for i, a := range axes {
			params[names[i]] = a.Value(index[i])
		}
		for c, expression := range exprs {
			r, err := expression.Evaluate(params)
			if err != nil {
				return nil, fmt.Errorf("wvlut: evaluating %q: %v", expressions[c], err)
			}
			v, ok := r.(float64)
			if !ok {
				return nil, fmt.Errorf("wvlut: expression %q returned %T; needs a number", expressions[c], r)
			}
			lut.Elements[ii*nch+c] = v
		}
	}
	return NewInterpolator(lut, axes...)
}
