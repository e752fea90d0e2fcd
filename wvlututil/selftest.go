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

package wvlututil

import (
	"context"
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"

	"github.com/Knetic/govaluate"
	"github.com/sirupsen/logrus"
	"github.com/wvcci/wvlut"
)

// selfTestTolerance is the largest allowed relative difference between
// the stored and directly computed derivatives.
const selfTestTolerance = 0.05

// SelfTest builds a lookup table from the expressions in c, computes its
// Jacobian, writes both to files, reads the Jacobian back and compares it
// at c.Point with a central-difference Jacobian of the expressions
// themselves.
func SelfTest(ctx context.Context, sc *SelfTestConfig, log logrus.FieldLogger) error {
	c, point, dir := sc.Generate, sc.Point, sc.Dir
	if len(point) != len(c.Axes) {
		return &wvlut.ShapeError{What: "self test point", Want: len(c.Axes), Got: len(point)}
	}
	if dir == "" {
		var err error
		if dir, err = ioutil.TempDir("", "wvlut_selftest"); err != nil {
			return fmt.Errorf("wvlututil: creating self test directory: %v", err)
		}
		defer os.RemoveAll(dir)
	}
	gc := *c
	gc.Output = filepath.Join(dir, "selftest_lut.nc")
	if err := Generate(ctx, &gc, log); err != nil {
		return err
	}
	jc := &JacobianConfig{
		Input:  gc.Output,
		Output: filepath.Join(dir, "selftest_jacobian.nc"),
	}
	if err := Jacobian(ctx, jc, log); err != nil {
		return err
	}

	f, err := os.Open(jc.Output)
	if err != nil {
		return fmt.Errorf("wvlututil: opening self test Jacobian: %v", err)
	}
	defer f.Close()
	j, err := wvlut.ReadJacobian(f)
	if err != nil {
		return err
	}
	fn, err := j.Func()
	if err != nil {
		return err
	}
	got, err := fn(point)
	if err != nil {
		return err
	}

	want, err := directJacobian(c.AxisNames, c.Expressions, point)
	if err != nil {
		return err
	}
	var maxDiff float64
	for iy := range want {
		for k := range want[iy] {
			g, w := got.At(iy, k), want[iy][k]
			d := math.Abs(g-w) / math.Max(math.Abs(w), 1e-6)
			maxDiff = math.Max(maxDiff, d)
			log.WithFields(logrus.Fields{
				"output": iy,
				"input":  k,
				"stored": g,
				"direct": w,
			}).Debug("self test derivative")
			if d > selfTestTolerance {
				return fmt.Errorf("wvlututil: self test failed: d(output %d)/d(input %d) is %g from the stored Jacobian but %g from the expressions",
					iy, k, g, w)
			}
		}
	}
	log.WithFields(logrus.Fields{
		"point":             point,
		"max_relative_diff": maxDiff,
	}).Info("self test passed")
	return nil
}

// directJacobian evaluates the derivatives of the expressions at x by
// central differences with a small step.
func directJacobian(names, expressions []string, x []float64) ([][]float64, error) {
	const h = 1e-6
	eval := func(x []float64) ([]float64, error) {
		params := make(map[string]interface{}, len(names))
		for i, n := range names {
			params[n] = x[i]
		}
		o := make([]float64, len(expressions))
		for i, e := range expressions {
			expression, err := govaluate.NewEvaluableExpressionWithFunctions(e, wvlut.DefaultFunctions())
			if err != nil {
				return nil, fmt.Errorf("wvlututil: parsing expression %q: %v", e, err)
			}
			r, err := expression.Evaluate(params)
			if err != nil {
				return nil, fmt.Errorf("wvlututil: evaluating %q: %v", e, err)
			}
			v, ok := r.(float64)
			if !ok {
				return nil, fmt.Errorf("wvlututil: expression %q returned %T; needs a number", e, r)
			}
			o[i] = v
		}
		return o, nil
	}
	jac := make([][]float64, len(expressions))
	for i := range jac {
		jac[i] = make([]float64, len(x))
	}
	for k := range x {
		xp := append([]float64(nil), x...)
		xm := append([]float64(nil), x...)
		xp[k] += h
		xm[k] -= h
		fp, err := eval(xp)
		if err != nil {
			return nil, err
		}
		fm, err := eval(xm)
		if err != nil {
			return nil, err
		}
		for iy := range jac {
			jac[iy][k] = (fp[iy] - fm[iy]) / (2 * h)
		}
	}
	return jac, nil
}
