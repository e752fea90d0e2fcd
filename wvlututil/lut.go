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
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wvcci/wvlut"
	"gonum.org/v1/gonum/mat"
)

// Generate creates a lookup table from the expressions in c and writes it
// to c.Output.
func Generate(ctx context.Context, c *GenerateConfig, log logrus.FieldLogger) error {
	ip, err := wvlut.Generate(c.Axes, c.AxisNames, c.Expressions, nil)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"axes":     len(c.Axes),
		"points":   ip.Points(),
		"channels": ip.Channels(),
	}).Info("generated lookup table")
	return writeOutput(ctx, c.Output, log, func(f *os.File) error {
		return wvlut.WriteLUT(f, ip)
	})
}

// Jacobian reads the lookup table in c.Input, builds its Jacobian and
// writes the result to c.Output.
func Jacobian(ctx context.Context, c *JacobianConfig, log logrus.FieldLogger) error {
	ip, err := readLUT(ctx, c.Input, log)
	if err != nil {
		return err
	}
	opts := []wvlut.JacobianOption{}
	if c.Workers > 0 {
		opts = append(opts, wvlut.WithWorkers(c.Workers))
	}
	for axis, dx := range c.Steps {
		opts = append(opts, wvlut.WithStep(axis, dx))
	}
	if c.Progress {
		opts = append(opts, wvlut.WithProgress(progressBar(os.Stderr, "Jacobian")))
	}
	start := time.Now()
	j, err := wvlut.BuildJacobian(ip, c.XIdx, opts...)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"ny":       j.NY,
		"nx":       j.NX,
		"xidx":     j.Indices(),
		"points":   ip.Points(),
		"duration": time.Since(start),
	}).Info("built Jacobian")
	return writeOutput(ctx, c.Output, log, func(f *os.File) error {
		return wvlut.WriteJacobian(f, j)
	})
}

// Recall evaluates the lookup table in c.Input at the points in c and
// writes the results as CSV to w, or to c.Output if it is set. Each row
// holds the values of all channels at one point.
func Recall(ctx context.Context, c *RecallConfig, w io.Writer, log logrus.FieldLogger) error {
	ip, err := readLUT(ctx, c.Input, log)
	if err != nil {
		return err
	}
	var vals [][]float64
	if c.Index {
		vals, err = ip.RecallIndex(c.Points, c.Clip)
	} else {
		vals, err = ip.Recall(c.Points, c.Clip)
	}
	if err != nil {
		return err
	}
	header := make([]string, ip.Channels())
	for i := range header {
		header[i] = fmt.Sprintf("channel_%d", i)
	}
	if c.Output == "" {
		return writeCSV(w, header, vals)
	}
	return writeOutput(ctx, c.Output, log, func(f *os.File) error {
		return writeCSV(f, header, vals)
	})
}

// JRecall evaluates the Jacobian lookup table in c.Input at the
// coordinate points in c and writes each NY x NX matrix to w.
func JRecall(ctx context.Context, c *RecallConfig, w io.Writer, log logrus.FieldLogger) error {
	if c.Index {
		return fmt.Errorf("wvlututil: Jacobian recall only accepts coordinates, not indices")
	}
	path, err := maybeDownload(ctx, c.Input, log)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("wvlututil: opening Jacobian file: %v", err)
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
	for _, p := range c.Points {
		if c.Clip {
			if len(p) != len(j.Axes) {
				return &wvlut.ShapeError{What: "point", Want: len(j.Axes), Got: len(p)}
			}
			p = append([]float64(nil), p...)
			for i, a := range j.Axes {
				p[i] = a.Clamp(p[i])
			}
		}
		m, err := fn(p)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "x = %v, xidx = %v\n%v\n\n", p, j.Indices(), mat.Formatted(m, mat.Squeeze()))
	}
	return nil
}

// Quicklook writes a PNG plot of a lookup table profile. If no point is
// given, the other coordinates are held at the middle of their axes.
func Quicklook(ctx context.Context, c *QuicklookConfig, log logrus.FieldLogger) error {
	ip, err := readLUT(ctx, c.Input, log)
	if err != nil {
		return err
	}
	o := c.Options
	if o.Point == nil {
		o.Point = make([]float64, len(ip.Axes()))
		for i, a := range ip.Axes() {
			o.Point[i] = (a.Min() + a.Max()) / 2
		}
	}
	return writeOutput(ctx, c.Output, log, func(f *os.File) error {
		return wvlut.Quicklook(f, ip, o)
	})
}

func readLUT(ctx context.Context, path string, log logrus.FieldLogger) (*wvlut.Interpolator, error) {
	path, err := maybeDownload(ctx, path, log)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wvlututil: opening lookup table: %v", err)
	}
	defer f.Close()
	ip, err := wvlut.ReadLUT(f)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"file":     path,
		"axes":     len(ip.Axes()),
		"channels": ip.Channels(),
	}).Debug("read lookup table")
	return ip, nil
}

// writeOutput creates the file at path, which may be a blob storage
// location, and fills it using write.
func writeOutput(ctx context.Context, path string, log logrus.FieldLogger, write func(*os.File) error) error {
	var u uploader
	local := u.maybeUpload(path)
	if u.err != nil {
		return fmt.Errorf("wvlututil: staging output file: %v", u.err)
	}
	f, err := os.Create(local)
	if err != nil {
		return fmt.Errorf("wvlututil: creating output file: %v", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("wvlututil: closing output file: %v", err)
	}
	log.WithField("file", path).Info("wrote output")
	return u.upload(ctx, log)
}

func writeCSV(w io.Writer, header []string, vals [][]float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for _, v := range vals {
		for i, x := range v {
			row[i] = strconv.FormatFloat(x, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
