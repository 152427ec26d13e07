// SPDX-License-Identifier: MIT

package main

import (
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// num formats a flux for tables; NaN (infeasible) prints as "-".
func num(v float64) string {
	switch {
	case math.IsNaN(v):
		return "-"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	if math.Abs(v) < 1e-12 {
		v = 0
	}

	return strconv.FormatFloat(v, 'g', 6, 64)
}

// suffixed inserts "_tag" before path's extension: out.csv → out_DM13.csv.
func suffixed(path, tag string) string {
	ext := filepath.Ext(path)

	return strings.TrimSuffix(path, ext) + "_" + tag + ext
}
