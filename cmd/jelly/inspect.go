// Copyright 2024-2025 The Jelly Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	jelly "github.com/jelly-rdf/jelly-go"
	"github.com/jelly-rdf/jelly-go/rdfpb"
)

var rowKinds = []rdfpb.RowKind{
	rdfpb.RowOptions,
	rdfpb.RowPrefix,
	rdfpb.RowName,
	rdfpb.RowDatatype,
	rdfpb.RowNamespace,
	rdfpb.RowTriple,
	rdfpb.RowQuad,
	rdfpb.RowGraphStart,
	rdfpb.RowGraphEnd,
}

func inspectCmd() *cobra.Command {
	var (
		outPath string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "inspect <in>",
		Short: "Show stream options and per-row-kind histograms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()
			out, closeOut, err := openOutput(outPath)
			if err != nil {
				return err
			}
			defer closeOut()

			fr, err := jelly.NewFrameReader(in)
			if err != nil {
				return err
			}
			printOptions(out, fr.Options(), fr.Delimited())

			totals := map[rdfpb.RowKind]int{}
			frames := 0
			var perFrame []map[rdfpb.RowKind]int
			for f, err := range fr.Frames() {
				if err != nil {
					return err
				}
				frames++
				counts := map[rdfpb.RowKind]int{}
				for i := range f.Rows {
					counts[f.Rows[i].Kind]++
					totals[f.Rows[i].Kind]++
				}
				if verbose {
					perFrame = append(perFrame, counts)
				}
			}

			fmt.Fprintf(out, "\n%d frame(s)\n\n", frames)
			printHistogram(out, "rows", totals)
			if verbose {
				for i, counts := range perFrame {
					fmt.Fprintf(out, "\nframe %d\n", i)
					printHistogram(out, "rows", counts)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "per-frame histograms")
	return cmd
}

func printOptions(out *os.File, o *rdfpb.StreamOptions, delimited bool) {
	t := tablewriter.NewWriter(out)
	t.SetHeader([]string{"option", "value"})
	t.Append([]string{"stream_name", o.StreamName})
	t.Append([]string{"physical_type", o.PhysicalType.String()})
	t.Append([]string{"logical_type", o.LogicalType.String()})
	t.Append([]string{"version", strconv.FormatUint(uint64(o.Version), 10)})
	t.Append([]string{"generalized_statements", strconv.FormatBool(o.GeneralizedStatements)})
	t.Append([]string{"rdf_star", strconv.FormatBool(o.RdfStar)})
	t.Append([]string{"max_name_table_size", strconv.FormatUint(uint64(o.MaxNameTableSize), 10)})
	t.Append([]string{"max_prefix_table_size", strconv.FormatUint(uint64(o.MaxPrefixTableSize), 10)})
	t.Append([]string{"max_datatype_table_size", strconv.FormatUint(uint64(o.MaxDatatypeTableSize), 10)})
	t.Append([]string{"delimited", strconv.FormatBool(delimited)})
	t.Render()
}

func printHistogram(out *os.File, label string, counts map[rdfpb.RowKind]int) {
	t := tablewriter.NewWriter(out)
	t.SetHeader([]string{"row kind", label})
	for _, kind := range rowKinds {
		if counts[kind] == 0 {
			continue
		}
		t.Append([]string{kind.String(), strconv.Itoa(counts[kind])})
	}
	t.Render()
}
