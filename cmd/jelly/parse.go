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
	"bufio"
	"os"

	"github.com/spf13/cobra"

	jelly "github.com/jelly-rdf/jelly-go"
	"github.com/jelly-rdf/jelly-go/internal/rdftext"
)

func parseCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "parse <in>",
		Short: "Read a Jelly stream and write N-Triples or N-Quads",
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
			bw := bufio.NewWriter(out)
			if err := writeText(bw, in); err != nil {
				return err
			}
			return bw.Flush()
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	return cmd
}

func writeText(out *bufio.Writer, in *os.File) error {
	fr, err := jelly.NewFrameReader(in)
	if err != nil {
		return err
	}
	var graph *jelly.Term
	emit := func(st rdftext.Statement) error {
		_, err := out.WriteString(rdftext.FormatStatement(st))
		return err
	}
	adapter := &jelly.TermAdapter{
		OnTriple: func(s, p, o jelly.Term) error {
			st := rdftext.Statement{Subject: s, Predicate: p, Object: o}
			if graph != nil {
				st.Graph = *graph
			}
			return emit(st)
		},
		OnQuad: func(s, p, o, g jelly.Term) error {
			return emit(rdftext.Statement{Subject: s, Predicate: p, Object: o, Graph: g})
		},
		OnGraphStart: func(g jelly.Term) error {
			graph = &g
			return nil
		},
		OnGraphEnd: func() error {
			graph = nil
			return nil
		},
	}
	return jelly.ReadFlat(fr, adapter, jelly.WithStrictTypes(false))
}
