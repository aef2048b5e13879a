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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	jelly "github.com/jelly-rdf/jelly-go"
	"github.com/jelly-rdf/jelly-go/internal/rdftext"
)

// optionsFile is the YAML shape accepted by --options.
type optionsFile struct {
	MaxNames              uint32  `yaml:"max_names"`
	MaxPrefixes           *uint32 `yaml:"max_prefixes"`
	MaxDatatypes          *uint32 `yaml:"max_datatypes"`
	StreamName            string  `yaml:"stream_name"`
	GeneralizedStatements bool    `yaml:"generalized_statements"`
	RdfStar               bool    `yaml:"rdf_star"`
	FrameSize             int     `yaml:"frame_size"`
	Delimited             *bool   `yaml:"delimited"`
}

func (o *optionsFile) streamOptions() []jelly.StreamOption {
	preset := jelly.PresetSmall()
	if o.MaxNames != 0 {
		preset.MaxNames = o.MaxNames
	}
	if o.MaxPrefixes != nil {
		preset.MaxPrefixes = *o.MaxPrefixes
	}
	if o.MaxDatatypes != nil {
		preset.MaxDatatypes = *o.MaxDatatypes
	}
	opts := []jelly.StreamOption{
		jelly.WithLookupPreset(preset),
		jelly.WithStreamParameters(jelly.StreamParameters{
			StreamName:            o.StreamName,
			GeneralizedStatements: o.GeneralizedStatements,
			RdfStar:               o.RdfStar,
		}),
	}
	if o.FrameSize > 0 {
		opts = append(opts, jelly.WithFrameSize(o.FrameSize))
	}
	if o.Delimited != nil {
		opts = append(opts, jelly.WithDelimited(*o.Delimited))
	}
	return opts
}

func serializeCmd() *cobra.Command {
	var (
		optionsPath string
		outPath     string
		streamName  string
	)
	cmd := &cobra.Command{
		Use:   "serialize <in...>",
		Short: "Read RDF text files and write a Jelly stream",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fileOpts optionsFile
			if optionsPath != "" {
				raw, err := os.ReadFile(optionsPath)
				if err != nil {
					return err
				}
				if err := yaml.Unmarshal(raw, &fileOpts); err != nil {
					return fmt.Errorf("options file %s: %w", optionsPath, err)
				}
			}
			if streamName != "" {
				fileOpts.StreamName = streamName
			}
			if fileOpts.StreamName == "auto" {
				fileOpts.StreamName = uuid.NewString()
			}

			statements, err := readInputs(args)
			if err != nil {
				return err
			}
			out, closeOut, err := openOutput(outPath)
			if err != nil {
				return err
			}
			defer closeOut()
			bw := bufio.NewWriter(out)
			if err := writeStatements(bw, statements, quadsInput(args, statements), fileOpts.streamOptions()); err != nil {
				return err
			}
			return bw.Flush()
		},
	}
	cmd.Flags().StringVar(&optionsPath, "options", "", "YAML file with stream options")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	cmd.Flags().StringVar(&streamName, "stream-name", "", "stream name ('auto' generates one)")
	return cmd
}

// readInputs parses every input file into statements. Whether they form
// a quads stream is decided separately by quadsInput.
func readInputs(paths []string) ([]rdftext.Statement, error) {
	var statements []rdftext.Statement
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 1<<16), 1<<24)
		lineNo := 0
		for sc.Scan() {
			lineNo++
			st, ok, err := rdftext.ParseLine(sc.Text(), lineNo)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			if ok {
				statements = append(statements, st)
			}
		}
		err = sc.Err()
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return statements, nil
}

// quadsInput decides the physical type: .nq inputs or any statement
// with a graph label make it a quads stream.
func quadsInput(paths []string, statements []rdftext.Statement) bool {
	for _, p := range paths {
		ext := strings.ToLower(filepath.Ext(p))
		if ext == ".nq" || ext == ".nquads" {
			return true
		}
	}
	for _, st := range statements {
		if st.IsQuad() {
			return true
		}
	}
	return false
}

func writeStatements(out *bufio.Writer, statements []rdftext.Statement, quads bool, opts []jelly.StreamOption) error {
	if quads {
		s, err := jelly.NewQuadStream(out, opts...)
		if err != nil {
			return err
		}
		for _, st := range statements {
			graph := st.Graph
			if graph.IsZero() {
				graph = jelly.NewDefaultGraph()
			}
			if err := s.Quad(st.Subject, st.Predicate, st.Object, graph); err != nil {
				return err
			}
		}
		return s.Close()
	}
	s, err := jelly.NewTripleStream(out, opts...)
	if err != nil {
		return err
	}
	for _, st := range statements {
		if err := s.Triple(st.Subject, st.Predicate, st.Object); err != nil {
			return err
		}
	}
	return s.Close()
}
