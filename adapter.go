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

package jelly

// Adapter bridges the decoder to an external RDF data model. T is the
// adapter's term representation; the decoder builds terms through the
// term callbacks and delivers statements through the statement ones.
//
// Implementations may support only the subset their stream's physical
// type requires. Embed [BaseAdapter] to get structured
// not-implemented errors for the rest.
type Adapter[T any] interface {
	// IRI builds a term from a resolved full IRI.
	IRI(iri string) (T, error)
	// BlankNode builds a term from a blank node label.
	BlankNode(label string) (T, error)
	// Literal builds a literal term. At most one of language and
	// datatype is non-empty; both empty means a plain string literal.
	Literal(lex, language, datatype string) (T, error)
	// DefaultGraph builds the default-graph term.
	DefaultGraph() (T, error)
	// QuotedTriple builds an RDF-star quoted triple term.
	QuotedTriple(s, p, o T) (T, error)

	// Triple delivers one decoded triple.
	Triple(s, p, o T) error
	// Quad delivers one decoded quad.
	Quad(s, p, o, g T) error
	// GraphStart opens a graph at a graph-start row, whatever the
	// stream's declared physical type.
	GraphStart(graph T) error
	// GraphEnd closes the current graph.
	GraphEnd() error
	// NamespaceDeclaration delivers a prefix binding.
	NamespaceDeclaration(name, iri string) error
	// Frame is called after each frame's rows, with the frame's
	// metadata map (nil when absent).
	Frame(metadata map[string][]byte) error
}

// BaseAdapter implements every Adapter callback with a structured
// not-implemented error (Frame excepted, which is a no-op). Embed it
// and override the callbacks the stream's physical type needs.
type BaseAdapter[T any] struct{}

func (BaseAdapter[T]) IRI(string) (T, error) {
	var zero T
	return zero, notImplementedf("adapter does not support IRI terms")
}

func (BaseAdapter[T]) BlankNode(string) (T, error) {
	var zero T
	return zero, notImplementedf("adapter does not support blank node terms")
}

func (BaseAdapter[T]) Literal(string, string, string) (T, error) {
	var zero T
	return zero, notImplementedf("adapter does not support literal terms")
}

func (BaseAdapter[T]) DefaultGraph() (T, error) {
	var zero T
	return zero, notImplementedf("adapter does not support the default graph term")
}

func (BaseAdapter[T]) QuotedTriple(T, T, T) (T, error) {
	var zero T
	return zero, notImplementedf("adapter does not support quoted triples")
}

func (BaseAdapter[T]) Triple(T, T, T) error {
	return notImplementedf("adapter does not support triples")
}

func (BaseAdapter[T]) Quad(T, T, T, T) error {
	return notImplementedf("adapter does not support quads")
}

func (BaseAdapter[T]) GraphStart(T) error {
	return notImplementedf("adapter does not support graph boundaries")
}

func (BaseAdapter[T]) GraphEnd() error {
	return notImplementedf("adapter does not support graph boundaries")
}

func (BaseAdapter[T]) NamespaceDeclaration(string, string) error {
	return notImplementedf("adapter does not support namespace declarations")
}

func (BaseAdapter[T]) Frame(map[string][]byte) error { return nil }

// TermAdapter is a ready-made adapter producing [Term] values and
// forwarding events to optional callbacks. Nil callbacks ignore their
// events, except statements, which every stream must consume.
type TermAdapter struct {
	OnTriple     func(s, p, o Term) error
	OnQuad       func(s, p, o, g Term) error
	OnGraphStart func(graph Term) error
	OnGraphEnd   func() error
	OnNamespace  func(name, iri string) error
	OnFrame      func(metadata map[string][]byte) error
}

func (a *TermAdapter) IRI(iri string) (Term, error)         { return NewIRI(iri), nil }
func (a *TermAdapter) BlankNode(label string) (Term, error) { return NewBlankNode(label), nil }
func (a *TermAdapter) DefaultGraph() (Term, error)          { return NewDefaultGraph(), nil }

func (a *TermAdapter) Literal(lex, language, datatype string) (Term, error) {
	switch {
	case language != "":
		return NewLangLiteral(lex, language), nil
	case datatype != "":
		return NewTypedLiteral(lex, datatype), nil
	default:
		return NewLiteral(lex), nil
	}
}

func (a *TermAdapter) QuotedTriple(s, p, o Term) (Term, error) {
	return NewQuotedTriple(s, p, o), nil
}

func (a *TermAdapter) Triple(s, p, o Term) error {
	if a.OnTriple == nil {
		return notImplementedf("adapter does not support triples")
	}
	return a.OnTriple(s, p, o)
}

func (a *TermAdapter) Quad(s, p, o, g Term) error {
	if a.OnQuad == nil {
		return notImplementedf("adapter does not support quads")
	}
	return a.OnQuad(s, p, o, g)
}

func (a *TermAdapter) GraphStart(graph Term) error {
	if a.OnGraphStart == nil {
		return nil
	}
	return a.OnGraphStart(graph)
}

func (a *TermAdapter) GraphEnd() error {
	if a.OnGraphEnd == nil {
		return nil
	}
	return a.OnGraphEnd()
}

func (a *TermAdapter) NamespaceDeclaration(name, iri string) error {
	if a.OnNamespace == nil {
		return nil
	}
	return a.OnNamespace(name, iri)
}

func (a *TermAdapter) Frame(metadata map[string][]byte) error {
	if a.OnFrame == nil {
		return nil
	}
	return a.OnFrame(metadata)
}
