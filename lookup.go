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

import (
	"container/list"
)

// lookup is a fixed-capacity string-to-index mapping with LRU
// eviction. Indices are 1-based; 0 is reserved as the delta sentinel
// and is never stored. While the table is filling, new keys take the
// next sequential index; once full, a new key evicts the
// least-recently-used entry and reuses its index.
//
// A maxSize of 0 disables the table: insert always reports 0.
type lookup struct {
	maxSize  uint32
	ll       *list.List // front is most recently used
	byKey    map[string]*list.Element
	evicting bool
}

type lookupEntry struct {
	key   string
	index uint32
}

func newLookup(maxSize uint32) *lookup {
	return &lookup{
		maxSize: maxSize,
		ll:      list.New(),
		byKey:   make(map[string]*list.Element),
	}
}

func (l *lookup) disabled() bool { return l.maxSize == 0 }

// promote looks the key up, and on a hit marks it most recently used.
func (l *lookup) promote(key string) (uint32, bool) {
	el, ok := l.byKey[key]
	if !ok {
		return 0, false
	}
	l.ll.MoveToFront(el)
	return el.Value.(*lookupEntry).index, true
}

// insert adds a key that must not be present, returning its index.
// Returns 0 when the table is disabled.
func (l *lookup) insert(key string) uint32 {
	if l.disabled() {
		return 0
	}
	if l.evicting {
		el := l.ll.Back()
		entry := el.Value.(*lookupEntry)
		delete(l.byKey, entry.key)
		entry.key = key
		l.ll.MoveToFront(el)
		l.byKey[key] = el
		return entry.index
	}
	index := uint32(l.ll.Len()) + 1
	l.byKey[key] = l.ll.PushFront(&lookupEntry{key: key, index: index})
	l.evicting = index == l.maxSize
	return index
}

// lookupEncoder drives one table on the writer side, tracking the two
// ordinals the delta compression is defined over.
type lookupEncoder struct {
	table        *lookup
	lastAssigned uint32
	lastReused   uint32
}

func newLookupEncoder(maxSize uint32) lookupEncoder {
	return lookupEncoder{table: newLookup(maxSize)}
}

func (e *lookupEncoder) disabled() bool { return e.table.disabled() }

// entryIndex inserts key if absent. When an insertion happened it
// returns the id to put on the entry row (0 for the sequential common
// case) and emit = true; a hit only promotes the key.
func (e *lookupEncoder) entryIndex(key string) (id uint32, emit bool) {
	if _, ok := e.table.promote(key); ok {
		return 0, false
	}
	prev := e.lastAssigned
	index := e.table.insert(key)
	e.lastAssigned = index
	if index == prev+1 {
		return 0, true
	}
	return index, true
}

// nameTermIndex returns the reference index for a name already entered
// in the table: 0 when it directly follows the previously referenced
// index, the index itself otherwise.
func (e *lookupEncoder) nameTermIndex(name string) uint32 {
	prev := e.lastReused
	index, ok := e.table.promote(name)
	if !ok {
		// entryIndex ran first; a miss here is impossible.
		panic(assertf("name %q missing from lookup", name))
	}
	e.lastReused = index
	if index == prev+1 {
		return 0
	}
	return index
}

// prefixTermIndex returns the reference index for a prefix: 0 when the
// previous IRI used the same prefix. The empty prefix is never stored,
// so it encodes as a plain 0 without touching the table.
func (e *lookupEncoder) prefixTermIndex(prefix string) uint32 {
	if prefix == "" {
		return 0
	}
	prev := e.lastReused
	index, ok := e.table.promote(prefix)
	if !ok {
		panic(assertf("prefix %q missing from lookup", prefix))
	}
	e.lastReused = index
	if index == prev && prev != 0 {
		return 0
	}
	return index
}

// datatypeTermIndex returns the reference index for a datatype,
// verbatim. The default string datatype never reaches this point.
func (e *lookupEncoder) datatypeTermIndex(datatype string) uint32 {
	index, ok := e.table.promote(datatype)
	if !ok {
		panic(assertf("datatype %q missing from lookup", datatype))
	}
	e.lastReused = index
	return index
}

// lookupDecoder mirrors a lookupEncoder: a fixed-size slab addressed
// by the indices the entry rows assign.
type lookupDecoder struct {
	values       []string
	set          []bool
	lastAssigned uint32
	lastReused   uint32
}

func newLookupDecoder(maxSize uint32) lookupDecoder {
	return lookupDecoder{
		values: make([]string, maxSize),
		set:    make([]bool, maxSize),
	}
}

// assign stores an entry row. An id of 0 means "previous assigned
// index + 1".
func (d *lookupDecoder) assign(id uint32, value string) error {
	if id == 0 {
		id = d.lastAssigned + 1
	}
	if id > uint32(len(d.values)) {
		return conformancef("lookup entry index %d out of range (table size %d)", id, len(d.values))
	}
	d.values[id-1] = value
	d.set[id-1] = true
	d.lastAssigned = id
	return nil
}

// at resolves a reference index, recording it as the last reused one.
// Index 0 resolves to the empty string.
func (d *lookupDecoder) at(id uint32) (string, error) {
	if id == 0 {
		return "", nil
	}
	if id > uint32(len(d.values)) || !d.set[id-1] {
		return "", conformancef("lookup reference index %d unset or out of range (table size %d)", id, len(d.values))
	}
	d.lastReused = id
	return d.values[id-1], nil
}

// nameTerm resolves a name reference: 0 means the index after the
// previously referenced one.
func (d *lookupDecoder) nameTerm(id uint32) (string, error) {
	if id == 0 {
		id = d.lastReused + 1
	}
	return d.at(id)
}

// prefixTerm resolves a prefix reference: 0 repeats the previous
// prefix, or stands for the empty prefix when there is none.
func (d *lookupDecoder) prefixTerm(id uint32) (string, error) {
	if id == 0 {
		id = d.lastReused
	}
	return d.at(id)
}

// datatypeTerm resolves a datatype reference verbatim. Callers handle
// the 0 = default-string case before resolving.
func (d *lookupDecoder) datatypeTerm(id uint32) (string, error) {
	return d.at(id)
}
