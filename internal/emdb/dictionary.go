package emdb

import (
	"fmt"
	"io"
	"strings"
)

// dictVolumeSize is the fixed encoded size of a DictVolume bookkeeping
// record: the root tree node id and a running string count.
const dictVolumeSize = 8

// dictTreeSize is the fixed encoded size of one ternary-search-trie node:
// the discriminating character at this node's depth, its low/high
// siblings (strings that diverge before this character), its equal child
// (the next character of strings that agree up to here), and the string
// reference id this node terminates, if any.
const dictTreeSize = 20

// dictRefSize is the fixed encoded size of one string reference: the
// byte offset and length of the string's bytes in the flat data section.
const dictRefSize = 8

type dictNode struct {
	Char  int32
	Low   int32
	Eq    int32
	High  int32
	RefID int32
}

func decodeDictNode(b []byte) dictNode {
	return dictNode{
		Char:  readI32(b[0:4]),
		Low:   readI32(b[4:8]),
		Eq:    readI32(b[8:12]),
		High:  readI32(b[12:16]),
		RefID: readI32(b[16:20]),
	}
}

func (n dictNode) encode(b []byte) {
	writeI32(b[0:4], n.Char)
	writeI32(b[4:8], n.Low)
	writeI32(b[8:12], n.Eq)
	writeI32(b[12:16], n.High)
	writeI32(b[16:20], n.RefID)
}

type dictRef struct {
	DataOffset int32
	Length     int32
}

func decodeDictRef(b []byte) dictRef {
	return dictRef{DataOffset: readI32(b[0:4]), Length: readI32(b[4:8])}
}

func (r dictRef) encode(b []byte) {
	writeI32(b[0:4], r.DataOffset)
	writeI32(b[4:8], r.Length)
}

// Dictionary is a case-insensitive ASCII string table, one
// ternary-search-trie per volume sharing a single flat data arena and
// reference table (spec.md §3 "String dictionary"). Lookups by a
// recently seen string bypass the tree descent via an in-memory xxhash
// accelerator that is never persisted and starts empty on every Open.
type Dictionary struct {
	volumes *sectionDescriptor
	trees   *sectionDescriptor
	refs    *sectionDescriptor
	data    *sectionDescriptor

	accel map[DictVolumeName]map[uint64]int32
}

func newDictionary(volumes, trees, refs, data *sectionDescriptor) *Dictionary {
	d := &Dictionary{volumes: volumes, trees: trees, refs: refs, data: data}
	d.accel = make(map[DictVolumeName]map[uint64]int32, len(allVolumes))
	for _, v := range allVolumes {
		d.accel[v] = make(map[uint64]int32)
	}
	return d
}

func (d *Dictionary) volumeIndex(v DictVolumeName) (int, error) {
	for i, name := range allVolumes {
		if name == v {
			return i, nil
		}
	}
	return 0, newErr("dict_volume", KindNotAllocated, nil)
}

func (d *Dictionary) rootOf(idx int) (int32, error) {
	b, err := d.volumes.Get(idx, true, func(buf []byte) { writeI32(buf[0:4], -1) })
	if err != nil {
		return -1, err
	}
	return readI32(b[0:4]), nil
}

func (d *Dictionary) setRoot(idx int, root int32) error {
	b, err := d.volumes.Get(idx, true, nil)
	if err != nil {
		return err
	}
	writeI32(b[0:4], root)
	return nil
}

func (d *Dictionary) bumpCount(idx int) error {
	b, err := d.volumes.Get(idx, true, nil)
	if err != nil {
		return err
	}
	count := readU32(b[4:8])
	writeU32(b[4:8], count+1)
	return nil
}

func (d *Dictionary) newNode(char int32) (int32, error) {
	rec := dictNode{Char: char, Low: -1, Eq: -1, High: -1, RefID: -1}
	var buf [dictTreeSize]byte
	rec.encode(buf[:])
	id, err := d.trees.Append(buf[:])
	if err != nil {
		return -1, err
	}
	return int32(id), nil
}

func (d *Dictionary) getNode(id int32) (dictNode, error) {
	b, err := d.trees.Get(int(id), false, nil)
	if err != nil {
		return dictNode{}, err
	}
	return decodeDictNode(b), nil
}

func (d *Dictionary) putNode(id int32, rec dictNode) error {
	b, err := d.trees.Get(int(id), false, nil)
	if err != nil {
		return err
	}
	rec.encode(b)
	return nil
}

// addReference reserves contiguous bytes in the data arena for s, copies
// it in, and appends a reference record, returning the reference id.
func (d *Dictionary) addReference(s string) (int32, error) {
	first, err := d.data.AllocateRange(len(s))
	if err != nil {
		return -1, err
	}
	for i := 0; i < len(s); i++ {
		b, err := d.data.Get(first+i, false, nil)
		if err != nil {
			return -1, err
		}
		b[0] = s[i]
	}
	rec := dictRef{DataOffset: int32(first), Length: int32(len(s))}
	var buf [dictRefSize]byte
	rec.encode(buf[:])
	id, err := d.refs.Append(buf[:])
	if err != nil {
		return -1, err
	}
	return int32(id), nil
}

// String returns the text stored under reference id.
func (d *Dictionary) String(refID int32) (string, error) {
	b, err := d.refs.Get(int(refID), false, nil)
	if err != nil {
		return "", err
	}
	ref := decodeDictRef(b)
	buf := make([]byte, ref.Length)
	for i := 0; i < int(ref.Length); i++ {
		cb, err := d.data.Get(int(ref.DataOffset)+i, false, nil)
		if err != nil {
			return "", err
		}
		buf[i] = cb[0]
	}
	return string(buf), nil
}

// insert walks (and grows) the ternary search trie rooted at node,
// discriminating on lowered (the case-folded key), splitting nodes on
// character divergence, and returns the (possibly new) subtree root plus
// the reference id for the complete string. orig is stored verbatim at
// the terminating node so lookups are case-insensitive but Get returns
// the string exactly as it was added (spec.md §8 property 4).
func (d *Dictionary) insert(node int32, orig, lowered string, pos int) (int32, int32, error) {
	c := int32(lowered[pos])
	if node == -1 {
		id, err := d.newNode(c)
		if err != nil {
			return -1, -1, err
		}
		node = id
	}
	rec, err := d.getNode(node)
	if err != nil {
		return -1, -1, err
	}

	switch {
	case c < rec.Char:
		child, refID, err := d.insert(rec.Low, orig, lowered, pos)
		if err != nil {
			return -1, -1, err
		}
		rec.Low = child
		if err := d.putNode(node, rec); err != nil {
			return -1, -1, err
		}
		return node, refID, nil

	case c > rec.Char:
		child, refID, err := d.insert(rec.High, orig, lowered, pos)
		if err != nil {
			return -1, -1, err
		}
		rec.High = child
		if err := d.putNode(node, rec); err != nil {
			return -1, -1, err
		}
		return node, refID, nil

	default:
		if pos+1 == len(lowered) {
			if rec.RefID >= 0 {
				return node, rec.RefID, nil
			}
			refID, err := d.addReference(orig)
			if err != nil {
				return -1, -1, err
			}
			rec.RefID = refID
			if err := d.putNode(node, rec); err != nil {
				return -1, -1, err
			}
			return node, refID, nil
		}
		child, refID, err := d.insert(rec.Eq, orig, lowered, pos+1)
		if err != nil {
			return -1, -1, err
		}
		rec.Eq = child
		if err := d.putNode(node, rec); err != nil {
			return -1, -1, err
		}
		return node, refID, nil
	}
}

// search walks the trie without creating nodes, returning found=false
// when s has no reference.
func (d *Dictionary) search(node int32, s string, pos int) (refID int32, found bool, err error) {
	if node == -1 {
		return -1, false, nil
	}
	rec, err := d.getNode(node)
	if err != nil {
		return -1, false, err
	}
	c := int32(s[pos])
	switch {
	case c < rec.Char:
		return d.search(rec.Low, s, pos)
	case c > rec.Char:
		return d.search(rec.High, s, pos)
	default:
		if pos+1 == len(s) {
			if rec.RefID < 0 {
				return -1, false, nil
			}
			return rec.RefID, true, nil
		}
		return d.search(rec.Eq, s, pos+1)
	}
}

func (d *Dictionary) cacheGet(volume DictVolumeName, h uint64) (int32, bool) {
	id, ok := d.accel[volume][h]
	return id, ok
}

func (d *Dictionary) cachePut(volume DictVolumeName, h uint64, refID int32) {
	bucket := d.accel[volume]
	if len(bucket) >= dictOverflowFanout {
		bucket = make(map[uint64]int32)
		d.accel[volume] = bucket
	}
	bucket[h] = refID
}

// Add inserts s (case-folded) into volume, returning the existing
// reference id if s is already present, per spec.md §4.5's split-on-collision
// insertion algorithm.
func (d *Dictionary) Add(volume DictVolumeName, s string) (int32, error) {
	if s == "" {
		return -1, newErr("dict_add", KindIoError, nil)
	}
	lowered := strings.ToLower(s)
	h := dictHash(lowered)
	if id, ok := d.cacheGet(volume, h); ok {
		return id, nil
	}

	idx, err := d.volumeIndex(volume)
	if err != nil {
		return -1, err
	}
	root, err := d.rootOf(idx)
	if err != nil {
		return -1, err
	}
	refsBefore := d.refs.numItems
	newRoot, refID, err := d.insert(root, s, lowered, 0)
	if err != nil {
		return -1, err
	}
	if newRoot != root {
		if err := d.setRoot(idx, newRoot); err != nil {
			return -1, err
		}
	}
	if d.refs.numItems > refsBefore {
		if err := d.bumpCount(idx); err != nil {
			return -1, err
		}
	}
	d.cachePut(volume, h, refID)
	return refID, nil
}

// Find looks up s in volume without inserting it.
func (d *Dictionary) Find(volume DictVolumeName, s string) (refID int32, found bool, err error) {
	if s == "" {
		return -1, false, nil
	}
	lowered := strings.ToLower(s)
	h := dictHash(lowered)
	if id, ok := d.cacheGet(volume, h); ok {
		return id, true, nil
	}

	idx, err := d.volumeIndex(volume)
	if err != nil {
		return -1, false, err
	}
	root, err := d.rootOf(idx)
	if err != nil {
		return -1, false, err
	}
	refID, found, err = d.search(root, lowered, 0)
	if err != nil {
		return -1, false, err
	}
	if found {
		d.cachePut(volume, h, refID)
	}
	return refID, found, nil
}

// DictStats summarizes one volume, replacing the original's raw
// editor_dictionary_summary fprintf dump with a structured result the
// emdb-tool inspect subcommand can render as YAML/JSON. DataBytes is the
// size of the data arena that all volumes share, not of this volume alone.
type DictStats struct {
	Volume      DictVolumeName
	StringCount uint32
	NodeCount   int
	DataBytes   int
}

// Stats counts nodes reachable from volume's root and its persisted
// string count, for emdb-tool inspect.
func (d *Dictionary) Stats(volume DictVolumeName) (DictStats, error) {
	idx, err := d.volumeIndex(volume)
	if err != nil {
		return DictStats{}, err
	}
	b, err := d.volumes.Get(idx, true, func(buf []byte) { writeI32(buf[0:4], -1) })
	if err != nil {
		return DictStats{}, err
	}
	root := readI32(b[0:4])
	count := readU32(b[4:8])

	nodes := 0
	var walk func(id int32) error
	walk = func(id int32) error {
		if id < 0 {
			return nil
		}
		nodes++
		n, err := d.getNode(id)
		if err != nil {
			return err
		}
		if err := walk(n.Low); err != nil {
			return err
		}
		if err := walk(n.Eq); err != nil {
			return err
		}
		return walk(n.High)
	}
	if err := walk(root); err != nil {
		return DictStats{}, err
	}

	return DictStats{Volume: volume, StringCount: count, NodeCount: nodes, DataBytes: d.data.numItems}, nil
}

// DebugTree writes an indented dump of volume's ternary search trie to w,
// replacing the original's editor_dictionary_print_subtree raw
// stdout writer.
func (d *Dictionary) DebugTree(w io.Writer, volume DictVolumeName) error {
	idx, err := d.volumeIndex(volume)
	if err != nil {
		return err
	}
	root, err := d.rootOf(idx)
	if err != nil {
		return err
	}

	var walk func(id int32, depth int) error
	walk = func(id int32, depth int) error {
		if id < 0 {
			return nil
		}
		n, err := d.getNode(id)
		if err != nil {
			return err
		}
		indent := strings.Repeat("  ", depth)
		label := ""
		if n.RefID >= 0 {
			s, err := d.String(n.RefID)
			if err != nil {
				return err
			}
			label = fmt.Sprintf(" -> %q", s)
		}
		fmt.Fprintf(w, "%s'%c'%s\n", indent, rune(n.Char), label)
		if err := walk(n.Low, depth); err != nil {
			return err
		}
		if err := walk(n.Eq, depth+1); err != nil {
			return err
		}
		return walk(n.High, depth)
	}
	return walk(root, 0)
}
