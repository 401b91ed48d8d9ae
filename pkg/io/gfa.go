package io

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/gi-bielefeld/scj-carp/pkg/errors"
	"github.com/gi-bielefeld/scj-carp/pkg/graph"
)

const lengthTag = "LN:i:"

// maxLineSize bounds a single input line. Segment lines carry whole
// sequences, so it is far larger than bufio's default.
const maxLineSize = 1 << 30

func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return sc
}

// pathEnd is a telomere end seen in a P or W line, kept with its line
// number until all segments are known.
type pathEnd struct {
	graph.TelomereEnd
	line int
}

type gfaReader struct {
	raw     *graph.Raw
	ends    []pathEnd
	overlap int
	sawLink bool
}

// ReadGFA parses a GFA v1 stream into a raw graph.
//
// S lines define segments, L lines adjacencies, and the first and last
// element of every P or W line a telomere end. Header, containment and
// unknown record types are ignored. Every L line must carry the same
// overlap; a cigar string other than a plain match (nM) is rejected.
func ReadGFA(r io.Reader) (*graph.Raw, error) {
	p := &gfaReader{raw: graph.NewRaw()}
	sc := newLineScanner(r)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" || text[0] == '#' {
			continue
		}
		fields := strings.Split(text, "\t")

		var err error
		switch fields[0] {
		case "S":
			err = p.segment(fields)
		case "L":
			err = p.link(fields)
		case "P":
			err = p.path(fields, line)
		case "W":
			err = p.walk(fields, line)
		}
		if err != nil {
			return nil, errors.Locate(line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read gfa")
	}

	for _, e := range p.ends {
		if _, ok := p.raw.Names[e.Name]; !ok {
			return nil, errors.AtLine(e.line, "segment %q occurs in a path but has no S line", e.Name)
		}
		p.raw.AddTelomere(e.Name, e.IsTail)
	}
	p.raw.Overlap = p.overlap
	return p.raw, nil
}

func (p *gfaReader) segment(f []string) error {
	if len(f) < 3 {
		return errors.New(errors.ErrCodeInvalidFormat, "segment needs a name and a sequence")
	}
	name := f[1]
	if err := errors.ValidateSegmentName(name); err != nil {
		return err
	}
	size := 0
	if f[2] != "*" {
		size = len(f[2])
	}
	for _, tag := range f[3:] {
		if v, ok := strings.CutPrefix(tag, lengthTag); ok {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return errors.New(errors.ErrCodeInvalidFormat, "invalid segment length %q", v)
			}
			size = n
		}
	}
	p.raw.AddMarker(name, size)
	return nil
}

func (p *gfaReader) link(f []string) error {
	if len(f) < 5 {
		return errors.New(errors.ErrCodeInvalidFormat, "malformed link")
	}
	for _, name := range []string{f[1], f[3]} {
		if err := errors.ValidateSegmentName(name); err != nil {
			return err
		}
	}
	a, b := p.raw.Marker(f[1]), p.raw.Marker(f[3])

	var x, y graph.Extremity
	switch f[2] + f[4] {
	case "++":
		x, y = graph.Head(a), graph.Tail(b)
	case "+-":
		x, y = graph.Head(a), graph.Head(b)
	case "-+":
		x, y = graph.Tail(a), graph.Tail(b)
	case "--":
		x, y = graph.Tail(a), graph.Head(b)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "malformed link orientation %q %q", f[2], f[4])
	}
	p.raw.AddAdjacency(x, y)

	if len(f) < 6 || f[5] == "*" {
		return nil
	}
	n, err := parseMatchCigar(f[5])
	if err != nil {
		return err
	}
	if p.sawLink && n != p.overlap {
		return errors.New(errors.ErrCodeInvalidFormat,
			"link overlap %d differs from previous overlap %d; only fixed overlaps are supported", n, p.overlap)
	}
	p.overlap, p.sawLink = n, true
	return nil
}

// parseMatchCigar returns n for a cigar string of the form nM.
func parseMatchCigar(cigar string) (int, error) {
	digits, ok := strings.CutSuffix(cigar, "M")
	if !ok {
		return 0, errors.New(errors.ErrCodeUnsupported, "cigar %q is not a plain match", cigar)
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, errors.New(errors.ErrCodeUnsupported, "cigar %q is not a plain match", cigar)
	}
	return n, nil
}

func (p *gfaReader) path(f []string, line int) error {
	if len(f) < 3 {
		return errors.New(errors.ErrCodeInvalidFormat, "path needs a name and a segment list")
	}
	steps := strings.FieldsFunc(f[2], func(r rune) bool { return r == ',' || r == ';' })
	if len(steps) == 0 {
		return nil
	}
	first, last := steps[0], steps[len(steps)-1]
	for _, s := range []string{first, last} {
		if len(s) < 2 || (!strings.HasSuffix(s, "+") && !strings.HasSuffix(s, "-")) {
			return errors.New(errors.ErrCodeInvalidFormat, "path step %q lacks an orientation", s)
		}
	}
	p.ends = append(p.ends,
		pathEnd{graph.TelomereEnd{Name: first[:len(first)-1], IsTail: strings.HasSuffix(first, "+")}, line},
		pathEnd{graph.TelomereEnd{Name: last[:len(last)-1], IsTail: strings.HasSuffix(last, "-")}, line},
	)
	return nil
}

func (p *gfaReader) walk(f []string, line int) error {
	if len(f) < 7 {
		return errors.New(errors.ErrCodeInvalidFormat, "walk needs a step list")
	}
	w := f[6]
	if w == "" || w == "*" {
		return nil
	}
	isDir := func(c byte) bool { return c == '>' || c == '<' }
	if !isDir(w[0]) {
		return errors.New(errors.ErrCodeInvalidFormat, "walk %q must start with > or <", w)
	}

	lastDir := strings.LastIndexAny(w, "><")
	firstEnd := strings.IndexAny(w[1:], "><")
	if firstEnd < 0 {
		firstEnd = len(w)
	} else {
		firstEnd++
	}
	first, last := w[1:firstEnd], w[lastDir+1:]
	if first == "" || last == "" {
		return errors.New(errors.ErrCodeInvalidFormat, "walk %q has an empty step", w)
	}
	p.ends = append(p.ends,
		pathEnd{graph.TelomereEnd{Name: first, IsTail: w[0] == '>'}, line},
		pathEnd{graph.TelomereEnd{Name: last, IsTail: w[lastDir] == '<'}, line},
	)
	return nil
}

// ImportGFA reads a possibly compressed GFA file.
func ImportGFA(path string) (*graph.Raw, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	raw, err := ReadGFA(rc)
	if err != nil {
		return nil, errors.New(errors.GetCode(err), "%s: %s", path, errors.UserMessage(err))
	}
	return raw, nil
}
