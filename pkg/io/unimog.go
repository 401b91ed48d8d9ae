package io

import (
	"io"
	"strings"

	"github.com/gi-bielefeld/scj-carp/pkg/errors"
	"github.com/gi-bielefeld/scj-carp/pkg/graph"
)

type gene struct {
	m       graph.Marker
	forward bool
}

// right is the extremity a gene presents to its successor.
func (g gene) right() graph.Extremity {
	if g.forward {
		return graph.Head(g.m)
	}
	return graph.Tail(g.m)
}

// left is the extremity a gene presents to its predecessor.
func (g gene) left() graph.Extremity {
	if g.forward {
		return graph.Tail(g.m)
	}
	return graph.Head(g.m)
}

// ReadUniMoG parses a UniMoG genome file into a raw graph. Every gene has
// size 0. Blank lines and genome headers ('>') are skipped.
func ReadUniMoG(r io.Reader) (*graph.Raw, error) {
	raw := graph.NewRaw()
	sc := newLineScanner(r)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '>' {
			continue
		}
		if err := readChromosome(raw, text); err != nil {
			return nil, errors.Locate(line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read unimog")
	}
	return raw, nil
}

func readChromosome(raw *graph.Raw, text string) error {
	end := text[len(text)-1]
	if end != ')' && end != '|' {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid chromosome end %q", string(end))
	}
	tokens := strings.Fields(text[:len(text)-1])
	if len(tokens) == 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "empty chromosome")
	}

	genes := make([]gene, 0, len(tokens))
	for _, tok := range tokens {
		g := gene{forward: true}
		tok = strings.TrimPrefix(tok, "+")
		if rest, ok := strings.CutPrefix(tok, "-"); ok {
			tok, g.forward = rest, false
		}
		if err := errors.ValidateSegmentName(tok); err != nil {
			return err
		}
		g.m = raw.Marker(tok)
		genes = append(genes, g)
	}

	for i := 1; i < len(genes); i++ {
		raw.AddAdjacency(genes[i-1].right(), genes[i].left())
	}
	first, last := genes[0], genes[len(genes)-1]
	if end == ')' {
		raw.AddAdjacency(last.right(), first.left())
	} else {
		raw.AddAdjacency(graph.Telomere, first.left())
		raw.AddAdjacency(last.right(), graph.Telomere)
	}
	return nil
}

// ImportUniMoG reads a possibly compressed UniMoG file.
func ImportUniMoG(path string) (*graph.Raw, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	raw, err := ReadUniMoG(rc)
	if err != nil {
		return nil, errors.New(errors.GetCode(err), "%s: %s", path, errors.UserMessage(err))
	}
	return raw, nil
}

// Import reads path in the given format, detecting it from the file name
// when format is [FormatAuto].
func Import(path string, format Format) (*graph.Raw, error) {
	if format == FormatAuto {
		format = DetectFormat(path)
	}
	switch format {
	case FormatGFA:
		return ImportGFA(path)
	case FormatUniMoG:
		return ImportUniMoG(path)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported input format %q", format)
}
