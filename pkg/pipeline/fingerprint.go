package pipeline

import (
	"encoding/binary"
	"encoding/hex"

	"lukechampine.com/blake3"

	"github.com/gi-bielefeld/scj-carp/pkg/graph"
)

// Fingerprint hashes the active markers with their sizes and the sorted
// adjacency list of g. Graphs with equal fingerprints produce equal measure
// and scan results.
func Fingerprint(g *graph.Graph) string {
	h := blake3.New(32, nil)
	var buf [16]byte

	markers := g.Markers()
	binary.LittleEndian.PutUint64(buf[:8], uint64(len(markers)))
	h.Write(buf[:8])
	for _, m := range markers {
		size, _ := g.NodeSize(m)
		binary.LittleEndian.PutUint64(buf[:8], uint64(m))
		binary.LittleEndian.PutUint64(buf[8:], uint64(size))
		h.Write(buf[:])
	}
	for _, a := range g.Adjacencies() {
		binary.LittleEndian.PutUint64(buf[:8], uint64(a.X))
		binary.LittleEndian.PutUint64(buf[8:], uint64(a.Y))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
