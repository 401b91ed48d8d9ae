package graph

// TelomereEnd names a marker end that closes a chromosome, as recorded by
// path or walk annotations. IsTail selects the tail extremity of the marker.
type TelomereEnd struct {
	Name   string
	IsTail bool
}

// Raw is the plain (sizes, adjacencies, names) triple produced by parsers.
// Adjacency sets are kept symmetric by [Raw.AddAdjacency].
type Raw struct {
	Sizes       map[Marker]int
	Adjacencies map[Extremity]map[Extremity]struct{}
	Names       map[string]Marker
	Telomeres   []TelomereEnd

	// Overlap is the uniform overlap length between linked segments, if the
	// input format encodes one. Trimming requires it to be zero.
	Overlap int

	next Marker
}

// NewRaw returns an empty triple whose first assigned marker id is 1.
func NewRaw() *Raw {
	return &Raw{
		Sizes:       make(map[Marker]int),
		Adjacencies: make(map[Extremity]map[Extremity]struct{}),
		Names:       make(map[string]Marker),
		next:        1,
	}
}

// AddMarker registers name with the given size and returns its id. A name
// seen before keeps its id; its size is overwritten.
func (r *Raw) AddMarker(name string, size int) Marker {
	m := r.Marker(name)
	r.Sizes[m] = size
	return m
}

// Marker returns the id of name, assigning the next free id on first sight.
// Newly assigned markers have size 0.
func (r *Raw) Marker(name string) Marker {
	if m, ok := r.Names[name]; ok {
		return m
	}
	m := r.next
	r.next++
	r.Names[name] = m
	if _, ok := r.Sizes[m]; !ok {
		r.Sizes[m] = 0
	}
	return m
}

// SetMarker binds name to an explicit id, for callers that manage ids
// themselves. Automatic assignment continues after the largest id seen.
func (r *Raw) SetMarker(name string, m Marker, size int) {
	r.Names[name] = m
	r.Sizes[m] = size
	if m >= r.next {
		r.next = m + 1
	}
}

// AddAdjacency records the undirected adjacency between x and y.
func (r *Raw) AddAdjacency(x, y Extremity) {
	r.link(x, y)
	r.link(y, x)
}

func (r *Raw) link(x, y Extremity) {
	set, ok := r.Adjacencies[x]
	if !ok {
		set = make(map[Extremity]struct{})
		r.Adjacencies[x] = set
	}
	set[y] = struct{}{}
}

// AddTelomere records that the given end of name closes a chromosome.
func (r *Raw) AddTelomere(name string, isTail bool) {
	r.Telomeres = append(r.Telomeres, TelomereEnd{Name: name, IsTail: isTail})
}

// NumAdjacencies returns the number of distinct adjacencies recorded.
func (r *Raw) NumAdjacencies() int {
	n := 0
	for x, set := range r.Adjacencies {
		for y := range set {
			if x <= y {
				n++
			}
		}
	}
	return n
}
