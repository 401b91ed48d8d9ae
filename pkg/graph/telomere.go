package graph

// FillTelomeres links every bare end of an active marker to the telomere and
// returns the number of adjacencies added. Calling it again on a completed
// graph adds nothing.
func (g *Graph) FillTelomeres() int {
	added := 0
	for m := 1; m < len(g.masked); m++ {
		if g.masked[m] {
			continue
		}
		for _, x := range [2]Extremity{Tail(Marker(m)), Head(Marker(m))} {
			if len(g.adj[x]) > 0 {
				continue
			}
			g.adj[x] = append(g.adj[x], Telomere)
			g.adj[Telomere] = append(g.adj[Telomere], x)
			added++
		}
	}
	return added
}
