// Package network builds the directed player-to-player pass graph.
package network

import (
	"sort"

	"github.com/pable/go-match-metrics/internal/model"
)

// Link is one pass between two players. Index is the position of the pass
// in the event list it was derived from.
type Link struct {
	Index     int
	From      string
	FromName  string
	To        string
	ToName    string
	Completed bool
}

// Links derives passer/receiver pairs from a chronological event list.
//
// Events carry no receiver, so the receiver of a pass is the player of the
// next tagged event by someone other than the passer. Events without a
// player id are skipped. When both sides carry a team id and they differ,
// the ball went to the opponent. Such passes, and passes with nobody after
// them, still produce a link with an empty To so the passer is credited.
func Links(events []model.MatchEvent) []Link {
	var links []Link
	for i := range events {
		p := &events[i]
		if p.Type != model.EventPass || p.PlayerID == "" {
			continue
		}
		l := Link{Index: i, From: p.PlayerID, FromName: p.PlayerName, Completed: p.Completed}
		next := nextActor(events, i)
		if next != nil && (p.TeamID == "" || next.TeamID == "" || p.TeamID == next.TeamID) {
			l.To, l.ToName = next.PlayerID, next.PlayerName
		}
		links = append(links, l)
	}
	return links
}

func nextActor(events []model.MatchEvent, i int) *model.MatchEvent {
	passer := events[i].PlayerID
	for j := i + 1; j < len(events); j++ {
		e := &events[j]
		if e.PlayerID != "" && e.PlayerID != passer {
			return e
		}
	}
	return nil
}

// Build derives links from events and aggregates them with BuildLinks.
func Build(events []model.MatchEvent, minPassThreshold int) model.Network {
	return BuildLinks(Links(events), minPassThreshold)
}

type edgeKey struct {
	from, to string
}

// BuildLinks groups links by ordered (from, to) pair. (A,B) and (B,A) are
// distinct edges. Edges with fewer than minPassThreshold passes are left
// out; node counters always cover every link so involvement is not
// under-reported by the threshold. A link without a receiver counts for
// its passer but forms no edge.
//
// Nodes are sorted by touches descending then id; edges by from then to.
func BuildLinks(links []Link, minPassThreshold int) model.Network {
	edges := make(map[edgeKey]*model.PassConnection)
	nodes := make(map[string]*model.PlayerNode)

	node := func(id, name string) *model.PlayerNode {
		n, ok := nodes[id]
		if !ok {
			n = &model.PlayerNode{ID: id}
			nodes[id] = n
		}
		if name != "" {
			n.Name = name
		}
		return n
	}

	for _, l := range links {
		if l.From == "" {
			continue
		}
		src := node(l.From, l.FromName)
		src.Touches++
		src.PassesAttempted++
		if l.Completed {
			src.PassesCompleted++
		}
		if l.To == "" {
			continue
		}

		k := edgeKey{l.From, l.To}
		c, ok := edges[k]
		if !ok {
			c = &model.PassConnection{From: l.From, To: l.To}
			edges[k] = c
		}
		c.Count++
		if l.Completed {
			c.Success++
		}
		if l.From != l.To {
			node(l.To, l.ToName).Touches++
		}
	}

	net := model.Network{
		Nodes: make([]model.PlayerNode, 0, len(nodes)),
		Edges: make([]model.PassConnection, 0, len(edges)),
	}
	for _, n := range nodes {
		net.Nodes = append(net.Nodes, *n)
	}
	for _, c := range edges {
		if c.Count < minPassThreshold {
			continue
		}
		net.Edges = append(net.Edges, *c)
	}

	sort.Slice(net.Nodes, func(i, j int) bool {
		a, b := net.Nodes[i], net.Nodes[j]
		if a.Touches != b.Touches {
			return a.Touches > b.Touches
		}
		return a.ID < b.ID
	})
	sort.Slice(net.Edges, func(i, j int) bool {
		a, b := net.Edges[i], net.Edges[j]
		if a.From != b.From {
			return a.From < b.From
		}
		return a.To < b.To
	})
	return net
}
