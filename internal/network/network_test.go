package network

import (
	"reflect"
	"testing"

	"github.com/pable/go-match-metrics/internal/model"
	"github.com/pable/go-match-metrics/internal/stats"
)

func ev(typ model.EventType, player, team string, completed bool) model.MatchEvent {
	return model.MatchEvent{Type: typ, X: 50, Y: 50, PlayerID: player, TeamID: team, Completed: completed}
}

func edge(net model.Network, from, to string) (model.PassConnection, bool) {
	for _, e := range net.Edges {
		if e.From == from && e.To == to {
			return e, true
		}
	}
	return model.PassConnection{}, false
}

func nodeByID(net model.Network, id string) (model.PlayerNode, bool) {
	for _, n := range net.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return model.PlayerNode{}, false
}

func TestBuildLinks_DirectionMatters(t *testing.T) {
	links := []Link{
		{From: "A", To: "B", Completed: true},
		{From: "A", To: "B", Completed: true},
		{From: "A", To: "B", Completed: false},
		{From: "B", To: "A", Completed: true},
	}
	net := BuildLinks(links, 1)
	ab, ok := edge(net, "A", "B")
	if !ok || ab.Count != 3 || ab.Success != 2 {
		t.Errorf("A->B: want count 3 success 2, got %+v (present=%v)", ab, ok)
	}
	ba, ok := edge(net, "B", "A")
	if !ok || ba.Count != 1 || ba.Success != 1 {
		t.Errorf("B->A: want count 1 success 1, got %+v (present=%v)", ba, ok)
	}
	if got := ab.SuccessRate(); got != 2.0/3.0 {
		t.Errorf("A->B success rate: got %v", got)
	}
}

func TestBuildLinks_ThresholdDropsEdgesKeepsTouches(t *testing.T) {
	links := []Link{
		{From: "A", To: "B", Completed: true},
		{From: "A", To: "B", Completed: true},
		{From: "A", To: "B", Completed: true},
		{From: "B", To: "A", Completed: true},
	}
	net := BuildLinks(links, 2)
	if len(net.Edges) != 1 {
		t.Fatalf("want 1 edge above threshold, got %+v", net.Edges)
	}
	if _, ok := edge(net, "B", "A"); ok {
		t.Error("B->A is below threshold and must be absent")
	}
	a, _ := nodeByID(net, "A")
	b, _ := nodeByID(net, "B")
	if a.Touches != 4 || b.Touches != 4 {
		t.Errorf("touches must count the unfiltered links: A=%d B=%d", a.Touches, b.Touches)
	}
	if a.PassesAttempted != 3 || a.PassesCompleted != 3 || b.PassesAttempted != 1 {
		t.Errorf("attempts: A=%+v B=%+v", a, b)
	}
}

func TestBuildLinks_Empty(t *testing.T) {
	net := BuildLinks(nil, 3)
	if net.Nodes == nil || net.Edges == nil {
		t.Error("empty network should have non-nil slices")
	}
	if len(net.Nodes) != 0 || len(net.Edges) != 0 {
		t.Errorf("want empty network, got %+v", net)
	}
}

func TestLinks_ReceiverIsNextTeammate(t *testing.T) {
	events := []model.MatchEvent{
		ev(model.EventPass, "A", "home", true),
		ev(model.EventPass, "B", "home", true),
		ev(model.EventPass, "A", "home", true),
		ev(model.EventShot, "B", "home", false),
		ev(model.EventPass, "A", "home", false),
		ev(model.EventShot, "B", "home", false),
	}
	net := Build(events, 1)
	ab, _ := edge(net, "A", "B")
	ba, _ := edge(net, "B", "A")
	if ab.Count != 3 || ab.Success != 2 {
		t.Errorf("A->B: want 3/2, got %+v", ab)
	}
	if ba.Count != 1 {
		t.Errorf("B->A: want 1, got %+v", ba)
	}
}

func TestLinks_SkipsUntaggedAndOwnEvents(t *testing.T) {
	events := []model.MatchEvent{
		ev(model.EventPass, "A", "", true),
		ev(model.EventDefensive, "", "", true),
		ev(model.EventPass, "A", "", true),
		ev(model.EventShot, "C", "", false),
	}
	links := Links(events)
	want := []Link{
		{Index: 0, From: "A", To: "C", Completed: true},
		{Index: 2, From: "A", To: "C", Completed: true},
	}
	if !reflect.DeepEqual(links, want) {
		t.Errorf("links: got %+v", links)
	}
}

func TestLinks_InterceptedPassHasNoReceiver(t *testing.T) {
	events := []model.MatchEvent{
		ev(model.EventPass, "A", "home", false),
		ev(model.EventDefensive, "X", "away", true),
		ev(model.EventPass, "B", "home", true),
	}
	want := []Link{
		{Index: 0, From: "A", Completed: false},
		{Index: 2, From: "B", Completed: true},
	}
	if links := Links(events); !reflect.DeepEqual(links, want) {
		t.Errorf("want receiverless links, got %+v", links)
	}
}

func TestBuild_PasserCountedWithoutReceiver(t *testing.T) {
	events := []model.MatchEvent{
		ev(model.EventPass, "A", "home", true),
		ev(model.EventShot, "B", "home", false),
		ev(model.EventPass, "A", "home", false),
		ev(model.EventDefensive, "X", "away", true),
		ev(model.EventPass, "A", "home", true),
		ev(model.EventDefensive, "", "", true),
	}
	net := Build(events, 1)

	a, ok := nodeByID(net, "A")
	if !ok {
		t.Fatalf("node A missing: %+v", net.Nodes)
	}
	if a.Touches != 3 || a.PassesAttempted != 3 || a.PassesCompleted != 2 {
		t.Errorf("A: want touches 3 attempted 3 completed 2, got %+v", a)
	}
	if len(net.Edges) != 1 {
		t.Fatalf("want only A->B, got %+v", net.Edges)
	}
	if ab, _ := edge(net, "A", "B"); ab.Count != 1 || ab.Success != 1 {
		t.Errorf("A->B: want 1/1, got %+v", ab)
	}
	if _, ok := nodeByID(net, "X"); ok {
		t.Error("the opponent never received a pass and should not be a node")
	}
}

func TestBuild_AttemptsMatchPlayerPasses(t *testing.T) {
	events := []model.MatchEvent{
		ev(model.EventPass, "A", "home", true),
		ev(model.EventPass, "B", "home", true),
		ev(model.EventPass, "A", "home", false),
		ev(model.EventDefensive, "X", "away", true),
		ev(model.EventPass, "X", "away", true),
		ev(model.EventPass, "Y", "away", false),
		ev(model.EventPass, "B", "home", true),
	}
	net := Build(events, 5)
	if len(net.Edges) != 0 {
		t.Errorf("no pair reaches the threshold, got %+v", net.Edges)
	}
	for _, p := range stats.ByPlayer(events) {
		n, ok := nodeByID(net, p.PlayerID)
		if !ok {
			t.Errorf("%s: missing node", p.PlayerID)
			continue
		}
		if n.PassesAttempted != p.Passes || n.PassesCompleted != p.PassesCompleted {
			t.Errorf("%s: node %d/%d, player %d/%d", p.PlayerID,
				n.PassesAttempted, n.PassesCompleted, p.Passes, p.PassesCompleted)
		}
	}
	a, _ := nodeByID(net, "A")
	b, _ := nodeByID(net, "B")
	if a.Touches != 3 || b.Touches != 3 {
		t.Errorf("touches ignore the threshold: A=%d B=%d", a.Touches, b.Touches)
	}
}

func TestBuild_OrderingIsDeterministic(t *testing.T) {
	links := []Link{
		{From: "C", To: "A"}, {From: "B", To: "A"}, {From: "A", To: "C"},
		{From: "A", To: "B"}, {From: "B", To: "C"}, {From: "C", To: "B"},
		{From: "A", To: "B"},
	}
	first := BuildLinks(links, 1)
	if first.Nodes[0].ID != "A" {
		t.Errorf("most involved node first: got %+v", first.Nodes)
	}
	for i := 1; i < len(first.Edges); i++ {
		p, c := first.Edges[i-1], first.Edges[i]
		if p.From > c.From || (p.From == c.From && p.To >= c.To) {
			t.Fatalf("edges unsorted: %+v", first.Edges)
		}
	}
	for i := 0; i < 20; i++ {
		if !reflect.DeepEqual(first, BuildLinks(links, 1)) {
			t.Fatal("BuildLinks not deterministic")
		}
	}
}
