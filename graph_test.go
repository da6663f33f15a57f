package morpho

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/project8/morpho/models"
)

func edge(producer, consumer string) *Connection {
	return &Connection{Producer: producer, Output: "out", Consumer: consumer, Input: "in"}
}

func TestSequence(t *testing.T) {
	tests := []struct {
		name        string
		registered  []string
		connections []*Connection
		want        []string
	}{
		{
			name:       "no connections",
			registered: []string{"a", "b", "c"},
			want:       []string{"a", "b", "c"},
		},
		{
			name:        "connections in execution order",
			registered:  []string{"c", "b", "a"},
			connections: []*Connection{edge("a", "b"), edge("b", "c")},
			want:        []string{"a", "b", "c"},
		},
		{
			name:        "consumer mentioned first",
			registered:  []string{"a", "b", "c"},
			connections: []*Connection{edge("b", "c"), edge("a", "b")},
			want:        []string{"a", "b", "c"},
		},
		{
			name:        "diamond",
			registered:  []string{"src", "left", "right", "sink"},
			connections: []*Connection{edge("src", "left"), edge("src", "right"), edge("left", "sink"), edge("right", "sink")},
			want:        []string{"src", "left", "right", "sink"},
		},
		{
			name:        "duplicate edges",
			registered:  []string{"a", "b"},
			connections: []*Connection{edge("a", "b"), edge("a", "b")},
			want:        []string{"a", "b"},
		},
		{
			name:        "independent chains keep first mention",
			registered:  []string{"x", "y", "p", "q", "lonely"},
			connections: []*Connection{edge("p", "q"), edge("x", "y")},
			want:        []string{"p", "q", "x", "y", "lonely"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newConnectionGraph()
			g.connections = tt.connections

			got, err := g.sequence(tt.registered)
			if err != nil {
				t.Fatalf("sequence: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("sequence mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSequence_SelfLoop(t *testing.T) {
	g := newConnectionGraph()
	g.connections = []*Connection{edge("a", "a")}

	_, err := g.sequence([]string{"a", "b"})

	var cycle *models.CyclicConnectionError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CyclicConnectionError, got %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, cycle.Processors); diff != "" {
		t.Errorf("cycle members mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_ReleasedConsumer(t *testing.T) {
	g := newConnectionGraph()
	c := edge("a", "b")
	c.get = func() (any, bool) { return 1, true }
	c.set = func(any) error { return nil }
	g.connections = append(g.connections, c)
	g.byProducer["a"] = append(g.byProducer["a"], c)

	g.release("b")

	err := g.resolve("a", nil)
	var runErr *models.ProcessorRunError
	if !errors.As(err, &runErr) {
		t.Fatalf("expected ProcessorRunError, got %v", err)
	}
	if runErr.Processor != "b" {
		t.Errorf("expected error on consumer b, got %s", runErr.Processor)
	}
}

func TestResolve_SetterError(t *testing.T) {
	g := newConnectionGraph()
	c := edge("a", "b")
	c.get = func() (any, bool) { return "not a number", true }
	c.set = func(any) error { return errors.New("rejected") }
	g.connections = append(g.connections, c)
	g.byProducer["a"] = append(g.byProducer["a"], c)

	resolved := 0
	err := g.resolve("a", func(*Connection) { resolved++ })

	if err == nil {
		t.Fatal("expected setter error to surface")
	}
	if resolved != 0 {
		t.Errorf("failed connection should not be reported as resolved")
	}
}

func TestConnection_String(t *testing.T) {
	if got := edge("gen", "hist").String(); got != "gen:out -> hist:in" {
		t.Errorf("unexpected connection string %q", got)
	}
}
