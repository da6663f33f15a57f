package morpho

import (
	"fmt"

	"github.com/project8/morpho/models"
)

// Connection links an output attribute of a producer to an input attribute of a consumer
type Connection struct {
	Producer string
	Output   string
	Consumer string
	Input    string

	get models.OutputFunc
	set models.InputFunc
}

func (c *Connection) String() string {
	return fmt.Sprintf("%s:%s -> %s:%s", c.Producer, c.Output, c.Consumer, c.Input)
}

// connectionGraph holds every declared connection in declaration order
type connectionGraph struct {
	connections []*Connection
	byProducer  map[string][]*Connection
}

func newConnectionGraph() *connectionGraph {
	return &connectionGraph{
		byProducer: make(map[string][]*Connection),
	}
}

// add validates a connection against the live processors and records it.
// Attribute names are resolved to accessors here, so typos fail before anything runs.
func (g *connectionGraph) add(c *Connection, lookup func(string) (models.Processor, bool)) error {
	producer, ok := lookup(c.Producer)
	if !ok {
		return models.ErrUnknownProcessorReference(c.Producer, c.String())
	}
	consumer, ok := lookup(c.Consumer)
	if !ok {
		return models.ErrUnknownProcessorReference(c.Consumer, c.String())
	}

	get, ok := producer.Outputs()[c.Output]
	if !ok || get == nil {
		return models.ErrUnknownAttribute(c.Producer, c.Output, models.DirectionOutput)
	}
	set, ok := consumer.Inputs()[c.Input]
	if !ok || set == nil {
		return models.ErrUnknownAttribute(c.Consumer, c.Input, models.DirectionInput)
	}

	c.get, c.set = get, set
	g.connections = append(g.connections, c)
	g.byProducer[c.Producer] = append(g.byProducer[c.Producer], c)
	return nil
}

// resolve copies the outputs of producer into every connected consumer.
// Values are read now, not reactively.
func (g *connectionGraph) resolve(producer string, onResolved func(*Connection)) error {
	for _, c := range g.byProducer[producer] {
		if c.get == nil || c.set == nil {
			return &models.ProcessorRunError{
				Processor: c.Consumer,
				Err:       fmt.Errorf("connection %s points to a deleted processor", c),
			}
		}
		value, produced := c.get()
		if !produced {
			return models.ErrMissingOutputAttribute(c.Producer, c.Output)
		}
		if err := c.set(value); err != nil {
			return &models.ProcessorRunError{
				Processor: c.Consumer,
				Err:       fmt.Errorf("setting input %q from %s:%s: %w", c.Input, c.Producer, c.Output, err),
			}
		}
		if onResolved != nil {
			onResolved(c)
		}
	}
	return nil
}

// release drops the accessors that keep a deleted processor reachable
func (g *connectionGraph) release(name string) {
	for _, c := range g.connections {
		if c.Producer == name {
			c.get = nil
		}
		if c.Consumer == name {
			c.set = nil
		}
	}
}

// sequence orders processors so that every producer runs before its consumers.
//
// The base order lists names in order of first mention
// across the connections, then the unconnected processors in registration order.
// A stable Kahn sort always takes the ready processor with the lowest base
// index, so documents whose connections are declared in execution order keep
// exactly that order.
func (g *connectionGraph) sequence(registered []string) ([]string, error) {
	base := make([]string, 0, len(registered))
	index := make(map[string]int, len(registered))
	mention := func(name string) {
		if _, seen := index[name]; !seen {
			index[name] = len(base)
			base = append(base, name)
		}
	}
	for _, c := range g.connections {
		mention(c.Producer)
		mention(c.Consumer)
	}
	for _, name := range registered {
		mention(name)
	}

	inDegree := make([]int, len(base))
	dependents := make([][]int, len(base))
	seenEdge := make(map[[2]int]bool)
	for _, c := range g.connections {
		from, to := index[c.Producer], index[c.Consumer]
		edge := [2]int{from, to}
		if seenEdge[edge] {
			continue
		}
		seenEdge[edge] = true
		dependents[from] = append(dependents[from], to)
		inDegree[to]++
	}

	order := make([]string, 0, len(base))
	done := make([]bool, len(base))
	for len(order) < len(base) {
		next := -1
		for i := range base {
			if !done[i] && inDegree[i] == 0 {
				next = i
				break
			}
		}
		if next == -1 {
			var cycle []string
			for i, name := range base {
				if !done[i] {
					cycle = append(cycle, name)
				}
			}
			return nil, &models.CyclicConnectionError{Processors: cycle}
		}
		done[next] = true
		order = append(order, base[next])
		for _, d := range dependents[next] {
			inDegree[d]--
		}
	}
	return order, nil
}
