// Package engine implements the workflow Executor.
package engine

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/dataflow-studio/engine/pkg/config"
	"github.com/dataflow-studio/engine/pkg/graph"
	"github.com/dataflow-studio/engine/pkg/logging"
	"github.com/dataflow-studio/engine/pkg/node"
	"github.com/dataflow-studio/engine/pkg/observer"
	"github.com/dataflow-studio/engine/pkg/table"
	"github.com/dataflow-studio/engine/pkg/workflow"
)

// Engine is the workflow Executor: it builds a graph from a document,
// topologically sorts it, and runs each node in order.
type Engine struct {
	registry *node.Registry
	store    node.TableStore
	config   config.Config

	workflowID  string
	logger      *logging.Logger
	observerMgr *observer.Manager
}

// New returns an Engine backed by registry for node construction and store
// for the I/O nodes (ReadCSV, Output), using cfg's MaxNodes and MaxEdges
// limits. The Engine does not apply cfg.MaxExecutionTime; Execute runs
// until it finishes or its ctx is done.
func New(registry *node.Registry, store node.TableStore, cfg config.Config) *Engine {
	return &Engine{
		registry:    registry,
		store:       store,
		config:      cfg,
		logger:      logging.New(logging.DefaultConfig()),
		observerMgr: observer.NewManager(),
	}
}

// WithWorkflowID tags subsequent Execute calls with the given workflow id
// for logging and observer events. Returns the Engine for chaining.
func (e *Engine) WithWorkflowID(workflowID string) *Engine {
	e.workflowID = workflowID
	return e
}

// WithLogger replaces the Engine's structured logger. Returns the Engine
// for chaining.
func (e *Engine) WithLogger(logger *logging.Logger) *Engine {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// RegisterObserver adds an observer to receive workflow/node execution
// events. Returns the Engine for chaining.
func (e *Engine) RegisterObserver(obs observer.Observer) *Engine {
	if obs != nil {
		e.observerMgr.Register(obs)
	}
	return e
}

// NodeCatalog returns the registered node kinds, sorted by type for a
// stable response (Registry.Catalog itself makes no ordering promise).
func (e *Engine) NodeCatalog() []workflow.NodeDescriptor {
	descriptors := e.registry.Catalog()
	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Type < descriptors[j].Type
	})
	return descriptors
}

// generateExecutionID returns a 16-hex-character id unique to one
// Execute call, used for log correlation and observer events.
func generateExecutionID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("exec-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// Execute runs the workflow document to completion, in topological order,
// and returns the per-node results. It fails — returning a nil map and a
// non-nil error, never a partial per-node result — when the node list is
// empty, a node names an unregistered type, an edge names an unknown
// node, or the graph contains a cycle. A node's own runtime failure is
// instead recorded on its own NodeResult and does not abort the run.
//
// ctx bounds the whole call; on cancellation between nodes, Execute stops
// scheduling further nodes and returns the partial results gathered so far
// together with a context-wrapped error.
func (e *Engine) Execute(ctx context.Context, doc workflow.Document) (map[string]workflow.NodeResult, error) {
	startTime := time.Now()
	executionID := generateExecutionID()
	logger := e.logger.WithWorkflowID(e.workflowID).WithExecutionID(executionID)

	logger.Info("workflow execution started")
	e.notifyWorkflowStart(ctx, executionID, startTime)

	if len(doc.Nodes) == 0 {
		err := ErrEmptyWorkflow
		logger.WithError(err).Error("workflow execution rejected")
		e.notifyWorkflowEnd(ctx, executionID, startTime, err)
		return nil, err
	}
	if e.config.MaxNodes > 0 && len(doc.Nodes) > e.config.MaxNodes {
		err := fmt.Errorf("%w: %d nodes, limit %d", ErrTooManyNodes, len(doc.Nodes), e.config.MaxNodes)
		logger.WithError(err).Error("workflow execution rejected")
		e.notifyWorkflowEnd(ctx, executionID, startTime, err)
		return nil, err
	}
	if e.config.MaxEdges > 0 && len(doc.Edges) > e.config.MaxEdges {
		err := fmt.Errorf("%w: %d edges, limit %d", ErrTooManyEdges, len(doc.Edges), e.config.MaxEdges)
		logger.WithError(err).Error("workflow execution rejected")
		e.notifyWorkflowEnd(ctx, executionID, startTime, err)
		return nil, err
	}

	nodeIDs := make([]string, len(doc.Nodes))
	nodeTypes := make(map[string]workflow.NodeType, len(doc.Nodes))
	instances := make(map[string]node.Node, len(doc.Nodes))
	for i, n := range doc.Nodes {
		nodeIDs[i] = n.ID
		nodeTypes[n.ID] = n.Type
		instance, err := e.registry.New(n.Type, n.Config, e.store)
		if err != nil {
			logger.WithError(err).WithNodeID(n.ID).Error("workflow execution rejected")
			e.notifyWorkflowEnd(ctx, executionID, startTime, err)
			return nil, err
		}
		instances[n.ID] = instance
	}

	g, err := graph.Build(nodeIDs, doc.Edges)
	if err != nil {
		logger.WithError(err).Error("workflow execution rejected")
		e.notifyWorkflowEnd(ctx, executionID, startTime, err)
		return nil, err
	}

	order, err := g.TopologicalSort()
	if err != nil {
		logger.WithError(err).Error("workflow execution rejected")
		e.notifyWorkflowEnd(ctx, executionID, startTime, err)
		return nil, err
	}

	logger.WithField("execution_order", order).WithField("node_count", len(order)).Debug("execution order determined")

	results := make(map[string]workflow.NodeResult, len(order))
	outputs := make(map[string]*table.Table, len(order))

	for _, id := range order {
		if err := ctx.Err(); err != nil {
			wrapped := fmt.Errorf("workflow execution canceled: %w", err)
			logger.WithError(wrapped).Error("workflow execution canceled")
			e.notifyWorkflowEnd(ctx, executionID, startTime, wrapped)
			return results, wrapped
		}

		nodeLogger := logger.WithNodeID(id).WithNodeType(nodeTypes[id])
		nodeStart := time.Now()
		nodeLogger.Debug("node execution started")
		e.notifyNodeStart(ctx, executionID, id, nodeTypes[id], nodeStart)

		inputs := e.gatherInputs(g, id, outputs, nodeLogger)
		result := e.executeNode(instances[id], inputs)
		results[id] = result

		if result.Success && result.Data != nil {
			outputs[id] = result.Data
		}

		if result.Success {
			nodeLogger.WithField("duration_ms", time.Since(nodeStart).Milliseconds()).Info("node execution completed")
			e.notifyNodeSuccess(ctx, executionID, id, nodeTypes[id], nodeStart, result)
		} else {
			nodeLogger.WithField("error", result.Error).Error("node execution failed")
			e.notifyNodeFailure(ctx, executionID, id, nodeTypes[id], nodeStart, result)
		}
	}

	logger.WithField("duration_ms", time.Since(startTime).Milliseconds()).WithField("nodes_executed", len(order)).Info("workflow execution completed")
	e.notifyWorkflowEnd(ctx, executionID, startTime, nil)

	return results, nil
}

// gatherInputs collects the upstream outputs feeding nodeID, ordered by
// toPort (string-ascending), handing each node an independent copy so
// in-place mutation cannot leak to sibling consumers of the same upstream
// output. An upstream with no cached output (it failed, or produced no
// data) is omitted and logged, leaving the downstream node's own
// input-count contract to decide how to react.
func (e *Engine) gatherInputs(g *graph.Graph, nodeID string, outputs map[string]*table.Table, logger *logging.Logger) []*table.Table {
	edges := append([]workflow.Edge(nil), g.InputEdges(nodeID)...)
	sort.Slice(edges, func(i, j int) bool { return edges[i].ToPort < edges[j].ToPort })

	inputs := make([]*table.Table, 0, len(edges))
	for _, edge := range edges {
		upstream, ok := outputs[edge.FromNodeID]
		if !ok {
			logger.WithField("missing_upstream", edge.FromNodeID).Warn("upstream produced no output")
			continue
		}
		inputs = append(inputs, upstream.Clone())
	}
	return inputs
}

// executeNode invokes node.Execute, converting any panic into a failed
// NodeResult so a single misbehaving node cannot abort the run.
func (e *Engine) executeNode(n node.Node, inputs []*table.Table) (result workflow.NodeResult) {
	defer func() {
		if r := recover(); r != nil {
			result = workflow.NodeResult{Success: false, Error: fmt.Sprintf("node panicked: %v", r)}
		}
	}()
	return n.Execute(inputs)
}

func (e *Engine) notifyWorkflowStart(ctx context.Context, executionID string, startTime time.Time) {
	if !e.observerMgr.HasObservers() {
		return
	}
	e.observerMgr.Notify(ctx, observer.Event{
		Type:        observer.EventWorkflowStart,
		Status:      observer.StatusStarted,
		Timestamp:   startTime,
		ExecutionID: executionID,
		WorkflowID:  e.workflowID,
		StartTime:   startTime,
	})
}

func (e *Engine) notifyWorkflowEnd(ctx context.Context, executionID string, startTime time.Time, err error) {
	if !e.observerMgr.HasObservers() {
		return
	}
	status := observer.StatusSuccess
	if err != nil {
		status = observer.StatusFailure
	}
	e.observerMgr.Notify(ctx, observer.Event{
		Type:        observer.EventWorkflowEnd,
		Status:      status,
		Timestamp:   time.Now(),
		ExecutionID: executionID,
		WorkflowID:  e.workflowID,
		StartTime:   startTime,
		ElapsedTime: time.Since(startTime),
		Error:       err,
	})
}

func (e *Engine) notifyNodeStart(ctx context.Context, executionID, nodeID string, nodeType workflow.NodeType, startTime time.Time) {
	if !e.observerMgr.HasObservers() {
		return
	}
	e.observerMgr.Notify(ctx, observer.Event{
		Type:        observer.EventNodeStart,
		Status:      observer.StatusStarted,
		Timestamp:   startTime,
		ExecutionID: executionID,
		WorkflowID:  e.workflowID,
		NodeID:      nodeID,
		NodeType:    nodeType,
		StartTime:   startTime,
	})
}

func (e *Engine) notifyNodeSuccess(ctx context.Context, executionID, nodeID string, nodeType workflow.NodeType, startTime time.Time, result workflow.NodeResult) {
	if !e.observerMgr.HasObservers() {
		return
	}
	e.observerMgr.Notify(ctx, observer.Event{
		Type:        observer.EventNodeSuccess,
		Status:      observer.StatusSuccess,
		Timestamp:   time.Now(),
		ExecutionID: executionID,
		WorkflowID:  e.workflowID,
		NodeID:      nodeID,
		NodeType:    nodeType,
		StartTime:   startTime,
		ElapsedTime: time.Since(startTime),
		Result:      result,
	})
}

func (e *Engine) notifyNodeFailure(ctx context.Context, executionID, nodeID string, nodeType workflow.NodeType, startTime time.Time, result workflow.NodeResult) {
	if !e.observerMgr.HasObservers() {
		return
	}
	e.observerMgr.Notify(ctx, observer.Event{
		Type:        observer.EventNodeFailure,
		Status:      observer.StatusFailure,
		Timestamp:   time.Now(),
		ExecutionID: executionID,
		WorkflowID:  e.workflowID,
		NodeID:      nodeID,
		NodeType:    nodeType,
		StartTime:   startTime,
		ElapsedTime: time.Since(startTime),
		Result:      result,
		Error:       fmt.Errorf("%s", result.Error),
	})
}
