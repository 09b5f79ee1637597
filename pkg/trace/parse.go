/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Metacraft Labs Ltd. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package trace

import (
	"encoding/json"
	"fmt"
)

// Parsers in this file are pure transformations from daemon reply bodies to
// domain entities. They perform no I/O and hold no state; the session layer
// owns classification of daemon failures, these functions only see
// successful bodies.

// navigationBody is the reply to any navigate request.
type navigationBody struct {
	Path         string `json:"path"`
	Line         int    `json:"line"`
	Column       int    `json:"column"`
	Ticks        int64  `json:"ticks"`
	EndOfTrace   bool   `json:"endOfTrace"`
	StartOfTrace bool   `json:"startOfTrace"`
}

// parseNavigation returns the new location and whether the daemon stopped
// at a boundary of the recording instead of moving.
func parseNavigation(body json.RawMessage) (Location, bool, error) {
	var reply navigationBody
	if err := json.Unmarshal(body, &reply); err != nil {
		return Location{}, false, fmt.Errorf("%w: navigation reply: %v", ErrDaemon, err)
	}

	location := Location{
		Path:   reply.Path,
		Line:   reply.Line,
		Column: reply.Column,
		Ticks:  reply.Ticks,
	}
	return location, reply.EndOfTrace || reply.StartOfTrace, nil
}

// openBody is the reply to open-trace: trace metadata plus an optional
// initial position seed.
type openBody struct {
	Language    string   `json:"language"`
	TotalEvents int      `json:"totalEvents"`
	SourceFiles []string `json:"sourceFiles"`
	Program     string   `json:"program"`
	WorkDir     string   `json:"workdir"`
	Path        string   `json:"path"`
	Line        int      `json:"line"`
	Column      int      `json:"column"`
	Ticks       int64    `json:"ticks"`
}

func parseOpen(body json.RawMessage) (openBody, error) {
	var reply openBody
	if err := json.Unmarshal(body, &reply); err != nil {
		return openBody{}, fmt.Errorf("%w: open-trace reply: %v", ErrDaemon, err)
	}
	return reply, nil
}

// parseVariables decodes a locals reply and applies client-side pruning:
// children below maxDepth are dropped (maxDepth 1 keeps only the top-level
// names), and once countBudget variables have been kept, in pre-order, the
// rest are dropped. A countBudget of 0 or less means no limit.
func parseVariables(body json.RawMessage, maxDepth int, countBudget int) ([]Variable, error) {
	var reply struct {
		Variables []Variable `json:"variables"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("%w: locals reply: %v", ErrDaemon, err)
	}

	if maxDepth < 1 {
		maxDepth = 1
	}

	budget := countBudget
	if budget <= 0 {
		budget = -1
	}

	pruned := make([]Variable, 0, len(reply.Variables))
	for i := range reply.Variables {
		if budget == 0 {
			break
		}
		pruned = append(pruned, pruneVariable(reply.Variables[i], maxDepth, &budget))
	}
	return pruned, nil
}

func pruneVariable(v Variable, depthLeft int, budget *int) Variable {
	if *budget > 0 {
		*budget--
	}

	if depthLeft <= 1 || len(v.Children) == 0 {
		v.Children = nil
		return v
	}

	children := make([]Variable, 0, len(v.Children))
	for i := range v.Children {
		if *budget == 0 {
			break
		}
		children = append(children, pruneVariable(v.Children[i], depthLeft-1, budget))
	}
	v.Children = children
	return v
}

// parseEvaluation turns an evaluate reply into a Variable named after the
// evaluated expression.
func parseEvaluation(body json.RawMessage, expression string) (Variable, error) {
	var reply struct {
		Result string `json:"result"`
		Type   string `json:"type"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return Variable{}, fmt.Errorf("%w: evaluate reply: %v", ErrDaemon, err)
	}

	return Variable{
		Name:  expression,
		Value: reply.Result,
		Type:  reply.Type,
	}, nil
}

func parseFrames(body json.RawMessage) ([]Frame, error) {
	var reply struct {
		Frames []Frame `json:"frames"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("%w: stack-trace reply: %v", ErrDaemon, err)
	}
	return reply.Frames, nil
}

func parseCalls(body json.RawMessage) ([]Call, error) {
	var reply struct {
		Calls []Call `json:"calls"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("%w: calltrace reply: %v", ErrDaemon, err)
	}
	return reply.Calls, nil
}

func parseEvents(body json.RawMessage) ([]Event, error) {
	var reply struct {
		Events []Event `json:"events"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("%w: events reply: %v", ErrDaemon, err)
	}
	return reply.Events, nil
}

func parseValueTrace(body json.RawMessage) (ValueTrace, error) {
	var reply ValueTrace
	if err := json.Unmarshal(body, &reply); err != nil {
		return ValueTrace{}, fmt.Errorf("%w: flow reply: %v", ErrDaemon, err)
	}
	return reply, nil
}

func parseProcesses(body json.RawMessage) ([]Process, error) {
	var reply struct {
		Processes []Process `json:"processes"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("%w: processes reply: %v", ErrDaemon, err)
	}
	return reply.Processes, nil
}

func parseTracepointHits(body json.RawMessage) ([]TracepointHit, error) {
	var reply struct {
		Results []TracepointHit `json:"results"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("%w: tracepoint run reply: %v", ErrDaemon, err)
	}
	return reply.Results, nil
}

func parseTerminal(body json.RawMessage) (string, error) {
	var reply struct {
		Output string `json:"output"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", fmt.Errorf("%w: terminal reply: %v", ErrDaemon, err)
	}
	return reply.Output, nil
}

func parseSource(body json.RawMessage) (string, error) {
	var reply struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", fmt.Errorf("%w: read-source reply: %v", ErrDaemon, err)
	}
	return reply.Content, nil
}

// parseID extracts a single integer identifier field, used for breakpoint,
// watchpoint, and tracepoint registration replies.
func parseID(body json.RawMessage, field string) (int64, error) {
	var reply map[string]json.RawMessage
	if err := json.Unmarshal(body, &reply); err != nil {
		return 0, fmt.Errorf("%w: registration reply: %v", ErrDaemon, err)
	}

	raw, found := reply[field]
	if !found {
		return 0, fmt.Errorf("%w: registration reply has no %q field", ErrDaemon, field)
	}

	var id int64
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, fmt.Errorf("%w: registration reply field %q: %v", ErrDaemon, field, err)
	}
	return id, nil
}
