/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Metacraft Labs Ltd. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package trace

import "fmt"

// Location is a position in the recorded execution: a source coordinate
// plus the tick count that orders it on the execution timeline.
type Location struct {
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
	Ticks  int64  `json:"ticks"`
}

func (l Location) String() string {
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.Path, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.Path, l.Line)
}

// Variable is a named value captured at a point in the recording. Children
// hold the fields or elements of structured values, up to the depth the
// query asked for.
type Variable struct {
	Name     string     `json:"name"`
	Value    string     `json:"value"`
	Type     string     `json:"type,omitempty"`
	Children []Variable `json:"children,omitempty"`
}

// Child returns the direct child with the given name, or nil.
func (v *Variable) Child(name string) *Variable {
	for i := range v.Children {
		if v.Children[i].Name == name {
			return &v.Children[i]
		}
	}
	return nil
}

// Lookup returns the variable with the given name from a flat list, or nil.
func Lookup(variables []Variable, name string) *Variable {
	for i := range variables {
		if variables[i].Name == name {
			return &variables[i]
		}
	}
	return nil
}

// Frame is one entry of the recorded call stack at the current position.
type Frame struct {
	FunctionName string   `json:"functionName"`
	Location     Location `json:"location"`
}

// Call is one node of the recorded call tree.
type Call struct {
	ID            int64     `json:"id"`
	FunctionName  string    `json:"functionName"`
	Location      Location  `json:"location"`
	ReturnValue   *Variable `json:"returnValue,omitempty"`
	ChildrenCount int       `json:"childrenCount"`
	Depth         int       `json:"depth"`
}

// Event is one entry of the recorded event log (writes to standard
// streams, trace log calls, and similar).
type Event struct {
	ID       int64     `json:"id"`
	Kind     string    `json:"kind"`
	Message  string    `json:"message"`
	Location *Location `json:"location,omitempty"`
	Ticks    int64     `json:"ticks"`
	Content  string    `json:"content,omitempty"`
}

// ValueTraceStep is one recorded visit of a line during value tracing:
// where it happened and the tracked values before and after the line ran.
type ValueTraceStep struct {
	Location     Location          `json:"location"`
	Ticks        int64             `json:"ticks"`
	LoopID       int64             `json:"loopId"`
	Iteration    int               `json:"iteration"`
	BeforeValues map[string]string `json:"beforeValues,omitempty"`
	AfterValues  map[string]string `json:"afterValues,omitempty"`
}

// Loop describes a loop the value trace passed through.
type Loop struct {
	ID             int64 `json:"id"`
	StartLine      int   `json:"startLine"`
	EndLine        int   `json:"endLine"`
	IterationCount int   `json:"iterationCount"`
}

// ValueTrace is the result of tracing a source line through the recording:
// every visit of the line, plus the loop structure around those visits.
type ValueTrace struct {
	Steps []ValueTraceStep `json:"steps"`
	Loops []Loop           `json:"loops,omitempty"`
}

// Process identifies one process in a multi-process recording.
type Process struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Command string `json:"command,omitempty"`
}

// NamedValue pairs an expression with its captured rendering.
type NamedValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// TracepointHit is one firing of a tracepoint during a tracepoint run.
type TracepointHit struct {
	TracepointID int64        `json:"tracepointId"`
	Path         string       `json:"path"`
	Line         int          `json:"line"`
	Ticks        int64        `json:"ticks"`
	Iteration    int          `json:"iteration"`
	Values       []NamedValue `json:"values,omitempty"`
}

// EventFilter narrows an event log query. Zero value means no filtering.
type EventFilter struct {
	// Kind restricts results to events of this kind.
	Kind string

	// Search restricts results to events whose message contains this
	// substring.
	Search string
}
