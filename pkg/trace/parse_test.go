/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Metacraft Labs Ltd. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package trace

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNavigation(t *testing.T) {
	t.Parallel()

	t.Run("moved", func(t *testing.T) {
		t.Parallel()

		location, boundary, err := parseNavigation(json.RawMessage(
			`{"path":"src/main.nr","line":12,"column":5,"ticks":420,"endOfTrace":false}`))
		require.NoError(t, err)
		assert.False(t, boundary)
		assert.Equal(t, Location{Path: "src/main.nr", Line: 12, Column: 5, Ticks: 420}, location)
	})

	t.Run("end of trace", func(t *testing.T) {
		t.Parallel()

		_, boundary, err := parseNavigation(json.RawMessage(
			`{"path":"src/main.nr","line":99,"ticks":9000,"endOfTrace":true}`))
		require.NoError(t, err)
		assert.True(t, boundary)
	})

	t.Run("start of trace", func(t *testing.T) {
		t.Parallel()

		_, boundary, err := parseNavigation(json.RawMessage(
			`{"path":"src/main.nr","line":1,"ticks":0,"startOfTrace":true}`))
		require.NoError(t, err)
		assert.True(t, boundary)
	})

	t.Run("invalid body", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseNavigation(json.RawMessage(`"nope"`))
		assert.ErrorIs(t, err, ErrDaemon)
	})
}

func TestParseVariables(t *testing.T) {
	t.Parallel()

	nested := json.RawMessage(`{"variables":[
		{"name":"point","value":"Point{..}","type":"Point","children":[
			{"name":"x","value":"3","type":"i32"},
			{"name":"y","value":"7","type":"i32","children":[
				{"name":"inner","value":"0","type":"i32"}
			]}
		]},
		{"name":"count","value":"2","type":"u64"}
	]}`)

	t.Run("full depth", func(t *testing.T) {
		t.Parallel()

		variables, err := parseVariables(nested, 3, 0)
		require.NoError(t, err)
		require.Len(t, variables, 2)

		point := Lookup(variables, "point")
		require.NotNil(t, point)
		require.Len(t, point.Children, 2)
		y := point.Child("y")
		require.NotNil(t, y)
		assert.Len(t, y.Children, 1)
	})

	t.Run("depth one strips children", func(t *testing.T) {
		t.Parallel()

		variables, err := parseVariables(nested, 1, 0)
		require.NoError(t, err)
		require.Len(t, variables, 2)
		assert.Empty(t, variables[0].Children)
	})

	t.Run("depth two keeps one level", func(t *testing.T) {
		t.Parallel()

		variables, err := parseVariables(nested, 2, 0)
		require.NoError(t, err)
		point := Lookup(variables, "point")
		require.NotNil(t, point)
		require.Len(t, point.Children, 2)
		assert.Empty(t, point.Child("y").Children)
	})

	t.Run("count budget prunes pre-order", func(t *testing.T) {
		t.Parallel()

		// Budget 2 keeps "point" and its first child "x", nothing else.
		variables, err := parseVariables(nested, 3, 2)
		require.NoError(t, err)
		require.Len(t, variables, 1)
		assert.Equal(t, "point", variables[0].Name)
		require.Len(t, variables[0].Children, 1)
		assert.Equal(t, "x", variables[0].Children[0].Name)
	})

	t.Run("lookup miss", func(t *testing.T) {
		t.Parallel()

		variables, err := parseVariables(nested, 1, 0)
		require.NoError(t, err)
		assert.Nil(t, Lookup(variables, "ghost"))
	})
}

func TestParseEvaluation(t *testing.T) {
	t.Parallel()

	variable, err := parseEvaluation(json.RawMessage(`{"result":"42","type":"u64"}`), "answer + 1")
	require.NoError(t, err)
	assert.Equal(t, Variable{Name: "answer + 1", Value: "42", Type: "u64"}, variable)
}

func TestParseFrames(t *testing.T) {
	t.Parallel()

	frames, err := parseFrames(json.RawMessage(`{"frames":[
		{"functionName":"inner","location":{"path":"src/lib.nr","line":30,"ticks":500}},
		{"functionName":"main","location":{"path":"src/main.nr","line":5,"ticks":500}}
	]}`))
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, "inner", frames[0].FunctionName)
	assert.Equal(t, "src/main.nr:5", frames[1].Location.String())
}

func TestParseCalls(t *testing.T) {
	t.Parallel()

	calls, err := parseCalls(json.RawMessage(`{"calls":[
		{"id":1,"functionName":"main","location":{"path":"src/main.nr","line":1,"ticks":0},"childrenCount":2,"depth":0},
		{"id":2,"functionName":"fib","location":{"path":"src/main.nr","line":10,"ticks":40},
		 "returnValue":{"name":"","value":"55","type":"u64"},"childrenCount":0,"depth":1}
	]}`))
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, int64(2), calls[1].ID)
	require.NotNil(t, calls[1].ReturnValue)
	assert.Equal(t, "55", calls[1].ReturnValue.Value)
	assert.Nil(t, calls[0].ReturnValue)
}

func TestParseEvents(t *testing.T) {
	t.Parallel()

	events, err := parseEvents(json.RawMessage(`{"events":[
		{"id":0,"kind":"write","message":"hello\n","ticks":12,
		 "location":{"path":"src/main.nr","line":3,"ticks":12}},
		{"id":1,"kind":"error","message":"boom","ticks":90}
	]}`))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "write", events[0].Kind)
	require.NotNil(t, events[0].Location)
	assert.Equal(t, 3, events[0].Location.Line)
	assert.Nil(t, events[1].Location)
}

func TestParseValueTrace(t *testing.T) {
	t.Parallel()

	valueTrace, err := parseValueTrace(json.RawMessage(`{
		"steps":[
			{"location":{"path":"src/main.nr","line":7,"ticks":100},"ticks":100,"loopId":1,"iteration":0,
			 "beforeValues":{"i":"0"},"afterValues":{"i":"1"}},
			{"location":{"path":"src/main.nr","line":7,"ticks":130},"ticks":130,"loopId":1,"iteration":1,
			 "beforeValues":{"i":"1"},"afterValues":{"i":"2"}}
		],
		"loops":[{"id":1,"startLine":6,"endLine":9,"iterationCount":2}]
	}`))
	require.NoError(t, err)
	require.Len(t, valueTrace.Steps, 2)
	assert.Equal(t, "1", valueTrace.Steps[1].BeforeValues["i"])
	assert.Equal(t, 1, valueTrace.Steps[1].Iteration)
	require.Len(t, valueTrace.Loops, 1)
	assert.Equal(t, 2, valueTrace.Loops[0].IterationCount)
}

func TestParseTracepointHits(t *testing.T) {
	t.Parallel()

	hits, err := parseTracepointHits(json.RawMessage(`{"results":[
		{"tracepointId":5,"path":"src/main.nr","line":7,"ticks":100,"iteration":0,
		 "values":[{"name":"i","value":"0"}]},
		{"tracepointId":5,"path":"src/main.nr","line":7,"ticks":130,"iteration":1,
		 "values":[{"name":"i","value":"1"}]}
	]}`))
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, int64(5), hits[0].TracepointID)
	assert.Equal(t, []NamedValue{{Name: "i", Value: "1"}}, hits[1].Values)
}

func TestParseID(t *testing.T) {
	t.Parallel()

	id, err := parseID(json.RawMessage(`{"breakpointId":17}`), "breakpointId")
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)

	_, err = parseID(json.RawMessage(`{"other":17}`), "breakpointId")
	assert.ErrorIs(t, err, ErrDaemon)

	_, err = parseID(json.RawMessage(`{"breakpointId":"seventeen"}`), "breakpointId")
	assert.ErrorIs(t, err, ErrDaemon)
}

func TestParseTerminalAndSource(t *testing.T) {
	t.Parallel()

	output, err := parseTerminal(json.RawMessage(`{"output":"line one\nline two\n"}`))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", output)

	content, err := parseSource(json.RawMessage(`{"content":"fn main() {}\n"}`))
	require.NoError(t, err)
	assert.Equal(t, "fn main() {}\n", content)
}

func TestClassifyOpenFailure(t *testing.T) {
	t.Parallel()

	err := classifyOpenFailure("cannot read trace metadata: No such file or directory")
	assert.ErrorIs(t, err, ErrTraceNotFound)
	assert.ErrorIs(t, err, ErrTrace)

	err = classifyOpenFailure("trace_paths.json not found or unreadable")
	assert.ErrorIs(t, err, ErrTraceNotFound)

	err = classifyOpenFailure("backend worker crashed")
	assert.ErrorIs(t, err, ErrDaemon)
	assert.NotErrorIs(t, err, ErrTraceNotFound)
}

func TestLocationString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a.nr:3", Location{Path: "a.nr", Line: 3}.String())
	assert.Equal(t, "a.nr:3:9", Location{Path: "a.nr", Line: 3, Column: 9}.String())
}
