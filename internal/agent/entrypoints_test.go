package agent

import (
	"context"
	"encoding/json"
	"testing"

	"codegraph/internal/tools"
)

func TestRegisterEntrypointsRegistersAllKinds(t *testing.T) {
	reg := echoToolRegistry(t)
	chat := &scriptedChat{responses: []string{
		`{"thought": "answering directly", "done": true, "answer": "done"}`,
	}}
	a := New(testCfg(chat, reg))

	if err := RegisterEntrypoints(reg, a, 8000, nil); err != nil {
		t.Fatalf("RegisterEntrypoints failed: %v", err)
	}

	for _, kind := range analysisKinds {
		name := "agentic_" + kind
		if reg.Get(name) == nil {
			t.Errorf("expected tool %s to be registered", name)
		}
	}

	agentic := reg.GetByCategory(tools.CategoryAgentic)
	if len(agentic) != len(analysisKinds) {
		t.Fatalf("expected %d agentic tools, got %d", len(analysisKinds), len(agentic))
	}
}

func TestEntrypointExecuteReturnsEnvelope(t *testing.T) {
	reg := echoToolRegistry(t)
	chat := &scriptedChat{responses: []string{
		`{"thought": "straightforward", "done": true, "answer": "42 call sites"}`,
	}}
	a := New(testCfg(chat, reg))
	if err := RegisterEntrypoints(reg, a, 8000, nil); err != nil {
		t.Fatalf("RegisterEntrypoints failed: %v", err)
	}

	res, err := reg.Execute(context.Background(), "agentic_call_chain_analysis", map[string]any{"query": "who calls Foo?"})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	var out EntrypointResult
	if err := json.Unmarshal([]byte(res.Result), &out); err != nil {
		t.Fatalf("result was not valid JSON: %v", err)
	}
	if !out.Completed || out.FinalAnswer != "42 call sites" {
		t.Fatalf("unexpected entrypoint result: %+v", out)
	}
}

func TestEntrypointSurfacesMaxStepsAsTerminationReason(t *testing.T) {
	reg := echoToolRegistry(t)
	responses := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		responses = append(responses, `{"thought": "still working", "done": false, "tool_call": {"name": "echo", "arguments": {"text": "x"}}}`)
	}
	chat := &scriptedChat{responses: responses}
	cfg := testCfg(chat, reg)
	cfg.StepBudgetOverride = 5
	a := New(cfg)
	if err := RegisterEntrypoints(reg, a, 8000, nil); err != nil {
		t.Fatalf("RegisterEntrypoints failed: %v", err)
	}

	res, err := reg.Execute(context.Background(), "agentic_code_search", map[string]any{"query": "loop forever"})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	var out EntrypointResult
	if err := json.Unmarshal([]byte(res.Result), &out); err != nil {
		t.Fatalf("result was not valid JSON: %v", err)
	}
	if out.TerminationReason != "max_steps" {
		t.Fatalf("expected termination_reason %q, got %q", "max_steps", out.TerminationReason)
	}
	if out.Completed {
		t.Fatal("expected completed false for a step-budget exhaustion")
	}
	if out.TerminationDetail == "" {
		t.Fatal("expected the prose reason to still be carried in termination_detail")
	}
}

func TestEntrypointRejectsEmptyQuery(t *testing.T) {
	reg := echoToolRegistry(t)
	a := New(testCfg(&scriptedChat{}, reg))
	if err := RegisterEntrypoints(reg, a, 8000, nil); err != nil {
		t.Fatalf("RegisterEntrypoints failed: %v", err)
	}

	_, err := reg.Execute(context.Background(), "agentic_code_search", map[string]any{"query": ""})
	if err == nil {
		t.Fatal("expected an error for an empty query")
	}
}
