package agent

import (
	"context"
	"errors"

	"codegraph/internal/config"
	"codegraph/internal/llm"
	"codegraph/internal/logging"
	"codegraph/internal/tools"
	"codegraph/internal/types"
)

const (
	maxConsecutiveValidationFailures = 3
	maxConsecutiveSameToolFailures   = 3
)

// Config wires an Agent's dependencies: the chat provider driving Thinking,
// the tool registry driving ToolCall/Observing, and the tier/timeout tables
// from internal/config.
type Config struct {
	Chat     llm.ChatProvider
	Registry *tools.Registry
	Tiers    config.TierTable
	Timeouts config.Timeouts

	// Architecture is config.Config.AgentArchitecture ("react" or "lats");
	// resolveArchitecture folds "lats" back to "react" with a warning.
	Architecture string

	// StepBudgetOverride, when > 0, overrides every tier's step budget.
	StepBudgetOverride int
}

// Agent runs the ReAct loop (§4.6) for one request at a time; callers
// issue one Agent.Run per request (the loop itself is not shared state).
type Agent struct {
	cfg Config
}

func New(cfg Config) *Agent {
	resolveArchitecture(cfg.Architecture) // logs a warning once per construction if "lats"
	return &Agent{cfg: cfg}
}

// Run drives one ReAct request to completion: query is the user's natural
// language question, analysisType is one of the seven agentic_<kind> tags
// (§4.6/§4.8), contextWindowTokens is the driving LLM's context window
// (used to derive the tier), and progress (optional) receives a
// notification after each Observing transition.
func (a *Agent) Run(ctx context.Context, query, analysisType string, contextWindowTokens int, progress ProgressFunc) (*Result, error) {
	tier, settings := settingsFor(a.cfg.Tiers, contextWindowTokens, a.cfg.StepBudgetOverride)

	reqCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeouts.RequestTimeout(tier))
	defer cancel()

	toolset := a.cfg.Registry.FilterByAnalysisType(analysisType)
	systemPrompt := buildSystemPrompt(settings, analysisType, toolset)

	mem := newMemory(settings.StepBudget, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	mem.Append(llm.Message{Role: llm.RoleUser, Content: query})

	result := &Result{Steps: make([]Step, 0, settings.StepBudget)}

	validationFailures := 0
	sameToolFailures := 0
	lastFailingTool := ""

	for stepNum := 1; stepNum <= settings.StepBudget; stepNum++ {
		// Thinking
		if err := reqCtx.Err(); err != nil {
			state, kind := classifyCtxErr(err)
			return terminate(result, state, kind, stepNum-1, "context ended before Thinking")
		}

		chatResult, err := a.cfg.Chat.Chat(reqCtx, mem.Messages(), llm.ChatOptions{
			Temperature: settings.Temperature,
			MaxTokens:   settings.ResponseTokenCeil,
		})
		if err != nil {
			if ctxErr := reqCtx.Err(); ctxErr != nil {
				state, kind := classifyCtxErr(ctxErr)
				return terminate(result, state, kind, stepNum-1, "LLM call aborted: "+ctxErr.Error())
			}
			logging.AgentError("LLM chat failed: %v", err)
			return terminate(result, StateError, types.KindLLMError, stepNum-1, "LLM transport failure: "+err.Error())
		}

		env, parseErr := parseEnvelope(chatResult.Text)
		mem.Append(llm.Message{Role: llm.RoleAssistant, Content: chatResult.Text})

		if parseErr != nil {
			validationFailures++
			obs := "could not parse model response: " + parseErr.Error()
			result.Steps = append(result.Steps, Step{Thought: "", Error: obs})
			if validationFailures >= maxConsecutiveValidationFailures {
				return terminate(result, StateError, types.KindLLMError, stepNum, "exceeded consecutive validation failures")
			}
			mem.Append(llm.Message{Role: llm.RoleUser, Content: "Observation (error): " + obs})
			continue
		}

		if env.Done {
			result.Answer = env.Answer
			result.Steps = append(result.Steps, Step{Thought: env.Thought, Result: env.Answer})
			return terminate(result, StateFinal, "", stepNum, "")
		}

		// ToolCall
		if env.Tool == nil || env.Tool.Name == "" {
			validationFailures++
			obs := "done=false but no tool_call provided"
			result.Steps = append(result.Steps, Step{Thought: env.Thought, Error: obs})
			if validationFailures >= maxConsecutiveValidationFailures {
				return terminate(result, StateError, types.KindLLMError, stepNum, "exceeded consecutive validation failures")
			}
			mem.Append(llm.Message{Role: llm.RoleUser, Content: "Observation (error): " + obs})
			continue
		}

		if a.cfg.Registry.Get(env.Tool.Name) == nil {
			validationFailures++
			obs := "unknown tool: " + env.Tool.Name
			result.Steps = append(result.Steps, Step{Thought: env.Thought, ToolName: env.Tool.Name, Arguments: env.Tool.Arguments, Error: obs})
			if validationFailures >= maxConsecutiveValidationFailures {
				return terminate(result, StateError, types.KindToolError, stepNum, "exceeded consecutive validation failures")
			}
			mem.Append(llm.Message{Role: llm.RoleUser, Content: "Observation (error): " + obs})
			continue
		}

		toolCtx, toolCancel := context.WithTimeout(reqCtx, a.cfg.Timeouts.PerToolCall)
		toolResult, execErr := a.cfg.Registry.Execute(toolCtx, env.Tool.Name, env.Tool.Arguments)
		toolCancel()

		// Observing
		step := Step{Thought: env.Thought, ToolName: env.Tool.Name, Arguments: env.Tool.Arguments}
		if execErr != nil {
			step.Error = execErr.Error()
			result.Steps = append(result.Steps, step)

			if isValidationError(execErr) {
				validationFailures++
				sameToolFailures = 0
				lastFailingTool = ""
				if validationFailures >= maxConsecutiveValidationFailures {
					return terminate(result, StateError, types.KindToolError, stepNum, "exceeded consecutive validation failures")
				}
			} else {
				validationFailures = 0
				if env.Tool.Name == lastFailingTool {
					sameToolFailures++
				} else {
					sameToolFailures = 1
					lastFailingTool = env.Tool.Name
				}
				if sameToolFailures >= maxConsecutiveSameToolFailures {
					return terminate(result, StateError, types.KindToolError, stepNum, "tool "+env.Tool.Name+" failed 3 times consecutively")
				}
			}

			mem.Append(llm.Message{Role: llm.RoleUser, Content: "Observation (error): " + execErr.Error()})
		} else {
			validationFailures = 0
			sameToolFailures = 0
			lastFailingTool = ""
			step.Result = toolResult.Result
			result.Steps = append(result.Steps, step)
			mem.Append(llm.Message{Role: llm.RoleUser, Content: "Observation: " + toolResult.Result})
		}

		if progress != nil {
			progress(ProgressEvent{Step: stepNum, StepBudget: settings.StepBudget})
		}

		if err := reqCtx.Err(); err != nil {
			state, kind := classifyCtxErr(err)
			return terminate(result, state, kind, stepNum, "context ended after Observing")
		}
	}

	return terminate(result, StateMaxSteps, "", settings.StepBudget, "step budget exhausted")
}

// terminate closes out a Run with the given terminal state. kind is only
// consulted for states that represent a real failure (Error, Timeout,
// Cancelled); Final and MaxSteps return a nil error since the caller got a
// well-formed Result either way.
func terminate(result *Result, state State, kind types.ErrorKind, stepsExecuted int, reason string) (*Result, error) {
	result.FinalState = state
	result.Reason = reason
	result.StepsExecuted = stepsExecuted
	switch state {
	case StateError, StateTimeout, StateCancelled:
		return result, types.New(kind, reason)
	default:
		return result, nil
	}
}

func classifyCtxErr(err error) (State, types.ErrorKind) {
	if errors.Is(err, context.DeadlineExceeded) {
		return StateTimeout, types.KindTimeout
	}
	return StateCancelled, types.KindCancelled
}

func isValidationError(err error) bool {
	return errors.Is(err, tools.ErrMissingRequiredArg) ||
		errors.Is(err, tools.ErrInvalidArgType) ||
		errors.Is(err, tools.ErrToolNotFound)
}
