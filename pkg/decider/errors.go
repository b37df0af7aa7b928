package decider

import (
	"errors"

	"orchestrator/pkg/agent/llmerrors"
)

// ErrTransient wraps an LLM call failure the Engine should treat as
// retryable: no internal retry loop runs here (spec §4.5/§7), the caller
// surfaces an AgentEvent and waits for the next snapshot to drive another
// attempt.
var ErrTransient = errors.New("decider: transient LLM failure")

// ErrPermanentInvalid wraps an LLM call failure that will not resolve
// itself on retry (bad API key, rejected prompt, unclassified error). The
// caller must surface this rather than silently waiting.
var ErrPermanentInvalid = errors.New("decider: permanent LLM failure")

// classifyLLMError maps the LLM client's structured error classification
// onto the Decider's two-bucket contract: only ErrorTypeAuth, ErrorTypeBadPrompt,
// and ErrorTypeUnknown are permanent; everything else is treated as
// retryable-via-next-snapshot.
func classifyLLMError(err error) error {
	if err == nil {
		return nil
	}
	switch llmerrors.TypeOf(err) {
	case llmerrors.ErrorTypeAuth, llmerrors.ErrorTypeBadPrompt, llmerrors.ErrorTypeUnknown:
		return errors.Join(ErrPermanentInvalid, err)
	default:
		return errors.Join(ErrTransient, err)
	}
}
