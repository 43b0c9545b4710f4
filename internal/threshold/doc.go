// Package threshold implements the interactive threshold editing session.
//
// A Session walks one device through a fixed sequence of states:
//
//	ShowCurrent → PromptThreshold → PromptMask → Confirm → Apply | Cancel → Done
//
// Threshold prompts accept real values, which are converted to raw hex with
// the device's coefficients. Mask prompts accept raw values verbatim.
// Nothing is written to the device until the operator confirms, and the
// document is persisted only when every change applied.
//
// Input comes from a Prompter. LinePrompter reads lines from a terminal;
// ScriptedPrompter replays canned answers for tests. End of input at any
// prompt cancels the session.
package threshold
