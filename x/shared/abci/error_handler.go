// Package abci provides error handling for ABCI blockers, which must never
// return errors that would halt the chain.
package abci

import (
	"fmt"

	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/hashicorp/go-metrics"
)

// EventTypeBlockerError is emitted for every handled blocker error.
const EventTypeBlockerError = "abci_blocker_error"

// ErrorSeverity classifies the severity of ABCI blocker errors.
type ErrorSeverity int

const (
	// SeverityLow covers bookkeeping that can be redone later, such as expiry sweeps.
	SeverityLow ErrorSeverity = iota

	// SeverityMedium covers failed side effects whose main transition still
	// happened, such as a consumer hook rejecting a verdict.
	SeverityMedium

	// SeverityHigh covers value movements that did not happen, such as a
	// release or slash transfer failing.
	SeverityHigh

	// SeverityCritical covers broken state invariants, such as a queued
	// evaluation without its request record.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// BlockerErrorHandler logs handled errors with their severity, emits a
// monitoring event and counts them in telemetry.
type BlockerErrorHandler struct {
	moduleName string
	ctx        sdk.Context
	handled    int
}

// NewBlockerErrorHandler creates a new error handler for the given module.
func NewBlockerErrorHandler(ctx sdk.Context, moduleName string) *BlockerErrorHandler {
	return &BlockerErrorHandler{
		moduleName: moduleName,
		ctx:        ctx,
	}
}

// HandleError records err and returns. Callers continue with the next item.
// Extra key/value pairs are added to the log line and the event.
func (h *BlockerErrorHandler) HandleError(operation string, severity ErrorSeverity, err error, keyvals ...string) {
	if err == nil {
		return
	}
	h.handled++

	logArgs := []interface{}{
		"module", h.moduleName,
		"operation", operation,
		"severity", severity.String(),
		"error", err.Error(),
	}
	for i := 0; i+1 < len(keyvals); i += 2 {
		logArgs = append(logArgs, keyvals[i], keyvals[i+1])
	}

	logger := h.ctx.Logger()
	switch severity {
	case SeverityCritical:
		logger.Error("CRITICAL ABCI error", logArgs...)
	case SeverityHigh:
		logger.Error("ABCI blocker error", logArgs...)
	case SeverityMedium:
		logger.Warn("ABCI blocker warning", logArgs...)
	default:
		logger.Debug("ABCI blocker minor issue", logArgs...)
	}

	attrs := []sdk.Attribute{
		sdk.NewAttribute("module", h.moduleName),
		sdk.NewAttribute("operation", operation),
		sdk.NewAttribute("severity", severity.String()),
		sdk.NewAttribute("error", err.Error()),
		sdk.NewAttribute("height", fmt.Sprintf("%d", h.ctx.BlockHeight())),
	}
	for i := 0; i+1 < len(keyvals); i += 2 {
		attrs = append(attrs, sdk.NewAttribute(keyvals[i], keyvals[i+1]))
	}
	h.ctx.EventManager().EmitEvent(sdk.NewEvent(EventTypeBlockerError, attrs...))

	telemetry.IncrCounterWithLabels(
		[]string{h.moduleName, "blocker", "errors"},
		1,
		[]metrics.Label{
			telemetry.NewLabel("operation", operation),
			telemetry.NewLabel("severity", severity.String()),
		},
	)
}

// WrapError handles err and reports whether there was one.
//
//	if handler.WrapError("expire_statuses", SeverityLow, k.expireStatuses(ctx, period)) {
//	    // handled, continue with settlement
//	}
func (h *BlockerErrorHandler) WrapError(operation string, severity ErrorSeverity, err error) bool {
	if err != nil {
		h.HandleError(operation, severity, err)
		return true
	}
	return false
}

// Handled returns how many errors this handler recorded.
func (h *BlockerErrorHandler) Handled() int {
	return h.handled
}
