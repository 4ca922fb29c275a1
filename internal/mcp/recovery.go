package mcp

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"

	"github.com/ragcore-ai/engine/internal/ragerr"
)

// recoveryAction determines how CallTool reacts to a failed attempt.
type recoveryAction int

const (
	// noRetry — the error is not recoverable (bad request, timeout, protocol error).
	noRetry recoveryAction = iota
	// retryNewSession — transport failure; tear down and recreate the session, then retry once.
	retryNewSession
)

// Recovery timing, ported from tarsy's pkg/mcp/recovery.go.
const (
	reinitTimeout    = 10 * time.Second
	operationTimeout = 90 * time.Second
	retryBackoffMin  = 250 * time.Millisecond
	retryBackoffMax  = 750 * time.Millisecond
	initTimeout      = 30 * time.Second
)

// classifyError maps a CallTool failure onto spec.md §4.5's error kinds and
// decides whether a reconnect-and-retry is worth attempting. NotConnected and
// UnknownTool are not reachable from here — they're detected earlier, before
// a call ever reaches the session (see Client.CallTool).
func classifyError(err error) (ragerr.Kind, recoveryAction) {
	if err == nil {
		return "", noRetry
	}

	if errors.Is(err, context.Canceled) {
		return ragerr.Cancelled, noRetry
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ragerr.Timeout, noRetry
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ragerr.Timeout, noRetry
		}
		return ragerr.Transport, retryNewSession
	}

	if isConnectionError(err) {
		return ragerr.Transport, retryNewSession
	}

	if isMCPProtocolError(err) {
		return ragerr.ToolExecution, noRetry
	}

	return ragerr.ToolExecution, noRetry
}

func isConnectionError(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, substr := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"connection closed",
		"no such host",
	} {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

// isMCPProtocolError detects a JSON-RPC level protocol error from the SDK;
// these indicate a malformed request, not a transient transport problem, so
// retrying them would just reproduce the same failure.
func isMCPProtocolError(err error) bool {
	var wireErr *jsonrpc.Error
	if !errors.As(err, &wireErr) {
		return false
	}
	switch wireErr.Code {
	case jsonrpc.CodeParseError, jsonrpc.CodeInvalidRequest, jsonrpc.CodeMethodNotFound, jsonrpc.CodeInvalidParams:
		return true
	default:
		return false
	}
}
