package rpcengine

import (
	"github.com/walletd/core/internal/walleterrors"
)

// WireError is the {code, message, data} triple every dApp-facing
// response carries on failure, per spec.md §4.5/§6.
type WireError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// reasonCodes maps a WalletError.Reason to its EIP-1193/EIP-1474 wire
// code, per spec.md §4.5 "Error encoding".
var reasonCodes = map[walleterrors.Reason]int{
	walleterrors.ReasonRejected:           4001,
	walleterrors.ReasonUserRejected:       4001,
	walleterrors.ReasonLocked:             4100,
	walleterrors.ReasonMethodNotFound:     4200,
	walleterrors.ReasonNotCompatible:      4200,
	walleterrors.ReasonDisconnected:       4900,
	walleterrors.ReasonSessionLost:        4900,
	walleterrors.ReasonStaleSession:       4901,
	walleterrors.ReasonChainNotRegistered: 4902,
	walleterrors.ReasonInvalidParams:      -32602,
	walleterrors.ReasonInternal:           -32603,
}

// encodeError converts err to the wire triple. An error that already
// carries an explicit WalletError.Code is preserved verbatim, per
// spec.md §4.5 "If the thrown value already exposes a numeric code, it
// is preserved."
// EncodeError exposes encodeError for callers outside the engine's own
// dispatch path (e.g. portrouter's malformed-envelope responses) that
// still need to serialize an error to the same wire shape.
func EncodeError(err error) WireError {
	return encodeError(err)
}

func encodeError(err error) WireError {
	we := walleterrors.As(err)
	if we == nil {
		return WireError{Code: -32603, Message: err.Error()}
	}
	if we.Code != 0 {
		return WireError{Code: we.Code, Message: we.Message, Data: we.Details}
	}
	code, ok := reasonCodes[we.Reason]
	if !ok {
		code = -32603
	}
	return WireError{Code: code, Message: we.Error(), Data: we.Details}
}
