// Package walleterrors implements the reason-tagged error taxonomy of
// spec.md §7: handlers throw a WalletError carrying a domain Reason: the
// RPC engine's namespace adapters convert it to a JSON-RPC {code,message,
// data} triple, while the UI bridge forwards the Reason verbatim so it can
// localise messages.
package walleterrors

import "fmt"

// Reason is one of the taxonomy codes enumerated in spec.md §7.
type Reason string

const (
	// Vault
	ReasonNotInitialized    Reason = "NotInitialized"
	ReasonAlreadyInitialized Reason = "AlreadyInitialized"
	ReasonInvalidCiphertext Reason = "InvalidCiphertext"
	ReasonInvalidPassword   Reason = "InvalidPassword"
	ReasonLocked            Reason = "Locked"

	// Keyring
	ReasonInvalidMnemonic   Reason = "InvalidMnemonic"
	ReasonInvalidPrivateKey Reason = "InvalidPrivateKey"
	ReasonInvalidAddress    Reason = "InvalidAddress"
	ReasonDuplicateAccount  Reason = "DuplicateAccount"
	ReasonAccountNotFound   Reason = "AccountNotFound"
	ReasonSecretUnavailable Reason = "SecretUnavailable"
	ReasonIndexOutOfRange   Reason = "IndexOutOfRange"

	// Permission
	ReasonNotConnected      Reason = "NotConnected"
	ReasonDenied            Reason = "Denied"
	ReasonNamespaceMismatch Reason = "NamespaceMismatch"

	// Approval
	ReasonRejected Reason = "Rejected"
	ReasonNotFound Reason = "NotFound"
	ReasonExpired  Reason = "Expired"

	// Chain
	ReasonChainNotRegistered Reason = "NotRegistered"
	ReasonNotCompatible      Reason = "NotCompatible"

	// Transport
	ReasonDisconnected Reason = "Disconnected"
	ReasonSessionLost  Reason = "SessionLost"
	ReasonStaleSession Reason = "StaleSession"

	// RPC
	ReasonInvalidRequest Reason = "InvalidRequest"
	ReasonInvalidParams  Reason = "InvalidParams"
	ReasonMethodNotFound Reason = "MethodNotFound"
	ReasonInternal       Reason = "Internal"

	// Transaction pipeline (additive, not in the original taxonomy table
	// but named by spec.md §4.4/§8 scenario 5)
	ReasonReceiptTimeout     Reason = "ReceiptTimeout"
	ReasonInvalidTransition  Reason = "InvalidTransition"
	ReasonUserRejected       Reason = "UserRejected"
)

// WalletError is the sum type every handler throws. Code is an optional
// pre-resolved wire code (EIP-1193/EIP-1474); when zero, the namespace
// adapter resolves one from Reason.
type WalletError struct {
	Reason  Reason
	Message string
	Code    int
	Details map[string]any
}

// Error implements the error interface.
func (e *WalletError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Reason, e.Message)
	}
	return string(e.Reason)
}

// WithDetails returns a copy of e with a detail key set, for chaining at
// the call site (e.g. errors.InvalidToken(err).WithDetails("method", alg)).
func (e *WalletError) WithDetails(key string, value any) *WalletError {
	cp := *e
	cp.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[key] = value
	return &cp
}

// WithCode returns a copy of e with an explicit wire code, used when a
// thrown value already carries one that middleware must preserve verbatim.
func (e *WalletError) WithCode(code int) *WalletError {
	cp := *e
	cp.Code = code
	return &cp
}

// New constructs a WalletError for reason with a message.
func New(reason Reason, message string) *WalletError {
	return &WalletError{Reason: reason, Message: message}
}

// Wrap constructs a WalletError for reason, folding err's text into Message
// when non-nil.
func Wrap(reason Reason, err error, message string) *WalletError {
	if err == nil {
		return New(reason, message)
	}
	if message == "" {
		message = err.Error()
	} else {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	return New(reason, message)
}

// As extracts a *WalletError from err, or nil if err is not one.
func As(err error) *WalletError {
	we, _ := err.(*WalletError)
	return we
}

// Is reports whether err is a WalletError with the given reason.
func Is(err error, reason Reason) bool {
	we := As(err)
	return we != nil && we.Reason == reason
}
