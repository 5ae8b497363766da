package rpcengine

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/walletd/core/internal/accounts"
	"github.com/walletd/core/internal/chainregistry"
	"github.com/walletd/core/internal/network"
	"github.com/walletd/core/internal/permissions"
	"github.com/walletd/core/internal/walleterrors"
)

// EVMNamespace is the CAIP-2 namespace identifier for EIP-155 chains.
const EVMNamespace = "eip155"

// EVMDeps wires the controllers the EVM method table reads from.
type EVMDeps struct {
	Permissions   *permissions.Controller
	Accounts      *accounts.Controller
	ChainRegistry *chainregistry.Controller
	Network       *network.Controller
	HTTPClient    *http.Client
}

// passthroughMethods lists the read-only node methods forwarded verbatim
// to the active RPC endpoint, per spec.md §6's EVM method catalogue
// minimum ("eth_getBalance (passthrough)") generalized to the common
// read surface.
var passthroughMethods = []string{
	"eth_getBalance",
	"eth_blockNumber",
	"eth_getBlockByNumber",
	"eth_getBlockByHash",
	"eth_getTransactionByHash",
	"eth_getTransactionReceipt",
	"eth_call",
	"eth_estimateGas",
	"eth_gasPrice",
	"net_version",
}

// allowWhenLockedEVM is the Open Question decision recorded in
// DESIGN.md: read-only queries with no account or signing material stay
// reachable while locked.
var allowWhenLockedEVM = map[string]bool{
	"eth_chainId":               true,
	"eth_blockNumber":           true,
	"eth_getBalance":            true,
	"eth_getBlockByNumber":      true,
	"eth_getBlockByHash":        true,
	"eth_getTransactionByHash":  true,
	"eth_getTransactionReceipt": true,
	"eth_call":                 true,
	"eth_estimateGas":           true,
	"eth_gasPrice":              true,
	"net_version":               true,
}

// BuildEVMNamespace constructs the eip155 Namespace registration with the
// minimum method catalogue spec.md §6 names.
func BuildEVMNamespace(deps EVMDeps) *Namespace {
	client := deps.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	ns := &Namespace{
		Name:            EVMNamespace,
		MethodPrefixes:  []string{"eth_", "wallet_", "personal_", "net_"},
		Methods:         make(map[string]MethodDefinition),
		AllowWhenLocked: allowWhenLockedEVM,
	}

	ns.Methods["eth_chainId"] = MethodDefinition{
		PermissionCheck: PermissionNone,
		Handler:         deps.handleChainID,
	}
	ns.Methods["net_version"] = MethodDefinition{
		PermissionCheck: PermissionNone,
		Handler:         deps.handleChainID,
	}
	ns.Methods["eth_accounts"] = MethodDefinition{
		PermissionCheck: PermissionNone,
		Handler:         deps.handleAccounts,
	}
	ns.Methods["eth_requestAccounts"] = MethodDefinition{
		PermissionCheck:  PermissionNone,
		ApprovalRequired: true,
		ApprovalType:     "requestAccounts",
	}
	ns.Methods["personal_sign"] = MethodDefinition{
		Capability:       permissions.CapabilitySign,
		PermissionCheck:  PermissionConnected,
		ApprovalRequired: true,
		ApprovalType:     "signMessage",
	}
	ns.Methods["eth_signTypedData_v4"] = MethodDefinition{
		Capability:       permissions.CapabilitySign,
		PermissionCheck:  PermissionConnected,
		ApprovalRequired: true,
		ApprovalType:     "signTypedData",
	}
	ns.Methods["eth_sendTransaction"] = MethodDefinition{
		Capability:       permissions.CapabilityTransaction,
		PermissionCheck:  PermissionConnected,
		ApprovalRequired: true,
		ApprovalType:     "transaction",
	}
	ns.Methods["wallet_switchEthereumChain"] = MethodDefinition{
		PermissionCheck:  PermissionConnected,
		ApprovalRequired: true,
		ApprovalType:     "switchChain",
		Locked:           &LockedPolicy{Type: LockedDeny},
	}
	ns.Methods["wallet_addEthereumChain"] = MethodDefinition{
		PermissionCheck:  PermissionNone,
		ApprovalRequired: true,
		ApprovalType:     "addChain",
	}
	ns.Methods["wallet_getPermissions"] = MethodDefinition{
		PermissionCheck: PermissionNone,
		Handler:         deps.handleGetPermissions,
	}
	ns.Methods["wallet_requestPermissions"] = MethodDefinition{
		PermissionCheck:  PermissionNone,
		ApprovalRequired: true,
		ApprovalType:     "requestPermissions",
	}

	for _, method := range passthroughMethods {
		if _, exists := ns.Methods[method]; exists {
			continue
		}
		ns.Methods[method] = MethodDefinition{
			PermissionCheck: PermissionNone,
			Handler:         deps.handlePassthrough(client),
		}
	}

	return ns
}

func (deps EVMDeps) handleChainID(ctx context.Context, req Request) (any, error) {
	chain, err := deps.ChainRegistry.GetChain(req.Context.ChainRef)
	if err != nil {
		return nil, err
	}
	return chain.ChainID, nil
}

func (deps EVMDeps) handleAccounts(ctx context.Context, req Request) (any, error) {
	chainCtx := permissions.Context{Namespace: EVMNamespace, ChainRef: req.Context.ChainRef}
	ids := deps.Permissions.AccountIDsFor(req.Context.Origin, chainCtx)
	if len(ids) == 0 {
		return []string{}, nil
	}

	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	addresses := make([]string, 0, len(ids))
	for _, acct := range deps.Accounts.GetState(false) {
		if idSet[acct.ID] {
			addresses = append(addresses, acct.Address)
		}
	}
	return addresses, nil
}

func (deps EVMDeps) handleGetPermissions(ctx context.Context, req Request) (any, error) {
	grant, ok := deps.Permissions.GrantFor(req.Context.Origin, EVMNamespace)
	if !ok {
		return []permissions.ChainGrant{}, nil
	}
	return grant.Chains, nil
}

type jsonrpcPassthroughRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// handlePassthrough forwards req verbatim to the chain's active RPC
// endpoint and returns the decoded result, per spec.md §6 "eth_getBalance
// (passthrough)".
func (deps EVMDeps) handlePassthrough(client *http.Client) HandlerFunc {
	return func(ctx context.Context, req Request) (any, error) {
		rpcURL, err := deps.Network.ActiveEndpoint(req.Context.ChainRef)
		if err != nil {
			return nil, err
		}

		body, err := json.Marshal(jsonrpcPassthroughRequest{
			JSONRPC: "2.0", ID: uuid.NewString(), Method: req.Method, Params: req.Params,
		})
		if err != nil {
			return nil, walleterrors.Wrap(walleterrors.ReasonInternal, err, "encode passthrough request")
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, rpcURL, bytes.NewReader(body))
		if err != nil {
			return nil, walleterrors.Wrap(walleterrors.ReasonInternal, err, "build passthrough request")
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(httpReq)
		if err != nil {
			_ = deps.Network.ReportRpcOutcome(ctx, req.Context.ChainRef, false, time.Now().UTC())
			return nil, walleterrors.Wrap(walleterrors.ReasonDisconnected, err, "passthrough request failed")
		}
		defer resp.Body.Close()

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(resp.Body); err != nil {
			return nil, walleterrors.Wrap(walleterrors.ReasonDisconnected, err, "read passthrough response")
		}

		_ = deps.Network.ReportRpcOutcome(ctx, req.Context.ChainRef, true, time.Now().UTC())

		parsed := gjson.ParseBytes(buf.Bytes())
		if errResult := parsed.Get("error"); errResult.Exists() {
			return nil, walleterrors.New(walleterrors.ReasonInternal, errResult.Get("message").String())
		}
		return parsed.Get("result").Value(), nil
	}
}
