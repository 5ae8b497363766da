package uibridge

import (
	"context"
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/walletd/core/internal/approvals"
	"github.com/walletd/core/internal/chainregistry"
	"github.com/walletd/core/internal/obsmetrics"
	"github.com/walletd/core/internal/rpcengine"
	"github.com/walletd/core/internal/transactions"
	"github.com/walletd/core/internal/walleterrors"
)

type approveParams struct {
	ID         string   `json:"id"`
	AccountIDs []string `json:"accountIds,omitempty"`
}

type rejectParams struct {
	ID     string `json:"id"`
	Reason string `json:"reason,omitempty"`
}

func methodApprovalsApprove(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	var p approveParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	task, err := b.findPendingTask(p.ID)
	if err != nil {
		return nil, err
	}

	resolved, err := b.resolveApproval(ctx, task, p)
	if err != nil {
		_ = b.deps.Approvals.Reject(task.ID, err)
		obsmetrics.RecordApproval(task.Type, "rejected")
		return nil, err
	}
	if err := b.deps.Approvals.Resolve(task.ID, resolved); err != nil {
		return nil, err
	}
	obsmetrics.RecordApproval(task.Type, "approved")
	return true, nil
}

func methodApprovalsReject(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	var p rejectParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	reason := p.Reason
	if reason == "" {
		reason = "rejected by user"
	}
	task, findErr := b.findPendingTask(p.ID)
	if err := b.deps.Approvals.Reject(p.ID, walleterrors.New(walleterrors.ReasonUserRejected, reason)); err != nil {
		return nil, err
	}
	if findErr == nil {
		obsmetrics.RecordApproval(task.Type, "rejected")
	}
	return true, nil
}

func (b *Bridge) findPendingTask(id string) (approvals.Task, error) {
	for _, task := range b.deps.Approvals.GetState() {
		if task.ID == id {
			return task, nil
		}
	}
	return approvals.Task{}, walleterrors.New(walleterrors.ReasonNotFound, "no pending approval with this id").WithDetails("id", id)
}

// resolveApproval performs the privileged action a pending task's type
// demands, then returns the value the original requesting dApp call
// should see as its JSON-RPC result, per spec.md §4.7.
func (b *Bridge) resolveApproval(ctx context.Context, task approvals.Task, p approveParams) (any, error) {
	params := taskParamsBytes(task)

	switch task.Type {
	case "requestAccounts", "requestPermissions":
		return b.resolveRequestAccounts(ctx, task, p)
	case "signMessage":
		return b.resolveSignMessage(ctx, task, params)
	case "signTypedData":
		return b.resolveSignTypedData(ctx, task, params)
	case "transaction":
		return b.resolveTransaction(ctx, task, params)
	case "switchChain":
		return b.resolveSwitchChain(ctx, params)
	case "addChain":
		return b.resolveAddChain(ctx, params)
	default:
		return nil, walleterrors.New(walleterrors.ReasonInternal, "unknown approval type").WithDetails("type", task.Type)
	}
}

// taskParamsBytes extracts the original dApp JSON-RPC params, stored on
// the task as the raw json.RawMessage the rpc engine saw (see
// rpcengine.Engine.dispatch's approvals.Task{Payload: req.Params}).
func taskParamsBytes(task approvals.Task) []byte {
	switch v := task.Payload.(type) {
	case json.RawMessage:
		return []byte(v)
	case []byte:
		return v
	default:
		return nil
	}
}

func (b *Bridge) resolveRequestAccounts(ctx context.Context, task approvals.Task, p approveParams) (any, error) {
	chain, err := b.deps.ChainRegistry.ActiveChain(rpcengine.EVMNamespace)
	if err != nil {
		return nil, err
	}

	if _, err := b.deps.Permissions.GrantBasic(ctx, task.Origin, rpcengine.EVMNamespace, chain.ChainRef); err != nil {
		return nil, err
	}
	accountIDs := p.AccountIDs
	if len(accountIDs) == 0 {
		accountIDs = []string{b.deps.Accounts.ActiveAccountID()}
	}
	if _, err := b.deps.Permissions.GrantAccounts(ctx, task.Origin, rpcengine.EVMNamespace, chain.ChainRef, accountIDs); err != nil {
		return nil, err
	}

	idSet := make(map[string]bool, len(accountIDs))
	for _, id := range accountIDs {
		idSet[id] = true
	}
	addresses := make([]string, 0, len(accountIDs))
	for _, acct := range b.deps.Accounts.GetState(false) {
		if idSet[acct.ID] {
			addresses = append(addresses, acct.Address)
		}
	}
	return addresses, nil
}

// resolveSignMessage expects the eth dApp's personal_sign params shape
// ["0x<hexMessage>", "0x<address>"].
func (b *Bridge) resolveSignMessage(ctx context.Context, task approvals.Task, params []byte) (any, error) {
	parsed := gjson.ParseBytes(params)
	message := parsed.Get("0").String()
	address := parsed.Get("1").String()

	data, err := decodeHexOrUTF8(message)
	if err != nil {
		return nil, err
	}

	sig, err := b.keyring.SignPersonalMessage(address, data)
	if err != nil {
		return nil, err
	}

	chain, err := b.deps.ChainRegistry.ActiveChain(rpcengine.EVMNamespace)
	if err != nil {
		return nil, err
	}
	if _, err := b.deps.Permissions.GrantSign(ctx, task.Origin, rpcengine.EVMNamespace, chain.ChainRef); err != nil {
		return nil, err
	}
	return "0x" + hexString(sig), nil
}

// resolveSignTypedData expects eth_signTypedData_v4 params shape
// ["0x<address>", "<typedDataJSON>"]. keyring.Service.SignTypedData wants
// the EIP-712 digest already hashed by the caller, so the raw struct JSON
// is hashed here before signing.
func (b *Bridge) resolveSignTypedData(ctx context.Context, task approvals.Task, params []byte) (any, error) {
	parsed := gjson.ParseBytes(params)
	address := parsed.Get("0").String()
	typedData := parsed.Get("1").String()

	digest := hashTypedData([]byte(typedData))
	sig, err := b.keyring.SignTypedData(address, digest)
	if err != nil {
		return nil, err
	}

	chain, err := b.deps.ChainRegistry.ActiveChain(rpcengine.EVMNamespace)
	if err != nil {
		return nil, err
	}
	if _, err := b.deps.Permissions.GrantSign(ctx, task.Origin, rpcengine.EVMNamespace, chain.ChainRef); err != nil {
		return nil, err
	}
	return "0x" + hexString(sig), nil
}

// resolveTransaction expects eth_sendTransaction params shape
// [{from,to,value,data,...}], and drives the transaction controller
// through its full pending -> approved -> signed -> broadcast sequence
// in one privileged step, per spec.md §4.4's forced ordering.
func (b *Bridge) resolveTransaction(ctx context.Context, task approvals.Task, params []byte) (any, error) {
	tx := gjson.ParseBytes(params).Get("0")
	chain, err := b.deps.ChainRegistry.ActiveChain(rpcengine.EVMNamespace)
	if err != nil {
		return nil, err
	}

	rec, err := b.txns.CreateDraft(ctx, rpcengine.EVMNamespace, transactions.DraftRequest{
		From:     tx.Get("from").String(),
		To:       tx.Get("to").String(),
		Value:    tx.Get("value").String(),
		Data:     tx.Get("data").String(),
		ChainRef: chain.ChainRef,
	})
	if err != nil {
		return nil, err
	}

	if err := b.txns.Approve(ctx, rec.ID); err != nil {
		return nil, err
	}
	if err := b.txns.Sign(ctx, rec.ID, b.signer); err != nil {
		return nil, err
	}
	if err := b.txns.Broadcast(ctx, rec.ID); err != nil {
		return nil, err
	}

	if _, err := b.deps.Permissions.GrantSign(ctx, task.Origin, rpcengine.EVMNamespace, chain.ChainRef); err != nil {
		return nil, err
	}

	for _, r := range b.txns.GetState() {
		if r.ID == rec.ID {
			return r.TxHash, nil
		}
	}
	return rec.TxHash, nil
}

// resolveSwitchChain expects wallet_switchEthereumChain params shape
// [{chainId:"0x1"}].
func (b *Bridge) resolveSwitchChain(ctx context.Context, params []byte) (any, error) {
	chainID := gjson.ParseBytes(params).Get("0.chainId").String()
	chainRef := rpcengine.EVMNamespace + ":" + trimHexPrefix(chainID)
	if err := b.deps.ChainRegistry.SwitchActive(ctx, chainRef); err != nil {
		return nil, err
	}
	return nil, nil
}

// resolveAddChain expects wallet_addEthereumChain params shape
// [{chainId,chainName,nativeCurrency,rpcUrls,blockExplorerUrls}].
func (b *Bridge) resolveAddChain(ctx context.Context, params []byte) (any, error) {
	req := gjson.ParseBytes(params).Get("0")
	chainID := req.Get("chainId").String()
	chainRef := rpcengine.EVMNamespace + ":" + trimHexPrefix(chainID)

	rpcUrls := make([]string, 0)
	for _, v := range req.Get("rpcUrls").Array() {
		rpcUrls = append(rpcUrls, v.String())
	}
	explorerUrls := make([]string, 0)
	for _, v := range req.Get("blockExplorerUrls").Array() {
		explorerUrls = append(explorerUrls, v.String())
	}

	chain := chainregistry.Chain{
		ChainRef:  chainRef,
		Namespace: rpcengine.EVMNamespace,
		ChainID:   chainID,
		Name:      req.Get("chainName").String(),
		NativeCurrency: chainregistry.Currency{
			Name:     req.Get("nativeCurrency.name").String(),
			Symbol:   req.Get("nativeCurrency.symbol").String(),
			Decimals: int(req.Get("nativeCurrency.decimals").Int()),
		},
		RPCUrls:           rpcUrls,
		BlockExplorerUrls: explorerUrls,
	}
	if _, err := b.deps.ChainRegistry.UpsertChain(ctx, chain); err != nil {
		return nil, err
	}
	return nil, nil
}
