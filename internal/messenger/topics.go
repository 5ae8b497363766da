package messenger

// Topic names published across the core. Controllers publish on these;
// the UI bridge (internal/uibridge) and port router (internal/portrouter)
// subscribe to derive snapshots and dApp-facing events.
const (
	TopicUnlockUnlocked     = "unlock:unlocked"
	TopicUnlockLocked       = "unlock:locked"
	TopicUnlockStateChanged = "unlock:stateChanged"

	TopicAccountsChanged = "accounts:changed"

	TopicPermissionsChanged = "permissions:changed"

	TopicNetworkChanged        = "network:changed"
	TopicNetworkEndpointHealth = "network:endpointHealth"

	TopicChainRegistryChanged = "chainRegistry:changed"

	TopicAttentionRequested = "attention:requested"
	TopicApprovalResolved   = "approvals:resolved"

	TopicTransactionStatusChanged = "transaction:statusChanged"
)
