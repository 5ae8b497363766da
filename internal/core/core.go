// Package core wires every subsystem into one process-lifetime value,
// per spec.md §9's redesign flag: "a Core value wires the subsystems;
// the router gets an interface object {ensureContext, snapshot,
// attachUi} by value, not a mutable slot." Core is built once at
// startup and handed to cmd/walletd; nothing here holds a cyclic
// reference back to Core itself.
package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/walletd/core/internal/accounts"
	"github.com/walletd/core/internal/approvals"
	"github.com/walletd/core/internal/chainregistry"
	"github.com/walletd/core/internal/config"
	"github.com/walletd/core/internal/keyring"
	"github.com/walletd/core/internal/keyring/evmadapter"
	"github.com/walletd/core/internal/messenger"
	"github.com/walletd/core/internal/network"
	"github.com/walletd/core/internal/permissions"
	"github.com/walletd/core/internal/portrouter"
	"github.com/walletd/core/internal/rpcengine"
	"github.com/walletd/core/internal/storage"
	"github.com/walletd/core/internal/storage/memstore"
	"github.com/walletd/core/internal/storage/redisstore"
	"github.com/walletd/core/internal/storage/sqlstore"
	"github.com/walletd/core/internal/transactions"
	"github.com/walletd/core/internal/uibridge"
	"github.com/walletd/core/internal/unlocksession"
	"github.com/walletd/core/internal/vault"
)

// Core bundles every controller the router and UI bridge dispatch
// against, plus the cron scheduler that drives housekeeping.
type Core struct {
	Store   storage.Store
	Bus     *messenger.Bus
	Vault   *vault.Vault
	Session *unlocksession.Session
	Keyring *keyring.Service

	Accounts      *accounts.Controller
	Permissions   *permissions.Controller
	Network       *network.Controller
	ChainRegistry *chainregistry.Controller
	Approvals     *approvals.Controller
	Transactions  *transactions.Controller

	Engine *rpcengine.Engine
	Router *portrouter.Router
	Bridge *uibridge.Bridge

	log     *logrus.Entry
	cron    *cron.Cron
	httpCli *http.Client
}

// New builds every controller, wires them into the RPC engine, port
// router, and UI bridge, seeds the chain registry and network endpoints
// from cfg, and starts the housekeeping cron. Call Close to stop cron
// and tear down subscriptions.
func New(ctx context.Context, cfg *config.Config, log *logrus.Entry) (*Core, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}

	store, err := buildStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("core: build storage: %w", err)
	}

	bus := messenger.New()
	v := vault.New(cfg.VaultPBKDF2Iterations)
	session := unlocksession.New(v, bus)

	keyringSvc := keyring.NewService(session, store, bus)
	keyringSvc.RegisterAdapter(evmadapter.New())

	acctCtl := accounts.New(store, bus, keyringSvc)
	if err := acctCtl.Load(ctx); err != nil {
		return nil, fmt.Errorf("core: load accounts: %w", err)
	}

	chains := chainregistry.New(store, bus)
	if err := chains.Load(ctx); err != nil {
		return nil, fmt.Errorf("core: load chain registry: %w", err)
	}

	netCtl := network.New(store, bus)
	if err := netCtl.Load(ctx); err != nil {
		return nil, fmt.Errorf("core: load network: %w", err)
	}

	seeds := cfg.Chains
	if len(seeds) == 0 {
		seeds = config.DefaultChainSeeds()
	}
	for _, seed := range seeds {
		if err := seedChain(ctx, chains, netCtl, seed); err != nil {
			return nil, fmt.Errorf("core: seed chain %s: %w", seed.ChainRef, err)
		}
	}

	perms := permissions.New(store, bus)
	if err := perms.Load(ctx); err != nil {
		return nil, fmt.Errorf("core: load permissions: %w", err)
	}

	approvalsCtl := approvals.New(store, bus)

	httpCli := &http.Client{Timeout: 10 * time.Second}
	txns := transactions.New(store, bus, netCtl.ActiveEndpoint, log)
	txns.RegisterAdapter(transactions.NewEVMAdapter(httpCli))
	if err := txns.Load(ctx); err != nil {
		return nil, fmt.Errorf("core: load transactions: %w", err)
	}
	txns.ResumePending(ctx, keyringSvc)

	activeChainResolver := func(namespace string) (string, error) {
		chain, err := chains.ActiveChain(namespace)
		if err != nil {
			return "", err
		}
		return chain.ChainRef, nil
	}

	registry := rpcengine.NewRegistry(rpcengine.EVMNamespace)
	registry.Register(rpcengine.BuildEVMNamespace(rpcengine.EVMDeps{
		Permissions:   perms,
		Accounts:      acctCtl,
		ChainRegistry: chains,
		Network:       netCtl,
		HTTPClient:    httpCli,
	}))

	engine := rpcengine.New(registry, session, perms, approvalsCtl, activeChainResolver, bus)

	router := portrouter.New(portrouter.Deps{
		Engine: engine, Approvals: approvalsCtl, Permissions: perms,
		ChainRegistry: chains, Accounts: acctCtl, Session: session, Bus: bus, Log: log,
	})

	bridge := uibridge.New(uibridge.Deps{
		Session: session, Accounts: acctCtl, ChainRegistry: chains,
		Network: netCtl, Permissions: perms, Approvals: approvalsCtl, Store: store,
	}, keyringSvc, txns, keyringSvc, bus, log)

	c := &Core{
		Store: store, Bus: bus, Vault: v, Session: session, Keyring: keyringSvc,
		Accounts: acctCtl, Permissions: perms, Network: netCtl, ChainRegistry: chains,
		Approvals: approvalsCtl, Transactions: txns,
		Engine: engine, Router: router, Bridge: bridge,
		log: log, httpCli: httpCli,
	}

	if err := c.startCron(cfg.HealthSweepCron); err != nil {
		return nil, fmt.Errorf("core: start cron: %w", err)
	}

	return c, nil
}

// LogEntry returns the logrus entry Core was built with, for callers
// (such as a websocket upgrade handler) that need to pass it down into
// a package taking *logrus.Entry directly.
func (c *Core) LogEntry() *logrus.Entry { return c.log }

// Close stops the cron scheduler and tears down the router and bridge's
// topic subscriptions. Connected ports/listeners are the caller's to
// disconnect first.
func (c *Core) Close() {
	if c.cron != nil {
		c.cron.Stop()
	}
	c.Router.Close()
	c.Bridge.Close()
	c.Transactions.Shutdown()
}

func buildStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case "postgres":
		return sqlstore.Open(cfg.PostgresDSN)
	case "redis":
		return redisstore.Open(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return memstore.New(), nil
	}
}

func seedChain(ctx context.Context, chains *chainregistry.Controller, net *network.Controller, seed config.ChainSeed) error {
	namespace, chainID := rpcengine.EVMNamespace, seed.ChainRef
	if idx := lastColon(seed.ChainRef); idx >= 0 {
		namespace, chainID = seed.ChainRef[:idx], seed.ChainRef[idx+1:]
	}

	if _, err := chains.UpsertChain(ctx, chainregistry.Chain{
		ChainRef:  seed.ChainRef,
		Namespace: namespace,
		ChainID:   chainID,
		Name:      seed.Name,
		NativeCurrency: chainregistry.Currency{
			Name: seed.Currency, Symbol: seed.Currency, Decimals: seed.Decimals,
		},
		RPCUrls: seed.RPCUrls,
	}); err != nil {
		return err
	}
	if len(seed.RPCUrls) == 0 {
		return nil
	}
	_, err := net.RegisterEndpoints(ctx, seed.ChainRef, seed.RPCUrls)
	return err
}

func lastColon(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return i
		}
	}
	return -1
}

// startCron schedules the periodic network-endpoint health sweep.
// Grounded on spec §9's cron housekeeping note: this is deliberately
// separate from the auto-lock timer, which stays a single time.Timer
// per unlocksession.Session.
func (c *Core) startCron(spec string) error {
	sched := cron.New()
	if _, err := sched.AddFunc(spec, c.sweepNetworkHealth); err != nil {
		return err
	}
	sched.Start()
	c.cron = sched
	return nil
}

type jsonrpcProbe struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// sweepNetworkHealth pings each registered chain's active RPC endpoint
// with a lightweight eth_blockNumber call and reports the outcome back
// to the network controller, letting ReportRpcOutcome rotate away from
// endpoints that fail FailureThreshold times in a row.
func (c *Core) sweepNetworkHealth() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	for _, chain := range c.ChainRegistry.GetState() {
		endpoint, err := c.Network.ActiveEndpoint(chain.ChainRef)
		if err != nil {
			continue
		}
		ok := probeEndpoint(ctx, c.httpCli, endpoint)
		if err := c.Network.ReportRpcOutcome(ctx, chain.ChainRef, ok, time.Now()); err != nil {
			c.log.WithError(err).WithField("chainRef", chain.ChainRef).Warn("core: health sweep report failed")
		}
	}
}

func probeEndpoint(ctx context.Context, client *http.Client, url string) bool {
	body, err := json.Marshal(jsonrpcProbe{JSONRPC: "2.0", ID: 1, Method: "eth_blockNumber", Params: []any{}})
	if err != nil {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
