package rpcengine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	reg := NewRegistry(EVMNamespace)
	ns := &Namespace{
		Name:           EVMNamespace,
		MethodPrefixes: []string{"eth_", "wallet_"},
		Methods: map[string]MethodDefinition{
			"eth_chainId": {Handler: func(ctx context.Context, req Request) (any, error) { return "0x1", nil }},
		},
	}
	reg.Register(ns)
	return reg
}

func TestResolveByMethodPrefix(t *testing.T) {
	reg := newTestRegistry()
	res, err := reg.resolve(Request{Method: "eth_chainId"}, func(string) (string, error) { return "eip155:1", nil })
	require.NoError(t, err)
	assert.Equal(t, EVMNamespace, res.namespace.Name)
	assert.Equal(t, "eip155:1", res.chainRef)
}

func TestResolveUsesExplicitChainRef(t *testing.T) {
	reg := newTestRegistry()
	res, err := reg.resolve(Request{Method: "eth_chainId", Context: Context{ChainRef: "eip155:137"}}, func(string) (string, error) {
		t.Fatal("active chain resolver should not be called when chainRef is explicit")
		return "", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "eip155:137", res.chainRef)
}

func TestResolveFailsWhenNoActiveChainAndNoExplicitChainRef(t *testing.T) {
	reg := newTestRegistry()
	_, err := reg.resolve(Request{Method: "eth_chainId"}, func(string) (string, error) {
		return "", assertErr
	})
	assert.Error(t, err)
}

func TestResolveFailsForUnknownMethod(t *testing.T) {
	reg := newTestRegistry()
	_, err := reg.resolve(Request{Method: "eth_unknownMethod"}, func(string) (string, error) { return "eip155:1", nil })
	assert.Error(t, err)
}

var assertErr = assertError{}

type assertError struct{}

func (assertError) Error() string { return "no active chain" }
