package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"fanhub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rpcStub answers JSON-RPC calls from canned results and records the
// requests it saw.
type rpcStub struct {
	mu       sync.Mutex
	results  map[string]any
	rpcErrs  map[string]string
	requests []rpcRequest
}

func (s *rpcStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.requests = append(s.requests, req)
		result, ok := s.results[req.Method]
		errMsg := s.rpcErrs[req.Method]
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if errMsg != "" {
			json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0", "id": req.ID,
				"error": map[string]any{"code": -32000, "message": errMsg},
			})
			return
		}
		if !ok {
			json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0", "id": req.ID,
				"error": map[string]any{"code": -32601, "message": "method not found"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": req.ID, "result": result,
		})
	}
}

func (s *rpcStub) lastRequest(t *testing.T) rpcRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.requests)
	return s.requests[len(s.requests)-1]
}

func newStubContract(t *testing.T, stub *rpcStub) *RPCContract {
	t.Helper()
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)
	return NewRPCContract(srv.URL)
}

func TestIsGroupMember(t *testing.T) {
	stub := &rpcStub{results: map[string]any{"isGroupMember": true}}
	g := newStubContract(t, stub)

	ok, err := g.IsGroupMember(context.Background(), 42, "0xaa")
	require.NoError(t, err)
	assert.True(t, ok)

	req := stub.lastRequest(t)
	assert.Equal(t, "isGroupMember", req.Method)
	assert.Equal(t, []any{float64(42), "0xaa"}, req.Params)
}

func TestGetGroupDetailsTuple(t *testing.T) {
	stub := &rpcStub{results: map[string]any{
		"getGroupDetails": []any{"fans", []string{"0xowner", "0xbob"}},
	}}
	g := newStubContract(t, stub)

	details, err := g.GetGroupDetails(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "fans", details.Name)
	assert.Equal(t, []models.Address{"0xowner", "0xbob"}, details.Members)
	assert.Equal(t, models.Address("0xowner"), details.Owner())
}

func TestGetGroupDetailsShortTuple(t *testing.T) {
	stub := &rpcStub{results: map[string]any{
		"getGroupDetails": []any{"fans"},
	}}
	g := newStubContract(t, stub)

	_, err := g.GetGroupDetails(context.Background(), 42)
	assert.Error(t, err)
}

func TestRequestToJoinGroupReceipt(t *testing.T) {
	stub := &rpcStub{results: map[string]any{"requestToJoinGroup": "0xtxhash"}}
	g := newStubContract(t, stub)

	receipt, err := g.RequestToJoinGroup(context.Background(), "signed-token", 42)
	require.NoError(t, err)
	assert.Equal(t, "0xtxhash", receipt)

	req := stub.lastRequest(t)
	assert.Equal(t, []any{"signed-token", float64(42)}, req.Params)
}

func TestUserRejectedMapsThroughRPCError(t *testing.T) {
	stub := &rpcStub{rpcErrs: map[string]string{
		"requestToJoinGroup": "User rejected the request.",
	}}
	g := newStubContract(t, stub)

	_, err := g.RequestToJoinGroup(context.Background(), "signed-token", 42)
	require.Error(t, err)
	assert.True(t, IsUserRejected(err))
}

func TestIsUserRejected(t *testing.T) {
	assert.False(t, IsUserRejected(nil))
	assert.False(t, IsUserRejected(errors.New("execution reverted")))
	assert.True(t, IsUserRejected(errors.New("rpc: User rejected the request")))
}

func TestRemoveGroupMemberParams(t *testing.T) {
	stub := &rpcStub{results: map[string]any{"removeGroupMember": "0xtxhash"}}
	g := newStubContract(t, stub)

	_, err := g.RemoveGroupMember(context.Background(), 42, "0xbob")
	require.NoError(t, err)

	req := stub.lastRequest(t)
	assert.Equal(t, "removeGroupMember", req.Method)
	assert.Equal(t, []any{float64(42), "0xbob"}, req.Params)
}
