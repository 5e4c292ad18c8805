package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"fanhub/models"

	"github.com/go-resty/resty/v2"
)

// ContractGateway is the read/write surface of the group membership
// contract. Encoding and signing are the gateway's concern; the client
// only sees semantic calls.
type ContractGateway interface {
	IsGroupMember(ctx context.Context, groupID models.GroupID, address models.Address) (bool, error)
	IsPendingMember(ctx context.Context, groupID models.GroupID, address models.Address) (bool, error)
	GetPendingMembers(ctx context.Context, groupID models.GroupID) ([]models.Address, error)
	GetGroupDetails(ctx context.Context, groupID models.GroupID) (models.GroupDetails, error)
	RequestToJoinGroup(ctx context.Context, auth models.AuthToken, groupID models.GroupID) (string, error)
	AddGroupMember(ctx context.Context, groupID models.GroupID, address models.Address) (string, error)
	RemoveGroupMember(ctx context.Context, groupID models.GroupID, address models.Address) (string, error)
}

// IsUserRejected reports whether the error means the signer declined
// the transaction.
func IsUserRejected(err error) bool {
	return err != nil && strings.Contains(err.Error(), "User rejected the request")
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return e.Message
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// RPCContract talks JSON-RPC to the contract RPC endpoint.
type RPCContract struct {
	client *resty.Client
	nextID atomic.Int64
}

// NewRPCContract creates a contract gateway for the given RPC URL.
func NewRPCContract(url string) *RPCContract {
	client := resty.New().
		SetBaseURL(url).
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json")
	return &RPCContract{client: client}
}

func (g *RPCContract) call(ctx context.Context, method string, result any, params ...any) error {
	if params == nil {
		params = []any{}
	}
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      g.nextID.Add(1),
		Method:  method,
		Params:  params,
	}

	var resp rpcResponse
	httpResp, err := g.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post("")
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if httpResp.IsError() {
		return fmt.Errorf("%s: unexpected status %s", method, httpResp.Status())
	}
	if resp.Error != nil {
		return fmt.Errorf("%s: %w", method, resp.Error)
	}
	if result != nil {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}
	return nil
}

func (g *RPCContract) IsGroupMember(ctx context.Context, groupID models.GroupID, address models.Address) (bool, error) {
	var result bool
	err := g.call(ctx, "isGroupMember", &result, groupID, address)
	return result, err
}

func (g *RPCContract) IsPendingMember(ctx context.Context, groupID models.GroupID, address models.Address) (bool, error) {
	var result bool
	err := g.call(ctx, "isPendingMember", &result, groupID, address)
	return result, err
}

func (g *RPCContract) GetPendingMembers(ctx context.Context, groupID models.GroupID) ([]models.Address, error) {
	var result []models.Address
	err := g.call(ctx, "getPendingMembers", &result, groupID)
	return result, err
}

// GetGroupDetails decodes the contract tuple: element 0 is the group
// name, element 1 the members with the owner at index 0.
func (g *RPCContract) GetGroupDetails(ctx context.Context, groupID models.GroupID) (models.GroupDetails, error) {
	var tuple []json.RawMessage
	if err := g.call(ctx, "getGroupDetails", &tuple, groupID); err != nil {
		return models.GroupDetails{}, err
	}
	if len(tuple) < 2 {
		return models.GroupDetails{}, fmt.Errorf("getGroupDetails: short tuple (%d elements)", len(tuple))
	}

	var details models.GroupDetails
	if err := json.Unmarshal(tuple[0], &details.Name); err != nil {
		return models.GroupDetails{}, fmt.Errorf("getGroupDetails: decode name: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &details.Members); err != nil {
		return models.GroupDetails{}, fmt.Errorf("getGroupDetails: decode members: %w", err)
	}
	return details, nil
}

func (g *RPCContract) RequestToJoinGroup(ctx context.Context, auth models.AuthToken, groupID models.GroupID) (string, error) {
	var receipt string
	err := g.call(ctx, "requestToJoinGroup", &receipt, auth, groupID)
	return receipt, err
}

func (g *RPCContract) AddGroupMember(ctx context.Context, groupID models.GroupID, address models.Address) (string, error) {
	var receipt string
	err := g.call(ctx, "addGroupMember", &receipt, groupID, address)
	return receipt, err
}

func (g *RPCContract) RemoveGroupMember(ctx context.Context, groupID models.GroupID, address models.Address) (string, error) {
	var receipt string
	err := g.call(ctx, "removeGroupMember", &receipt, groupID, address)
	return receipt, err
}
