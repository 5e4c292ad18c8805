package engine

import (
	"context"
	"sync"

	"fanhub/models"
)

// fakeContract is an in-memory contract gateway recording every call.
type fakeContract struct {
	mu sync.Mutex

	member      bool
	pending     bool
	pendingList []models.Address
	details     models.GroupDetails

	readErr    error
	requestErr error
	addErr     error
	removeErr  error

	memberReads  int
	requestCalls []requestCall
	addCalls     []memberCall
	removeCalls  []memberCall
}

type requestCall struct {
	auth    models.AuthToken
	groupID models.GroupID
}

type memberCall struct {
	groupID models.GroupID
	address models.Address
}

func (f *fakeContract) IsGroupMember(ctx context.Context, groupID models.GroupID, address models.Address) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memberReads++
	return f.member, f.readErr
}

func (f *fakeContract) IsPendingMember(ctx context.Context, groupID models.GroupID, address models.Address) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending, f.readErr
}

func (f *fakeContract) GetPendingMembers(ctx context.Context, groupID models.GroupID) ([]models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Address(nil), f.pendingList...), f.readErr
}

func (f *fakeContract) GetGroupDetails(ctx context.Context, groupID models.GroupID) (models.GroupDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.details, f.readErr
}

func (f *fakeContract) RequestToJoinGroup(ctx context.Context, auth models.AuthToken, groupID models.GroupID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.requestErr != nil {
		return "", f.requestErr
	}
	f.requestCalls = append(f.requestCalls, requestCall{auth: auth, groupID: groupID})
	f.pending = true
	return "0xreceipt", nil
}

func (f *fakeContract) AddGroupMember(ctx context.Context, groupID models.GroupID, address models.Address) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return "", f.addErr
	}
	f.addCalls = append(f.addCalls, memberCall{groupID: groupID, address: address})
	var remaining []models.Address
	for _, a := range f.pendingList {
		if !a.Equal(address) {
			remaining = append(remaining, a)
		}
	}
	f.pendingList = remaining
	f.details.Members = append(f.details.Members, address)
	return "0xreceipt", nil
}

func (f *fakeContract) RemoveGroupMember(ctx context.Context, groupID models.GroupID, address models.Address) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return "", f.removeErr
	}
	f.removeCalls = append(f.removeCalls, memberCall{groupID: groupID, address: address})
	var remaining []models.Address
	for _, a := range f.details.Members {
		if !a.Equal(address) {
			remaining = append(remaining, a)
		}
	}
	f.details.Members = remaining
	return "0xreceipt", nil
}

func (f *fakeContract) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requestCalls) + len(f.addCalls) + len(f.removeCalls)
}

// fakeMessages is an in-memory message gateway.
type fakeMessages struct {
	mu       sync.Mutex
	messages []models.Message
	sendErr  error
	sends    []string
	now      int64
}

func (f *fakeMessages) Messages(ctx context.Context, auth models.AuthToken, groupID models.GroupID) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Message(nil), f.messages...), nil
}

func (f *fakeMessages) Send(ctx context.Context, auth models.AuthToken, groupID models.GroupID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sends = append(f.sends, content)
	f.now++
	f.messages = append(f.messages, models.Message{Sender: "0xaa", Content: content, Timestamp: f.now})
	return nil
}

func (f *fakeMessages) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

// recorder captures notifications.
type recorder struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (r *recorder) Success(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, text)
}

func (r *recorder) Error(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, text)
}

func (r *recorder) lastError() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.errors) == 0 {
		return ""
	}
	return r.errors[len(r.errors)-1]
}

func (r *recorder) lastSuccess() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.successes) == 0 {
		return ""
	}
	return r.successes[len(r.successes)-1]
}
