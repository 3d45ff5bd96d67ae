package nakama

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// fakeNakama implements the parts of runtime.NakamaModule the adapters use.
// Calling any other method panics on the nil embedded interface.
type fakeNakama struct {
	runtime.NakamaModule

	mu        sync.Mutex
	sent      []*runtime.NotificationSend
	storage   map[string]string
	accounts  map[string]accountUpdate
	lookupErr error
	writeErr  error
}

type accountUpdate struct {
	username    string
	displayName string
	metadata    map[string]interface{}
}

func newFakeNakama() *fakeNakama {
	return &fakeNakama{storage: map[string]string{}, accounts: map[string]accountUpdate{}}
}

func (f *fakeNakama) UsersGetUsername(ctx context.Context, usernames []string) ([]*api.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	users := make([]*api.User, 0, len(usernames))
	for _, name := range usernames {
		users = append(users, &api.User{Id: "id-" + name, Username: name})
	}
	return users, nil
}

func (f *fakeNakama) NotificationsSend(ctx context.Context, notifications []*runtime.NotificationSend) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, notifications...)
	return nil
}

func (f *fakeNakama) StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	acks := make([]*api.StorageObjectAck, 0, len(writes))
	for _, w := range writes {
		key := fmt.Sprintf("%s/%s/%s", w.Collection, w.Key, w.UserID)
		if _, ok := f.storage[key]; ok && w.Version == "*" {
			return nil, runtime.ErrStorageRejectedVersion
		}
		f.storage[key] = w.Value
		acks = append(acks, &api.StorageObjectAck{Collection: w.Collection, Key: w.Key, UserId: w.UserID})
	}
	return acks, nil
}

func (f *fakeNakama) AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[userID] = accountUpdate{username: username, displayName: displayName, metadata: metadata}
	return nil
}

func (f *fakeNakama) notifications() []*runtime.NotificationSend {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*runtime.NotificationSend(nil), f.sent...)
}

type rpcFn = func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error)

// fakeInitializer records registered RPCs.
type fakeInitializer struct {
	runtime.Initializer

	rpcs map[string]rpcFn
}

func (f *fakeInitializer) RegisterRpc(id string, fn func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error)) error {
	if f.rpcs == nil {
		f.rpcs = map[string]rpcFn{}
	}
	if _, ok := f.rpcs[id]; ok {
		return fmt.Errorf("rpc %s registered twice", id)
	}
	f.rpcs[id] = fn
	return nil
}
