package nakama

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"

	"colonos/internal/ports"
)

// NakamaAccountAdapter implements ports.AccountPort using Nakama's account API.
type NakamaAccountAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaAccountAdapter creates a new account adapter.
func NewNakamaAccountAdapter(nk runtime.NakamaModule) *NakamaAccountAdapter {
	return &NakamaAccountAdapter{nk: nk}
}

// UpdateProfile updates the account username, display name and metadata in Nakama.
// A nil metadata map keeps the stored metadata.
func (a *NakamaAccountAdapter) UpdateProfile(ctx context.Context, userID, username, displayName string, metadata map[string]interface{}) error {
	return a.nk.AccountUpdateId(ctx, userID, username, metadata, displayName, "", "", "", "")
}

var _ ports.AccountPort = (*NakamaAccountAdapter)(nil)
