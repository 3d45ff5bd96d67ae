package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"

	"colonos/internal/ports"
)

const (
	onboardingCollection = "onboarding"
	onboardingKey        = "onboarded_v1"
)

// NakamaOnboardingLedger records onboarding markers in Nakama storage.
type NakamaOnboardingLedger struct {
	nk runtime.NakamaModule
}

// NewNakamaOnboardingLedger creates a new onboarding ledger.
func NewNakamaOnboardingLedger(nk runtime.NakamaModule) *NakamaOnboardingLedger {
	return &NakamaOnboardingLedger{nk: nk}
}

// MarkOnboardedOnce writes the marker only if none exists yet. The write uses
// version "*", so a second call is rejected by storage and reports first=false.
func (a *NakamaOnboardingLedger) MarkOnboardedOnce(ctx context.Context, userID string, metadata map[string]interface{}) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is required")
	}
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	value, err := json.Marshal(metadata)
	if err != nil {
		return false, fmt.Errorf("failed to marshal onboarding marker: %w", err)
	}

	_, err = a.nk.StorageWrite(ctx, []*runtime.StorageWrite{
		{
			Collection:      onboardingCollection,
			Key:             onboardingKey,
			UserID:          userID,
			Value:           string(value),
			Version:         "*",
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	})
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return false, nil
		}
		return false, fmt.Errorf("failed to record onboarding: %w", err)
	}
	return true, nil
}

var _ ports.OnboardingLedger = (*NakamaOnboardingLedger)(nil)
