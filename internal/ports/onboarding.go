package ports

import "context"

// OnboardingLedger records that an account has been onboarded.
type OnboardingLedger interface {
	// MarkOnboardedOnce stores the onboarding marker for userID.
	// Returns first=false when the marker already existed.
	MarkOnboardedOnce(ctx context.Context, userID string, metadata map[string]interface{}) (bool, error)
}
