package ports

import "context"

// AccountPort updates player account profiles on the hosting platform.
type AccountPort interface {
	// UpdateProfile sets username, display name and metadata of userID.
	// A nil metadata map leaves the stored metadata untouched.
	UpdateProfile(ctx context.Context, userID, username, displayName string, metadata map[string]interface{}) error
}
