package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"colonos/internal/ports"
)

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// Username is the friendly name assigned on first onboarding.
	Username string
	// FirstOnboarding is false when the account had already been onboarded.
	FirstOnboarding bool
	// ProfileUpdateErr is set when the profile update failed but onboarding continued.
	ProfileUpdateErr error
}

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts ports.AccountPort
	ledger   ports.OnboardingLedger
	rng      *rand.Rand
	now      func() time.Time
}

// NewService constructs an onboarding service with required ports.
// accounts/ledger must be non-nil; rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, ledger ports.OnboardingLedger, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		ledger:   ledger,
		rng:      rng,
		now:      time.Now,
	}
}

// OnboardNewUser gives a newly created account a friendly username.
// Returns a Result with any non-fatal issues and an error if the onboarding marker cannot be stored.
// Side effects: writes the onboarding marker once and updates the account profile.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.ledger == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	name := s.generateFriendlyName()
	first, err := s.ledger.MarkOnboardedOnce(ctx, userID, map[string]interface{}{
		"username":     name,
		"onboarded_at": s.now().Unix(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to record onboarding: %w", err)
	}
	if !first {
		return Result{}, nil
	}

	result := Result{Username: name, FirstOnboarding: true}
	metadata := map[string]interface{}{"games_won": 0}
	if err := s.accounts.UpdateProfile(ctx, userID, name, name, metadata); err != nil {
		result.ProfileUpdateErr = err
	}
	return result, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Happy", "Shiny", "Brave", "Clever", "Swift", "Calm", "Mighty", "Witty", "Sly", "Wild"}
	nouns := []string{"Settler", "Trader", "Builder", "Shepherd", "Miner", "Farmer", "Mason", "Knight", "Sailor", "Logger"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
