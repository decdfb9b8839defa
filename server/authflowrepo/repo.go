package authflowrepo

import "time"

// AuthFlowState is what the broker remembers between sending a user to a
// provider and the provider redirecting back.
type AuthFlowState struct {
	Provider     string    // Provider the flow was started for
	CodeVerifier string    // PKCE verifier sent as S256 challenge
	ReturnURL    string    // Local path to land on after sign-in
	CreatedAt    time.Time // Start of the flow, used for expiry; set by the repo when zero
}

type Repo interface {
	Upsert(state string, authState *AuthFlowState) error
	Get(state string) (*AuthFlowState, error)
	Delete(state string) error
	// Take returns the flow for state and removes it, so a state can only be completed once
	Take(state string) (*AuthFlowState, error)
}
