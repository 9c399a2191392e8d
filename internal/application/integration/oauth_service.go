package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/morganchorlton3/order-tracker/internal/domain/integration"
	"github.com/morganchorlton3/order-tracker/internal/domain/order"
	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
)

// OAuthService drives the authorization code flow with PKCE for every
// registered marketplace provider
type OAuthService struct {
	providers   map[order.Source]integration.OAuthProvider
	states      integration.AuthorizationStateRepository
	credentials integration.CredentialRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewOAuthService creates a new OAuthService
func NewOAuthService(
	providers []integration.OAuthProvider,
	states integration.AuthorizationStateRepository,
	credentials integration.CredentialRepository,
	logger *zap.Logger,
) *OAuthService {
	bySource := make(map[order.Source]integration.OAuthProvider, len(providers))
	for _, p := range providers {
		bySource[p.Source()] = p
	}
	return &OAuthService{
		providers:   bySource,
		states:      states,
		credentials: credentials,
		logger:      logger,
		now:         time.Now,
	}
}

// Begin starts an authorization flow for the source: it generates and
// persists a CSRF state plus PKCE verifier, and returns the provider URL the
// user must visit
func (s *OAuthService) Begin(ctx context.Context, source order.Source) (*BeginAuthorizationResponse, error) {
	provider, ok := s.providers[source]
	if !ok || !provider.Configured() {
		return nil, integration.ErrProviderNotConfigured
	}

	state, err := integration.NewAuthorizationState(source)
	if err != nil {
		return nil, err
	}
	if err := s.states.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to persist authorization state: %w", err)
	}

	return &BeginAuthorizationResponse{
		AuthorizationURL: provider.AuthorizeURL(state.State, state.CodeChallenge()),
		State:            state.State,
		Message:          fmt.Sprintf("Visit the URL to authorize access to your %s shop", source),
	}, nil
}

// Complete finishes an authorization flow from the provider callback. The
// checks run in a fixed order: provider-reported error first, then parameter
// presence, then state validity, then the token exchange and shop resolution.
// The consumed state is deleted so a replayed callback fails.
func (s *OAuthService) Complete(ctx context.Context, source order.Source, code, state, providerError, providerErrorDescription string) (*AuthorizationResult, error) {
	if providerError != "" {
		return nil, &integration.ProviderError{Code: providerError, Description: providerErrorDescription}
	}
	if code == "" {
		return nil, integration.ErrMissingCode
	}
	if state == "" {
		return nil, integration.ErrMissingState
	}

	pending, err := s.states.FindByState(ctx, state, source)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, integration.ErrInvalidOrExpiredState
		}
		return nil, err
	}

	provider, ok := s.providers[source]
	if !ok || !provider.Configured() {
		return nil, integration.ErrProviderNotConfigured
	}

	grant, err := provider.ExchangeCode(ctx, code, pending.CodeVerifier)
	if err != nil {
		return nil, err
	}

	shop, err := provider.ResolveShop(ctx, grant.AccessToken)
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(time.Duration(grant.ExpiresIn) * time.Second)
	cred := &integration.OAuthCredential{
		ID:           uuid.New(),
		Source:       source,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		TokenType:    grant.TokenType,
		ExpiresAt:    &expiresAt,
		ShopID:       shop.ShopID,
		ShopName:     shop.ShopName,
		CreatedAt:    s.now(),
		UpdatedAt:    s.now(),
	}
	if err := s.credentials.Upsert(ctx, cred); err != nil {
		return nil, fmt.Errorf("failed to store credential: %w", err)
	}

	if err := s.states.Delete(ctx, pending.ID); err != nil {
		s.logger.Warn("failed to delete consumed authorization state",
			zap.String("source", source.String()), zap.Error(err))
	}

	return &AuthorizationResult{
		Source:   source.String(),
		ShopID:   shop.ShopID,
		ShopName: shop.ShopName,
	}, nil
}

// Status reports the credential state for the source. A missing credential is
// not an error, it is simply not authenticated.
func (s *OAuthService) Status(ctx context.Context, source order.Source) (*AuthStatusResponse, error) {
	cred, err := s.credentials.FindBySource(ctx, source)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return &AuthStatusResponse{Authenticated: false}, nil
		}
		return nil, err
	}

	expired := cred.IsExpired(s.now())
	return &AuthStatusResponse{
		Authenticated: !expired,
		Expired:       expired,
		ShopID:        cred.ShopID,
		ShopName:      cred.ShopName,
		ExpiresAt:     cred.ExpiresAt,
	}, nil
}
