package service

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/boatmemories/backend/internal/models"
)

const tokenLifetime = 30 * 24 * time.Hour

// IdentityService issues anonymous identities, verifies bearer tokens, and
// upgrades anonymous visitors once they provide an email. Sign-out is a
// client-side token discard; no session rows are kept.
type IdentityService struct {
	identities IdentityStore
	memories   MemoryStore
	jwtSecret  []byte
}

func NewIdentityService(identities IdentityStore, memories MemoryStore, jwtSecret string) *IdentityService {
	return &IdentityService{
		identities: identities,
		memories:   memories,
		jwtSecret:  []byte(jwtSecret),
	}
}

// CreateAnonymous registers a fresh anonymous identity and returns it with a
// signed bearer token.
func (s *IdentityService) CreateAnonymous(ctx context.Context) (*models.Identity, string, error) {
	identity := &models.Identity{
		ID:        uuid.NewString(),
		Anonymous: true,
	}
	if err := s.identities.Create(ctx, identity); err != nil {
		return nil, "", fmt.Errorf("create anonymous identity: %w", err)
	}
	token, err := s.mintToken(identity)
	if err != nil {
		return nil, "", err
	}
	return identity, token, nil
}

// Resolve verifies a bearer token and loads the identity it names.
func (s *IdentityService) Resolve(ctx context.Context, token string) (*models.Identity, error) {
	id, err := s.verifyToken(token)
	if err != nil {
		return nil, err
	}
	identity, err := s.identities.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}
	if identity == nil {
		return nil, fmt.Errorf("%w: unknown identity", ErrValidation)
	}
	return identity, nil
}

// Upgrade attaches an email to the identity and optionally absorbs another
// anonymous identity's memories (the explicit merge for the
// anonymous-then-signed-in flow). A fresh token is returned because the
// anonymous claim changed.
func (s *IdentityService) Upgrade(ctx context.Context, id, email, mergeToken string) (*models.Identity, string, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", fmt.Errorf("%w: invalid email address", ErrValidation)
	}

	identity, err := s.identities.Get(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("load identity: %w", err)
	}
	if identity == nil {
		return nil, "", fmt.Errorf("%w: unknown identity", ErrValidation)
	}

	if err := s.identities.SetEmail(ctx, id, email); err != nil {
		return nil, "", fmt.Errorf("upgrade identity: %w", err)
	}
	identity.Email = email
	identity.Anonymous = false

	if mergeToken != "" {
		otherID, err := s.verifyToken(mergeToken)
		if err != nil {
			return nil, "", err
		}
		if otherID != id {
			if err := s.memories.Reassign(ctx, otherID, id); err != nil {
				return nil, "", fmt.Errorf("merge identities: %w", err)
			}
		}
	}

	token, err := s.mintToken(identity)
	if err != nil {
		return nil, "", err
	}
	return identity, token, nil
}

func (s *IdentityService) mintToken(identity *models.Identity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  identity.ID,
		"anon": identity.Anonymous,
		"iat":  now.Unix(),
		"exp":  now.Add(tokenLifetime).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *IdentityService) verifyToken(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: token missing subject", ErrValidation)
	}
	return sub, nil
}
