package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kurin/blazer/b2"
)

// AssetService mints short-lived Backblaze B2 download authorizations scoped
// to a single project's asset prefix. The backend never moves asset bytes
// itself; clients talk to B2 directly with the granted token.
type AssetService struct {
	bucket   *b2.Bucket
	tokenTTL time.Duration
}

// AssetGrant is what a client needs to fetch a project's assets from B2.
type AssetGrant struct {
	Token     string    `json:"token"`
	BaseURL   string    `json:"base_url"`
	Prefix    string    `json:"prefix"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewAssetService(ctx context.Context, keyID, applicationKey, bucketName string, tokenTTL time.Duration) (*AssetService, error) {
	client, err := b2.NewClient(ctx, keyID, applicationKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create B2 client: %w", err)
	}

	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to open B2 bucket %s: %w", bucketName, err)
	}

	if tokenTTL <= 0 {
		tokenTTL = 15 * time.Minute
	}

	return &AssetService{bucket: bucket, tokenTTL: tokenTTL}, nil
}

// AuthorizeProjectAssets grants read access to everything under the project's
// asset prefix. Callers must run the ownership guard first.
func (s *AssetService) AuthorizeProjectAssets(ctx context.Context, projectID string) (*AssetGrant, error) {
	prefix := fmt.Sprintf("projects/%s/", projectID)

	token, err := s.bucket.AuthToken(ctx, prefix, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize asset download: %w", err)
	}

	return &AssetGrant{
		Token:     token,
		BaseURL:   s.bucket.BaseURL(),
		Prefix:    prefix,
		ExpiresAt: time.Now().UTC().Add(s.tokenTTL),
	}, nil
}
