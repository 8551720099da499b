package core

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/archnets/learn-miniapp/internal/api"
	"github.com/archnets/learn-miniapp/internal/host"
	"github.com/archnets/learn-miniapp/internal/logger"
)

// ErrInvalidArgument is returned before any request is made when a
// required identifier is missing.
var ErrInvalidArgument = errors.New("invalid argument")

type UserService struct {
	api  *api.Client
	host host.Bridge
}

func NewUserService(client *api.Client, bridge host.Bridge) *UserService {
	if bridge == nil {
		bridge = host.Unavailable()
	}
	return &UserService{api: client, host: bridge}
}

func (s *UserService) GetProfile(ctx context.Context) (Profile, error) {
	return api.Into[Profile](s.api.Get(ctx, api.EndpointUserProfile))
}

// UpdateProfile sends a partial update and returns the stored profile.
func (s *UserService) UpdateProfile(ctx context.Context, update ProfileUpdate) (Profile, error) {
	return api.Into[Profile](s.api.Patch(ctx, api.EndpointUserProfile, update))
}

// SyncWithHostUser pushes the host's view of the user to the backend.
func (s *UserService) SyncWithHostUser(ctx context.Context) (Profile, error) {
	u, err := s.host.User()
	if err != nil {
		return Profile{}, fmt.Errorf("sync profile: host user unavailable: %w", err)
	}

	payload := HostSync{
		TelegramID:   u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Username:     u.Username,
		LanguageCode: u.LanguageCode,
		PhotoURL:     u.PhotoURL,
		IsPremium:    u.IsPremium,
	}
	return api.Into[Profile](s.api.Post(ctx, api.EndpointUserSync, payload))
}

// CreateOrUpdateProfile loads the profile and falls back to a host sync
// when the load fails. Both errors are returned if both steps fail.
func (s *UserService) CreateOrUpdateProfile(ctx context.Context) (Profile, error) {
	p, getErr := s.GetProfile(ctx)
	if getErr == nil {
		return p, nil
	}
	logger.Named("core").Infof("Profile lookup failed, syncing from host: %v", getErr)

	p, syncErr := s.SyncWithHostUser(ctx)
	if syncErr != nil {
		return Profile{}, errors.Join(fmt.Errorf("get profile: %w", getErr), syncErr)
	}
	return p, nil
}

// GetActivity returns a page of recent activity. Non-positive limit or
// offset leaves the server default.
func (s *UserService) GetActivity(ctx context.Context, limit, offset int) ([]Activity, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	return api.Into[[]Activity](s.api.Get(ctx, api.WithQueryString(api.EndpointUserActivity, params)))
}

func (s *UserService) GetStats(ctx context.Context) (Stats, error) {
	return api.Into[Stats](s.api.Get(ctx, api.EndpointUserStats))
}
