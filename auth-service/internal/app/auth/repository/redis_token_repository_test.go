package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// TokenRepositoryTestSuite проверяет хранилище сессий на miniredis
type TokenRepositoryTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *redis.Client
	repo      TokenRepository
}

func TestTokenRepositorySuite(t *testing.T) {
	suite.Run(t, new(TokenRepositoryTestSuite))
}

func (s *TokenRepositoryTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.client = redis.NewClient(&redis.Options{
		Addr: s.miniRedis.Addr(),
	})

	s.repo = NewRedisTokenRepository(s.client)
}

func (s *TokenRepositoryTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *TokenRepositoryTestSuite) TearDownSuite() {
	s.client.Close()
	s.miniRedis.Close()
}

func (s *TokenRepositoryTestSuite) TestSaveAndGetRefreshToken() {
	ctx := context.Background()
	userID := uuid.New()

	// Arrange
	err := s.repo.SaveRefreshToken(ctx, userID, "tok-1", time.Now().Add(time.Hour))
	s.Require().NoError(err)

	// Act
	stored, err := s.repo.GetRefreshToken(ctx, "tok-1")

	// Assert
	s.Require().NoError(err)
	s.Equal(userID, stored.UserID)
	s.Equal("tok-1", stored.Token)
	s.WithinDuration(time.Now().Add(time.Hour), stored.ExpiresAt, 5*time.Second)
	s.True(s.miniRedis.Exists("user_tokens:" + userID.String()))
}

func (s *TokenRepositoryTestSuite) TestSaveRefreshToken_Expired() {
	err := s.repo.SaveRefreshToken(context.Background(), uuid.New(), "tok", time.Now().Add(-time.Second))

	s.ErrorIs(err, errTokenExpired)
}

func (s *TokenRepositoryTestSuite) TestGetRefreshToken_NotFound() {
	stored, err := s.repo.GetRefreshToken(context.Background(), "missing")

	s.Nil(stored)
	s.ErrorIs(err, ErrNotFound)
}

func (s *TokenRepositoryTestSuite) TestGetRefreshToken_ExpiresWithTTL() {
	ctx := context.Background()
	s.Require().NoError(s.repo.SaveRefreshToken(ctx, uuid.New(), "short", time.Now().Add(time.Minute)))

	s.miniRedis.FastForward(2 * time.Minute)

	_, err := s.repo.GetRefreshToken(ctx, "short")
	s.ErrorIs(err, ErrNotFound)
}

func (s *TokenRepositoryTestSuite) TestDeleteRefreshToken() {
	ctx := context.Background()
	userID := uuid.New()
	s.Require().NoError(s.repo.SaveRefreshToken(ctx, userID, "a", time.Now().Add(time.Hour)))
	s.Require().NoError(s.repo.SaveRefreshToken(ctx, userID, "b", time.Now().Add(time.Hour)))

	err := s.repo.DeleteRefreshToken(ctx, "a")

	s.NoError(err)
	_, err = s.repo.GetRefreshToken(ctx, "a")
	s.ErrorIs(err, ErrNotFound)
	members, err := s.miniRedis.Members("user_tokens:" + userID.String())
	s.NoError(err)
	s.Equal([]string{"b"}, members)
}

func (s *TokenRepositoryTestSuite) TestDeleteUserRefreshTokens() {
	ctx := context.Background()
	userID := uuid.New()
	other := uuid.New()
	s.Require().NoError(s.repo.SaveRefreshToken(ctx, userID, "a", time.Now().Add(time.Hour)))
	s.Require().NoError(s.repo.SaveRefreshToken(ctx, userID, "b", time.Now().Add(time.Hour)))
	s.Require().NoError(s.repo.SaveRefreshToken(ctx, other, "c", time.Now().Add(time.Hour)))

	err := s.repo.DeleteUserRefreshTokens(ctx, userID)

	s.NoError(err)
	for _, tok := range []string{"a", "b"} {
		_, err := s.repo.GetRefreshToken(ctx, tok)
		s.ErrorIs(err, ErrNotFound)
	}
	_, err = s.repo.GetRefreshToken(ctx, "c")
	s.NoError(err)
	s.False(s.miniRedis.Exists("user_tokens:" + userID.String()))
}

func (s *TokenRepositoryTestSuite) TestBlacklist() {
	ctx := context.Background()

	blacklisted, err := s.repo.IsBlacklisted(ctx, "access")
	s.NoError(err)
	s.False(blacklisted)

	s.Require().NoError(s.repo.AddToBlacklist(ctx, "access", time.Now().Add(time.Minute)))

	blacklisted, err = s.repo.IsBlacklisted(ctx, "access")
	s.NoError(err)
	s.True(blacklisted)

	s.miniRedis.FastForward(2 * time.Minute)
	blacklisted, err = s.repo.IsBlacklisted(ctx, "access")
	s.NoError(err)
	s.False(blacklisted)
}

func (s *TokenRepositoryTestSuite) TestAddToBlacklist_ExpiredTokenSkipped() {
	err := s.repo.AddToBlacklist(context.Background(), "old", time.Now().Add(-time.Minute))

	s.NoError(err)
	s.False(s.miniRedis.Exists("blacklist:old"))
}
