package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) SetupTest() {
	for _, key := range []string{"HTTP_ADDR", "LOG_LEVEL", "STORAGE_TYPE", "REDIS_URL", "REDIS_KEY_PREFIX", "SQLITE_PATH", "RANDOM_SEED", "SNAPSHOT_TTL"} {
		s.T().Setenv(key, "")
		s.Require().NoError(os.Unsetenv(key))
	}
}

func (s *ConfigTestSuite) TestDefaults() {
	cfg, err := Load(filepath.Join(s.T().TempDir(), "missing.env"))
	s.Require().NoError(err)

	s.Equal(":8080", cfg.HTTPAddr)
	s.Equal(slog.LevelInfo, cfg.LogLevel)
	s.Equal("memory", cfg.StorageType)
	s.Equal("partygame.db", cfg.SQLitePath)
	s.Equal(uint64(0), cfg.RandomSeed)
	s.Equal(24*time.Hour, cfg.SnapshotTTL)
	s.Equal("partygame", cfg.RedisPrefix)
}

func (s *ConfigTestSuite) TestEnvironmentOverrides() {
	s.T().Setenv("HTTP_ADDR", "127.0.0.1:9000")
	s.T().Setenv("LOG_LEVEL", "DEBUG")
	s.T().Setenv("STORAGE_TYPE", "sqlite")
	s.T().Setenv("SQLITE_PATH", "/tmp/party.db")
	s.T().Setenv("RANDOM_SEED", "42")
	s.T().Setenv("SNAPSHOT_TTL", "90m")

	cfg, err := Load(filepath.Join(s.T().TempDir(), "missing.env"))
	s.Require().NoError(err)

	s.Equal("127.0.0.1:9000", cfg.HTTPAddr)
	s.Equal(slog.LevelDebug, cfg.LogLevel)
	s.Equal("sqlite", cfg.StorageType)
	s.Equal("/tmp/party.db", cfg.SQLitePath)
	s.Equal(uint64(42), cfg.RandomSeed)
	s.Equal(90*time.Minute, cfg.SnapshotTTL)
}

func (s *ConfigTestSuite) TestDotenvFile() {
	path := filepath.Join(s.T().TempDir(), "test.env")
	s.Require().NoError(os.WriteFile(path, []byte("STORAGE_TYPE=redis\nREDIS_URL=redis://cache:6379\n"), 0o600))
	s.T().Setenv("STORAGE_TYPE", "memory")

	cfg, err := Load(path)
	s.Require().NoError(err)

	// Variables already in the environment win over the file
	s.Equal("memory", cfg.StorageType)
	s.Equal("redis://cache:6379", cfg.RedisURL)
}

func (s *ConfigTestSuite) TestRedisRequiresURL() {
	s.T().Setenv("STORAGE_TYPE", "redis")

	_, err := Load(filepath.Join(s.T().TempDir(), "missing.env"))
	s.Require().Error(err)
	s.Contains(err.Error(), "REDIS_URL")
}

func (s *ConfigTestSuite) TestInvalidSeed() {
	s.T().Setenv("RANDOM_SEED", "not-a-number")

	_, err := Load(filepath.Join(s.T().TempDir(), "missing.env"))
	s.Error(err)
}
