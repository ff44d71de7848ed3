package service

import (
	"github.com/spec-kit/chirpy/internal/config"
)

const testSecret = "test-secret"

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:           testSecret,
			JWTIssuer:           "chirpy",
			DefaultTokenSeconds: 3600,
			ArgonTime:           1,
			ArgonMemoryKiB:      8 * 1024,
			ArgonThreads:        1,
		},
	}
}

func intPtr(v int) *int { return &v }
