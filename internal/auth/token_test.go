package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/instant-messaging/internal/model"
)

func testConfig() Config {
	return Config{
		TokenSizeBytes:   32,
		TokenTTL:         24 * time.Hour,
		TokenRollingTTL:  time.Hour,
		MaxTokensPerUser: 3,
		BcryptCost:       4, // keep tests fast
	}
}

func TestNewDomainRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero token size", func(c *Config) { c.TokenSizeBytes = 0 }},
		{"negative ttl", func(c *Config) { c.TokenTTL = -time.Hour }},
		{"zero rolling ttl", func(c *Config) { c.TokenRollingTTL = 0 }},
		{"zero quota", func(c *Config) { c.MaxTokensPerUser = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			_, err := NewDomain(cfg)
			require.Error(t, err)
		})
	}
}

func TestGenerateTokenValue(t *testing.T) {
	r := require.New(t)
	d, err := NewDomain(testConfig())
	r.NoError(err)

	a, err := d.GenerateTokenValue()
	r.NoError(err)
	b, err := d.GenerateTokenValue()
	r.NoError(err)

	r.NotEqual(a, b)
	r.True(d.CanBeToken(a))
	r.True(d.CanBeToken(b))
}

func TestCanBeToken(t *testing.T) {
	r := require.New(t)
	d, err := NewDomain(testConfig())
	r.NoError(err)

	r.False(d.CanBeToken(""))
	r.False(d.CanBeToken("not base64 !!!"))
	r.False(d.CanBeToken("c2hvcnQ")) // decodes to the wrong length
}

func TestTokenFingerprintIsStableAndOpaque(t *testing.T) {
	r := require.New(t)
	d, err := NewDomain(testConfig())
	r.NoError(err)

	value, err := d.GenerateTokenValue()
	r.NoError(err)

	fp := d.TokenFingerprint(value)
	r.Equal(fp, d.TokenFingerprint(value))
	r.Len(fp, 64) // sha256 hex
	r.NotContains(fp, value)
}

func TestTokenExpirationTakesEarlierWindow(t *testing.T) {
	r := require.New(t)
	d, err := NewDomain(testConfig())
	r.NoError(err)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Fresh token: the rolling window closes first.
	tok := model.Token{CreatedAt: created, LastUsedAt: created}
	r.Equal(created.Add(time.Hour), d.TokenExpiration(tok))

	// Heavily used token near end of life: the absolute window wins.
	tok.LastUsedAt = created.Add(23*time.Hour + 30*time.Minute)
	r.Equal(created.Add(24*time.Hour), d.TokenExpiration(tok))
}

func TestIsTokenTimeValid(t *testing.T) {
	r := require.New(t)
	d, err := NewDomain(testConfig())
	r.NoError(err)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tok := model.Token{CreatedAt: created, LastUsedAt: created}

	r.True(d.IsTokenTimeValid(created, tok))
	r.True(d.IsTokenTimeValid(created.Add(time.Hour), tok))
	r.False(d.IsTokenTimeValid(created.Add(time.Hour+time.Second), tok), "rolling window elapsed")

	// Steady use keeps the token alive until the absolute limit.
	tok.LastUsedAt = created.Add(23 * time.Hour)
	r.True(d.IsTokenTimeValid(created.Add(23*time.Hour+30*time.Minute), tok))
	tok.LastUsedAt = created.Add(25 * time.Hour)
	r.False(d.IsTokenTimeValid(created.Add(25*time.Hour), tok), "absolute window elapsed")

	// Tokens from the future are invalid.
	tok = model.Token{CreatedAt: created.Add(time.Minute), LastUsedAt: created.Add(time.Minute)}
	r.False(d.IsTokenTimeValid(created, tok))
}
