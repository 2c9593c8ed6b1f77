package limiter

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxLockout caps the exponential lockout backoff.
const maxLockout = 24 * time.Hour

type Config struct {
	// IPRate is attempts per second per client address.
	IPRate float64
	// IPBurst is the burst allowed per client address.
	IPBurst int
	// MaxFailures locks an account after this many failures within Window.
	MaxFailures int
	// Lockout is the first lockout duration; it doubles on each subsequent lockout.
	Lockout time.Duration
	// Window is the period over which failures are counted.
	Window time.Duration
}

func DefaultConfig() Config {
	return Config{
		IPRate:      0.5,
		IPBurst:     5,
		MaxFailures: 5,
		Lockout:     15 * time.Minute,
		Window:      15 * time.Minute,
	}
}

type account struct {
	failures    int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int
}

// Memory is a process-local Limiter.
type Memory struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	ips      map[string]*rate.Limiter
	accounts map[string]*account
}

func NewMemory(cfg Config, logger *zap.Logger) *Memory {
	def := DefaultConfig()
	if cfg.IPRate <= 0 {
		cfg.IPRate = def.IPRate
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = def.MaxFailures
	}
	if cfg.Lockout <= 0 {
		cfg.Lockout = def.Lockout
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Memory{
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		ips:      make(map[string]*rate.Limiter),
		accounts: make(map[string]*account),
	}
}

func (m *Memory) Allow(_ context.Context, email, ip string) (bool, time.Duration, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if acc, ok := m.accounts[email]; ok && now.Before(acc.lockedUntil) {
		return false, acc.lockedUntil.Sub(now), nil
	}

	if ip != "" {
		lim, ok := m.ips[ip]
		if !ok {
			lim = rate.NewLimiter(rate.Limit(m.cfg.IPRate), m.cfg.IPBurst)
			m.ips[ip] = lim
		}
		if !lim.AllowN(now, 1) {
			return false, time.Duration(float64(time.Second) / m.cfg.IPRate), nil
		}
	}

	return true, 0, nil
}

func (m *Memory) Failure(_ context.Context, email, _ string) (bool, time.Duration, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[email]
	if !ok {
		acc = &account{}
		m.accounts[email] = acc
	}

	if acc.failures == 0 || now.Sub(acc.firstFailed) > m.cfg.Window {
		acc.failures = 0
		acc.firstFailed = now
	}
	acc.failures++

	if acc.failures < m.cfg.MaxFailures {
		return false, 0, nil
	}

	lockFor := m.cfg.Lockout
	for i := 0; i < acc.lockouts && lockFor < maxLockout; i++ {
		lockFor *= 2
	}
	if lockFor > maxLockout {
		lockFor = maxLockout
	}

	acc.lockedUntil = now.Add(lockFor)
	acc.lockouts++
	acc.failures = 0

	m.logger.Warn("account locked after failed logins",
		zap.String("email", email),
		zap.Int("lockouts", acc.lockouts),
		zap.Duration("duration", lockFor),
	)
	return true, lockFor, nil
}

func (m *Memory) Success(_ context.Context, email, _ string) error {
	m.mu.Lock()
	delete(m.accounts, email)
	m.mu.Unlock()
	return nil
}

// Prune drops idle address limiters and expired account records.
func (m *Memory) Prune() {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for ip, lim := range m.ips {
		if lim.TokensAt(now) >= float64(m.cfg.IPBurst) {
			delete(m.ips, ip)
		}
	}
	for email, acc := range m.accounts {
		if now.After(acc.lockedUntil) && now.Sub(acc.firstFailed) > m.cfg.Window && now.Sub(acc.lockedUntil) > maxLockout {
			delete(m.accounts, email)
		}
	}
}

// Run prunes periodically until ctx is done.
func (m *Memory) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Prune()
		}
	}
}
