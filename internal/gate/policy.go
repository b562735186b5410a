package gate

import (
	"strings"

	"github.com/2beens/fittrack/internal/config"
)

// Decision is what a client should do with a requested path.
// At most one of Pending, Render and RedirectTo is set.
type Decision struct {
	Pending    bool   `json:"pending"`
	Render     bool   `json:"render"`
	RedirectTo string `json:"redirectTo,omitempty"`
}

type Policy struct {
	loginPath      string
	onboardingPath string
	dashboardPath  string
	publicPaths    map[string]bool
}

func NewPolicy(cfg config.GateConfig) *Policy {
	publicPaths := make(map[string]bool)
	for _, p := range cfg.PublicPaths {
		publicPaths[cleanPath(p)] = true
	}
	publicPaths[cleanPath(cfg.LoginPath)] = true

	return &Policy{
		loginPath:      cleanPath(cfg.LoginPath),
		onboardingPath: cleanPath(cfg.OnboardingPath),
		dashboardPath:  cleanPath(cfg.DashboardPath),
		publicPaths:    publicPaths,
	}
}

func (p *Policy) IsPublic(path string) bool {
	return p.publicPaths[cleanPath(path)]
}

func (p *Policy) Allow(state State, path string) Decision {
	path = cleanPath(path)

	switch state {
	case Anonymous:
		if p.publicPaths[path] {
			return Decision{Render: true}
		}
		return Decision{RedirectTo: p.loginPath}
	case NeedsOnboarding:
		if path == p.onboardingPath {
			return Decision{Render: true}
		}
		return Decision{RedirectTo: p.onboardingPath}
	case Active:
		if path == p.onboardingPath {
			return Decision{RedirectTo: p.dashboardPath}
		}
		return Decision{Render: true}
	default:
		return Decision{Pending: true}
	}
}

// cleanPath drops the query and trailing slashes, so "/app/?x=1" equals "/app".
func cleanPath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
