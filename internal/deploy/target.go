package deploy

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/patternlab/ctlaunch/internal/storage"
)

// Default API endpoints
const (
	DefaultLocalEndpoint = "http://localhost:8000"
	DefaultProdEndpoint  = "https://toolshed.saga-castor.ts.net"
)

// Environment variables read by the ct CLI
const (
	EnvAPIURL   = "CT_API_URL"
	EnvIdentity = "CT_IDENTITY"
)

// Endpoints maps deployment targets to API base URLs
type Endpoints struct {
	Local string
	Prod  string
}

// DefaultEndpoints returns the built-in endpoints
func DefaultEndpoints() Endpoints {
	return Endpoints{Local: DefaultLocalEndpoint, Prod: DefaultProdEndpoint}
}

// For returns the endpoint of target
func (e Endpoints) For(target storage.Target) string {
	if target == storage.TargetProd {
		return e.Prod
	}
	return e.Local
}

// ParseTarget accepts "local" or "prod"
func ParseTarget(s string) (storage.Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(storage.TargetLocal):
		return storage.TargetLocal, nil
	case string(storage.TargetProd), "production":
		return storage.TargetProd, nil
	}
	return "", fmt.Errorf("unknown deployment target %q", s)
}

// CLI describes how to invoke the ct tool
type CLI struct {
	// Command is the program and leading arguments, e.g. deno task ct
	Command []string
	// Dir is the labs checkout the command runs in
	Dir string
	// Identity is the key file passed through CT_IDENTITY
	Identity string
}

// NewCLI splits commandLine on whitespace. An empty identity defaults to
// claude.key inside dir.
func NewCLI(commandLine, dir, identity string) (CLI, error) {
	parts := strings.Fields(commandLine)
	if len(parts) == 0 {
		return CLI{}, fmt.Errorf("empty ct command")
	}
	if identity == "" && dir != "" {
		identity = filepath.Join(dir, "claude.key")
	}
	return CLI{Command: parts, Dir: dir, Identity: identity}, nil
}

func (c CLI) command(endpoint string, args ...string) Command {
	full := make([]string, 0, len(c.Command)-1+len(args))
	full = append(full, c.Command[1:]...)
	full = append(full, args...)

	env := []string{EnvAPIURL + "=" + endpoint}
	if c.Identity != "" {
		env = append(env, EnvIdentity+"="+c.Identity)
	}
	return Command{Name: c.Command[0], Args: full, Dir: c.Dir, Env: env}
}

// SpaceURL is the browser URL of a space
func SpaceURL(endpoint, space string) string {
	return strings.TrimRight(endpoint, "/") + "/" + url.PathEscape(space)
}

// ArtifactURL is the browser URL of a deployed charm
func ArtifactURL(endpoint, space, id string) string {
	return SpaceURL(endpoint, space) + "/" + url.PathEscape(id)
}
