package config

import (
	"fmt"
	"net"
	"os"
)

// Config holds the process configuration read from the environment.
type Config struct {
	// Port is the webapp's listening port.
	Port string
	// UserSvcAuthority is the host:port of the user service.
	UserSvcAuthority string
	// InventorySvcAuthority is the host:port of the inventory service.
	InventorySvcAuthority string
}

// Load reads the required environment variables. It returns an error naming
// the first missing variable, so the process can fail fast at startup.
func Load() (*Config, error) {
	port, err := requireEnv("WEBAPP_PORT")
	if err != nil {
		return nil, err
	}

	userHost, err := requireEnv("USERSERVICE_HOST")
	if err != nil {
		return nil, err
	}

	userPort, err := requireEnv("USERSERVICE_PORT")
	if err != nil {
		return nil, err
	}

	invHost, err := requireEnv("INVSERVICE_HOST")
	if err != nil {
		return nil, err
	}

	invPort, err := requireEnv("INVSERVICE_PORT")
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:                  port,
		UserSvcAuthority:      net.JoinHostPort(userHost, userPort),
		InventorySvcAuthority: net.JoinHostPort(invHost, invPort),
	}, nil
}

func requireEnv(name string) (string, error) {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return "", fmt.Errorf("%s environment variable is not set", name)
	}
	return value, nil
}
