// Command token mints an access token for local testing.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cmlabs-hris/attendance-ledger/internal/config"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/jwt"
)

func main() {
	subject := flag.String("sub", "", "token subject, usually the driver or approver name")
	role := flag.String("role", string(jwt.RoleDriver), "driver | approver | admin")
	flag.Parse()

	if *subject == "" {
		fmt.Fprintln(os.Stderr, "-sub is required")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).GenerateAccessToken(*subject, jwt.Role(*role))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintln(os.Stderr, "expires at", expiresAt)
}
