package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/devlink/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":8080")
//	-d string     PostgreSQL DSN
//	-s string     JWT HMAC secret key
//	-t duration   token validity (e.g., "10h")
//	-b int        bcrypt cost
//	-o string     CORS allowed origins (comma-separated)
//	-m string     gin mode (debug, release, test)
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-b", "-o", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.TokenValidityDuration, "t", config.TokenValidityDuration, "token validity duration")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.CORSAllowedOrigins, "o", config.CORSAllowedOrigins, "CORS allowed origins")
	fs.StringVar(&config.GinMode, "m", config.GinMode, "gin mode")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
