package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/coursevault/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   session token HMAC secret
//	-t int      session validity, minutes
//	-r string   storage root directory
//	-m int      maximum upload size, bytes
//	-x string   comma-separated upload allow-list
//	-k string   Redis address for CSRF tokens
//	-l string   log format (json, text, zap)
//	-n int      default listing limit
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-m", "-x", "-k", "-l", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	sessionValidity := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session validity (in minutes)")
	fs.StringVar(&config.StorageRoot, "r", config.StorageRoot, "storage root directory")
	fs.Int64Var(&config.MaxUploadSize, "m", config.MaxUploadSize, "maximum upload size (bytes)")
	extensions := fs.String("x", strings.Join(config.AllowedExtensions, ","), "comma-separated upload allow-list")
	fs.StringVar(&config.RedisAddr, "k", config.RedisAddr, "redis address for csrf tokens")
	fs.StringVar(&config.LogFormat, "l", config.LogFormat, "log format: json, text or zap")
	fs.IntVar(&config.ListLimit, "n", config.ListLimit, "default listing limit")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionValidity) * time.Minute
	config.AllowedExtensions = splitExtensions(*extensions)
}

// splitExtensions turns "pdf, .JPG,zip" into [pdf jpg zip].
func splitExtensions(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(part), "."))
		if ext != "" {
			out = append(out, ext)
		}
	}
	return out
}
