// Command sessiontoken mints a signed session token for a user id using the
// server's secret and session validity, e.g. for API clients and smoke tests.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/coursevault/internal/flagx"
	"github.com/dmitrijs2005/coursevault/internal/server/auth"
	"github.com/dmitrijs2005/coursevault/internal/server/config"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	fs := flag.NewFlagSet("sessiontoken", flag.ContinueOnError)
	userID := fs.Int64("u", 0, "user id")
	if err := fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-u"})); err != nil {
		log.Fatalf("%v", err)
	}
	if *userID <= 0 {
		log.Fatalf("-u user id is required")
	}

	tok, err := auth.GenerateToken(*userID, auth.NewSessionID(), []byte(cfg.SecretKey), cfg.SessionValidityDuration)
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Println(tok)

}
