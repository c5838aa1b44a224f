// Package main provides a CLI tool for minting and inspecting inkwell
// credentials with the signing secrets from the current environment.
// With no JWT_* variables set it uses the development secrets, which the
// server refuses in production.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/platform/config"
	"inkwell/internal/token"
)

type pairOutput struct {
	SubjectID        string            `json:"subject_id"`
	AccessToken      string            `json:"access_token"`
	RefreshToken     string            `json:"refresh_token"`
	AccessExpiresAt  time.Time         `json:"access_expires_at"`
	RefreshExpiresAt time.Time         `json:"refresh_expires_at"`
	Usage            map[string]string `json:"usage"`
}

func main() {
	pairCmd := flag.NewFlagSet("pair", flag.ExitOnError)
	inspectCmd := flag.NewFlagSet("inspect", flag.ExitOnError)

	pairSubject := pairCmd.String("subject-id", "", "Subject ID (UUID). Generated if empty.")
	pairRole := pairCmd.String("role", "author", "Role claim (author, editor, admin)")
	pairEpoch := pairCmd.Int64("epoch", 0, "Token epoch of the subject")
	pairAccessTTL := pairCmd.Duration("access-ttl", 0, "Override ACCESS_TOKEN_TTL")
	pairJSON := pairCmd.Bool("json", false, "Output as JSON")

	inspectRefresh := inspectCmd.Bool("refresh", false, "Treat the credential as a refresh credential")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "pair":
		_ = pairCmd.Parse(os.Args[2:])
		issuePair(*pairSubject, *pairRole, *pairEpoch, *pairAccessTTL, *pairJSON)
	case "inspect":
		_ = inspectCmd.Parse(os.Args[2:])
		if inspectCmd.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "inspect takes exactly one credential")
			os.Exit(1)
		}
		inspect(inspectCmd.Arg(0), *inspectRefresh)
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - mint and inspect inkwell credentials

Secrets, issuer and audience come from the same environment variables the
server reads (JWT_ACCESS_SECRET, JWT_REFRESH_SECRET, JWT_ISSUER, JWT_AUDIENCE).

Usage:
  tokengen <command> [flags]

Commands:
  pair      Issue an access/refresh credential pair
  inspect   Verify a credential and print its claims

Examples:
  tokengen pair
  tokengen pair -subject-id "550e8400-e29b-41d4-a716-446655440000" -role editor
  tokengen pair -access-ttl 5m -json
  tokengen inspect eyJhbGciOi...
  tokengen inspect -refresh eyJhbGciOi...`)
}

func newService(accessTTL time.Duration) *token.Service {
	cfg, err := config.Load()
	if err != nil {
		fail("load configuration: %v", err)
	}
	tc := token.Config{
		AccessSecret:  cfg.Token.AccessSecret,
		RefreshSecret: cfg.Token.RefreshSecret,
		Issuer:        cfg.Token.Issuer,
		Audience:      cfg.Token.Audience,
		AccessTTL:     cfg.Token.AccessTTL,
		RefreshTTL:    cfg.Token.RefreshTTL,
	}
	if accessTTL > 0 {
		tc.AccessTTL = accessTTL
	}
	svc, err := token.New(tc)
	if err != nil {
		fail("create token service: %v", err)
	}
	return svc
}

func issuePair(subjectID, role string, epoch int64, accessTTL time.Duration, jsonOutput bool) {
	id := parseOrGenerateUUID(subjectID)
	pair, err := newService(accessTTL).Issue(context.Background(), id.String(), role, token.WithEpoch(epoch))
	if err != nil {
		fail("issue credentials: %v", err)
	}

	if jsonOutput {
		printJSON(pairOutput{
			SubjectID:        id.String(),
			AccessToken:      pair.AccessToken,
			RefreshToken:     pair.RefreshToken,
			AccessExpiresAt:  pair.AccessExpiresAt,
			RefreshExpiresAt: pair.RefreshExpiresAt,
			Usage: map[string]string{
				"header": "Authorization: Bearer " + pair.AccessToken,
			},
		})
		return
	}
	fmt.Println("Credential pair")
	fmt.Println("===============")
	fmt.Printf("Subject:  %s\n", id)
	fmt.Printf("Role:     %s\n", role)
	fmt.Printf("Access:   %s\n", pair.AccessToken)
	fmt.Printf("          expires %s\n", pair.AccessExpiresAt.Format(time.RFC3339))
	fmt.Printf("Refresh:  %s\n", pair.RefreshToken)
	fmt.Printf("          expires %s\n", pair.RefreshExpiresAt.Format(time.RFC3339))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer " + pair.AccessToken + "\" http://localhost:8080/api/me")
}

func inspect(raw string, refresh bool) {
	svc := newService(0)
	validate := svc.ValidateAccess
	if refresh {
		validate = svc.ValidateRefresh
	}
	claims, err := validate(context.Background(), raw)
	if err != nil {
		fail("credential rejected: %v", err)
	}
	printJSON(claims)
}

func parseOrGenerateUUID(input string) uuid.UUID {
	if input == "" {
		return uuid.New()
	}
	parsed, err := uuid.Parse(input)
	if err != nil {
		fail("invalid subject id %q", input)
	}
	return parsed
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fail("encode JSON: %v", err)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
