package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"vibex-storefront/internal/apiclient"
	"vibex-storefront/internal/auth"
	"vibex-storefront/internal/config"
	"vibex-storefront/internal/gateway"
	"vibex-storefront/internal/models"
	"vibex-storefront/internal/tokens"
)

// login signs in against the configured gateway and prints what the BFF
// would see for that account. Useful to check GATEWAY_URL and a test account.
func main() {
	fmt.Println("Storefront gateway login check")
	fmt.Println("==============================")

	cfg := config.Load()
	logger := config.NewLogger(cfg)

	services := gateway.New(cfg.GatewayURL,
		apiclient.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		apiclient.WithLogger(logger),
	)
	manager := auth.NewManager(tokens.NewMemoryStore(), services.Auth, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, logger)

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		log.Fatal("Failed to read email:", err)
	}
	email = strings.TrimSpace(email)
	if email == "" {
		log.Fatal("Email cannot be empty")
	}

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		log.Fatal("Failed to read password:", err)
	}
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const sessionID = "cli"
	claims, err := manager.Login(ctx, sessionID, models.LoginRequest{Email: email, Password: string(passwordBytes)})
	if err != nil {
		if apiclient.StatusCode(err) == http.StatusUnauthorized {
			log.Fatal("Login rejected: invalid credentials")
		}
		log.Fatalf("Login against %s failed: %v", cfg.GatewayURL, err)
	}

	fmt.Printf("User ID:   %s\n", claims.UserID)
	fmt.Printf("Email:     %s\n", claims.Email)
	fmt.Printf("Roles:     %s (area: %s)\n", strings.Join(claims.Roles, ", "), auth.PrimaryRole(claims.Roles))
	if !claims.ExpiresAt.IsZero() {
		fmt.Printf("Expires:   %s\n", claims.ExpiresAt.Format("2006-01-02 15:04:05"))
	}

	session := services.ForSession(manager.Session(sessionID), nil)
	balance, err := session.Wallet.Balance(apiclient.WithPage(ctx, "/information/wallet"))
	if err != nil {
		fmt.Printf("Wallet:    unavailable (%v)\n", err)
		return
	}
	fmt.Printf("Wallet:    %s available, %s pending\n", balance.BalanceAvailable.StringFixed(0), balance.BalancePending.StringFixed(0))
}
