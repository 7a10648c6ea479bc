// cmd/hashpass/main.go
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/technexus/storefront-backend/internal/config"
	"github.com/technexus/storefront-backend/internal/pkg/auth"
)

// Prints a bcrypt hash for manually provisioning a user row.
// Usage: hashpass <password> [phone]
func main() {
	if len(os.Args) < 2 {
		logrus.Fatal("Usage: hashpass <password> [phone]")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	passwords := auth.NewPasswordManager(cfg)
	password := os.Args[1]
	if err := passwords.ValidatePassword(password); err != nil {
		logrus.WithError(err).Fatal("Password rejected")
	}

	hash, err := passwords.HashPassword(password)
	if err != nil {
		logrus.WithError(err).Fatal("Error generating hash")
	}
	if err := passwords.VerifyPassword(password, hash); err != nil {
		logrus.WithError(err).Fatal("Hash verification failed")
	}

	fmt.Printf("Hash: %s\n", hash)

	if len(os.Args) > 2 {
		phone := auth.NormalizePhone(os.Args[2])
		if !auth.ValidPhone(phone) {
			logrus.Fatalf("Invalid phone %q", os.Args[2])
		}
		fmt.Printf("Phone: %s (admin allowlisted: %t)\n", phone, auth.IsAllowlisted(phone, cfg.Security.AdminPhones))
	}
}
