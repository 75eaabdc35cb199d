// Command listusers prints every registered account as a table.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/database"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/logging"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/models"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.AppEnv)

	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer database.Close(database.DB)

	var users []models.User
	if err := database.DB.
		Select("id", "username", "email", "role", "created_at").
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		slog.Error("failed to fetch users", "error", err)
		os.Exit(1)
	}

	if len(users) == 0 {
		fmt.Println("No users found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tEMAIL\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.Username, u.Email, u.Role, u.CreatedAt.Format("2006-01-02"))
	}
	w.Flush()
	fmt.Printf("\nTotal: %d users\n", len(users))
}
