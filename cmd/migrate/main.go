package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"course-payments/internal/config"
	"course-payments/internal/infrastructure/database"
	"course-payments/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Course payments database migrations",
	Long:  `Runs the embedded SQL migrations against the configured PostgreSQL database.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		_ = godotenv.Load()
		logger.Init(os.Getenv("APP_ENV"))
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(
		gooseCommand("up", "apply all pending migrations"),
		gooseCommand("down", "roll back the latest migration"),
		gooseCommand("status", "print the status of all migrations"),
		gooseCommand("version", "print the current schema version"),
		gooseCommand("redo", "roll back and re-apply the latest migration"),
	)
}

func gooseCommand(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigration(cmd, name)
		},
	}
}

func runMigration(cmd *cobra.Command, command string) error {
	migrator, err := database.NewMigrator(config.LoadDatabaseConfig().DSN())
	if err != nil {
		return err
	}
	defer migrator.Close()

	if err := migrator.Run(cmd.Context(), command); err != nil {
		return err
	}

	logger.Info("migration finished", map[string]interface{}{"command": command})
	return nil
}
