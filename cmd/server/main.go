package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yukikurage/task-hierarchy-api/internal/config"
	"github.com/yukikurage/task-hierarchy-api/internal/database"
	"github.com/yukikurage/task-hierarchy-api/internal/repository"
	"github.com/yukikurage/task-hierarchy-api/internal/seed"
)

var settings = viper.New()

var rootCmd = &cobra.Command{
	Use:   "taskhierarchy",
	Short: "Task hierarchy API server",
	Long: `Serves the director / manager / team member task API.
Configuration comes from environment variables (DB_DRIVER, JWT_SECRET, ...)
and an optional config file passed with --config.`,
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addPersistentFlags()
	registerCommands()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().String("config", "", "config file (yaml, json or toml)")
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(usersCmd())
}

// loadConfig reads the configuration and opens the database.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		settings.SetConfigFile(path)
	}
	cfg, err := config.Load(settings)
	if err != nil {
		return nil, err
	}
	if err := database.Connect(cfg); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(cmd); err != nil {
				return err
			}
			return database.Migrate()
		},
	}
}

func seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the default users and tasks, or those in --file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(cmd); err != nil {
				return err
			}
			if err := database.Migrate(); err != nil {
				return err
			}
			return runSeed(cmd.Context(), file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML fixture to load instead of the built-in one")
	return cmd
}

func runSeed(ctx context.Context, file string) error {
	fixture, err := loadFixture(file)
	if err != nil {
		return err
	}

	db := database.GetDB()
	seeder := seed.NewSeeder(repository.NewUserRepository(db), repository.NewTaskRepository(db))
	result, err := seeder.Run(ctx, fixture)
	if err != nil {
		return err
	}
	log.Printf("seed: %d users created, %d already present, %d tasks created",
		result.UsersCreated, result.UsersSkipped, result.TasksCreated)
	return nil
}

func loadFixture(file string) (*seed.Fixture, error) {
	if file == "" {
		return seed.Default()
	}
	return seed.LoadFile(file)
}

func usersCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users and their place in the hierarchy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(cmd); err != nil {
				return err
			}

			repo := repository.NewUserRepository(database.GetDB())
			list := repo.ListActive
			if all {
				list = repo.ListAll
			}
			users, err := list(cmd.Context())
			if err != nil {
				return err
			}

			names := make(map[uint64]string, len(users))
			for _, u := range users {
				names[u.ID] = u.Username
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"ID", "Username", "Role", "Manager", "Active"})
			for _, u := range users {
				manager := ""
				if u.ManagerID != nil {
					manager = names[*u.ManagerID]
					if manager == "" {
						manager = fmt.Sprintf("#%d", *u.ManagerID)
					}
				}
				tw.AppendRow(table.Row{u.ID, u.Username, u.Role, manager, u.IsActive})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include inactive users")
	return cmd
}
