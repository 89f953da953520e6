// Command stockctl reúne tarefas administrativas do Stockroom: migrações,
// criação de usuários, movimentações manuais e relatório de estoque.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"stockroom/config"
	"stockroom/internal/app"
	"stockroom/internal/domain"
	"stockroom/internal/pkg/cache"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cliApp := &cli.App{
		Name:  "stockctl",
		Usage: "administração do Stockroom",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "database-url", EnvVars: []string{"DATABASE_URL"}, Usage: "DSN do banco (sobrepõe a configuração)"},
		},
		Commands: []*cli.Command{
			{
				Name:      "migrate",
				Usage:     "aplica, reverte ou lista migrações",
				ArgsUsage: "[up|down|status]",
				Action: func(c *cli.Context) error {
					command := c.Args().First()
					if command == "" {
						command = "up"
					}
					return withServices(c, func(env *environment) error {
						return database.RunMigrations(c.Context, env.db, command, os.Stdout)
					})
				},
			},
			{
				Name:  "seed-user",
				Usage: "cadastra um usuário",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "role", Value: string(domain.RoleStockManager)},
				},
				Action: func(c *cli.Context) error {
					return withServices(c, func(env *environment) error {
						user, err := env.svc.Users.CreateUser(c.Context, domain.UserRegistration{
							Email:    c.String("email"),
							Password: c.String("password"),
							Name:     c.String("name"),
							Role:     domain.UserRole(c.String("role")),
						})
						if err != nil {
							return err
						}
						return printJSON(user)
					})
				},
			},
			{
				Name:  "movement",
				Usage: "registra uma movimentação de estoque",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "product", Required: true},
					&cli.IntFlag{Name: "delta", Required: true},
					&cli.StringFlag{Name: "reason", Required: true},
					&cli.StringFlag{Name: "actor", Usage: "ID do usuário responsável"},
				},
				Action: func(c *cli.Context) error {
					return withServices(c, func(env *environment) error {
						ctx := c.Context
						if actor := c.String("actor"); actor != "" {
							ctx = domain.WithActor(ctx, actor)
						}
						res, err := env.svc.Stock.Move(ctx, domain.MovementRequest{
							ProductID: c.String("product"),
							Delta:     c.Int("delta"),
							Reason:    c.String("reason"),
						})
						if err != nil {
							return err
						}
						return printJSON(res)
					})
				},
			},
			{
				Name:  "report",
				Usage: "imprime o resumo do estoque em JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Usage: "ID da categoria"},
					&cli.TimestampFlag{Name: "since", Layout: time.DateOnly, Usage: "AAAA-MM-DD"},
				},
				Action: func(c *cli.Context) error {
					return withServices(c, func(env *environment) error {
						report, err := env.svc.Reports.Summary(c.Context, domain.ReportFilter{
							CategoryID: c.String("category"),
							Since:      c.Timestamp("since"),
						})
						if err != nil {
							return err
						}
						return printJSON(report)
					})
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "erro:", err)
		os.Exit(1)
	}
}

type environment struct {
	db  *sqlx.DB
	svc *app.Services
}

func withServices(c *cli.Context, fn func(env *environment) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if dsn := c.String("database-url"); dsn != "" {
		cfg.DatabaseURL = dsn
	}

	// Logs vão para stderr para não misturar com a saída JSON.
	log := logger.NewLoggerWithOutput(cfg.LogLevel, os.Stderr)

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("falha ao conectar ao banco: %w", err)
	}
	defer db.Close()

	cacheClient, err := cache.NewClient(cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("falha ao conectar ao cache: %w", err)
	}

	return fn(&environment{db: db, svc: app.New(cfg, db, cacheClient, log)})
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
