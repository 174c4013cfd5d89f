package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/coleta/internal/db"
	"github.com/gestaozabele/coleta/internal/query"
	"github.com/gestaozabele/coleta/internal/repo"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx := context.Background()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		log.Fatal().Msg("defina DB_DSN ou DATABASE_URL")
	}

	pool, err := db.NewPool(ctx, dsn, 2)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível conectar ao banco")
	}
	defer pool.Close()

	queries := repo.New(pool)

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "migrate":
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("falha ao aplicar schema")
		}
		log.Info().Msg("schema aplicado")
	case "promote":
		if err := runPromote(ctx, queries, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao alterar papel")
		}
	case "list":
		if err := runList(ctx, queries, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao listar cidadãos")
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "admin CLI")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  admin migrate")
	fmt.Fprintln(os.Stderr, "  admin promote --email operador@cidade.gov.br --role operator")
	fmt.Fprintln(os.Stderr, "  admin list [--role admin] [--limit 50]")
}

func runPromote(ctx context.Context, queries *repo.Queries, args []string) error {
	fs := flag.NewFlagSet("promote", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		email = fs.String("email", "", "email do cidadão")
		role  = fs.String("role", repo.RoleOperator, "novo papel (citizen, operator, admin)")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*email) == "" {
		return errors.New("email é obrigatório")
	}
	if !repo.ValidRole(*role) {
		return fmt.Errorf("papel %q inválido", *role)
	}

	citizen, err := queries.SetCitizenRole(ctx, strings.TrimSpace(*email), *role)
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("cidadão %s não encontrado", *email)
	}
	if err != nil {
		return err
	}

	log.Info().Str("citizen_id", citizen.ID.String()).Str("role", citizen.Role).Msg("papel atualizado")
	return nil
}

func runList(ctx context.Context, queries *repo.Queries, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		role  = fs.String("role", "", "filtra por papel")
		limit = fs.Int("limit", query.MaxLimit, "quantidade máxima")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := queries.ListCitizens(ctx, repo.CitizenFilter{Role: *role}, query.NewPage(1, *limit))
	if err != nil {
		return err
	}

	if len(res.Items) == 0 {
		fmt.Println("nenhum cidadão cadastrado")
		return nil
	}

	encoded, _ := json.MarshalIndent(res.Items, "", "  ")
	fmt.Println(string(encoded))
	return nil
}
