// Command seed recreates the database schema and loads demo data: two
// groups, their profiler types, a few complete profiles with answers, and
// an admin superuser whose generated password is printed once.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"brainwaves/internal/catalog"
	"brainwaves/internal/config"
	"brainwaves/internal/db"
	"brainwaves/internal/domain"
	"brainwaves/internal/repository"
	"brainwaves/internal/service"
)

var schema = []string{
	`DROP TABLE IF EXISTS answers`,
	`DROP TABLE IF EXISTS profiles`,
	`DROP TABLE IF EXISTS groups`,
	`DROP TABLE IF EXISTS profiler_types`,
	`DROP TABLE IF EXISTS configurations`,
	`DROP TABLE IF EXISTS users`,
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		superuser BOOLEAN NOT NULL DEFAULT FALSE,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		change_password_on_login BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE profiler_types (
		name TEXT PRIMARY KEY,
		filename TEXT NOT NULL
	)`,
	`CREATE TABLE groups (
		name TEXT PRIMARY KEY,
		display_as TEXT NOT NULL DEFAULT '',
		token TEXT NOT NULL UNIQUE,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		profiler_type_name TEXT NOT NULL REFERENCES profiler_types (name),
		emoji TEXT NOT NULL DEFAULT '🧠'
	)`,
	`CREATE TABLE profiles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		group_name TEXT NOT NULL REFERENCES groups (name) ON UPDATE CASCADE,
		profiler_type_name TEXT NOT NULL REFERENCES profiler_types (name),
		status TEXT NOT NULL
	)`,
	`CREATE TABLE answers (
		id TEXT PRIMARY KEY,
		profile_id TEXT NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
		question TEXT NOT NULL,
		score INTEGER NOT NULL,
		domain TEXT NOT NULL DEFAULT '',
		UNIQUE (profile_id, question)
	)`,
	`CREATE TABLE configurations (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL DEFAULT '',
		write_only BOOLEAN NOT NULL DEFAULT FALSE,
		superuser_only BOOLEAN NOT NULL DEFAULT FALSE
	)`,
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatalf("schema: %v", err)
		}
	}

	profilerTypeRepo := repository.NewPgProfilerTypeRepository(pool)
	groupRepo := repository.NewPgGroupRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)
	answerRepo := repository.NewPgAnswerRepository(pool)
	userRepo := repository.NewPgUserRepository(pool)
	cat := catalog.New(cfg.ProfilersDir, cfg.PracticeDir)

	profilerTypes := []domain.ProfilerTypeRef{
		{Name: "KS1 Assessment", Filename: "ks1.json"},
		{Name: "KS2 Assessment", Filename: "ks2.json"},
	}
	for _, ref := range profilerTypes {
		if _, err := cat.LoadProfilerType(ref); err != nil {
			log.Fatalf("profiler %s: %v", ref.Filename, err)
		}
		if err := profilerTypeRepo.Create(ctx, ref); err != nil {
			log.Fatalf("seed profiler type: %v", err)
		}
	}

	groups := []domain.Group{
		{Name: "Year 1 (2024)", DisplayAs: "Year 1", Token: uuid.NewString(), ProfilerTypeName: "KS1 Assessment", Emoji: "🧠"},
		{Name: "Year 3 (2024)", DisplayAs: "Year 3", Token: uuid.NewString(), ProfilerTypeName: "KS2 Assessment", Emoji: "🎓"},
	}
	for _, g := range groups {
		if err := groupRepo.Create(ctx, g); err != nil {
			log.Fatalf("seed group: %v", err)
		}
	}

	profiles := []domain.Profile{
		{ID: uuid.NewString(), Name: "A Name", GroupName: "Year 3 (2024)", ProfilerTypeName: "KS2 Assessment", Status: domain.ProfileStatusComplete},
		{ID: uuid.NewString(), Name: "Another Name", GroupName: "Year 3 (2024)", ProfilerTypeName: "KS2 Assessment", Status: domain.ProfileStatusComplete},
		{ID: uuid.NewString(), Name: "Another Name Again", GroupName: "Year 1 (2024)", ProfilerTypeName: "KS1 Assessment", Status: domain.ProfileStatusComplete},
	}
	for i, p := range profiles {
		if err := profileRepo.Create(ctx, p); err != nil {
			log.Fatalf("seed profile: %v", err)
		}
		ref, err := profilerTypeRepo.GetByName(ctx, p.ProfilerTypeName)
		if err != nil {
			log.Fatalf("seed profile answers: %v", err)
		}
		pt, err := cat.LoadProfilerType(ref)
		if err != nil {
			log.Fatalf("seed profile answers: %v", err)
		}
		// Spread demo answers so each profile scores a bit differently.
		for j, q := range pt.Questions {
			answer := domain.Answer{
				ID:        uuid.NewString(),
				ProfileID: p.ID,
				Question:  q.Text,
				Score:     (i + j) % 3,
				Domain:    q.Domain,
			}
			if _, _, err := answerRepo.Upsert(ctx, answer); err != nil {
				log.Fatalf("seed answer: %v", err)
			}
		}
	}

	userSvc := service.NewUserService(logger, userRepo, nil)
	admin, password, err := userSvc.CreateUser(ctx, "admin@admin.com", true)
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	fmt.Println()
	fmt.Println("!----------------------------!")
	fmt.Printf("Admin username : %s\n", admin.Email)
	fmt.Printf("Admin password : %s\n", password)
	fmt.Println("!----------------------------!")
	fmt.Println()
	fmt.Println("Database initialised!")
}
