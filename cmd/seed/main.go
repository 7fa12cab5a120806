package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"inkpress/internal/config"
	"inkpress/internal/db"
	"inkpress/internal/model"
	"inkpress/internal/repository"
)

type seedUser struct {
	Username string
	Password string
	Posts    []model.Post
}

var fixtures = []seedUser{
	{
		Username: "alice",
		Password: "correct-horse",
		Posts: []model.Post{
			{
				Title:   "Hello, inkpress",
				Summary: "First post on a fresh install",
				Content: "If you can read this, the server, the database and the seed script all work.",
			},
			{
				Title:   "Writing with covers",
				Summary: "Posts created through the API carry a cover image",
				Content: "Seeded posts have no cover on disk; create one through POST /post to see uploads in action.",
			},
		},
	},
	{
		Username: "bob",
		Password: "hunter2-but-longer",
		Posts: []model.Post{
			{
				Title:   "Second author",
				Summary: "Ownership demo",
				Content: "Only alice can edit alice's posts. Try updating this one as alice and watch the 403.",
			},
		},
	},
}

func main() {
	log.Println("Starting seed script...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.NewMySQL(cfg.MySQL.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Post{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)

	users, posts, err := seedFixtures(context.Background(), userRepo, postRepo)
	if err != nil {
		log.Fatalf("Failed to seed fixtures: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", users)
	log.Printf("  - Posts created: %d", posts)
}

// seedFixtures creates the fixture users and their posts. A user that already
// exists is skipped entirely, posts included, so re-running the script never
// duplicates fixtures.
func seedFixtures(ctx context.Context, userRepo repository.UserRepository, postRepo repository.PostRepository) (users, posts int, err error) {
	for _, fixture := range fixtures {
		if _, err := userRepo.FindByUsername(ctx, fixture.Username); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return users, posts, fmt.Errorf("error checking user %s: %w", fixture.Username, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(fixture.Password), bcrypt.DefaultCost)
		if err != nil {
			return users, posts, fmt.Errorf("error hashing password for %s: %w", fixture.Username, err)
		}
		user := &model.User{Username: fixture.Username, PasswordHash: string(hash)}
		if err := userRepo.Create(ctx, user); err != nil {
			return users, posts, fmt.Errorf("error creating user %s: %w", fixture.Username, err)
		}
		users++

		for _, post := range fixture.Posts {
			post.AuthorID = user.ID
			if err := postRepo.Create(ctx, &post); err != nil {
				return users, posts, fmt.Errorf("error creating post %q: %w", post.Title, err)
			}
			posts++
		}
	}

	return users, posts, nil
}
