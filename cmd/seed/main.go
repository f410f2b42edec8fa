// Command seed fills the database with fake data for development.
package main

import (
	"context"
	"flag"
	"log"

	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()

	numUsers := flag.Int("users", defaults.Users, "Number of users to create")
	numGroups := flag.Int("groups", defaults.Groups, "Number of groups to create")
	numPosts := flag.Int("posts", defaults.Posts, "Number of posts to create")
	maxComments := flag.Int("comments", defaults.MaxCommentsPerPost, "Maximum comments per post")
	maxFollows := flag.Int("follows", defaults.MaxFollowsPerUser, "Maximum authors each user follows")
	maxDays := flag.Int("days", defaults.MaxDays, "Spread pub dates over this many days")
	randSeed := flag.Int64("seed", 0, "Random seed (0 = time based)")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Store plain-text passwords (login will not work)")
	dryRun := flag.Bool("dry-run", false, "Build data without writing it")
	flag.Parse()

	log.Printf("Target: %d users, %d groups, %d posts, clean=%v", *numUsers, *numGroups, *numPosts, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	res, err := seed.Run(context.Background(), db, seed.Options{
		Users:              *numUsers,
		Groups:             *numGroups,
		Posts:              *numPosts,
		MaxCommentsPerPost: *maxComments,
		MaxFollowsPerUser:  *maxFollows,
		MaxDays:            *maxDays,
		Seed:               *randSeed,
		Clean:              *shouldClean,
		SkipBcrypt:         *fast,
		DryRun:             *dryRun,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d groups, %d posts, %d comments, %d follows",
		res.Users, res.Groups, res.Posts, res.Comments, res.Follows)
	if !*fast {
		log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
	}
}
