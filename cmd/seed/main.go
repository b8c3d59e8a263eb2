// Command main runs the demo data seeder for the blog.
package main

import (
	"context"
	"flag"
	"log"

	"sensive/internal/bootstrap"
	"sensive/internal/config"
	"sensive/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()

	// Parse command line flags
	numStaff := flag.Int("staff", defaults.NumStaff, "Number of staff authors to create")
	numReaders := flag.Int("users", defaults.NumReaders, "Number of readers to create")
	numTags := flag.Int("tags", defaults.NumTags, "Number of tags to create")
	numPosts := flag.Int("posts", defaults.NumPosts, "Number of posts to create")
	maxComments := flag.Int("comments", defaults.MaxCommentsPerPost, "Maximum comments per post")
	maxDays := flag.Int("days", defaults.MaxDays, "Spread publish dates over this many past days")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	password := flag.String("password", seed.DefaultPassword, "Password for every seeded account")
	fast := flag.Bool("fast", false, "Store the demo password unhashed (development only)")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 uses the clock)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	ctx := context.Background()
	handles, redisClient, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{ApplySchema: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() { _ = handles.Close() }()

	opts := defaults
	opts.NumStaff = *numStaff
	opts.NumReaders = *numReaders
	opts.NumTags = *numTags
	opts.NumPosts = *numPosts
	opts.MaxCommentsPerPost = *maxComments
	opts.MaxDays = *maxDays
	opts.ShouldClean = *shouldClean
	opts.Password = *password
	opts.SkipBcrypt = *fast
	opts.RandSeed = *randSeed

	log.Printf("Target: %d staff, %d readers, %d tags, %d posts, clean=%v", opts.NumStaff, opts.NumReaders, opts.NumTags, opts.NumPosts, opts.ShouldClean)

	summary, err := seed.NewSeeder(handles.Write, bootstrap.RepositoryOptions(redisClient)...).Seed(ctx, opts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Done: %d users, %d tags, %d posts, %d likes, %d comments", summary.Users, summary.Tags, summary.Posts, summary.Likes, summary.Comments)
	log.Printf("All seeded accounts use the password: %s", opts.Password)
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
