// Package seed fills the database with demo authors, tags, posts, likes and
// comments. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"sensive/internal/models"
	"sensive/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "Sensive#Demo2024"

// Factory builds demo entities without persisting them.
type Factory struct {
	faker *gofakeit.Faker
	rng   *rand.Rand
	opts  Options
	now   time.Time
	// password hash shared by all generated users
	passwordHash string
	nextUser     int
}

// NewFactory creates a Factory. A zero opts.RandSeed seeds from the clock.
func NewFactory(opts Options) (*Factory, error) {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	password := opts.Password
	if password == "" {
		password = DefaultPassword
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("seed password: %w", err)
	}

	hash := password
	if !opts.SkipBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash default password: %w", err)
		}
		hash = string(hashed)
	}

	return &Factory{
		faker: gofakeit.New(seed),
		// #nosec G404: acceptable for seeding
		rng:          rand.New(rand.NewSource(seed)),
		opts:         opts,
		now:          time.Now().UTC(),
		passwordHash: hash,
	}, nil
}

// BuildUser returns a user with a unique, valid username.
func (f *Factory) BuildUser(staff bool, overrides ...func(*models.User)) *models.User {
	f.nextUser++
	username := buildUsername(f.faker.FirstName(), f.faker.LastName(), f.nextUser)
	user := &models.User{
		Username: username,
		Email:    username + "@sensive.example",
		Password: f.passwordHash,
		IsStaff:  staff,
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

func buildUsername(first, last string, n int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(first + "_" + last) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	base := strings.Trim(b.String(), "_")
	if base == "" {
		base = "user"
	}
	if len(base) > 22 {
		base = base[:22]
	}
	return fmt.Sprintf("%s%d", base, n)
}

// TagTitle returns a random lowercase tag title.
func (f *Factory) TagTitle() string {
	title := models.NormalizeTagTitle(f.faker.Noun())
	if utf8.RuneCountInString(title) > validation.MaxTagTitleLength {
		title = string([]rune(title)[:validation.MaxTagTitleLength])
	}
	return title
}

// BuildPost returns a post by author published within the last MaxDays days.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	title := strings.TrimSuffix(f.faker.Sentence(f.rng.Intn(5)+3), ".")
	if utf8.RuneCountInString(title) > validation.MaxPostTitleLength {
		title = string([]rune(title)[:validation.MaxPostTitleLength])
	}

	post := &models.Post{
		Title:       title,
		Text:        f.faker.Paragraph(f.rng.Intn(3)+2, 4, 12, "\n\n"),
		Slug:        uniqueSlug(title),
		AuthorID:    author.ID,
		PublishedAt: f.publishedAt(),
	}
	if f.rng.Float32() < f.imageRatio() {
		post.Image = fmt.Sprintf("https://picsum.photos/seed/%s/800/500", uuid.NewString())
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// BuildComment returns a comment on post published after the post.
func (f *Factory) BuildComment(author *models.User, post *models.Post) *models.Comment {
	publishedAt := post.PublishedAt.Add(time.Duration(f.rng.Intn(72*60)+1) * time.Minute)
	if publishedAt.After(f.now) {
		publishedAt = f.now
	}
	return &models.Comment{
		PostID:      post.ID,
		AuthorID:    author.ID,
		Text:        f.faker.Sentence(f.rng.Intn(12) + 4),
		PublishedAt: publishedAt,
	}
}

// Intn exposes the factory's random source to the seeder.
func (f *Factory) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return f.rng.Intn(n)
}

func (f *Factory) imageRatio() float32 {
	if f.opts.ImageRatio <= 0 {
		return 0
	}
	return float32(f.opts.ImageRatio)
}

// publishedAt spreads publish times over the last MaxDays days.
func (f *Factory) publishedAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 365
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return f.now.Add(-back).Truncate(time.Second)
}

func uniqueSlug(title string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	base := Slugify(title)
	if base == "" {
		return "post-" + suffix
	}
	return base + "-" + suffix
}
