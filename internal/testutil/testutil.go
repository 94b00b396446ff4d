// Package testutil provides fixtures and assertions shared by the test suites
// and the seed command.
package testutil

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/models"
)

// StoryColors is the palette used for generated text stories.
var StoryColors = []string{"#4f46e5", "#0ea5e9", "#16a34a", "#f97316", "#db2777"}

// Faker wraps a seeded gofakeit instance so generated data is reproducible.
type Faker struct {
	*gofakeit.Faker
}

func NewFaker(seed int64) *Faker {
	return &Faker{Faker: gofakeit.New(seed)}
}

// UserParams returns registration data with a unique username and email.
// The password hash is left to the caller.
func (f *Faker) UserParams() models.CreateUserParams {
	first := f.FirstName()
	last := f.LastName()
	handle := strings.ToLower(first) + "_" + f.LetterN(6)
	return models.CreateUserParams{
		Email:         handle + "@" + f.DomainName(),
		Username:      handle,
		FirstName:     first,
		LastName:      last,
		EmailVerified: true,
	}
}

// User returns a fully populated, verified user that was never stored.
func (f *Faker) User() *models.User {
	params := f.UserParams()
	created := f.DateRange(time.Now().AddDate(-2, 0, 0), time.Now()).UTC()
	return &models.User{
		ID:            uuid.New(),
		Email:         params.Email,
		Username:      params.Username,
		FirstName:     params.FirstName,
		LastName:      params.LastName,
		Bio:           f.Sentence(8),
		Location:      f.City(),
		EmailVerified: true,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

// StoryParams returns a text story for authorID.
func (f *Faker) StoryParams(authorID uuid.UUID) models.CreateStoryParams {
	return models.CreateStoryParams{
		AuthorID:        authorID,
		MediaType:       models.StoryMediaText,
		Content:         f.Sentence(6),
		BackgroundColor: StoryColors[f.Number(0, len(StoryColors)-1)],
	}
}

// StrongPassword satisfies the registration strength rules.
func (f *Faker) StrongPassword() string {
	return f.Password(true, true, true, false, false, 10) + "!A1a"
}

// AssertStatusCode checks the recorded status, printing the body on mismatch.
func AssertStatusCode(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// DecodeJSON unmarshals the recorded body into dst.
func DecodeJSON(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to parse JSON response %q: %v", rr.Body.String(), err)
	}
}

// TimesClose reports whether a and b differ by at most delta.
func TimesClose(a, b time.Time, delta time.Duration) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= delta
}
