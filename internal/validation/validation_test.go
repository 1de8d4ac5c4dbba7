package validation

import (
	"strings"
	"testing"

	"portfolio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Slug  string   `json:"slug" validate:"required,min=3,max=150,slug"`
	Tags  []string `json:"tags" validate:"min=1,max=5,dive,min=2,max=30,tag"`
	Link  *string  `json:"link" validate:"omitempty,url"`
	Email string   `json:"email" validate:"required,email"`
}

func strPtr(s string) *string { return &s }

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		in      sample
		wantErr string
	}{
		{
			name: "valid",
			in:   sample{Slug: "hello-world", Tags: []string{"go", "next.js"}, Email: "a@b.co"},
		},
		{
			name: "empty link is allowed",
			in:   sample{Slug: "hello", Tags: []string{"go"}, Link: strPtr(""), Email: "a@b.co"},
		},
		{
			name:    "bad slug",
			in:      sample{Slug: "Hello World", Tags: []string{"go"}, Email: "a@b.co"},
			wantErr: "slug must contain only lowercase letters",
		},
		{
			name:    "double hyphen slug",
			in:      sample{Slug: "hello--world", Tags: []string{"go"}, Email: "a@b.co"},
			wantErr: "slug must contain",
		},
		{
			name:    "too many tags",
			in:      sample{Slug: "abc", Tags: []string{"aa", "bb", "cc", "dd", "ee", "ff"}, Email: "a@b.co"},
			wantErr: "tags must have at most 5 items",
		},
		{
			name:    "bad tag",
			in:      sample{Slug: "abc", Tags: []string{"Go Lang"}, Email: "a@b.co"},
			wantErr: "tags[0] may only contain",
		},
		{
			name:    "bad url",
			in:      sample{Slug: "abc", Tags: []string{"go"}, Link: strPtr("not a url"), Email: "a@b.co"},
			wantErr: "link must be a valid URL",
		},
		{
			name:    "bad email",
			in:      sample{Slug: "abc", Tags: []string{"go"}, Email: "nope"},
			wantErr: "email must be a valid email address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Hello World":           "hello-world",
		"  Go 1.26: What's New": "go-126-whats-new",
		"already-slugged":       "already-slugged",
		"Tabs\tand   spaces":    "tabs-and-spaces",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Slugify(in))
		})
	}
}

func TestValidateImage(t *testing.T) {
	const limit = 1 << 20

	tests := []struct {
		name        string
		size        int64
		contentType string
		wantErr     bool
	}{
		{"jpeg", 1024, "image/jpeg", false},
		{"png with params", 1024, "image/png; charset=binary", false},
		{"webp at limit", limit, "image/webp", false},
		{"too large", limit + 1, "image/png", true},
		{"empty", 0, "image/png", true},
		{"gif", 1024, "image/gif", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImage(tt.size, tt.contentType, limit)
			if tt.wantErr {
				assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Correct-Horse-42", false},
		{"unicode", "Pässwörd-1234", false},
		{"too short", "Ab1!", true},
		{"too long", "Aa1!" + strings.Repeat("x", 130), true},
		{"no symbol", "CorrectHorse42x", true},
		{"no upper", "correct-horse-42", true},
		{"no digit", "Correct-Horse-xx", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("admin@example.com"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("user@"))
	assert.Error(t, ValidateEmail(strings.Repeat("a", 250)+"@x.io"))
}

type projectLinks struct {
	Live   string  `json:"live_url" validate:"url_or_empty"`
	Github *string `json:"github_url" validate:"omitnil,url_or_empty"`
}

func TestURLOrEmpty(t *testing.T) {
	assert.NoError(t, Struct(projectLinks{}))
	assert.NoError(t, Struct(projectLinks{Live: "https://example.com", Github: strPtr("")}))
	assert.NoError(t, Struct(projectLinks{Github: strPtr("https://github.com/me/repo")}))

	err := Struct(projectLinks{Live: "ftp://example.com"})
	assert.ErrorContains(t, err, "live_url must be a valid URL")

	err = Struct(projectLinks{Github: strPtr("github.com/me")})
	assert.ErrorContains(t, err, "github_url must be a valid URL")
}

func TestPatchTags(t *testing.T) {
	empty := []string{}
	bad := models.Status("deleted")
	err := Struct(models.PostPatch{Tags: &empty, Status: &bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tags must have at least 1 items")
	assert.Contains(t, err.Error(), "status must be one of")

	assert.NoError(t, Struct(models.PostPatch{}))
	assert.NoError(t, Struct(models.PostPatch{Title: strPtr("Fine title")}))
}
