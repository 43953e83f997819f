package extract

import "testing"

func TestCategoryFromTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		want  Category
	}{
		{"DevOps Engineer", CategoryDeveloper},
		{"Senior Backend Developer", CategoryDeveloper},
		{"QA Tester", CategoryDeveloper},
		{"UI/UX Designer", CategoryWebDesigner},
		{"Web Designer", CategoryWebDesigner},
		{"Graphic Designer", CategoryWebDesigner},
		{"Technical Recruiter", CategoryRecruiter},
		{"Talent Acquisition Specialist", CategoryRecruiter},
		{"Sales Executive", CategorySalesMarketing},
		{"Digital Marketing Lead", CategorySalesMarketing},
		{"Head Chef", CategoryUnclear},
		{"", CategoryUnclear},
		{Unclear, CategoryUnclear},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			t.Parallel()
			if got := CategoryFromTitle(tt.title); got != tt.want {
				t.Fatalf("CategoryFromTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

// "Recruiter" contains the letters "ui"; only whole-token matches may fire
// for short keywords.
func TestCategoryShortKeywordsMatchTokens(t *testing.T) {
	t.Parallel()

	if got := CategoryFromTitle("Recruiter"); got != CategoryRecruiter {
		t.Fatalf("expected Recruiter, got %q", got)
	}
}

func TestExperienceFromText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want Experience
		ok   bool
	}{
		{
			name: "multi year experience",
			text: "I have 5 years of experience as a UI/UX Designer",
			want: Experienced,
			ok:   true,
		},
		{
			name: "abbreviated years",
			text: "3 yrs in backend development",
			want: Experienced,
			ok:   true,
		},
		{
			name: "fresher marker",
			text: "I am a fresher looking for my first role",
			want: Fresher,
			ok:   true,
		},
		{
			name: "fresh graduate",
			text: "As a fresh graduate from university",
			want: Fresher,
			ok:   true,
		},
		{
			name: "no experience marker",
			text: "I have no prior experience but learn fast",
			want: Fresher,
			ok:   true,
		},
		{
			// A single year still counts as experienced. Debatable, but
			// pinned: change the rule deliberately, not by accident.
			name: "single year",
			text: "I have 1 year of working experience",
			want: Experienced,
			ok:   true,
		},
		{
			name: "years beat fresher marker",
			text: "Though technically a fresher in this stack, I have 4 years of QA experience",
			want: Experienced,
			ok:   true,
		},
		{
			name: "no markers",
			text: "I would love to work with your team",
			want: ExperienceUnclear,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExperienceFromText(tt.text)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestApplyOverlayFillsExperience(t *testing.T) {
	t.Parallel()

	result := NewUnclearResult()
	result.JobTitle = "Java Developer"

	ApplyOverlay(result, "I have 6 years of experience with Java")

	if result.Category != CategoryDeveloper {
		t.Fatalf("expected Developer, got %q", result.Category)
	}
	if result.ExperienceStatus != Experienced {
		t.Fatalf("expected experienced, got %q", result.ExperienceStatus)
	}
}

func TestApplyOverlayKeepsTierExperience(t *testing.T) {
	t.Parallel()

	result := NewUnclearResult()
	result.JobTitle = "Java Developer"
	result.ExperienceStatus = Fresher

	ApplyOverlay(result, "I have 6 years of experience with Java")

	if result.ExperienceStatus != Fresher {
		t.Fatalf("tier-provided experience must not be overwritten, got %q", result.ExperienceStatus)
	}
}
