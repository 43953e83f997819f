package grounding

import "testing"

func TestVerify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate string
		source    string
		exists    bool
		kind      MatchKind
	}{
		{
			name:      "verbatim match",
			candidate: "Senior Backend Developer",
			source:    "Application for Senior Backend Developer",
			exists:    true,
			kind:      MatchExact,
		},
		{
			name:      "case and whitespace insensitive",
			candidate: "  senior   BACKEND developer ",
			source:    "application for Senior Backend Developer position",
			exists:    true,
			kind:      MatchExact,
		},
		{
			name:      "compound slash title with disjoint parts",
			candidate: "Frontend/Backend Developer",
			source:    "I work as a frontend engineer and also a backend developer",
			exists:    true,
			kind:      MatchPartialComposed,
		},
		{
			name:      "compound ampersand title",
			candidate: "UI & UX Designer",
			source:    "strong UI skills, deep UX background, experienced designer",
			exists:    false,
			kind:      MatchNone,
		},
		{
			name:      "compound with one missing part",
			candidate: "Frontend/Backend Developer",
			source:    "I am a frontend developer",
			exists:    false,
			kind:      MatchNone,
		},
		{
			name:      "fabricated value",
			candidate: "Chief Astronaut",
			source:    "I would like to apply for the developer role",
			exists:    false,
			kind:      MatchNone,
		},
		{
			name:      "empty candidate",
			candidate: "   ",
			source:    "anything",
			exists:    false,
			kind:      MatchNone,
		},
		{
			name:      "empty source",
			candidate: "Developer",
			source:    "",
			exists:    false,
			kind:      MatchNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			verdict := Verify(tt.candidate, tt.source)
			if verdict.Exists != tt.exists {
				t.Fatalf("expected exists=%v, got %v", tt.exists, verdict.Exists)
			}
			if verdict.Kind != tt.kind {
				t.Fatalf("expected kind %q, got %q", tt.kind, verdict.Kind)
			}
		})
	}
}

func TestVerifyCompoundEveryPartRequired(t *testing.T) {
	t.Parallel()

	// "UI & UX Designer" splits into "ui" and "ux designer"; both substrings
	// must be present for a partial-composed match.
	verdict := Verify("UI & UX Designer", "the UI is fine and the candidate is a ux designer")
	if !verdict.Exists || verdict.Kind != MatchPartialComposed {
		t.Fatalf("expected partial-composed match, got %+v", verdict)
	}
}

func TestEffectiveTrust(t *testing.T) {
	t.Parallel()

	grounded := Verdict{Exists: true, Kind: MatchExact}
	none := Verdict{Exists: false, Kind: MatchNone}

	if got := EffectiveTrust(0.9, none); got != 0 {
		t.Fatalf("ungrounded value must carry zero trust, got %v", got)
	}
	if got := EffectiveTrust(0.9, grounded); got != 0.9 {
		t.Fatalf("expected stated confidence to pass through, got %v", got)
	}
	if got := EffectiveTrust(1.7, grounded); got != 1 {
		t.Fatalf("expected clamp to 1, got %v", got)
	}
	if got := EffectiveTrust(-0.2, grounded); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
}
