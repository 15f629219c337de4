package jsonutil

import "testing"

type verdict struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

func TestParseObject(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    verdict
		wantErr bool
	}{
		{
			name: "bare object",
			raw:  `{"score": 7.5, "reason": "solid"}`,
			want: verdict{Score: 7.5, Reason: "solid"},
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"score\": 4, \"reason\": \"weak\"}\n```",
			want: verdict{Score: 4, Reason: "weak"},
		},
		{
			name: "fence without language tag",
			raw:  "```\n{\"score\": 9, \"reason\": \"strong\"}\n```",
			want: verdict{Score: 9, Reason: "strong"},
		},
		{
			name: "object embedded in prose",
			raw:  "Here is my assessment:\n{\"score\": 6, \"reason\": \"fine\"}\nHope that helps!",
			want: verdict{Score: 6, Reason: "fine"},
		},
		{
			name:    "no object",
			raw:     "I cannot evaluate this image.",
			wantErr: true,
		},
		{
			name:    "malformed object",
			raw:     `{"score": }`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseObject[verdict](tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseObject(%q) succeeded, want error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseObject(%q) returned error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseObject(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseObjectNestedBraces(t *testing.T) {
	type outer struct {
		Inner verdict `json:"inner"`
	}
	raw := "```json\n{\"inner\": {\"score\": 3, \"reason\": \"nested\"}}\n```"
	got, err := ParseObject[outer](raw)
	if err != nil {
		t.Fatalf("ParseObject returned error: %v", err)
	}
	if got.Inner.Score != 3 || got.Inner.Reason != "nested" {
		t.Errorf("ParseObject = %+v", got)
	}
}
