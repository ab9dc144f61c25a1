package sentinel

import "testing"

func TestImageURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{name: "jpg", raw: "https://i.imgur.com/abc.jpg", want: "https://i.imgur.com/abc.jpg", ok: true},
		{name: "jpeg", raw: "https://example.com/photo.JPEG", want: "https://example.com/photo.jpeg", ok: true},
		{name: "png", raw: "https://example.com/pic.png", want: "https://example.com/pic.png", ok: true},
		{name: "jpg with cache buster", raw: "https://i.imgur.com/abc.jpg?1", want: "https://i.imgur.com/abc.jpg?1", ok: true},
		{name: "mobile imgur rewritten", raw: "https://m.imgur.com/abc.jpg", want: "https://i.imgur.com/abc.jpg", ok: true},
		{name: "reddit upload host", raw: "https://i.reddituploads.com/xyz?fm=jpg", want: "https://i.reddituploads.com/xyz?fm=jpg", ok: true},
		{name: "gallery page", raw: "https://imgur.com/gallery/abc", ok: false},
		{name: "video", raw: "https://example.com/clip.mp4", ok: false},
		{name: "plain article", raw: "https://example.com/news/story", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := imageURL(tt.raw)
			if ok != tt.ok {
				t.Fatalf("imageURL(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("imageURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractSubmissionID(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
		ok   bool
	}{
		{name: "bare id", body: "ab12cd", want: "ab12cd", ok: true},
		{name: "bare id with whitespace", body: "  ab12cd\n", want: "ab12cd", ok: true},
		{name: "comments permalink", body: "https://www.reddit.com/r/pics/comments/ab12cd/some_title/", want: "ab12cd", ok: true},
		{name: "short link", body: "https://redd.it/ab12cd", want: "ab12cd", ok: true},
		{name: "short link in sentence", body: "please blacklist https://redd.it/ab12cd thanks", want: "ab12cd", ok: true},
		{name: "too short", body: "ab1", ok: false},
		{name: "unrelated text", body: "what does this bot do?", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractSubmissionID(tt.body)
			if ok != tt.ok {
				t.Fatalf("extractSubmissionID(%q) ok = %v, want %v", tt.body, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("extractSubmissionID(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}
