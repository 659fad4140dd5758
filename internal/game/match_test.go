package game

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases", input: "DYNAMITE", want: "dynamite"},
		{name: "strips diacritics", input: "Café Señorita", want: "cafe senorita"},
		{name: "collapses punctuation", input: "Love  Dive!!! (Remastered)", want: "love dive remastered"},
		{name: "trims", input: "  -- Next Level --  ", want: "next level"},
		{name: "keeps digits", input: "HOT 100", want: "hot 100"},
		{name: "keeps hangul", input: "봄날 (Spring Day)", want: "봄날 spring day"},
		{name: "compatibility forms", input: "ＢＴＳ", want: "bts"},
		{name: "only punctuation", input: "?!.", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Dynamite",
		"Café Señorita",
		"봄날 (Spring Day)",
		"ＢＴＳ - Butter",
		"Ｉ AM",
		"Pokémon!!",
		"  a  b  c  ",
		"LOVE DIVE (feat. ÀÉÎÕÜ)",
		"ﬁre",
		"℡",
		"İstanbul",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestIsCorrectGuess(t *testing.T) {
	tests := []struct {
		name   string
		guess  string
		title  string
		artist string
		want   bool
	}{
		{name: "exact title", guess: "Dynamite", title: "Dynamite", artist: "BTS", want: true},
		{name: "case and punctuation", guess: "love-dive!", title: "LOVE DIVE", artist: "IVE", want: true},
		{name: "guess contains title", guess: "I think its Next Level", title: "Next Level", artist: "aespa", want: true},
		{name: "artist and title", guess: "BTS Dynamite", title: "Dynamite", artist: "BTS", want: true},
		{name: "artist only", guess: "BTS", title: "Dynamite", artist: "BTS", want: false},
		{name: "wrong title", guess: "Butter", title: "Dynamite", artist: "BTS", want: false},
		{name: "partial title", guess: "Next", title: "Next Level", artist: "aespa", want: false},
		{name: "empty guess", guess: "   ", title: "Dynamite", artist: "BTS", want: false},
		{name: "empty title", guess: "anything", title: "", artist: "BTS", want: false},
		{name: "diacritics", guess: "senorita", title: "Señorita", artist: "(G)I-DLE", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCorrectGuess(tt.guess, tt.title, tt.artist); got != tt.want {
				t.Errorf("IsCorrectGuess(%q, %q, %q) = %v, want %v", tt.guess, tt.title, tt.artist, got, tt.want)
			}
		})
	}
}

func TestTitleAlwaysMatchesItself(t *testing.T) {
	songs := []Song{
		{Title: "Dynamite", Artist: "BTS"},
		{Title: "Hype Boy", Artist: "NewJeans"},
		{Title: "봄날", Artist: "방탄소년단"},
		{Title: "Señorita", Artist: "(G)I-DLE"},
		{Title: "Gee", Artist: "Girls' Generation"},
	}
	for _, s := range songs {
		if !IsCorrectGuess(s.Title, s.Title, s.Artist) {
			t.Errorf("IsCorrectGuess(%q, %q, %q) = false, want true", s.Title, s.Title, s.Artist)
		}
		if IsCorrectGuess(s.Artist, s.Title, s.Artist) {
			t.Errorf("IsCorrectGuess(%q, %q, %q) = true, artist alone must not win", s.Artist, s.Title, s.Artist)
		}
	}
}

func TestIsArtistMatch(t *testing.T) {
	tests := []struct {
		guess  string
		artist string
		want   bool
	}{
		{guess: "BTS", artist: "BTS", want: true},
		{guess: "bts dynamite", artist: "BTS", want: true},
		{guess: "Dynamite", artist: "BTS", want: false},
		{guess: "", artist: "BTS", want: false},
		{guess: "blackpink", artist: "BLACKPINK", want: true},
	}
	for _, tt := range tests {
		if got := IsArtistMatch(tt.guess, tt.artist); got != tt.want {
			t.Errorf("IsArtistMatch(%q, %q) = %v, want %v", tt.guess, tt.artist, got, tt.want)
		}
	}
}
