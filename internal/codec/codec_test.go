package codec

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "product url with query",
			url:  "https://partifyusa.com/products/abc?x=1",
			want: "partifyusa_com_products_abc_x_1",
		},
		{
			name: "http scheme stripped",
			url:  "http://example.com/",
			want: "example_com_",
		},
		{
			name: "no scheme",
			url:  "example.com",
			want: "example_com",
		},
		{
			name: "adjacent punctuation not collapsed",
			url:  "https://a.com//x",
			want: "a_com__x",
		},
		{
			name: "empty",
			url:  "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.url); got != tt.want {
				t.Errorf("Encode(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Decoded
	}{
		{
			name:     "mobile report json",
			filename: "example_com_products-mobile-2024-03-01T12_00_00.report.json",
			want:     Decoded{Page: "example com products", Preset: "mobile", Timestamp: "2024-03-01T12_00_00"},
		},
		{
			name:     "desktop report html",
			filename: "example_com-desktop-2024-03-01T12_00_00.report.html",
			want:     Decoded{Page: "example com", Preset: "desktop", Timestamp: "2024-03-01T12_00_00"},
		},
		{
			name:     "legacy html suffix",
			filename: "example_com-mobile-ts.html",
			want:     Decoded{Page: "example com", Preset: "mobile", Timestamp: "ts"},
		},
		{
			name:     "legacy json suffix",
			filename: "example_com-desktop-ts.json",
			want:     Decoded{Page: "example com", Preset: "desktop", Timestamp: "ts"},
		},
		{
			name:     "mobile checked before desktop",
			filename: "page-mobile-x-desktop-y.json",
			want:     Decoded{Page: "page", Preset: "mobile", Timestamp: "x-desktop-y"},
		},
		{
			name:     "mobile wins even when desktop appears first",
			filename: "page-desktop-x-mobile-y.json",
			want:     Decoded{Page: "page-desktop-x", Preset: "mobile", Timestamp: "y"},
		},
		{
			name:     "no marker",
			filename: "some_random_file.json",
			want:     Decoded{Page: "some_random_file.json"},
		},
		{
			name:     "no suffix",
			filename: "p-mobile-ts",
			want:     Decoded{Page: "p", Preset: "mobile", Timestamp: "ts"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decode(tt.filename); got != tt.want {
				t.Errorf("Decode(%q) = %+v, want %+v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestEncode_Property(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("output uses only alphanumerics and underscores", prop.ForAll(
		func(url string) bool {
			for _, r := range Encode(url) {
				alnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
				if !alnum && r != '_' {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
	))

	properties.Property("deterministic", prop.ForAll(
		func(url string) bool {
			return Encode(url) == Encode(url)
		},
		gen.AnyString(),
	))

	properties.Property("replacement is one-for-one", prop.ForAll(
		func(s string) bool {
			in := strings.TrimPrefix(strings.TrimPrefix(s, "https://"), "http://")
			return len([]rune(Encode(s))) == len([]rune(in))
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestDecode_Property(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("mobile marker always selects mobile preset", prop.ForAll(
		func(page, ts string) bool {
			if strings.Contains(page, "-mobile-") || strings.Contains(page, "-desktop-") {
				return true
			}
			got := Decode(page + "-mobile-" + ts + ".report.json")
			return got.Preset == "mobile"
		},
		gen.AlphaString(),
		gen.NumString(),
	))

	properties.TestingRun(t)
}
