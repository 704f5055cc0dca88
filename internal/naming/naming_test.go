package naming

import (
	"errors"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"legal", "pSphere1", "pSphere1"},
		{"legal punctuation", "body_geo.v2-final", "body_geo.v2-final"},
		{"dag path", "|group1|pSphere1", "_group1_pSphere1"},
		{"namespace", "char:body", "char_body"},
		{"windows path", `C:\tex\wood.tif`, "C__tex_wood.tif"},
		{"reserved", "a*b?c<d>e", "a_b_c_d_e"},
		{"quotes dropped", `say"hi"`, "sayhi"},
		{"spaces", "my node", "my_node"},
		{"accents folded", "Kopf_Ä_é", "Kopf_A_e"},
		{"no ascii form", "木", "_"},
		{"empty", "", "_"},
		{"only quotes", `""`, "_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"pSphere1", "|a|b|c", "ns:obj", "Ångström lamp", `x"y"z`, "", "日本", "a/b\\c", "__", "--.",
	}

	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q: %q then %q", in, once, twice)
		}
		if !isLegal(once) {
			t.Errorf("Sanitize(%q) = %q is not legal", in, once)
		}
	}
}

func TestJoin(t *testing.T) {
	if got := Join("lambert1", "color", "color"); got != "lambert1_color_color" {
		t.Errorf("Join() = %q", got)
	}
	if got := Join("|grp|lamp", "exitance"); got != "_grp_lamp_exitance" {
		t.Errorf("Join() = %q", got)
	}
}

func TestShortName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"|group1|pSphere1", "pSphere1"},
		{"pSphere1", "pSphere1"},
		{"|top", "top"},
	}
	for _, tt := range tests {
		if got := ShortName(tt.in); got != tt.want {
			t.Errorf("ShortName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	a, err := r.Register("|grp|ball")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if a != "_grp_ball" {
		t.Errorf("Register() = %q", a)
	}

	again, err := r.Register("|grp|ball")
	if err != nil || again != a {
		t.Errorf("re-register = %q, %v; want %q, nil", again, err, a)
	}

	if _, err := r.Register("_grp_ball"); !errors.Is(err, ErrCollision) {
		t.Errorf("expected ErrCollision, got %v", err)
	}
	if _, err := r.Register("|grp:ball"); !errors.Is(err, ErrCollision) {
		t.Errorf("expected ErrCollision, got %v", err)
	}

	if _, err := r.Register("lamp"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if name, ok := r.Lookup("lamp"); !ok || name != "lamp" {
		t.Errorf("Lookup() = %q, %v", name, ok)
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Error("Lookup of unregistered host name succeeded")
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "_grp_ball" || names[1] != "lamp" {
		t.Errorf("Names() = %v", names)
	}
}
