package script

import (
	"errors"
	"testing"
	"time"

	"github.com/dshills/portfolio/internal/state"
)

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		params []string
		want   error
	}{
		{"empty", "   ", nil, ErrEmptySource},
		{"duplicate", "return 1", []string{"a", "a"}, ErrDuplicateParam},
		{"invalid", "return 1", []string{"color-scheme"}, ErrInvalidParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(tt.source, tt.params); !errors.Is(err, tt.want) {
				t.Errorf("Compile() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCompile_SyntaxError(t *testing.T) {
	if _, err := Compile("return (", nil); err == nil {
		t.Error("expected syntax error")
	}
}

func TestEval_Scalars(t *testing.T) {
	prog, err := Compile("return a + b", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	got, err := prog.Eval(2, 3)
	if err != nil {
		t.Fatalf("Eval() error: %v", err)
	}
	if got != 5 {
		t.Errorf("Eval() = %#v, want int 5", got)
	}

	got, _ = prog.Eval(0.5, 1)
	if got != 1.5 {
		t.Errorf("Eval() = %#v, want 1.5", got)
	}
}

func TestEval_Tables(t *testing.T) {
	prog, err := Compile(`
local out = {}
for i, v in ipairs(items) do out[i] = string.upper(v) end
return { list = out, count = #items, flag = prefs.highContrast }
`, []string{"items", "prefs"})
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	got, err := prog.Eval([]any{"go", "lua"}, map[string]any{"highContrast": true})
	if err != nil {
		t.Fatalf("Eval() error: %v", err)
	}

	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("Eval() = %#v, want map", got)
	}
	list := m["list"].([]any)
	if len(list) != 2 || list[0] != "GO" || list[1] != "LUA" {
		t.Errorf("list = %v", list)
	}
	if m["count"] != 2 {
		t.Errorf("count = %#v", m["count"])
	}
	if m["flag"] != true {
		t.Errorf("flag = %v", m["flag"])
	}
}

func TestEval_NilAndNoReturn(t *testing.T) {
	prog, _ := Compile("local x = 1", nil)
	got, err := prog.Eval()
	if err != nil || got != nil {
		t.Errorf("Eval() = %v, %v; want nil, nil", got, err)
	}

	prog, _ = Compile("return missing == nil", []string{"missing"})
	got, _ = prog.Eval(nil)
	if got != true {
		t.Errorf("nil param should be Lua nil, got %v", got)
	}
}

func TestEval_Arity(t *testing.T) {
	prog, _ := Compile("return a", []string{"a"})
	if _, err := prog.Eval(); !errors.Is(err, ErrArity) {
		t.Errorf("Eval() = %v, want ErrArity", err)
	}
}

func TestEval_RuntimeError(t *testing.T) {
	prog, _ := Compile(`error("boom")`, nil)
	if _, err := prog.Eval(); err == nil {
		t.Error("expected runtime error")
	}
	if evals, failures := prog.Stats(); evals != 1 || failures != 1 {
		t.Errorf("Stats() = %d, %d; want 1, 1", evals, failures)
	}
}

func TestEval_Timeout(t *testing.T) {
	prog, _ := Compile("while true do end", nil, WithTimeout(20*time.Millisecond))

	_, err := prog.Eval()
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Eval() = %v, want ErrTimeout", err)
	}
}

func TestEval_Sandboxed(t *testing.T) {
	for _, src := range []string{
		`return io.open("x")`,
		`return os.exit(1)`,
		`return load("return 1")()`,
		`return require("os")`,
	} {
		prog, err := Compile(src, nil)
		if err != nil {
			t.Fatalf("Compile(%q) error: %v", src, err)
		}
		if _, err := prog.Eval(); err == nil {
			t.Errorf("Eval(%q) should fail in the sandbox", src)
		}
	}
}

func TestEval_GlobalsDoNotLeak(t *testing.T) {
	prog, _ := Compile(`
if counter == nil then counter = 0 end
counter = counter + 1
return counter
`, nil)

	for i := 0; i < 3; i++ {
		got, err := prog.Eval()
		if err != nil {
			t.Fatalf("Eval() error: %v", err)
		}
		if got != 1 {
			t.Errorf("run %d: counter = %v, want 1", i, got)
		}
	}
}

func TestDerive_WithStore(t *testing.T) {
	store := state.New(map[string]any{
		"theme":  "system",
		"system": map[string]any{"colorScheme": "dark"},
	})

	prog, err := CompileFor(`
if theme == "system" then return colorScheme end
return theme
`, []state.Path{"theme", "system.colorScheme"}, WithName("effectiveTheme"))
	if err != nil {
		t.Fatalf("CompileFor() error: %v", err)
	}
	if p := prog.Params(); len(p) != 2 || p[1] != "colorScheme" {
		t.Errorf("Params() = %v", p)
	}

	if _, err := store.Computed(prog.Derive(), []state.Path{"theme", "system.colorScheme"}, "effectiveTheme"); err != nil {
		t.Fatalf("Computed() error: %v", err)
	}
	if v, _ := store.Get("effectiveTheme"); v != "dark" {
		t.Errorf("effectiveTheme = %v, want dark", v)
	}

	store.Set("system.colorScheme", "light")
	if v, _ := store.Get("effectiveTheme"); v != "light" {
		t.Errorf("effectiveTheme = %v, want light", v)
	}
}

func TestDerive_ErrorYieldsNil(t *testing.T) {
	prog, _ := Compile(`error("bad")`, nil)
	if got := prog.Derive()(); got != nil {
		t.Errorf("Derive()() = %v, want nil", got)
	}
}
