package stylus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/matthewmueller/stylus/stylus/ast"
	"github.com/matthewmueller/stylus/stylus/token"
)

func TestCompilePlainRule(t *testing.T) {
	src := "a\n  color: red\n  font-size: 12px\n"
	got, err := Compile([]byte(src), Options{})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, "a {\n  color: #ff0000;\n  font-size: 12px;\n}\n"))
}

func TestCompileNestedSelector(t *testing.T) {
	src := "a\n  b\n    color: blue\n"
	got, err := Compile([]byte(src), Options{})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, "a b {\n  color: #0000ff;\n}\n"))
}

func TestCompileVariableAndArithmetic(t *testing.T) {
	src := "$width = 10px\na\n  width: $width + 5px\n"
	got, err := Compile([]byte(src), Options{})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, "a {\n  width: 15px;\n}\n"))
}

func TestCompileMixinFunction(t *testing.T) {
	src := "border-radius($n)\n  -webkit-border-radius: $n\n  border-radius: $n\n\na\n  border-radius(5px)\n"
	got, err := Compile([]byte(src), Options{})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, "a {\n  -webkit-border-radius: 5px;\n  border-radius: 5px;\n}\n"))
}

func TestCompileReturnFunction(t *testing.T) {
	src := "add($a, $b)\n  return $a + $b\n\na\n  width: add(2px, 3px)\n"
	got, err := Compile([]byte(src), Options{})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, "a {\n  width: 5px;\n}\n"))
}

func TestCompileIf(t *testing.T) {
	src := "$debug = true\na\n  if $debug\n    color: red\n  else\n    color: blue\n"
	got, err := Compile([]byte(src), Options{})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, "a {\n  color: #ff0000;\n}\n"))
}

func TestCompileEach(t *testing.T) {
	src := "for $i in 1 2 3\n  a\n    width: $i\n"
	got, err := Compile([]byte(src), Options{})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, "a {\n  width: 1;\n}\na {\n  width: 2;\n}\na {\n  width: 3;\n}\n"))
}

func TestCompileBuiltinDarken(t *testing.T) {
	src := "a\n  color: darken(#fff, 10%)\n"
	got, err := Compile([]byte(src), Options{})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, "a {\n  color: #e6e6e6;\n}\n"))
}

func TestCompileLiteralCallPassesThrough(t *testing.T) {
	src := "a\n  transform: translateX(10px)\n"
	got, err := Compile([]byte(src), Options{})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, "a {\n  transform: translateX(10px);\n}\n"))
}

func TestCompileImport(t *testing.T) {
	dir := t.TempDir()
	qt.Assert(t, qt.IsNil(os.WriteFile(filepath.Join(dir, "vars.styl"), []byte("$base = 2px\n"), 0o644)))

	src := "@import \"vars\"\na\n  width: $base\n"
	got, err := Compile([]byte(src), Options{Filename: filepath.Join(dir, "main.styl")})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, "a {\n  width: 2px;\n}\n"))
}

func TestCompileParseErrorReturnsError(t *testing.T) {
	_, err := Compile([]byte("a\n  :\n"), Options{})
	qt.Assert(t, qt.IsNotNil(err))
}

func TestCompileSelectorInterpolation(t *testing.T) {
	src := "for $v in 1 2 3\n  item-{$v}\n    margin: $v\n"
	got, err := Compile([]byte(src), Options{})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, "item-1 {\n  margin: 1;\n}\nitem-2 {\n  margin: 2;\n}\nitem-3 {\n  margin: 3;\n}\n"))
}

func TestCompilePropertyReinterpretedAsMixinCall(t *testing.T) {
	src := "pad($n)\n  padding: $n * 2\n\na\n  pad: 5px\n"
	got, err := Compile([]byte(src), Options{})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, "a {\n  padding: 10px;\n}\n"))
}

func TestCompileHostFunction(t *testing.T) {
	opts := Options{
		Functions: map[string]Func{
			"double": {Call: func(args []ast.Value) (ast.Value, error) {
				u := args[0].(*ast.Unit)
				doubled, err := u.Operate(token.MUL, ast.NewUnitFromInt(token.NoPos, 2, ""))
				return doubled, err
			}},
		},
	}
	src := "a\n  width: double(3px)\n"
	got, err := Compile([]byte(src), opts)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, "a {\n  width: 6px;\n}\n"))
}
