package dbg

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coral-mesh/dbg/internal/entry"
)

func TestPackagePath(t *testing.T) {
	assert.Equal(t, entry.PkgPath, reflect.TypeOf(Site{}).PkgPath())
}

func TestLocationTag(t *testing.T) {
	wd := workDir()

	tests := []struct {
		name string
		r    resolution
		want string
	}{
		{"complete", resolution{file: filepath.Join(wd, "a", "b.go"), line: 3, col: 7}, "[" + filepath.Join("a", "b.go") + ":3:7]"},
		{"unknown column", resolution{file: "b.go", line: 3}, "[b.go:3:<unknown>]"},
		{"nothing known", resolution{}, "[<unknown>:<unknown>:<unknown>]"},
		{"outside working directory", resolution{file: filepath.Join(filepath.Dir(wd), "x.go"), line: 1, col: 1}, "[" + filepath.Join(filepath.Dir(wd), "x.go") + ":1:1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, locationTag(tt.r))
		})
	}
}

func TestResult(t *testing.T) {
	assert.Nil(t, result(nil))
	assert.Equal(t, 1, result([]any{1}))
	assert.Equal(t, []any{1, "a"}, result([]any{1, "a"}))
}
