package generate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsandhei/yambs-sub000/src/fs"
	"github.com/fsandhei/yambs-sub000/src/toolchain"
)

// baseWarnings is the warning set every toolchain gets, independent of
// whether it's GCC or Clang.
var baseWarnings = []string{
	"-Wall", "-Wextra", "-Wpedantic", "-Wshadow", "-Wnon-virtual-dtor",
	"-Wold-style-cast", "-Wcast-align", "-Wunused", "-Woverloaded-virtual",
	"-Wconversion", "-Wsign-conversion", "-Wnull-dereference",
	"-Wdouble-promotion", "-Wformat=2",
}

// gccOnlyWarnings are appended under the ifeq ($(CXX_USES_GCC), true) block.
var gccOnlyWarnings = []string{
	"-Wmisleading-indentation", "-Wduplicated-cond", "-Wduplicated-branches",
	"-Wlogical-op", "-Wuseless-cast",
}

func (g *Generator) writeIncludeFiles(dir string, cfg Config) error {
	defaultMake := renderDefaultMakeMk()
	for _, d := range cfg.Defines {
		defaultMake += "CPPFLAGS += -D" + d + "\n"
	}
	files := map[string]string{
		"defines.mk":      g.renderDefinesMk(),
		"warnings.mk":     g.renderWarningsMk(cfg),
		"default_make.mk": defaultMake,
		"debug.mk":        renderDebugMk(cfg.Sanitizers),
		"release.mk":      renderReleaseMk(),
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := fs.WriteFileAtomic([]byte(content), path, 0644); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) renderDefinesMk() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CXX_USES_GCC := %s\n", boolStr(g.Toolchain.Kind == toolchain.GCC))
	fmt.Fprintf(&b, "CXX_USES_CLANG := %s\n", boolStr(g.Toolchain.Kind == toolchain.Clang))
	return b.String()
}

func boolStr(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func (g *Generator) renderWarningsMk(cfg Config) string {
	var b strings.Builder
	b.WriteString("include defines.mk\n\n")
	fmt.Fprintf(&b, "GLINUX_WARNINGS := %s\n\n", strings.Join(baseWarnings, " "))
	b.WriteString("ifeq ($(CXX_USES_GCC), true)\n")
	fmt.Fprintf(&b, "GLINUX_WARNINGS += %s\n", strings.Join(gccOnlyWarnings, " "))
	b.WriteString("endif\n\n")
	b.WriteString("WARNINGS := $(GLINUX_WARNINGS)\n\n")
	fmt.Fprintf(&b, "CXXFLAGS += -std=%s\n", normalizeStd(cfg.CxxStd))
	return b.String()
}

// normalizeStd accepts either "c++17" or "17" and always emits "c++NN".
func normalizeStd(std string) string {
	std = strings.TrimPrefix(std, "c++")
	return "c++" + std
}

func renderDefaultMakeMk() string {
	return "" +
		"CPPFLAGS += -MMD -MP\n" +
		"CXXFLAGS += -pthread\n" +
		"LDFLAGS += -pthread\n" +
		"ARFLAGS := rcs\n"
}

func renderDebugMk(sanitizers []string) string {
	var b strings.Builder
	b.WriteString("CXXFLAGS += -g -O0 -gdwarf\n")
	for _, s := range sanitizers {
		fmt.Fprintf(&b, "CXXFLAGS += -fsanitize=%s\n", s)
		fmt.Fprintf(&b, "LDFLAGS += -fsanitize=%s\n", s)
		if s == "thread" {
			b.WriteString("CXXFLAGS += -fPIE\n")
			b.WriteString("LDFLAGS += -pie\n")
		}
	}
	return b.String()
}

func renderReleaseMk() string {
	return "CXXFLAGS += -O3 -DNDEBUG\n"
}
