package generate

import (
	"fmt"
	"strings"

	"github.com/fsandhei/yambs-sub000/src/core"
)

// renderMakefile writes the all: rule first, then one section per
// registered FromSource target, in registration order.
func (g *Generator) renderMakefile(buildTypeDir string, targets, topLevel []*core.Target) string {
	var b strings.Builder

	phony := make([]string, 0, len(targets))
	for _, t := range targets {
		phony = append(phony, t.ID.Type.Name)
	}
	allDeps := make([]string, 0, len(topLevel))
	for _, t := range topLevel {
		allDeps = append(allDeps, t.ID.Type.Name)
	}
	fmt.Fprintf(&b, ".PHONY: all %s\n", strings.Join(phony, " "))
	fmt.Fprintf(&b, "all: %s\n\n", strings.Join(allDeps, " "))

	for _, t := range targets {
		if !t.SyncUpdateState(core.Registered, core.BuildFileMade) {
			continue
		}
		b.WriteString(g.renderTarget(buildTypeDir, t))
	}
	return b.String()
}

func (g *Generator) renderTarget(buildTypeDir string, t *core.Target) string {
	var b strings.Builder
	name := t.ID.Type.Name
	macro := macroName(name)
	outFile := t.ID.Type.OutputFileName()

	fmt.Fprintf(&b, "# %s\n", t.ID.String())

	cxxflags, cppflags, ldflags := collectFlags(t)
	if len(cxxflags) > 0 {
		fmt.Fprintf(&b, "%s_CXXFLAGS += %s\n", macro, strings.Join(cxxflags, " "))
	}
	if len(cppflags) > 0 {
		fmt.Fprintf(&b, "%s_CPPFLAGS += %s\n", macro, strings.Join(cppflags, " "))
	}

	prereqs := prerequisites(buildTypeDir, t)
	dirs := searchDirs(t)
	linkFlags := strings.Join(append(append([]string{}, dirs...), ldflags...), " ")

	switch {
	case t.IsExecutable():
		fmt.Fprintf(&b, "%s: %s\n", outFile, strings.Join(prereqs, " \\\n\t"))
		fmt.Fprintf(&b, "\t$(CXX) $(CXXFLAGS) $(CPPFLAGS) $(%s_CXXFLAGS) $(%s_CPPFLAGS) $(WARNINGS) $(LDFLAGS) %s $^ -o $@\n\n",
			macro, macro, linkFlags)
	case t.ID.Type.Library == core.Dynamic:
		fmt.Fprintf(&b, "%s: %s\n", outFile, strings.Join(prereqs, " \\\n\t"))
		fmt.Fprintf(&b, "\t$(CXX) $(CXXFLAGS) $(CPPFLAGS) $(%s_CXXFLAGS) $(%s_CPPFLAGS) $(WARNINGS) $(LDFLAGS) %s $^ -rdynamic -shared -o $@\n\n",
			macro, macro, linkFlags)
		fmt.Fprintf(&b, "%s: %s\n\n", name, outFile)
	default: // Static library
		fmt.Fprintf(&b, "%s: %s\n", outFile, strings.Join(prereqs, " \\\n\t"))
		b.WriteString("\t$(AR) $(ARFLAGS) $@ $?\n\n")
		fmt.Fprintf(&b, "%s: %s\n\n", name, outFile)
	}

	for _, src := range t.Sources {
		obj := objectPath(buildTypeDir, t, src)
		fmt.Fprintf(&b, "%s: \\\n\t%s\n", obj, src)
		fmt.Fprintf(&b, "\t$(CXX) $(CXXFLAGS) $(CPPFLAGS) $(%s_CXXFLAGS) $(%s_CPPFLAGS) $(WARNINGS) %s $< -c -o $@\n\n",
			macro, macro, strings.Join(dirs, " "))
	}

	for _, src := range t.Sources {
		obj := objectPath(buildTypeDir, t, src)
		dep := strings.TrimSuffix(obj, ".o") + ".d"
		fmt.Fprintf(&b, "sinclude %s\n", dep)
	}
	b.WriteString("\n")
	return b.String()
}

// collectFlags gathers a target's own flag appendices, its defines, and
// any flags resolved from its pkg-config dependencies.
func collectFlags(t *core.Target) (cxxflags, cppflags, ldflags []string) {
	cxxflags = append(cxxflags, t.Flags.CXXFlagsAppend...)
	cppflags = append(cppflags, t.Flags.CPPFlagsAppend...)
	for _, d := range t.Defines {
		cppflags = append(cppflags, d.String())
	}
	for _, dep := range t.Dependencies {
		if dep.Kind != core.PkgConfigDependencyKind || dep.Target == nil || dep.Target.PkgConfig == nil {
			continue
		}
		pc := dep.Target.PkgConfig
		for _, inc := range pc.IncludeDirs {
			cppflags = append(cppflags, "-I"+inc)
		}
		cppflags = append(cppflags, pc.OtherCFlags...)
		for _, dir := range pc.LinkDirs {
			ldflags = append(ldflags, "-L"+dir)
		}
		for _, lib := range pc.LinkLibs {
			ldflags = append(ldflags, "-l"+lib)
		}
	}
	return
}

// prerequisites lists a target's object files followed by its dependency
// libraries' output file names: objects first, then lib<dep>.a / lib<dep>.so.
func prerequisites(buildTypeDir string, t *core.Target) []string {
	objs := make([]string, 0, len(t.Sources))
	for _, src := range t.Sources {
		objs = append(objs, objectPath(buildTypeDir, t, src))
	}
	libs := make([]string, 0)
	for _, dep := range t.Dependencies {
		if dep.IsLibrary() {
			libs = append(libs, dep.Target.ID.Type.OutputFileName())
		}
	}
	return append(objs, libs...)
}

// searchDirs renders a target's include directories in insertion order,
// plus -L. when it links against a source dependency built alongside it.
func searchDirs(t *core.Target) []string {
	out := make([]string, 0, len(t.IncludeDirs))
	for _, d := range t.IncludeDirs {
		if d.Kind == core.System {
			out = append(out, "-isystem "+d.Path)
		} else {
			out = append(out, "-I"+d.Path)
		}
	}
	for _, dep := range t.Dependencies {
		if dep.Kind == core.SourceDependency {
			out = append(out, "-L.")
			break
		}
	}
	return out
}
