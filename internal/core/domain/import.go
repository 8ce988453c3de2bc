package domain

// Import is one imported module found in a source file.
type Import struct {
	// Module is the dotted module path as written, without leading dots.
	// It is empty for "from . import x".
	Module string
	// Names are the names imported by a from-import. Nil for a plain import.
	Names []string
	// Level is the number of leading dots of a relative import.
	Level int
	// Line is the 1-based line the statement starts on.
	Line int
}

// Absolute resolves the import against the importing module.
// isPackage reports whether importer is a package's __init__ module.
// The boolean is false when a relative import reaches above the top-level package.
func (i Import) Absolute(importer ModuleName, isPackage bool) (ModuleName, bool) {
	if i.Level == 0 {
		return ModuleName(i.Module), i.Module != ""
	}

	base := importer
	if !isPackage {
		base = importer.Parent()
	}
	for range i.Level - 1 {
		if base == "" {
			return "", false
		}
		base = base.Parent()
	}
	if base == "" {
		return "", false
	}
	if i.Module == "" {
		return base, true
	}
	return ModuleName(string(base) + "." + i.Module), true
}

// Candidates returns the module names the import may load: the module itself
// followed by each from-imported name as a possible submodule.
func (i Import) Candidates(importer ModuleName, isPackage bool) (ModuleName, []ModuleName, bool) {
	abs, ok := i.Absolute(importer, isPackage)
	if !ok {
		return "", nil, false
	}
	var subs []ModuleName
	for _, n := range i.Names {
		if n == "*" {
			continue
		}
		subs = append(subs, abs.Child(n))
	}
	return abs, subs, true
}
