package pysync

import "github.com/phobologic/pysync/internal/pyast"

// ExportListName is the module attribute holding a module's public names.
const ExportListName = "__all__"

// SyncExports appends each of names missing from the module's top-level
// __all__ list and returns the names it added. Nothing happens when the
// module has no __all__ or its value is not a list of plain strings.
func SyncExports(mod *pyast.Node, names []string) []string {
	list := exportList(mod)
	if list == nil {
		return nil
	}

	present := make(map[string]struct{}, len(list.Elements))
	for _, e := range list.Elements {
		present[e] = struct{}{}
	}
	var added []string
	for _, name := range names {
		if _, ok := present[name]; ok {
			continue
		}
		present[name] = struct{}{}
		added = append(added, name)
	}
	if len(added) > 0 {
		list.SetElements(append(append([]string(nil), list.Elements...), added...))
	}
	return added
}

// exportList returns the last top-level assignment to __all__, provided it
// binds a list of plain strings.
func exportList(mod *pyast.Node) *pyast.Node {
	var found *pyast.Node
	for _, stmt := range mod.Body {
		if stmt.Kind != pyast.Assign && stmt.Kind != pyast.AnnAssign {
			continue
		}
		for _, t := range stmt.Targets {
			if t == ExportListName {
				found = stmt
			}
		}
	}
	if found == nil || !found.IsStringList {
		return nil
	}
	return found
}
