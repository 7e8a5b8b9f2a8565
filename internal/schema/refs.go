package schema

import "strings"

// ResolveReference resolves a raw in-document reference such as
// "tns:PersonType" against this document's namespace declarations.
// An unprefixed reference falls back to the default namespace when
// one is declared, otherwise to the target namespace, which is how
// same-schema references are written in practice. The boolean is
// false when the reference carries an undeclared prefix.
func (d *Document) ResolveReference(ref string) (namespace, local string, ok bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", "", false
	}
	if idx := strings.Index(ref, ":"); idx >= 0 {
		prefix, local := ref[:idx], ref[idx+1:]
		uri, found := d.NamespaceDecls[prefix]
		if !found || local == "" {
			return "", local, false
		}
		return uri, local, true
	}
	if uri, found := d.NamespaceDecls[""]; found {
		return uri, ref, true
	}
	return d.TargetNamespace, ref, true
}
