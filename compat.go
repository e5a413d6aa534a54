package templateguard

import "fmt"

// CompatResult holds every rule violation found when comparing two schema
// versions. All rules are evaluated; checking never stops at the first hit.
type CompatResult struct {
	Violations Issues
}

// OK reports whether the transition is a legal evolution.
func (r CompatResult) OK() bool { return len(r.Violations) == 0 }

// Check decides whether candidate is a legal evolution of previous.
//
// A legal evolution increments the (major, minor) version, keeps every
// existing field with its kind unchanged, never tightens optional fields to
// required, and introduces new fields as optional only. The backwards
// compatibility property this preserves: every document valid under previous
// stays valid under candidate.
//
// Check is a pure function of the two models; it knows nothing about the
// archive they came from.
func Check(previous, candidate *Schema) CompatResult {
	var vs Issues

	if candidate.Version.Compare(previous.Version) <= 0 {
		vs = AppendIssues(vs, IssueAt("/version", CodeVersionNotIncremented,
			fmt.Sprintf("version must increase: previous %s, candidate %s", previous.Version, candidate.Version),
			map[string]any{"previous": previous.Version.String(), "candidate": candidate.Version.String()}))
	}

	for _, pf := range previous.Fields() {
		cf, ok := candidate.Field(pf.Name)
		if !ok {
			// Removal is always a violation, required or not.
			vs = AppendIssues(vs, IssueAt("/fields/"+pf.Name, CodeFieldRemoved,
				fmt.Sprintf("field %q was removed", pf.Name), nil))
			continue
		}
		if cf.Kind != pf.Kind {
			vs = AppendIssues(vs, IssueAt("/fields/"+pf.Name, CodeKindChanged,
				fmt.Sprintf("field %q changed kind from %s to %s", pf.Name, pf.Kind, cf.Kind),
				map[string]any{"previous": string(pf.Kind), "candidate": string(cf.Kind)}))
		}
		if !pf.Required && cf.Required {
			vs = AppendIssues(vs, IssueAt("/fields/"+pf.Name, CodeFieldBecameRequired,
				fmt.Sprintf("field %q was optional and may not become required", pf.Name), nil))
		}
	}

	for _, cf := range candidate.Fields() {
		if _, ok := previous.Field(cf.Name); ok {
			continue
		}
		if cf.Required {
			// A brand-new required field breaks every document that predates it.
			vs = AppendIssues(vs, IssueAt("/fields/"+cf.Name, CodeNewFieldIsRequired,
				fmt.Sprintf("new field %q must be optional", cf.Name), nil))
		}
	}

	return CompatResult{Violations: vs}
}
