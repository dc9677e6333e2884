package reporter

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"postman-sync/internal/differ"
	"postman-sync/internal/pathkey"
	"postman-sync/internal/reconcile"
)

var titleCase = cases.Title(language.English)

// Preview renders a reconciliation report as the text shown before a sync.
func Preview(r reconcile.Report) string {
	var b strings.Builder
	b.WriteString("# 📋 Postman Collection Update Preview\n\n")

	if len(r.New) > 0 {
		b.WriteString("## ✅ New Endpoints (Will be added)\n\n")
		for _, k := range r.New {
			fmt.Fprintf(&b, "- **%s** (New endpoint with full documentation)\n", k)
		}
		b.WriteString("\n")
	}

	if len(r.Updated) > 0 {
		b.WriteString("## 🔄 Updated Endpoints (Will be modified)\n\n")
		for _, u := range r.Updated {
			fmt.Fprintf(&b, "### %s\n\n", u.Key)
			if len(u.Diff.Request) > 0 {
				b.WriteString("**Request Changes:**\n")
				for _, c := range u.Diff.Request {
					fmt.Fprintf(&b, "- %s\n", ActionTitle(c.Action))
				}
			}
			if len(u.Diff.Documentation) > 0 {
				b.WriteString("**Documentation Changes:**\n")
				for _, c := range u.Diff.Documentation {
					fmt.Fprintf(&b, "- %s\n", documentationLine(c))
				}
			}
			b.WriteString("\n")
		}
	}

	if len(r.Unchanged) > 0 {
		b.WriteString("## ⚪ Unchanged Endpoints (Will remain as-is)\n\n")
		for _, k := range r.Unchanged {
			fmt.Fprintf(&b, "- **%s** (No changes detected)\n", k)
		}
		b.WriteString("\n")
	}

	if r.Changes() == 0 {
		b.WriteString("## 🎉 Summary\n\nNo changes detected. Your Postman collection is already up to date!\n")
		return b.String()
	}

	b.WriteString("## 📊 Summary\n\n")
	fmt.Fprintf(&b, "- **%d** new endpoints\n", len(r.New))
	fmt.Fprintf(&b, "- **%d** updated endpoints\n", len(r.Updated))
	fmt.Fprintf(&b, "- **%d** unchanged endpoints\n\n", len(r.Unchanged))
	b.WriteString("**Next Steps:**\n")
	b.WriteString("- Review the changes above\n")
	b.WriteString("- If you approve, run `postman-sync sync` to apply changes\n")
	b.WriteString("- If you want to modify something, update your controller and preview again\n")
	b.WriteString("\n**Note:** Documentation preservation is enabled by default to protect existing content.\n")
	return b.String()
}

// ActionTitle turns "url_parameters_updated" into "Url Parameters Updated".
func ActionTitle(a differ.Action) string {
	return titleCase.String(strings.ReplaceAll(string(a), "_", " "))
}

func documentationLine(c differ.Change) string {
	switch {
	case c.Existing == 0:
		return fmt.Sprintf("Documentation will be added (%d characters)", c.New)
	case c.New > c.Existing:
		return fmt.Sprintf("Documentation will be enhanced (%d → %d characters)", c.Existing, c.New)
	default:
		return fmt.Sprintf("Documentation will be updated (%d → %d characters)", c.Existing, c.New)
	}
}

// Summary renders the status message of an applied sync.
func Summary(r reconcile.Report, opts reconcile.Options, collectionUID string) string {
	var parts []string
	if len(r.New) > 0 {
		parts = append(parts, fmt.Sprintf("✅ Added %d new endpoint(s): %s", len(r.New), joinKeys(r.New)))
	}
	if len(r.Updated) > 0 {
		keys := make([]pathkey.Key, len(r.Updated))
		for i, u := range r.Updated {
			keys[i] = u.Key
		}
		parts = append(parts, fmt.Sprintf("🔄 Updated %d existing endpoint(s): %s", len(keys), joinKeys(keys)))
	}
	if len(r.Unchanged) > 0 {
		parts = append(parts, fmt.Sprintf("⚪ %d endpoint(s) unchanged: %s", len(r.Unchanged), joinKeys(r.Unchanged)))
	}
	if opts.IncludeDocumentation {
		note := ""
		if opts.PreserveExistingDocs {
			note = " (with documentation preservation)"
		}
		parts = append(parts, "📚 Documentation added to collection and individual requests"+note)
	}

	if len(parts) == 0 {
		return "No endpoints found in the provided data."
	}
	return strings.Join(parts, "\n") + "\n\n📋 Collection UID: " + collectionUID
}

func joinKeys(keys []pathkey.Key) string {
	s := make([]string, len(keys))
	for i, k := range keys {
		s[i] = k.String()
	}
	return strings.Join(s, ", ")
}
