package chrome

import (
	"encoding/json"
	"fmt"
	"strings"
)

type relationship int

const (
	relationUnknown relationship = iota
	// relationNotFollowing means a follow control is offered.
	relationNotFollowing
	// relationFollowing covers accepted follows and pending requests.
	relationFollowing
)

var relationshipLabels = map[string]relationship{
	"follow":      relationNotFollowing,
	"follow back": relationNotFollowing,
	"following":   relationFollowing,
	"requested":   relationFollowing,
}

const (
	profileButtonsSelector = `header button, header div[role="button"]`
	sectionButtonsSelector = `section button, section div[role="button"]`
	dialogSelector         = `div[role="dialog"]`
	dialogItemsSelector    = `div[role="dialog"] button, div[role="dialog"] div`
	confirmUnfollowLabel   = "unfollow"
	dismissLabel           = "not now"
)

func normalizeLabel(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}

// classifyRelationship returns the first relationship control among labels in
// document order, together with the normalized label that identified it.
func classifyRelationship(labels []string) (relationship, string) {
	for _, raw := range labels {
		label := normalizeLabel(raw)
		if rel, ok := relationshipLabels[label]; ok {
			return rel, label
		}
	}
	return relationUnknown, ""
}

func jsString(s string) string {
	encoded, _ := json.Marshal(s)
	return string(encoded)
}

func labelsScript(selector string) string {
	return fmt.Sprintf(
		`Array.from(document.querySelectorAll(%s)).map(el => (el.innerText || el.textContent || "").trim())`,
		jsString(selector),
	)
}

// clickScript clicks the first element under selector whose normalized text
// equals label, and evaluates to whether it found one.
func clickScript(selector, label string) string {
	return fmt.Sprintf(`(() => {
	const want = %s;
	for (const el of document.querySelectorAll(%s)) {
		const text = (el.innerText || el.textContent || "").trim().toLowerCase().replace(/\s+/g, " ");
		if (text === want) {
			el.click();
			return true;
		}
	}
	return false;
})()`, jsString(normalizeLabel(label)), jsString(selector))
}
