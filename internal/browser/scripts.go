// internal/browser/scripts.go
package browser

import (
	"encoding/json"
	"fmt"
)

const visibleHelper = `const visible = el => !!(el.offsetWidth || el.offsetHeight || el.getClientRects().length);
	const text = el => (el.textContent || '').trim();`

// loadMoreScript clicks the first visible link or button whose text equals label.
func loadMoreScript(label string) string {
	quoted, _ := json.Marshal(label)
	return fmt.Sprintf(`(() => {
	%s
	const label = %s;
	const el = Array.from(document.querySelectorAll('a, button'))
		.find(e => text(e) === label && visible(e) && !e.disabled);
	if (!el) { return false; }
	el.scrollIntoView({block: 'center'});
	el.click();
	return true;
})()`, visibleHelper, quoted)
}

// disclosureScript expands the size/weight specification panel. Candidates
// are tried in order and the first visible match is clicked.
var disclosureScript = fmt.Sprintf(`(() => {
	%s
	const buttons = Array.from(document.querySelectorAll('button'));
	const finders = [
		() => buttons.find(b => text(b).toLowerCase().includes('size') && visible(b)),
		() => buttons.find(b => String(b.className || '').includes('accordion') && text(b).includes('SIZE') && visible(b)),
		() => Array.from(document.querySelectorAll('div.accordion-title')).find(d => text(d).includes('SIZE') && visible(d)),
		() => buttons.find(b => text(b).includes('SIZE & WEIGHT') && visible(b)),
	];
	for (const find of finders) {
		const el = find();
		if (el) {
			el.scrollIntoView({block: 'center'});
			el.click();
			return true;
		}
	}
	return false;
})()`, visibleHelper)
