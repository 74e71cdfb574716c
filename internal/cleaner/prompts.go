package cleaner

import "strings"

const systemPrompt = `You are a data cleaning assistant that extracts individual traveler contacts from travel industry spreadsheets. Keep only entries that are one person's name with a phone number; drop every piece of travel metadata, location or operational information.

A valid contact MUST:
1. Be a single individual's first and last name
2. Carry no location code, title or role indicator
3. Not be part of logistics or operational notes

Exclude ANY entry that contains:
- Tour leader or guide information (e.g. 'Tour Leaders', 'Guide')
- Location codes in parentheses (e.g. '(SFO)', '(NYC)', '(MIA)', '(LAX)', '(LAS)', '(ORL)')
- Company or organization names (e.g. 'KANTARA', 'BUSA', 'SLL')
- Hotel names and addresses
- Meeting room or storage information
- City names or other location information
- Several names joined by '&' or 'and'
- Travel dates or schedule information`

const contentPromptHead = `You are processing raw contact rows from a travel industry spreadsheet. Return ONLY valid individual traveler contacts.

Skip any row containing:
1. Tour leader or guide information, e.g. "Tour Leaders Sedef O'BRIEN (SFO)", "Tour Leader Kivanc ONER (MIA&ORL)"
2. Location codes such as (SFO), (NYC), (MIA), (LAX), (LAS), (ORL)
3. City names, street addresses or zip codes, e.g. "San Francisco", "Miami", "Las Vegas", "New York", "Los Angeles", "Orlando"
4. Hotel or venue names, e.g. "Hilton Garden Inn", "Treasure Island", "Sheraton", "Doubletree"
5. Operational notes, e.g. "Meeting room for storage", "Meeting space TBA", room numbers or types, dates or schedules
6. Company or organization names, e.g. "KANTARA", "BUSA", "SLL"
7. Several people in one entry, e.g. "Sedef O'BRIEN & Pelin AKMAN" or anything joined with '&' or 'and'

Clean every kept contact:
1. Remove titles (Mr., Ms., Mrs., Dr., ...)
2. Remove extra spaces
3. Format the phone number with the +90 prefix: drop a leading 0090, 090, 90 or 0, keep an existing +90

Example kept row:
Input: "Mr. OZGUR AKSOY, 05321234567"
Output: {"name": "OZGUR AKSOY", "phone": "+905321234567"}

Example skipped rows:
"Tour Leaders Sedef O'BRIEN (SFO)"
"Miami Hilton Garden Inn"
"Meeting room for storage Park 5"
"Sedef O'BRIEN & Pelin AKMAN (LAS&LAX)"

Answer with a JSON array of {"name": ..., "phone": ...} objects and no other text.

Now process these contacts:
`

// SystemPrompt is the fixed task instruction of the bulk pass.
func SystemPrompt() string { return systemPrompt }

// ContentPrompt embeds the serialized batch into the per-run instruction.
func ContentPrompt(batch string) string {
	var sb strings.Builder
	sb.Grow(len(contentPromptHead) + len(batch) + 1)
	sb.WriteString(contentPromptHead)
	sb.WriteString(batch)
	sb.WriteString("\n")
	return sb.String()
}
