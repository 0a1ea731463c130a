package prompts

const estimateSpec = `Respond with a JSON object matching this exact structure:

{
  "fields": [
    {"cell_address": "<A1 address>", "description": "<what is entered here>"}
  ],
  "reason": "<explanation>"
}

Field constraints:
- fields: At least one entry. Each cell_address is a single cell in A1
  notation: column letters followed by row digits (e.g. "B4"). No sheet
  prefixes, no ranges. Each address appears at most once.
- description: A short label for the value a person enters in that cell,
  taken from the nearest label where possible.
- reason: How the fields were identified.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Do not include label, title, or computed cells`

const validateSpec = `Respond with a JSON object matching this exact structure:

{
  "status": "<OK|NEEDS_REVISION>",
  "issues": ["<problem>"],
  "suggestions": ["<fix>"]
}

Field constraints:
- status: OK when every input cell is highlighted and nothing else is;
  NEEDS_REVISION otherwise.
- issues: One entry per concrete problem, naming cell addresses. Empty
  when status is OK.
- suggestions: One entry per concrete fix, naming cell addresses. Empty
  when status is OK.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Judge only what the highlighted image shows`

const correctSpec = `Respond with a JSON object matching this exact structure:

{
  "add_fields": [
    {"cell_address": "<A1 address>", "description": "<what is entered here>"}
  ],
  "delete_fields": [
    {"cell_address": "<A1 address>", "description": "<why it is removed>"}
  ],
  "reason": "<explanation>"
}

Field constraints:
- add_fields: Fields to add, or existing fields whose description changes.
  A cell_address already in the proposal replaces that field.
- delete_fields: Fields to remove from the proposal, by cell_address.
- reason: How the corrected proposal addresses the review.
- Every cell_address is a single cell in A1 notation (e.g. "B4").

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Deletions are applied before additions`

var specs = map[Stage]string{
	StageEstimate: estimateSpec,
	StageValidate: validateSpec,
	StageCorrect:  correctSpec,
}

// Spec returns the fixed output specification for stage.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
