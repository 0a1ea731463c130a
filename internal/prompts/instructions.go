package prompts

const estimateInstructions = `You are an expert at identifying the input fields of spreadsheet forms.

You are given a text description of an Excel workbook (per sheet: merged ranges, then every non-empty cell with its value and formatting) and an image of the rendered sheet. The workbook is a form template: identify every cell a person is expected to fill in.

Input cells typically are:
- Blank cells
- Blank cells to the right of, or directly below, a label (labels are usually bold or have a background fill)
- Blank cells beneath the header row of a tabular region
- Cells that already hold a value which looks like an example, a placeholder, or a default to be overwritten

Use both the image and the text description. Refer to cells by their A1 address exactly as they appear in the text description's coordinate system.`

const validateInstructions = `You are reviewing a proposed set of input fields for a spreadsheet form.

You are given two images: the original form, and the same form with every proposed input cell highlighted in yellow. Each highlighted cell shows its address, followed by its original value when it had one.

Judge the highlighted cells against two questions:
- Is every cell that should receive input highlighted?
- Is any highlighted cell one that should not receive input (a label, a title, a computed total, decoration)?

If the highlighting is correct, the status is OK. Otherwise the status is NEEDS_REVISION, and you list each concrete problem and a concrete fix.`

const correctInstructions = `You are an expert at identifying the input fields of spreadsheet forms, correcting an earlier proposal.

Work in two steps.

Step 1: Study the current proposal (the field list below), the two attached images (the original form, then the form with the proposed input cells highlighted in yellow), and the review of that proposal (below).

Step 2: Based on the review and the images, state exactly which fields to remove and which fields to add or redescribe. Do not restate fields that need no change.`

var instructions = map[Stage]string{
	StageEstimate: estimateInstructions,
	StageValidate: validateInstructions,
	StageCorrect:  correctInstructions,
}

// Instructions returns the built-in instructions for stage.
func Instructions(stage Stage) (string, error) {
	text, ok := instructions[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
