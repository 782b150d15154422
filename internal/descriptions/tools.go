package descriptions

// Tool descriptions shown to MCP clients

const (
	PDFFillFormDescription = `Fill interactive form fields in a batch of PDF documents.

**When to use:** You have one or more fillable PDFs (applications, tax forms, contracts) and values for their fields.

**Configuration:** configurationJson is a JSON array of {"key","value","type"} where type is one of textfield, checkbox, dropdown, radiogroup. Checkbox values are "true" or "false". Dropdown and radiogroup values must be one of the field's options.

**Examples:**
• Fill a name: [{"key":"Applicant Name","value":"Ada Lovelace","type":"textfield"}]
• Tick a box: [{"key":"agree","value":"true","type":"checkbox"}]
• Pick an option: [{"key":"country","value":"France","type":"dropdown"}]

**Common workflows:**
1. Discover first: pdf_get_form_fields → build configurationJson from the names and types → pdf_fill_form
2. Mass mailing: one configuration, many items, continueOnFail=true to collect per-document errors

**Best practices:** Field names are matched exactly. The first failing field stops that document; with continueOnFail=false it also stops the batch and the error names the item index.`

	PDFCreateFieldDescription = `Stamp literal text onto pages of a batch of PDF documents.

**When to use:** You need visible text on a page that has no form field for it (approval stamps, reference numbers, dates).

**Configuration:** configurationJson is a JSON array of {"value","page","options"} where page is 0-based and options holds x, y (points from the bottom-left corner), size, color (#rrggbb) and font.

**Examples:**
• Mark as paid: [{"value":"PAID","page":0,"options":{"x":400,"y":750,"size":24,"color":"#cc0000"}}]
• Number every copy: one item per copy, each with its own configuration

**Common workflows:**
1. Stamp and archive: pdf_create_field with outputDirectory → files land next to the originals
2. Fill then stamp: pdf_fill_form output → pdf_create_field input

**Best practices:** A page index outside the document fails that item. Defaults are x=0, y=0, size=12, color=#000000, font=Helvetica. font must be one of the 14 standard PDF fonts (Helvetica, Times-Roman, Courier and their variants, Symbol, ZapfDingbats). A line feed or the two characters \n start a new line, and characters outside Latin-1 are drawn as spaces.`

	PDFGetFormFieldsDescription = `List every interactive form field of each PDF in a batch.

**When to use:** Before filling a form you have not seen, or to audit which fields a set of documents carries.

**Output:** For each item, json holds {"totalFields": N, "fields": [{"name","type"}]} with type one of textfield, checkbox, radiogroup, dropdown, optionlist, button, signature, unknown.

**Examples:**
• Inspect a template: "List the fields of w9.pdf"
• Compare revisions: run on both versions and diff the field names

**Best practices:** Documents without a form report zero fields rather than failing. Use the names verbatim as keys for pdf_fill_form.`

	PDFExtractTextDescription = `Extract plain text from each page of one PDF.

**When to use:** Check what a filled or stamped document says, or read a document before deciding how to fill it.

**Output:** {"pages": [{"page": 0, "text": "..."}]}. Pages are numbered from 0, like the page index of pdf_create_field.

**Best practices:** Pass path for files in the work directory or data for base64 content. Scanned pages without a text layer return empty text.`
)
